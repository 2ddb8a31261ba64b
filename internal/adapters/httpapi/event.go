package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agora/internal/domain/entities"
	"agora/internal/ports/input"
)

type EventHandler struct {
	events input.EventUseCase
}

func NewEventHandler(events input.EventUseCase) *EventHandler {
	return &EventHandler{events: events}
}

type createEventRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	EventType   string    `json:"eventType" binding:"required"`
	StartTime   time.Time `json:"startTime" binding:"required"`
}

// PostEvent handles POST /events (admin only, enforced by the use case).
func (h *EventHandler) PostEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	event := &entities.Event{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		EventType:   req.EventType,
		StartTime:   req.StartTime,
	}
	if err := h.events.CreateEvent(c.Request.Context(), event, CallerFrom(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "event": eventJSON(event)})
}

// GetEvents handles GET /events.
func (h *EventHandler) GetEvents(c *gin.Context) {
	events, err := h.events.ListEvents(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]gin.H, len(events))
	for i := range events {
		out[i] = eventJSON(&events[i])
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "events": out})
}

// GetEvent handles GET /events/:id.
func (h *EventHandler) GetEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid event id"})
		return
	}
	event, err := h.events.GetEventByID(c.Request.Context(), eventID)
	if err != nil {
		writeError(c, err)
		return
	}
	attended, err := h.events.AttendedCount(c.Request.Context(), eventID)
	if err != nil {
		writeError(c, err)
		return
	}
	body := eventJSON(event)
	body["attendedCount"] = attended
	c.JSON(http.StatusOK, gin.H{"success": true, "event": body})
}

// eventJSON is the public projection of an event. The live token never
// leaves the server except embedded in the admin QR image.
func eventJSON(e *entities.Event) gin.H {
	return gin.H{
		"id":             e.ID,
		"title":          e.Title,
		"description":    e.Description,
		"location":       e.Location,
		"eventType":      e.EventType,
		"startTime":      e.StartTime,
		"attendanceOpen": e.IsAttendanceOpen,
	}
}

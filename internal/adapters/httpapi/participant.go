package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agora/internal/domain"
	"agora/internal/infrastructure/metrics"
	"agora/internal/ports/input"
)

// ParticipantHandler serves join/cancel and the participation read model.
type ParticipantHandler struct {
	participants input.ParticipantUseCase
	metrics      *metrics.Metrics
}

func NewParticipantHandler(participants input.ParticipantUseCase, m *metrics.Metrics) *ParticipantHandler {
	return &ParticipantHandler{participants: participants, metrics: m}
}

// PostJoin handles POST /events/:id/join.
func (h *ParticipantHandler) PostJoin(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid event id"})
		return
	}
	message, err := h.participants.Join(c.Request.Context(), localeFrom(c), eventID, CallerFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	h.metrics.Joins.Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

// PostCancel handles POST /events/:id/cancel.
func (h *ParticipantHandler) PostCancel(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid event id"})
		return
	}
	message, err := h.participants.Cancel(c.Request.Context(), localeFrom(c), eventID, CallerFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	h.metrics.Cancellations.Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

// GetRoster handles GET /admin/events/:id/participants.
func (h *ParticipantHandler) GetRoster(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid event id"})
		return
	}
	rows, err := h.participants.ListForEvent(c.Request.Context(), eventID, CallerFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]gin.H, len(rows))
	for i, row := range rows {
		entry := gin.H{
			"userId":   row.UserID,
			"status":   row.Status,
			"joinedAt": row.JoinedAt,
		}
		if !row.AttendanceTime.IsZero() {
			entry["attendanceTime"] = row.AttendanceTime
		}
		if !row.CancelledAt.IsZero() {
			entry["cancelledAt"] = row.CancelledAt
		}
		out[i] = entry
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "participants": out})
}

// GetParticipation handles GET /events/:id/participation.
func (h *ParticipantHandler) GetParticipation(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid event id"})
		return
	}
	caller := CallerFrom(c)
	if !caller.Authenticated() {
		writeError(c, domain.ErrUnauthenticated)
		return
	}
	status, err := h.participants.StatusFor(c.Request.Context(), eventID, caller.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"isJoined":    status.IsJoined,
		"hasAttended": status.HasAttended,
	})
}

package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"agora/internal/domain"
	"agora/internal/infrastructure/metrics"
	"agora/internal/ports/input"
)

// AttendanceHandler serves the two attendance entry surfaces (link page data,
// venue QR image), the check-in submission, and the admin window toggle.
type AttendanceHandler struct {
	attendance   input.AttendanceUseCase
	participants input.ParticipantUseCase
	events       input.EventUseCase
	metrics      *metrics.Metrics
}

func NewAttendanceHandler(
	attendance input.AttendanceUseCase,
	participants input.ParticipantUseCase,
	events input.EventUseCase,
	m *metrics.Metrics,
) *AttendanceHandler {
	return &AttendanceHandler{
		attendance:   attendance,
		participants: participants,
		events:       events,
		metrics:      m,
	}
}

// GetAttendancePage handles GET /attendance/:id?mode=link|qr.
// Link mode returns the page data for the one-click action (online events,
// any authenticated user). QR mode returns the venue code as a PNG (offline
// events, admins only).
func (h *AttendanceHandler) GetAttendancePage(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid event id"})
		return
	}
	switch c.Query("mode") {
	case "link":
		h.linkPage(c, eventID)
	case "qr":
		h.qrImage(c, eventID)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "mode must be link or qr"})
	}
}

func (h *AttendanceHandler) linkPage(c *gin.Context, eventID uuid.UUID) {
	caller := CallerFrom(c)
	if !caller.Authenticated() {
		writeError(c, domain.ErrUnauthenticated)
		return
	}
	event, err := h.events.GetEventByID(c.Request.Context(), eventID)
	if err != nil {
		writeError(c, domain.ErrEventNotFound)
		return
	}
	if !event.IsOnline() {
		writeError(c, domain.ErrModeMismatch)
		return
	}
	status, err := h.participants.StatusFor(c.Request.Context(), eventID, caller.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"event": gin.H{
			"id":        event.ID,
			"title":     event.Title,
			"eventType": event.EventType,
			"startTime": event.StartTime,
		},
		"attendanceOpen": event.IsAttendanceOpen,
		"isJoined":       status.IsJoined,
		"hasAttended":    status.HasAttended,
	})
}

func (h *AttendanceHandler) qrImage(c *gin.Context, eventID uuid.UUID) {
	payload, err := h.attendance.QRPayload(c.Request.Context(), eventID, CallerFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, 512)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

type checkInRequest struct {
	// Payload is the raw decoded QR string; empty for link-mode submissions.
	Payload string `json:"payload"`
}

// PostCheckIn handles POST /attendance/:id/check-in. The presence of a
// payload selects QR mode; its absence selects link mode. Mode/event-type
// agreement is enforced below in the orchestrator.
func (h *AttendanceHandler) PostCheckIn(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid event id"})
		return
	}
	var req checkInRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
	}

	caller := CallerFrom(c)
	locale := localeFrom(c)
	ctx := c.Request.Context()

	var (
		result *domain.CheckInResult
		mode   = domain.CheckInModeLink
	)
	if req.Payload != "" {
		mode = domain.CheckInModeQR
		result, err = h.attendance.CheckInQR(ctx, locale, eventID, req.Payload, caller)
	} else {
		result, err = h.attendance.CheckInLink(ctx, locale, eventID, caller)
	}
	h.metrics.CheckIns.WithLabelValues(string(mode), outcomeLabel(err)).Inc()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"message":         result.Message,
		"alreadyRecorded": result.AlreadyRecorded,
		"attendanceTime":  result.AttendanceTime,
	})
}

type setAttendanceRequest struct {
	Open *bool `json:"open" binding:"required"`
}

// SetAttendanceOpen handles PUT /admin/events/:id/attendance.
func (h *AttendanceHandler) SetAttendanceOpen(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid event id"})
		return
	}
	var req setAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	event, err := h.attendance.SetAttendanceOpen(c.Request.Context(), eventID, *req.Open, CallerFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if *req.Open && event.IsOffline() {
		h.metrics.TokenRotations.Inc()
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"attendanceOpen": event.IsAttendanceOpen,
	})
}

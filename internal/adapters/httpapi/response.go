package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"agora/internal/domain"
)

// writeError converts a domain error into the boundary JSON shape
// {success:false, error:...}. Unauthenticated callers additionally get a
// login redirect preserving the intended destination.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{
			"success":  false,
			"error":    err.Error(),
			"redirect": "/login?next=" + url.QueryEscape(c.Request.URL.RequestURI()),
		})
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrModeMismatch):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, domain.ErrEventNotFound), errors.Is(err, domain.ErrParticipantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, domain.ErrInvalidPayload),
		errors.Is(err, domain.ErrEventMismatch),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrInvalidEventType),
		errors.Is(err, domain.ErrDateTimeInPast):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, domain.ErrAlreadyJoined),
		errors.Is(err, domain.ErrNotJoined),
		errors.Is(err, domain.ErrNotRegistered),
		errors.Is(err, domain.ErrAlreadyAttended),
		errors.Is(err, domain.ErrAttendanceClosed),
		errors.Is(err, domain.ErrEventEnded):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
	default:
		slog.Error("unexpected error", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"})
	}
}

// outcomeLabel maps an error to the metrics outcome label.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, domain.ErrAttendanceClosed):
		return "closed"
	case errors.Is(err, domain.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, domain.ErrInvalidPayload):
		return "invalid_payload"
	case errors.Is(err, domain.ErrEventMismatch):
		return "event_mismatch"
	case errors.Is(err, domain.ErrModeMismatch):
		return "mode_mismatch"
	case errors.Is(err, domain.ErrNotRegistered):
		return "not_registered"
	default:
		return "error"
	}
}

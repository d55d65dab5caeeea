package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/sift/models"
)

// respondError maps an internal error to the correct HTTP status and writes
// the structured JSON error envelope. errors.As rather than a bare type
// assertion: classified store errors arrive wrapped in fmt.Errorf context.
func respondError(c *gin.Context, err error) {
	var siftErr *models.SiftError
	if !errors.As(err, &siftErr) {
		siftErr = models.NewSiftError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(siftErr), models.ErrorResponse{
		Success: false,
		Error:   siftErr.ToDetail(),
	})
}

// mapErrorToStatus translates error codes to HTTP status codes. Store
// failures that abort a run surface as 503 so callers know to back off and
// retry once the store recovers.
func mapErrorToStatus(e *models.SiftError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput, models.ErrCodeBadFieldSpec, models.ErrCodeAmbiguousSelector:
		return http.StatusBadRequest
	case models.ErrCodeUnknownSite:
		return http.StatusNotFound
	case models.ErrCodeDuplicate:
		return http.StatusConflict
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case models.ErrCodeConnectionLost, models.ErrCodeQuotaReached:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

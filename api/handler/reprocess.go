package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/sift/config"
	"github.com/use-agent/sift/models"
	"github.com/use-agent/sift/reprocess"
)

// Reprocess returns a handler for POST /api/v1/reprocess.
//
// Flow:
//  1. Parse and validate the request, resolve the site configuration.
//  2. Replay every stored capture for the site through extraction.
//  3. Return the run summary, or the aborting store error as 503.
//
// A run that aborted partway still reports the summary of what completed
// alongside the error.
func Reprocess(r *reprocess.Reprocessor, sites map[string]*config.SiteConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ReprocessRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, models.NewSiftError(models.ErrCodeInvalidInput, err.Error(), err))
			return
		}

		site, ok := sites[req.SiteName]
		if !ok {
			respondError(c, models.NewSiftError(models.ErrCodeUnknownSite,
				"no site configuration for: "+req.SiteName, nil))
			return
		}

		summary, err := r.Run(c.Request.Context(), site)
		if err != nil {
			var siftErr *models.SiftError
			if !errors.As(err, &siftErr) {
				siftErr = models.NewSiftError(models.ErrCodeInternal, err.Error(), err)
			}
			c.JSON(mapErrorToStatus(siftErr), gin.H{
				"success": false,
				"error":   siftErr.ToDetail(),
				"summary": summary,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"summary": summary,
		})
	}
}

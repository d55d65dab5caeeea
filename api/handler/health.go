package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/use-agent/sift/config"
	"github.com/use-agent/sift/models"
)

// Health returns a handler for GET /api/v1/health.
//
// Status degrades (but the endpoint still answers 200) when the database is
// unreachable, so monitoring can tell "service down" from "store down".
func Health(db *pgxpool.Pool, sites map[string]*config.SiteConfig, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		if err := db.Ping(c.Request.Context()); err != nil {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Sites:   len(sites),
			Version: "0.1.0",
		})
	}
}

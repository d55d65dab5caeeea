package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/use-agent/sift/api/handler"
	"github.com/use-agent/sift/api/middleware"
	"github.com/use-agent/sift/config"
	"github.com/use-agent/sift/reprocess"
	"github.com/use-agent/sift/store"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(
	db *pgxpool.Pool,
	captures *store.CaptureStore,
	articles *store.ArticleStore,
	reprocessor *reprocess.Reprocessor,
	sites map[string]*config.SiteConfig,
	cfg *config.Config,
	startTime time.Time,
) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(db, sites, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Capture ingest from the crawl engine.
	protected.POST("/captures", handler.Captures(captures, sites))

	// Replay stored captures through extraction.
	protected.POST("/reprocess", handler.Reprocess(reprocessor, sites))

	// Configured sites and stored-article counts.
	protected.GET("/sites", handler.Sites(sites, articles))

	return r
}

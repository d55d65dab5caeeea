package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/sift/config"
	"github.com/use-agent/sift/models"
	"github.com/use-agent/sift/store"
)

// Captures returns a handler for POST /api/v1/captures: the ingest endpoint
// the external crawl engine pushes fetched pages to.
//
// A capture without a crawl stamp gets a fresh one minted server-side;
// captures from the same crawl should all carry the crawl_id returned for
// the first page so replayed articles share provenance.
func Captures(captures *store.CaptureStore, sites map[string]*config.SiteConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CaptureRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, models.NewSiftError(models.ErrCodeInvalidInput, err.Error(), err))
			return
		}

		if _, ok := sites[req.SiteName]; !ok {
			respondError(c, models.NewSiftError(models.ErrCodeUnknownSite,
				"no site configuration for: "+req.SiteName, nil))
			return
		}

		crawl := models.NewCrawlInfo(req.SiteName)
		if req.CrawlID != "" {
			crawl.CrawlID = req.CrawlID
		}
		if req.CrawlDatetime != "" {
			stamp, err := time.Parse(time.RFC3339, req.CrawlDatetime)
			if err != nil {
				respondError(c, models.NewSiftError(models.ErrCodeInvalidInput,
					"crawl_datetime must be RFC 3339", err))
				return
			}
			crawl.CrawlDatetime = stamp.UTC()
		}

		capture := &models.Capture{
			SiteName:      req.SiteName,
			CrawlID:       crawl.CrawlID,
			CrawlDatetime: crawl.CrawlDatetime,
			RequestURL:    req.RequestURL,
			ResponseURL:   req.ResponseURL,
			StatusCode:    req.StatusCode,
			RawBody:       []byte(req.Body),
		}
		if capture.StatusCode == 0 {
			capture.StatusCode = http.StatusOK
		}

		if err := captures.Add(c.Request.Context(), capture); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.CaptureResponse{
			Success: true,
			BlobKey: capture.BlobKey,
			CrawlID: capture.CrawlID,
		})
	}
}

package models

// ReprocessRequest is the body of POST /api/v1/reprocess.
type ReprocessRequest struct {
	SiteName string `json:"site" binding:"required"`
}

// CaptureRequest is the body of POST /api/v1/captures: a raw fetched page
// pushed in by the external crawl engine. CrawlID and CrawlDatetime are
// optional; when omitted a fresh crawl stamp is minted server-side.
type CaptureRequest struct {
	SiteName      string `json:"site_name" binding:"required"`
	CrawlID       string `json:"crawl_id"`
	CrawlDatetime string `json:"crawl_datetime"`
	RequestURL    string `json:"request_url" binding:"required"`
	ResponseURL   string `json:"response_url" binding:"required"`
	StatusCode    int    `json:"status"`
	Body          string `json:"body" binding:"required"`
}

// ErrorResponse is the uniform failure envelope for all API endpoints.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"` // "healthy" or "degraded"
	Uptime  string `json:"uptime"`
	Sites   int    `json:"sites"`
	Version string `json:"version"`
}

// CaptureResponse acknowledges an ingested capture.
type CaptureResponse struct {
	Success bool   `json:"success"`
	BlobKey string `json:"blob_key"`
	CrawlID string `json:"crawl_id"`
}

// SiteSummary is one entry in the GET /api/v1/sites listing.
type SiteSummary struct {
	SiteName       string `json:"site_name"`
	StartURL       string `json:"start_url,omitempty"`
	StoredArticles int64  `json:"stored_articles"`
}

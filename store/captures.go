package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/use-agent/sift/models"
)

// CaptureStore persists raw page captures: row metadata in the database,
// page bodies in blob storage keyed by a digest of (response URL, crawl ID).
type CaptureStore struct {
	db     *pgxpool.Pool
	blobs  *BlobStore
	logger *slog.Logger
}

// NewCaptureStore wires the capture metadata table to its blob backend.
func NewCaptureStore(db *pgxpool.Pool, blobs *BlobStore, logger *slog.Logger) *CaptureStore {
	return &CaptureStore{db: db, blobs: blobs, logger: logger}
}

// blobKey derives the storage key for a capture body. One fetch per
// (response URL, crawl) maps to one blob; refetching in a later crawl gets
// its own.
func blobKey(responseURL, crawlID string) string {
	sum := sha256.Sum256([]byte(responseURL + "|" + crawlID))
	return hex.EncodeToString(sum[:])
}

// Add stores a capture: the raw body goes to blob storage first, then the
// metadata row. The capture's BlobKey is filled in on success.
func (s *CaptureStore) Add(ctx context.Context, c *models.Capture) error {
	key := blobKey(c.ResponseURL, c.CrawlID)
	if err := s.blobs.Put(key, c.RawBody); err != nil {
		return fmt.Errorf("store capture body: %w", err)
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO captures (
			site_name, crawl_id, crawl_datetime,
			request_url, response_url, status_code, blob_key
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.SiteName, c.CrawlID, c.CrawlDatetime,
		c.RequestURL, c.ResponseURL, c.StatusCode, key,
	)
	if err != nil {
		return fmt.Errorf("store capture row: %w", err)
	}

	c.BlobKey = key
	s.logger.Debug("capture stored",
		"site", c.SiteName, "url", c.ResponseURL, "blob_key", key,
	)
	return nil
}

// BySite returns all capture rows for one site in insertion order. Bodies
// are not loaded; callers fetch them one at a time with Body.
func (s *CaptureStore) BySite(ctx context.Context, siteName string) ([]*models.Capture, error) {
	rows, err := s.db.Query(ctx, `
		SELECT site_name, crawl_id, crawl_datetime,
		       request_url, response_url, status_code, blob_key
		FROM captures
		WHERE site_name = $1
		ORDER BY id`,
		siteName,
	)
	if err != nil {
		return nil, fmt.Errorf("list captures for %s: %w", siteName, err)
	}
	defer rows.Close()

	captures, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Capture, error) {
		var c models.Capture
		err := row.Scan(&c.SiteName, &c.CrawlID, &c.CrawlDatetime,
			&c.RequestURL, &c.ResponseURL, &c.StatusCode, &c.BlobKey)
		return &c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan captures for %s: %w", siteName, err)
	}
	return captures, nil
}

// Body loads the raw page body for a capture from blob storage.
func (s *CaptureStore) Body(ctx context.Context, c *models.Capture) ([]byte, error) {
	body, err := s.blobs.Get(c.BlobKey)
	if err != nil {
		return nil, fmt.Errorf("load capture body %s: %w", c.BlobKey, err)
	}
	return body, nil
}

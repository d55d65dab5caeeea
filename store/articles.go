package store

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/use-agent/sift/models"
)

// Postgres error classes and codes the insert classifier keys on.
const (
	pgUniqueViolation      = "23505"
	pgDiskFull             = "53100"
	pgConfiguredLimit      = "53400"
	pgConnectionClassError = "08"
)

// ArticleStore persists extracted articles.
type ArticleStore struct {
	db *pgxpool.Pool
}

// NewArticleStore wraps the shared pool.
func NewArticleStore(db *pgxpool.Pool) *ArticleStore {
	return &ArticleStore{db: db}
}

// Insert writes one article. Failures come back classified so the
// reprocessing loop can tell a duplicate (skip and continue) from a lost
// connection or an exhausted quota (stop the run):
//
//   - unique-constraint violation: DUPLICATE_ARTICLE, recoverable
//   - connection failure: STORE_CONNECTION_LOST, non-recoverable
//   - storage quota exhausted: STORE_QUOTA_REACHED, non-recoverable
//
// Anything else is returned as-is: an unrecognized failure must surface
// loudly rather than be absorbed into a category it does not belong to.
func (s *ArticleStore) Insert(ctx context.Context, a *models.Article) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO articles (
			article_url, title, byline, publication_date, metadata,
			structured_content, plain_content, crawl_id, crawl_datetime, site_name
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ArticleURL, a.Title, a.Byline, a.PublicationDate, a.Metadata,
		a.StructuredContent, a.PlainContent, a.CrawlID, a.CrawlDatetime, a.SiteName,
	)
	if err != nil {
		return classifyInsertErr(err, a.ArticleURL)
	}
	return nil
}

// CountBySite reports how many articles a site has stored.
func (s *ArticleStore) CountBySite(ctx context.Context, siteName string) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM articles WHERE site_name = $1`, siteName,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count articles for %s: %w", siteName, err)
	}
	return n, nil
}

// classifyInsertErr maps a database error onto the store error taxonomy.
// Kept pure (no I/O, no logging) so the classification rules are directly
// testable.
func classifyInsertErr(err error, articleURL string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation:
			return models.NewSiftError(models.ErrCodeDuplicate,
				"refusing to add duplicate database entry for: "+articleURL, err)
		case pgErr.Code == pgDiskFull, pgErr.Code == pgConfiguredLimit:
			return models.NewSiftError(models.ErrCodeQuotaReached,
				"article store has reached its size quota", err)
		case strings.HasPrefix(pgErr.Code, pgConnectionClassError):
			return models.NewSiftError(models.ErrCodeConnectionLost,
				"lost connection to article store", err)
		}
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return models.NewSiftError(models.ErrCodeConnectionLost,
			"lost connection to article store", err)
	}
	return err
}

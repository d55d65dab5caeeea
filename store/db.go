package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool opens a pgx connection pool against the configured database URL
// and verifies connectivity before returning it.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// schema is applied at startup. Idempotent, so restarting the service is
// always safe. The unique constraint on article_url is the single source of
// truth for article deduplication.
const schema = `
CREATE TABLE IF NOT EXISTS articles (
	id                 BIGSERIAL PRIMARY KEY,
	article_url        TEXT        NOT NULL,
	title              TEXT,
	byline             TEXT,
	publication_date   TEXT,
	metadata           JSONB,
	structured_content TEXT,
	plain_content      JSONB,
	crawl_id           UUID        NOT NULL,
	crawl_datetime     TIMESTAMPTZ NOT NULL,
	site_name          TEXT        NOT NULL,
	CONSTRAINT articles_article_url_key UNIQUE (article_url)
);

CREATE INDEX IF NOT EXISTS articles_site_name_idx ON articles (site_name);

CREATE TABLE IF NOT EXISTS captures (
	id             BIGSERIAL PRIMARY KEY,
	site_name      TEXT        NOT NULL,
	crawl_id       UUID        NOT NULL,
	crawl_datetime TIMESTAMPTZ NOT NULL,
	request_url    TEXT        NOT NULL,
	response_url   TEXT        NOT NULL,
	status_code    INTEGER     NOT NULL,
	blob_key       TEXT        NOT NULL
);

CREATE INDEX IF NOT EXISTS captures_site_name_idx ON captures (site_name);
`

// EnsureSchema creates the articles and captures tables if they are missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

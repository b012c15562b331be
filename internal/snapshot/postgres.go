package snapshot

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the DDL template for the table PostgresSource reads from: one
// row per document, tagged with its collection. The placeholders are the
// table, index and table names.
const Schema = `
CREATE TABLE IF NOT EXISTS %s (
    id         BIGSERIAL PRIMARY KEY,
    collection TEXT  NOT NULL,
    body       JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS %s ON %s (collection);`

// PostgresSource reads collections stored as JSON documents in PostgreSQL.
type PostgresSource struct {
	pool  *pgxpool.Pool
	table string
}

// NewPool connects to PostgreSQL and verifies the connection.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL not set")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}

// NewPostgresSource creates a PostgresSource over pool reading table.
func NewPostgresSource(pool *pgxpool.Pool, table string) *PostgresSource {
	if table == "" {
		table = "documents"
	}
	return &PostgresSource{pool: pool, table: table}
}

// Name returns the source name.
func (s *PostgresSource) Name() string { return "postgres:" + s.table }

// Fetch returns every document of a collection as one JSON array.
func (s *PostgresSource) Fetch(ctx context.Context, c Collection) ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, c)
	}

	q := fmt.Sprintf(
		"SELECT COALESCE(json_agg(body ORDER BY id), '[]'::json)::text FROM %s WHERE collection = $1",
		pgx.Identifier{s.table}.Sanitize(),
	)

	var payload string
	if err := s.pool.QueryRow(ctx, q, string(c)).Scan(&payload); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", c, err)
	}
	return []byte(payload), nil
}

// CreateSchema creates the documents table if it does not exist.
func (s *PostgresSource) CreateSchema(ctx context.Context) error {
	table := pgx.Identifier{s.table}.Sanitize()
	index := pgx.Identifier{s.table + "_collection_idx"}.Sanitize()
	if _, err := s.pool.Exec(ctx, fmt.Sprintf(Schema, table, index, table)); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

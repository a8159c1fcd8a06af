package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	"github.com/XSAM/otelsql"
	_ "github.com/lib/pq"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func OpenDB(driverName, dsn string) (*sql.DB, error) {
	return otelsql.Open(driverName, dsn,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
	)
}

// OpenPostgres opens an instrumented pool whose every connection uses schema
// as its search_path, and checks that the database answers.
func OpenPostgres(ctx context.Context, postgresURL, schema string) (*sql.DB, error) {
	dsn, err := WithSearchPath(postgresURL, schema)
	if err != nil {
		return nil, err
	}

	db, err := OpenDB("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return db, nil
}

// WithSearchPath sets search_path as a connection parameter of a postgres://
// URL, so it applies to every pooled connection and not just the first.
func WithSearchPath(postgresURL, schema string) (string, error) {
	if schema == "" {
		return postgresURL, nil
	}

	u, err := url.Parse(postgresURL)
	if err != nil {
		return "", fmt.Errorf("parse postgres url: %w", err)
	}

	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

package validation

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"artfair/curation-service/internal/model"
)

var schemaStatements = []string{
	// Owned by the listing feature; created here only so the service can run
	// against an empty database.
	`CREATE TABLE IF NOT EXISTS open_calls (
		id              TEXT PRIMARY KEY,
		gallery_name    TEXT NOT NULL DEFAULT '',
		theme           TEXT NOT NULL DEFAULT '',
		external_url    TEXT,
		gallery_website TEXT,
		deadline        TEXT,
		is_external     BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS open_call_validations (
		open_call_id TEXT PRIMARY KEY,
		status       TEXT NOT NULL,
		reason       TEXT NOT NULL,
		checked_url  TEXT,
		http_status  INTEGER,
		confidence   INTEGER NOT NULL DEFAULT 0,
		checked_at   TIMESTAMPTZ NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS open_call_validations_status_idx
		ON open_call_validations (status)`,
}

// PostgresStore is the pgx-backed Store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a Store backed by pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure validation schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) ListExternal(ctx context.Context) ([]model.OpenCallListing, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, gallery_name, theme, COALESCE(external_url, ''),
		        COALESCE(gallery_website, ''), COALESCE(deadline, ''), is_external
		 FROM open_calls
		 WHERE is_external = true
		 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listExternal query: %w", err)
	}
	defer rows.Close()

	out := make([]model.OpenCallListing, 0)
	for rows.Next() {
		var l model.OpenCallListing
		if err := rows.Scan(&l.ID, &l.GalleryName, &l.Theme, &l.ExternalURL,
			&l.GalleryWebsite, &l.Deadline, &l.IsExternal); err != nil {
			return nil, fmt.Errorf("listExternal scan: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SaveValidation(ctx context.Context, v ListingValidation) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO open_call_validations
		   (open_call_id, status, reason, checked_url, http_status, confidence, checked_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (open_call_id) DO UPDATE SET
		   status      = EXCLUDED.status,
		   reason      = EXCLUDED.reason,
		   checked_url = EXCLUDED.checked_url,
		   http_status = EXCLUDED.http_status,
		   confidence  = EXCLUDED.confidence,
		   checked_at  = EXCLUDED.checked_at,
		   updated_at  = NOW()`,
		v.OpenCallID, string(v.Status), v.Reason, nullIfEmpty(v.CheckedURL),
		v.HTTPStatus, v.Confidence, v.CheckedAt,
	)
	if err != nil {
		return fmt.Errorf("save validation %s: %w", v.OpenCallID, err)
	}
	return nil
}

func (s *PostgresStore) GetValidationMap(ctx context.Context, ids []string) (map[string]ListingValidation, error) {
	out := make(map[string]ListingValidation, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT open_call_id, status, reason, COALESCE(checked_url, ''), http_status,
		        confidence, checked_at, created_at, updated_at
		 FROM open_call_validations
		 WHERE open_call_id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("validation map query: %w", err)
	}

	vals, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ListingValidation, error) {
		var v ListingValidation
		var status string
		if err := row.Scan(&v.OpenCallID, &status, &v.Reason, &v.CheckedURL, &v.HTTPStatus,
			&v.Confidence, &v.CheckedAt, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return v, err
		}
		st, err := ParseStatus(status)
		if err != nil {
			return v, fmt.Errorf("open_call_id %s: %w", v.OpenCallID, err)
		}
		v.Status = st
		return v, nil
	})
	if err != nil {
		return nil, fmt.Errorf("validation map scan: %w", err)
	}
	for _, v := range vals {
		out[v.OpenCallID] = v
	}
	return out, nil
}

// PruneExternal deletes listings only; their validation rows stay. Malformed
// deadlines never match.
func (s *PostgresStore) PruneExternal(ctx context.Context, today string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`WITH pruned AS (
		   DELETE FROM open_calls oc
		   WHERE oc.is_external = true
		     AND (
		       EXISTS (SELECT 1 FROM open_call_validations v
		               WHERE v.open_call_id = oc.id AND v.status = 'invalid')
		       OR (oc.deadline ~ '^[0-9]{4}-(0[1-9]|1[0-2])-(0[1-9]|[12][0-9]|3[01])$' AND oc.deadline COLLATE "C" < $1)
		     )
		   RETURNING oc.id
		 )
		 SELECT COUNT(*) FROM pruned`,
		today,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("prune external listings: %w", err)
	}
	return n, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

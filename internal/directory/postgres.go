package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"artfair/curation-service/internal/model"
)

// schemaStatements create the directory table. match_key is indexed but not
// unique: independent merge runs may key the same gallery differently.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS external_gallery_directory (
		gallery_id     TEXT PRIMARY KEY,
		match_key      TEXT,
		name           TEXT NOT NULL,
		country        TEXT NOT NULL,
		city           TEXT NOT NULL,
		website        TEXT,
		bio            TEXT,
		source_portal  TEXT,
		source_count   INTEGER NOT NULL DEFAULT 0,
		quality_score  INTEGER NOT NULL DEFAULT 0,
		source_url     TEXT,
		external_email TEXT,
		instagram      TEXT,
		founded_year   INTEGER,
		space_size     TEXT,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS external_gallery_directory_match_key_idx
		ON external_gallery_directory (match_key)`,
	`CREATE INDEX IF NOT EXISTS external_gallery_directory_quality_idx
		ON external_gallery_directory (quality_score DESC, updated_at ASC)`,
}

const galleryColumns = `gallery_id, match_key, name, country, city, website, bio,
	source_portal, quality_score, source_url, external_email, instagram,
	founded_year, space_size, created_at, updated_at`

// Core fields always take the incoming value. Enrichment fields keep the
// stored value when the incoming one is NULL; the quality score gains the
// email weight back when a stored email survives that way.
const upsertSQL = `
	INSERT INTO external_gallery_directory (
		gallery_id, match_key, name, country, city, website, bio,
		source_portal, source_count, quality_score, source_url,
		external_email, instagram, founded_year, space_size)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	ON CONFLICT (gallery_id) DO UPDATE SET
		match_key      = EXCLUDED.match_key,
		name           = EXCLUDED.name,
		country        = EXCLUDED.country,
		city           = EXCLUDED.city,
		website        = EXCLUDED.website,
		bio            = EXCLUDED.bio,
		source_portal  = EXCLUDED.source_portal,
		source_count   = EXCLUDED.source_count,
		quality_score  = EXCLUDED.quality_score +
			CASE WHEN EXCLUDED.external_email IS NULL
			      AND external_gallery_directory.external_email IS NOT NULL
			     THEN 10 ELSE 0 END,
		source_url     = EXCLUDED.source_url,
		external_email = COALESCE(EXCLUDED.external_email, external_gallery_directory.external_email),
		instagram      = COALESCE(EXCLUDED.instagram, external_gallery_directory.instagram),
		founded_year   = COALESCE(EXCLUDED.founded_year, external_gallery_directory.founded_year),
		space_size     = COALESCE(EXCLUDED.space_size, external_gallery_directory.space_size),
		updated_at     = NOW()`

// PostgresStore is the pgx-backed Store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a Store backed by pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the directory table and indexes if missing. Safe to
// call on every start.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure directory schema: %w", err)
		}
	}
	return nil
}

// Upsert writes galleries in batches of upsertChunkSize. Each batch is
// applied atomically; a failure leaves earlier batches in place and the next
// run heals the rest.
func (s *PostgresStore) Upsert(ctx context.Context, galleries []model.CanonicalGallery) (int, error) {
	total := 0
	for start := 0; start < len(galleries); start += upsertChunkSize {
		end := min(start+upsertChunkSize, len(galleries))

		b := &pgx.Batch{}
		for _, g := range galleries[start:end] {
			if g.GalleryID == "" {
				continue
			}
			b.Queue(upsertSQL,
				g.GalleryID, nullIfEmpty(g.MatchKey), g.Name, g.Country, g.City,
				nullIfEmpty(g.Website), nullIfEmpty(g.Bio),
				nullIfEmpty(strings.Join(g.SourcePortals, ",")), len(g.SourcePortals),
				g.QualityScore, nullIfEmpty(g.SourceURL), nullIfEmpty(g.ExternalEmail),
				nullIfEmpty(g.Instagram), g.FoundedYear, nullIfEmpty(g.SpaceSize),
			)
		}

		br := s.pool.SendBatch(ctx, b)
		for i := 0; i < b.Len(); i++ {
			tag, err := br.Exec()
			if err != nil {
				_ = br.Close()
				return total, fmt.Errorf("upsert chunk at %d: %w", start, err)
			}
			total += int(tag.RowsAffected())
		}
		if err := br.Close(); err != nil {
			return total, fmt.Errorf("upsert chunk at %d: %w", start, err)
		}
	}
	return total, nil
}

// ListAll returns every gallery, best quality first.
func (s *PostgresStore) ListAll(ctx context.Context) ([]model.CanonicalGallery, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+galleryColumns+`
		 FROM external_gallery_directory
		 ORDER BY quality_score DESC, country, city, name, gallery_id`)
	if err != nil {
		return nil, fmt.Errorf("listAll query: %w", err)
	}
	return collectGalleries(rows)
}

// GetByID returns ErrNotFound when no row has galleryID.
func (s *PostgresStore) GetByID(ctx context.Context, galleryID string) (*model.CanonicalGallery, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+galleryColumns+` FROM external_gallery_directory WHERE gallery_id = $1`,
		galleryID,
	)
	g, err := scanGallery(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getById: %w", err)
	}
	return g, nil
}

func (s *PostgresStore) ListEnrichmentCandidates(ctx context.Context, limit int) ([]model.CanonicalGallery, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+galleryColumns+`
		 FROM external_gallery_directory
		 WHERE website IS NOT NULL AND website <> ''
		   AND (instagram IS NULL OR founded_year IS NULL)
		 ORDER BY quality_score DESC, updated_at ASC, gallery_id
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("enrichment candidates query: %w", err)
	}
	return collectGalleries(rows)
}

// ApplyEnrichment locks the row, fills its empty fields from e and rewrites
// the quality score. Nothing is written when no field changes, so
// updated_at only moves on real progress.
func (s *PostgresStore) ApplyEnrichment(ctx context.Context, galleryID string, e Enrichment) (bool, error) {
	if e.IsEmpty() {
		return false, nil
	}

	changed := false
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		g, err := scanGallery(tx.QueryRow(ctx,
			`SELECT `+galleryColumns+` FROM external_gallery_directory
			 WHERE gallery_id = $1 FOR UPDATE`,
			galleryID,
		))
		if err != nil {
			return err
		}
		if !fillMissing(g, e) {
			return nil
		}
		changed = true
		_, err = tx.Exec(ctx,
			`UPDATE external_gallery_directory
			 SET instagram      = COALESCE(instagram, $2),
			     founded_year   = COALESCE(founded_year, $3),
			     external_email = COALESCE(external_email, $4),
			     space_size     = COALESCE(space_size, $5),
			     quality_score  = $6,
			     updated_at     = NOW()
			 WHERE gallery_id = $1`,
			galleryID, nullIfEmpty(g.Instagram), g.FoundedYear,
			nullIfEmpty(g.ExternalEmail), nullIfEmpty(g.SpaceSize), qualityOf(g),
		)
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("applyEnrichment %s: %w", galleryID, err)
	}
	return changed, nil
}

func collectGalleries(rows pgx.Rows) ([]model.CanonicalGallery, error) {
	defer rows.Close()

	out := make([]model.CanonicalGallery, 0)
	for rows.Next() {
		g, err := scanGallery(rows)
		if err != nil {
			return nil, fmt.Errorf("scan gallery: %w", err)
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

func scanGallery(row pgx.Row) (*model.CanonicalGallery, error) {
	var g model.CanonicalGallery
	var matchKey, website, bio, portals, sourceURL, email, instagram, space *string
	if err := row.Scan(
		&g.GalleryID, &matchKey, &g.Name, &g.Country, &g.City, &website, &bio,
		&portals, &g.QualityScore, &sourceURL, &email, &instagram,
		&g.FoundedYear, &space, &g.CreatedAt, &g.UpdatedAt,
	); err != nil {
		return nil, err
	}
	g.MatchKey = deref(matchKey)
	g.Website = deref(website)
	g.Bio = deref(bio)
	g.SourceURL = deref(sourceURL)
	g.ExternalEmail = deref(email)
	g.Instagram = deref(instagram)
	g.SpaceSize = deref(space)
	g.SourcePortals = splitPortals(deref(portals))
	return &g, nil
}

func splitPortals(s string) []string {
	out := make([]string, 0)
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Package portal reads raw gallery records from the external portals that
// feed the directory.
package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"artfair/curation-service/internal/model"
)

// Source is implemented by each portal. It returns raw records in the
// portal's own order.
type Source interface {
	Name() string
	FetchAll(ctx context.Context) ([]model.RawDirectoryRecord, error)
}

// FileSource reads a JSON array of raw records, e.g. a manual seed list or
// a portal export.
type FileSource struct {
	Path string
	// Portal names the source; it defaults to the file name without its
	// extension.
	Portal string
}

func (s FileSource) Name() string {
	if s.Portal != "" {
		return s.Portal
	}
	base := filepath.Base(s.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (s FileSource) FetchAll(ctx context.Context) ([]model.RawDirectoryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	var records []model.RawDirectoryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.Path, err)
	}
	return records, nil
}

// StaticSource serves records held in memory, such as a request body. An
// empty Portal leaves untagged records untagged.
type StaticSource struct {
	Portal  string
	Records []model.RawDirectoryRecord
}

func (s StaticSource) Name() string { return s.Portal }

func (s StaticSource) FetchAll(context.Context) ([]model.RawDirectoryRecord, error) {
	return append([]model.RawDirectoryRecord(nil), s.Records...), nil
}

// Collect concatenates the records of every source in order. Records that
// do not name their portal are tagged with the source name. A failing
// source is logged and skipped; failed holds one error per failing source,
// each naming it.
func Collect(ctx context.Context, sources ...Source) (records []model.RawDirectoryRecord, failed []error) {
	for _, src := range sources {
		got, err := src.FetchAll(ctx)
		if err != nil {
			slog.Warn("portal source failed, skipping", "component", "portal", "source", src.Name(), "err", err)
			failed = append(failed, fmt.Errorf("source %s: %w", src.Name(), err))
			continue
		}
		for _, rec := range got {
			if strings.TrimSpace(rec.SourcePortal) == "" {
				rec.SourcePortal = src.Name()
			}
			records = append(records, rec)
		}
	}
	return records, failed
}

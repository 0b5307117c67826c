// Package report renders merge results as an XLSX workbook for operators
// reviewing how portal records were folded together.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"artfair/curation-service/internal/directory"
	"artfair/curation-service/internal/model"
)

const (
	SheetDirectory = "Directory"
	SheetMerges    = "Merges"
)

var directoryHeaders = []string{
	"Gallery ID", "Name", "Country", "City", "Website", "Quality", "Portals", "Inputs", "Match Key",
}

var mergeHeaders = []string{
	"Gallery ID", "Input #", "Raw Name", "Raw Website", "Portal", "Match Key",
}

// WriteMergeReport writes a workbook with one Directory row per canonical
// gallery and one Merges row per raw record folded into it. raw must be the
// slice the traces were computed from.
func WriteMergeReport(w io.Writer, galleries []model.CanonicalGallery, traces []directory.MergeTrace, raw []model.RawDirectoryRecord) error {
	if len(galleries) != len(traces) {
		return fmt.Errorf("merge report: %d galleries but %d traces", len(galleries), len(traces))
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetDirectory); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetMerges); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeRow(f, SheetDirectory, 1, toAny(directoryHeaders)); err != nil {
		return err
	}
	if err := writeRow(f, SheetMerges, 1, toAny(mergeHeaders)); err != nil {
		return err
	}
	for sheet, n := range map[string]int{SheetDirectory: len(directoryHeaders), SheetMerges: len(mergeHeaders)} {
		last, _ := excelize.CoordinatesToCellName(n, 1)
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
	}

	mergeRow := 2
	for i, g := range galleries {
		tr := traces[i]
		row := []any{
			g.GalleryID, g.Name, g.Country, g.City, g.Website, g.QualityScore,
			strings.Join(g.SourcePortals, ", "), len(tr.Inputs), g.MatchKey,
		}
		if err := writeRow(f, SheetDirectory, i+2, row); err != nil {
			return err
		}

		for _, idx := range tr.Inputs {
			if idx < 0 || idx >= len(raw) {
				return fmt.Errorf("merge report: trace input %d out of range", idx)
			}
			rec := raw[idx]
			if err := writeRow(f, SheetMerges, mergeRow, []any{
				g.GalleryID, idx, rec.Name, rec.Website, rec.SourcePortal, tr.MatchKey,
			}); err != nil {
				return err
			}
			mergeRow++
		}
	}

	for sheet, widths := range map[string][]float64{
		SheetDirectory: {28, 28, 9, 14, 30, 9, 24, 8, 48},
		SheetMerges:    {28, 9, 28, 30, 14, 48},
	} {
		for i, width := range widths {
			col, _ := excelize.ColumnNumberToName(i + 1)
			if err := f.SetColWidth(sheet, col, col, width); err != nil {
				return fmt.Errorf("set column width: %w", err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write merge report: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

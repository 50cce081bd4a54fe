// Package reports reads and writes the spreadsheets used by operators.
package reports

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mroshb/hitched/internal/models"
)

const (
	SheetMatches       = "Matches"
	SheetCompatibility = "Compatibility"
	SheetProfiles      = "Profiles"

	timeLayout = "2006-01-02 15:04"
)

var matchHeader = []any{
	"Match ID", "Participants", "Status", "Paused", "Pre-match Score", "Invited By",
	"Accepted By", "Date", "Recommendation", "Evaluations", "Created At", "Closed At",
}

var compatibilityHeader = []any{"Match ID", "Evaluated At", "Score", "Grade", "Compatible", "Notes"}

// ExportMatches writes an xlsx workbook with one row per match on the Matches
// sheet and one row per history snapshot on the Compatibility sheet.
func ExportMatches(matches []models.Match, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetMatches); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetCompatibility); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	if err := setRow(f, SheetMatches, 1, matchHeader); err != nil {
		return err
	}
	if err := setRow(f, SheetCompatibility, 1, compatibilityHeader); err != nil {
		return err
	}

	histRow := 2
	for i, m := range matches {
		row := []any{
			m.ID,
			strings.Join(m.Participants, ", "),
			m.Status,
			m.Paused,
			m.PreScore,
			m.InvitedBy,
			strings.Join(m.AcceptedBy, ", "),
			dateCell(m.DateDetails),
			m.Recommendation,
			len(m.History),
			formatTime(&m.CreatedAt),
			formatTime(m.ClosedAt),
		}
		if err := setRow(f, SheetMatches, i+2, row); err != nil {
			return err
		}

		for _, snap := range m.History {
			row := []any{m.ID, formatTime(&snap.EvaluatedAt), snap.Score, snap.Grade, snap.Compatible, snap.Notes}
			if err := setRow(f, SheetCompatibility, histRow, row); err != nil {
				return err
			}
			histRow++
		}
	}

	if err := f.SetPanes(SheetMatches, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ReadProfiles reads raw profile rows from the Profiles sheet, or the first
// sheet when there is none. The first row holds the field names; empty cells
// are omitted. Each row must have a user_id column.
func ReadProfiles(r io.Reader) ([]RawProfile, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := SheetProfiles
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("no sheets found")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var out []RawProfile
	for n, row := range rows[1:] {
		raw := map[string]any{}
		for i, cell := range row {
			if i >= len(header) || header[i] == "" || strings.TrimSpace(cell) == "" {
				continue
			}
			raw[header[i]] = strings.TrimSpace(cell)
		}
		if len(raw) == 0 {
			continue
		}
		userID, _ := raw["user_id"].(string)
		if userID == "" {
			return nil, fmt.Errorf("row %d: missing user_id", n+2)
		}
		delete(raw, "user_id")
		out = append(out, RawProfile{UserID: userID, Fields: raw})
	}
	return out, nil
}

// RawProfile is one unnormalized spreadsheet row.
type RawProfile struct {
	UserID string
	Fields map[string]any
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func dateCell(d *models.DateOption) string {
	if d == nil {
		return ""
	}
	return fmt.Sprintf("%s %s, %s (%s)", d.Date, d.Time, d.Location, d.Type)
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

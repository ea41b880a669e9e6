package services

import (
	"fmt"
	"io"
	"strings"

	"github.com/Dosada05/efootball-hub/models"
	"github.com/xuri/excelize/v2"
)

var standingsHeader = []interface{}{"#", "Team", "P", "W", "D", "L", "GF", "GA", "GD", "Pts", "Form", "Trend"}

// WriteStandingsXLSX writes one sheet per group with its current table.
// A state without groups gets a single empty "Standings" sheet.
func WriteStandingsXLSX(w io.Writer, state models.TournamentState) error {
	hydrated := Hydrate(state)

	f := excelize.NewFile()
	defer f.Close()

	first := true
	used := make(map[string]bool, len(hydrated.Groups))
	for _, g := range hydrated.Groups {
		sheet := sheetName(g, used)
		if first {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
			first = false
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
		}
		if err := writeStandingsSheet(f, sheet, g.Standings); err != nil {
			return err
		}
	}
	if first {
		if err := f.SetSheetName("Sheet1", "Standings"); err != nil {
			return fmt.Errorf("failed to rename sheet: %w", err)
		}
		if err := f.SetSheetRow("Standings", "A1", &standingsHeader); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write XLSX: %w", err)
	}
	return nil
}

func writeStandingsSheet(f *excelize.File, sheet string, table []models.Standing) error {
	if err := f.SetSheetRow(sheet, "A1", &standingsHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, s := range table {
		row := []interface{}{
			s.Rank, s.Team.Name, s.Played, s.Wins, s.Draws, s.Losses,
			s.GoalsFor, s.GoalsAgainst, s.GoalDifference, s.Points,
			strings.Join(s.Form, ""), string(s.Trend),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	return nil
}

// sheetName keeps names within the 31 character limit and free of the
// characters Excel rejects.
func sheetName(g models.Group, used map[string]bool) string {
	name := g.Name
	if name == "" {
		name = g.ID
	}
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, name)
	if len([]rune(name)) > 31 {
		name = string([]rune(name)[:31])
	}
	base := name
	for n := 2; used[name]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		r := []rune(base)
		if len(r)+len(suffix) > 31 {
			r = r[:31-len(suffix)]
		}
		name = string(r) + suffix
	}
	used[name] = true
	return name
}

package services

import (
	"bytes"
	"testing"

	"github.com/Dosada05/efootball-hub/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteStandingsXLSX(t *testing.T) {
	s := fourTeamState(t)
	s = mustApply(t, s, UpdateMatchScore{MatchID: "group-a-l1-md1-m1", ScoreA: 0, ScoreB: 2})

	var buf bytes.Buffer
	require.NoError(t, WriteStandingsXLSX(&buf, s))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Group A", "Group B"}, f.GetSheetList())

	rows, err := f.GetRows("Group A")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Team", rows[0][1])
	assert.Equal(t, []string{"1", "Delta", "1", "1", "0", "0", "2", "0", "2", "3", "W", "new"}, rows[1])
	assert.Equal(t, "Alpha", rows[2][1])
}

func TestWriteStandingsXLSXWithoutGroups(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStandingsXLSX(&buf, models.NewTournamentState(models.ModeLeague)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Standings"}, f.GetSheetList())
}

func TestSheetNameIsUniqueAndValid(t *testing.T) {
	used := map[string]bool{}
	long := models.Group{ID: "g1", Name: "Group: A/B [the very long league name]"}

	first := sheetName(long, used)
	second := sheetName(long, used)
	assert.LessOrEqual(t, len([]rune(first)), 31)
	assert.LessOrEqual(t, len([]rune(second)), 31)
	assert.NotEqual(t, first, second)
	assert.NotContains(t, first, ":")
	assert.NotContains(t, first, "/")
	assert.Equal(t, "g2", sheetName(models.Group{ID: "g2"}, used))
}

package brackets

import (
	"testing"

	"github.com/Dosada05/efootball-hub/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(id, group string, matchday int, a, b models.Team, scoreA, scoreB int) models.Match {
	return models.Match{
		ID:       id,
		Group:    group,
		Leg:      1,
		Matchday: matchday,
		TeamA:    a,
		TeamB:    b,
		ScoreA:   models.IntPtr(scoreA),
		ScoreB:   models.IntPtr(scoreB),
		Status:   models.MatchStatusFinished,
	}
}

func rowFor(t *testing.T, table []models.Standing, teamID string) models.Standing {
	t.Helper()
	for _, s := range table {
		if s.Team.ID == teamID {
			return s
		}
	}
	t.Fatalf("team %s is missing from the table", teamID)
	return models.Standing{}
}

func TestCalculateStandings(t *testing.T) {
	teams := fakeTeams(t, 3)
	a, b, c := teams[0], teams[1], teams[2]
	group := GroupRef{ID: "group-a", Name: "Group A"}

	live := result("live", "group-a", 2, b, a, 5, 0)
	live.Status = models.MatchStatusLive
	scheduled := models.Match{ID: "later", Group: "group-a", Matchday: 3, TeamA: a, TeamB: b, Status: models.MatchStatusScheduled}

	matches := []models.Match{
		result("m1", "group-a", 1, a, b, 2, 0),
		result("m2", "group-a", 2, c, a, 1, 1),
		result("m3", "group-a", 2, b, c, 3, 0),
		result("foreign", "group-b", 1, a, c, 9, 0),
		live,
		scheduled,
	}

	table := CalculateStandings(teams, matches, group)
	require.Len(t, table, 3)

	assert.Equal(t, []string{a.ID, b.ID, c.ID}, []string{table[0].Team.ID, table[1].Team.ID, table[2].Team.ID})
	for i, row := range table {
		assert.Equal(t, i+1, row.Rank)
	}

	rowA := rowFor(t, table, a.ID)
	assert.Equal(t, models.Standing{
		Team: a, Played: 2, Wins: 1, Draws: 1, Losses: 0,
		GoalsFor: 3, GoalsAgainst: 1, GoalDifference: 2, Points: 4,
		Form: []string{models.FormWin, models.FormDraw}, Rank: 1, Trend: models.TrendSame,
	}, rowA)

	rowB := rowFor(t, table, b.ID)
	assert.Equal(t, 3, rowB.Points)
	assert.Equal(t, 1, rowB.GoalDifference)
	assert.Equal(t, []string{models.FormLoss, models.FormWin}, rowB.Form)
	// после первого тура B был третьим
	assert.Equal(t, models.TrendUp, rowB.Trend)

	rowC := rowFor(t, table, c.ID)
	assert.Equal(t, 1, rowC.Points)
	assert.Equal(t, -3, rowC.GoalDifference)
	assert.Equal(t, models.TrendNew, rowC.Trend)
}

func TestCalculateStandingsWithoutResults(t *testing.T) {
	teams := fakeTeams(t, 4)
	table := CalculateStandings(teams, nil, GroupRef{ID: "league", Name: "League"})
	require.Len(t, table, 4)
	for i, row := range table {
		assert.Equal(t, teams[i].ID, row.Team.ID, "roster order is kept")
		assert.Equal(t, i+1, row.Rank)
		assert.Equal(t, models.TrendSame, row.Trend)
		assert.Empty(t, row.Form)
	}
	assert.False(t, GroupHasResults(table))
}

func TestCalculateStandingsTiesKeepRosterOrder(t *testing.T) {
	teams := fakeTeams(t, 4)
	matches := []models.Match{
		result("m1", "g", 1, teams[3], teams[2], 1, 1),
		result("m2", "g", 1, teams[1], teams[0], 2, 2),
	}
	table := CalculateStandings(teams, matches, GroupRef{ID: "g", Name: "Group G"})
	require.Len(t, table, 4)
	for i, row := range table {
		assert.Equal(t, teams[i].ID, row.Team.ID)
		assert.Equal(t, 1, row.Points)
	}
}

func TestCalculateStandingsFormKeepsLastFive(t *testing.T) {
	teams := fakeTeams(t, 2)
	var matches []models.Match
	// шесть туров: поражение в первом, затем пять побед
	matches = append(matches, result("m0", "g", 1, teams[0], teams[1], 0, 1))
	for md := 2; md <= 6; md++ {
		matches = append(matches, result("m"+string(rune('0'+md)), "g", md, teams[0], teams[1], 2, 1))
	}

	table := CalculateStandings(teams, matches, GroupRef{ID: "g"})
	row := rowFor(t, table, teams[0].ID)
	assert.Equal(t, 6, row.Played)
	assert.Equal(t, []string{"W", "W", "W", "W", "W"}, row.Form)
	assert.Equal(t, []string{"L", "L", "L", "L", "L"}, rowFor(t, table, teams[1].ID).Form)
}

func TestCalculateStandingsSkipsUnknownTeams(t *testing.T) {
	teams := fakeTeams(t, 3)
	stranger := models.Team{ID: "stranger", Name: "Stranger FC"}
	matches := []models.Match{
		result("m1", "g", 1, teams[0], stranger, 5, 0),
		result("m2", "g", 1, teams[1], teams[2], 1, 0),
	}
	table := CalculateStandings(teams, matches, GroupRef{ID: "g"})
	require.Len(t, table, 3)
	assert.Equal(t, 0, rowFor(t, table, teams[0].ID).Played)
	assert.Equal(t, teams[1].ID, table[0].Team.ID)
}

func TestGroupRefOwns(t *testing.T) {
	ref := GroupRef{ID: "group-a", Name: "Group A"}
	assert.True(t, ref.Owns("group-a"))
	assert.True(t, ref.Owns("Group A"))
	assert.True(t, ref.Owns("A"))
	assert.False(t, ref.Owns(""))
	assert.False(t, ref.Owns("B"))
	assert.False(t, GroupRef{ID: "league", Name: "League"}.Owns("League "))
}

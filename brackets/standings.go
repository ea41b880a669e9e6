package brackets

import (
	"sort"
	"strings"

	"github.com/Dosada05/efootball-hub/models"
)

const formLength = 5

// GroupRef identifies a group for match filtering.
type GroupRef struct {
	ID   string
	Name string
}

func RefOf(g models.Group) GroupRef {
	return GroupRef{ID: g.ID, Name: g.Name}
}

// Owns reports whether a match group tag belongs to this group. Tags are
// matched by id, by display name, or by the last word of the name, because
// older documents tagged matches with the group letter only ("A" for "Group A").
func (g GroupRef) Owns(tag string) bool {
	if tag == "" {
		return false
	}
	if tag == g.ID || tag == g.Name {
		return true
	}
	if suffix := nameSuffix(g.Name); suffix != "" && tag == suffix {
		return true
	}
	return false
}

func nameSuffix(name string) string {
	fields := strings.Fields(name)
	if len(fields) < 2 {
		return ""
	}
	return fields[len(fields)-1]
}

// CalculateStandings derives the ranked table of one group from the full match
// list. Only finished matches with both scores count. Matches that reference a
// team outside the roster are skipped.
func CalculateStandings(teams []models.Team, matches []models.Match, group GroupRef) []models.Standing {
	played := groupResults(matches, group)

	current := tabulate(teams, played)
	rankTable(current)

	latest := 0
	for _, m := range played {
		if m.Matchday > latest {
			latest = m.Matchday
		}
	}
	if latest == 0 {
		for i := range current {
			current[i].Trend = models.TrendSame
		}
		return current
	}

	earlier := make([]models.Match, 0, len(played))
	for _, m := range played {
		if m.Matchday < latest {
			earlier = append(earlier, m)
		}
	}
	previous := tabulate(teams, earlier)
	rankTable(previous)

	prevRank := make(map[string]models.Standing, len(previous))
	for _, s := range previous {
		prevRank[s.Team.ID] = s
	}
	for i := range current {
		before, ok := prevRank[current[i].Team.ID]
		switch {
		case !ok || before.Played == 0:
			current[i].Trend = models.TrendNew
		case before.Rank > current[i].Rank:
			current[i].Trend = models.TrendUp
		case before.Rank < current[i].Rank:
			current[i].Trend = models.TrendDown
		default:
			current[i].Trend = models.TrendSame
		}
	}
	return current
}

// groupResults picks the countable matches of the group in chronological
// order: matchday, then leg, then list position.
func groupResults(matches []models.Match, group GroupRef) []models.Match {
	out := make([]models.Match, 0, len(matches))
	for _, m := range matches {
		if m.Counts() && group.Owns(m.Group) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Matchday != out[j].Matchday {
			return out[i].Matchday < out[j].Matchday
		}
		return out[i].Leg < out[j].Leg
	})
	return out
}

func tabulate(teams []models.Team, matches []models.Match) []models.Standing {
	table := make([]models.Standing, 0, len(teams))
	index := make(map[string]int, len(teams))
	for _, t := range teams {
		if _, dup := index[t.ID]; dup {
			continue
		}
		index[t.ID] = len(table)
		table = append(table, models.Standing{Team: t.Clone(), Form: []string{}})
	}

	for _, m := range matches {
		ia, okA := index[m.TeamA.ID]
		ib, okB := index[m.TeamB.ID]
		if !okA || !okB || ia == ib {
			continue
		}
		a, b := *m.ScoreA, *m.ScoreB
		record(&table[ia], a, b)
		record(&table[ib], b, a)
	}
	return table
}

func record(s *models.Standing, scored, conceded int) {
	s.Played++
	s.GoalsFor += scored
	s.GoalsAgainst += conceded
	s.GoalDifference = s.GoalsFor - s.GoalsAgainst

	var result string
	switch {
	case scored > conceded:
		s.Wins++
		result = models.FormWin
	case scored < conceded:
		s.Losses++
		result = models.FormLoss
	default:
		s.Draws++
		result = models.FormDraw
	}
	s.Points = s.Wins*3 + s.Draws

	s.Form = append(s.Form, result)
	if len(s.Form) > formLength {
		s.Form = s.Form[len(s.Form)-formLength:]
	}
}

// SortStandings orders by points, then goal difference. Equal rows keep their
// roster order.
func SortStandings(table []models.Standing) {
	sort.SliceStable(table, func(i, j int) bool {
		if table[i].Points != table[j].Points {
			return table[i].Points > table[j].Points
		}
		return table[i].GoalDifference > table[j].GoalDifference
	})
}

func rankTable(table []models.Standing) {
	SortStandings(table)
	for i := range table {
		table[i].Rank = i + 1
	}
}

// GroupHasResults reports whether at least one finished match of the group
// counted towards its table.
func GroupHasResults(table []models.Standing) bool {
	for _, s := range table {
		if s.Played > 0 {
			return true
		}
	}
	return false
}

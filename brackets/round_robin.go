package brackets

import (
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/efootball-hub/models"
)

var (
	ErrNotEnoughTeams = errors.New("not enough teams to generate fixtures (minimum 2 required)")
	ErrDuplicateTeam  = errors.New("team appears more than once in the roster")
	ErrMissingTeamID  = errors.New("team without id cannot be scheduled")
)

const leagueFixturePrefix = "league"

type RoundRobinGenerator struct {
	// StartAt and DeadlineEvery, when both set, give each match a deadline of
	// StartAt + matchday*DeadlineEvery.
	StartAt       time.Time
	DeadlineEvery time.Duration
}

func NewRoundRobinGenerator() FixtureGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateFixtures builds a round-robin schedule with the circle method.
// An odd roster gets a BYE slot, so one team rests on every matchday.
// For a double round-robin leg 2 mirrors leg 1 with home and away swapped.
func (g *RoundRobinGenerator) GenerateFixtures(params GenerateFixturesParams) ([]models.Match, error) {
	teams := params.Teams
	if len(teams) < 2 {
		return nil, fmt.Errorf("RoundRobinGenerator: %w (found %d)", ErrNotEnoughTeams, len(teams))
	}

	seen := make(map[string]struct{}, len(teams))
	for _, t := range teams {
		if t.ID == "" {
			return nil, fmt.Errorf("RoundRobinGenerator: %w (name %q)", ErrMissingTeamID, t.Name)
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("RoundRobinGenerator: %w: %s", ErrDuplicateTeam, t.ID)
		}
		seen[t.ID] = struct{}{}
	}

	rrType := params.RoundRobinType
	if !rrType.IsValid() {
		rrType = models.RoundRobinSingle
	}

	prefix := params.GroupID
	if prefix == "" {
		prefix = leagueFixturePrefix
	}

	// nil marks the BYE slot
	slots := make([]*models.Team, 0, len(teams)+1)
	for i := range teams {
		t := teams[i].Clone()
		slots = append(slots, &t)
	}
	if len(slots)%2 != 0 {
		slots = append(slots, nil)
	}

	n := len(slots)
	rounds := n - 1
	matches := make([]models.Match, 0, rounds*n/2)

	for round := 0; round < rounds; round++ {
		matchday := round + 1
		number := 0
		for i := 0; i < n/2; i++ {
			home, away := slots[i], slots[n-1-i]
			if home == nil || away == nil {
				continue
			}
			if round%2 == 1 {
				home, away = away, home
			}
			number++
			matches = append(matches, g.newFixture(prefix, params.GroupID, 1, matchday, number, *home, *away))
		}
		rotate(slots)
	}

	if rrType == models.RoundRobinDouble {
		firstLeg := len(matches)
		for i := 0; i < firstLeg; i++ {
			m := matches[i]
			matchday := m.Matchday + rounds
			number := fixtureNumber(matches[:firstLeg], i)
			matches = append(matches, g.newFixture(prefix, params.GroupID, 2, matchday, number, m.TeamB, m.TeamA))
		}
	}

	return matches, nil
}

func (g *RoundRobinGenerator) newFixture(prefix, group string, leg, matchday, number int, home, away models.Team) models.Match {
	m := models.Match{
		ID:       fmt.Sprintf("%s-l%d-md%d-m%d", prefix, leg, matchday, number),
		TeamA:    home.Clone(),
		TeamB:    away.Clone(),
		Status:   models.MatchStatusScheduled,
		Group:    group,
		Leg:      leg,
		Matchday: matchday,
	}
	if !g.StartAt.IsZero() && g.DeadlineEvery > 0 {
		deadline := g.StartAt.Add(time.Duration(matchday) * g.DeadlineEvery)
		m.Deadline = &deadline
	}
	return m
}

// fixtureNumber is the 1-based position of matches[i] within its matchday.
func fixtureNumber(matches []models.Match, i int) int {
	number := 0
	for j := 0; j <= i; j++ {
		if matches[j].Matchday == matches[i].Matchday {
			number++
		}
	}
	return number
}

// rotate keeps slot 0 fixed and moves every other slot one place clockwise.
func rotate(slots []*models.Team) {
	n := len(slots)
	if n < 3 {
		return
	}
	last := slots[n-1]
	copy(slots[2:], slots[1:n-1])
	slots[1] = last
}

// ReplaceGroupFixtures drops every match that belongs to the group and appends
// the fresh schedule. Partial regeneration is not supported.
func ReplaceGroupFixtures(all []models.Match, group GroupRef, fresh []models.Match) []models.Match {
	out := make([]models.Match, 0, len(all)+len(fresh))
	for _, m := range all {
		if group.Owns(m.Group) {
			continue
		}
		out = append(out, m)
	}
	return append(out, fresh...)
}

// HasRecordedScores reports whether any match of the group already has a
// result. Callers confirm with the admin before regenerating in that case.
func HasRecordedScores(matches []models.Match, group GroupRef) bool {
	for _, m := range matches {
		if group.Owns(m.Group) && (m.ScoreA != nil || m.ScoreB != nil) {
			return true
		}
	}
	return false
}

// OverdueMatches returns unplayed matches whose deadline is before now.
func OverdueMatches(matches []models.Match, now time.Time) []models.Match {
	var overdue []models.Match
	for _, m := range matches {
		if m.Status == models.MatchStatusFinished || m.Deadline == nil {
			continue
		}
		if now.After(*m.Deadline) {
			overdue = append(overdue, m)
		}
	}
	return overdue
}

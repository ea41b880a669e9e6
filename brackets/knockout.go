package brackets

import (
	"fmt"

	"github.com/Dosada05/efootball-hub/models"
)

// GroupStandings is a group with its computed table.
type GroupStandings struct {
	Group     GroupRef
	Standings []models.Standing
}

type KnockoutBuildResult struct {
	Success bool
	Message string
	Stage   models.KnockoutStageRounds
	// DroppedTeam is set when an odd number of qualifiers left one team unpaired.
	DroppedTeam *models.Team
}

func refused(format string, args ...interface{}) KnockoutBuildResult {
	return KnockoutBuildResult{Success: false, Message: fmt.Sprintf(format, args...)}
}

// BuildKnockoutBracket seeds a fresh knockout stage from group tables.
// With exactly two groups the winners meet the other group's runner-up in the
// semi-finals, which both feed a pre-created Final. Otherwise winners and
// runners-up are listed group by group and paired consecutively.
func BuildKnockoutBracket(groups []GroupStandings) KnockoutBuildResult {
	if len(groups) == 0 {
		return refused("no groups to build a bracket from")
	}
	for _, g := range groups {
		if len(g.Standings) == 0 || !GroupHasResults(g.Standings) {
			return refused("group %s has no winner yet", groupLabel(g.Group))
		}
	}

	if len(groups) == 2 {
		return buildTwoGroupBracket(groups[0], groups[1])
	}

	qualified := make([]models.Team, 0, len(groups)*2)
	for _, g := range groups {
		qualified = append(qualified, g.Standings[0].Team)
		if len(g.Standings) > 1 {
			qualified = append(qualified, g.Standings[1].Team)
		}
	}
	if len(qualified) < 2 {
		return refused("at least 2 qualified teams are required, found %d", len(qualified))
	}

	result := KnockoutBuildResult{Success: true, Stage: models.NewKnockoutStage()}
	if len(qualified)%2 != 0 {
		dropped := qualified[len(qualified)-1].Clone()
		result.DroppedTeam = &dropped
		qualified = qualified[:len(qualified)-1]
		result.Message = fmt.Sprintf("odd number of qualifiers: %s was left without an opponent", dropped.Name)
	}

	round := roundForTeamCount(len(qualified))
	matches := make([]models.KnockoutMatch, 0, len(qualified)/2)
	for i := 0; i+1 < len(qualified); i += 2 {
		number := i/2 + 1
		matches = append(matches, newKnockoutMatch(round, number, &qualified[i], &qualified[i+1]))
	}
	result.Stage[round] = matches
	return result
}

func buildTwoGroupBracket(a, b GroupStandings) KnockoutBuildResult {
	for _, g := range []GroupStandings{a, b} {
		if len(g.Standings) < 2 {
			return refused("group %s has no runner-up", groupLabel(g.Group))
		}
	}

	final := newKnockoutMatch(models.RoundFinal, 1, nil, nil)
	semi1 := newKnockoutMatch(models.RoundSemiFinals, 1, &a.Standings[0].Team, &b.Standings[1].Team)
	semi2 := newKnockoutMatch(models.RoundSemiFinals, 2, &b.Standings[0].Team, &a.Standings[1].Team)
	semi1.NextMatchID = models.StringPtr(final.ID)
	semi2.NextMatchID = models.StringPtr(final.ID)

	stage := models.NewKnockoutStage()
	stage[models.RoundSemiFinals] = []models.KnockoutMatch{semi1, semi2}
	stage[models.RoundFinal] = []models.KnockoutMatch{final}
	return KnockoutBuildResult{Success: true, Stage: stage}
}

// roundForTeamCount names the opening round by how many teams were paired.
func roundForTeamCount(n int) models.KnockoutRound {
	switch {
	case n <= 4:
		return models.RoundSemiFinals
	case n <= 8:
		return models.RoundQuarterFinals
	default:
		return models.RoundOf16
	}
}

var roundIDPrefix = map[models.KnockoutRound]string{
	models.RoundPlayOffs:      "po",
	models.RoundOf16:          "r16",
	models.RoundQuarterFinals: "qf",
	models.RoundSemiFinals:    "sf",
	models.RoundFinal:         "final",
}

// KnockoutMatchID is the deterministic id used for generated bracket matches.
func KnockoutMatchID(round models.KnockoutRound, number int) string {
	return fmt.Sprintf("ko-%s-%d", roundIDPrefix[round], number)
}

func newKnockoutMatch(round models.KnockoutRound, number int, teamA, teamB *models.Team) models.KnockoutMatch {
	m := models.KnockoutMatch{
		ID:          KnockoutMatchID(round, number),
		Round:       round,
		MatchNumber: number,
	}
	if teamA != nil {
		t := teamA.Clone()
		m.TeamA = &t
	}
	if teamB != nil {
		t := teamB.Clone()
		m.TeamB = &t
	}
	return m
}

func groupLabel(g GroupRef) string {
	if g.Name != "" {
		return g.Name
	}
	return g.ID
}

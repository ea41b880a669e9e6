package brackets

import (
	"sort"

	"github.com/Dosada05/efootball-hub/models"
)

type Qualification string

const (
	QualificationPending    Qualification = "pending"
	QualificationQualified  Qualification = "qualified"
	QualificationEliminated Qualification = "eliminated"
)

func IsFinal(m models.KnockoutMatch) bool {
	return m.Round == models.RoundFinal
}

func firstLegPlayed(m models.KnockoutMatch) bool {
	return m.ScoreA1 != nil && m.ScoreB1 != nil
}

func secondLegPlayed(m models.KnockoutMatch) bool {
	return m.ScoreA2 != nil && m.ScoreB2 != nil
}

// LegsComplete reports whether every leg the match needs has both scores.
func LegsComplete(m models.KnockoutMatch) bool {
	if IsFinal(m) {
		return firstLegPlayed(m)
	}
	return firstLegPlayed(m) && secondLegPlayed(m)
}

// Aggregate sums both legs. Missing scores count as zero, so callers must check
// LegsComplete before reading a result from it. The Final has one leg only.
func Aggregate(m models.KnockoutMatch) (aggA, aggB int) {
	aggA = valueOrZero(m.ScoreA1)
	aggB = valueOrZero(m.ScoreB1)
	if IsFinal(m) {
		return aggA, aggB
	}
	return aggA + valueOrZero(m.ScoreA2), aggB + valueOrZero(m.ScoreB2)
}

func valueOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func IsFinished(m models.KnockoutMatch) bool {
	return LegsComplete(m) && m.WinnerID != nil
}

// IsOngoing is true between the two legs of a tie. Display only.
func IsOngoing(m models.KnockoutMatch) bool {
	if IsFinal(m) {
		return false
	}
	return firstLegPlayed(m) && !secondLegPlayed(m)
}

// ImpliedWinner returns the team id the aggregate decides. A level aggregate
// implies nothing: a penalty shoot-out winner has to be picked by hand.
func ImpliedWinner(m models.KnockoutMatch) (string, bool) {
	if !LegsComplete(m) || m.TeamA == nil || m.TeamB == nil {
		return "", false
	}
	aggA, aggB := Aggregate(m)
	switch {
	case aggA > aggB:
		return m.TeamA.ID, true
	case aggB > aggA:
		return m.TeamB.ID, true
	}
	return "", false
}

// IsLevel reports a completed tie with an equal aggregate.
func IsLevel(m models.KnockoutMatch) bool {
	if !LegsComplete(m) {
		return false
	}
	aggA, aggB := Aggregate(m)
	return aggA == aggB
}

// CanEditScores requires both team slots to be filled.
func CanEditScores(m models.KnockoutMatch) bool {
	return m.TeamA != nil && m.TeamB != nil
}

// ResolveWinner sets WinnerID from the aggregate when it decides the tie. On a
// level aggregate a manual winner is kept if it is one of the two teams.
// Incomplete legs never carry a winner.
func ResolveWinner(m models.KnockoutMatch) models.KnockoutMatch {
	if !LegsComplete(m) || !CanEditScores(m) {
		m.WinnerID = nil
		return m
	}
	if id, ok := ImpliedWinner(m); ok {
		m.WinnerID = models.StringPtr(id)
		return m
	}
	if m.WinnerID != nil && *m.WinnerID != m.TeamA.ID && *m.WinnerID != m.TeamB.ID {
		m.WinnerID = nil
	}
	return m
}

// QualificationOf tells whether the team went through in this match.
func QualificationOf(m models.KnockoutMatch, teamID string) Qualification {
	if m.WinnerID == nil || teamID == "" {
		return QualificationPending
	}
	if *m.WinnerID == teamID {
		return QualificationQualified
	}
	if (m.TeamA != nil && m.TeamA.ID == teamID) || (m.TeamB != nil && m.TeamB.ID == teamID) {
		return QualificationEliminated
	}
	return QualificationPending
}

// Winner returns the winning team of a finished match.
func Winner(m models.KnockoutMatch) (models.Team, bool) {
	if m.WinnerID == nil {
		return models.Team{}, false
	}
	if m.TeamA != nil && m.TeamA.ID == *m.WinnerID {
		return *m.TeamA, true
	}
	if m.TeamB != nil && m.TeamB.ID == *m.WinnerID {
		return *m.TeamB, true
	}
	return models.Team{}, false
}

// Loser returns the beaten team of a finished match.
func Loser(m models.KnockoutMatch) (models.Team, bool) {
	if m.WinnerID == nil || m.TeamA == nil || m.TeamB == nil {
		return models.Team{}, false
	}
	if m.TeamA.ID == *m.WinnerID {
		return *m.TeamB, true
	}
	if m.TeamB.ID == *m.WinnerID {
		return *m.TeamA, true
	}
	return models.Team{}, false
}

// PropagateWinners rebuilds every slot fed through NextMatchID from its
// feeder. Feeders of the same target are ordered by match number: the first
// owns TeamA, the second TeamB. A feeder without a winner empties its slot.
// When the team in a slot changes the target loses its scores and winner, and
// the reset travels down the chain (quarter-final to semi-final to Final)
// within one pass per round.
func PropagateWinners(stage models.KnockoutStageRounds) models.KnockoutStageRounds {
	for pass := 0; pass < len(models.KnockoutRounds); pass++ {
		if !propagateOnce(stage) {
			break
		}
	}
	return stage
}

func propagateOnce(stage models.KnockoutStageRounds) bool {
	feeders := make(map[string][]models.KnockoutMatch)
	var targets []string
	for _, m := range stage.All() {
		if m.NextMatchID == nil || *m.NextMatchID == "" {
			continue
		}
		if _, seen := feeders[*m.NextMatchID]; !seen {
			targets = append(targets, *m.NextMatchID)
		}
		feeders[*m.NextMatchID] = append(feeders[*m.NextMatchID], m)
	}

	anyChange := false
	for _, targetID := range targets {
		round, idx, ok := stage.Find(targetID)
		if !ok {
			continue
		}
		sources := feeders[targetID]
		sort.SliceStable(sources, func(i, j int) bool {
			if sources[i].Round != sources[j].Round {
				return roundOrder(sources[i].Round) < roundOrder(sources[j].Round)
			}
			return sources[i].MatchNumber < sources[j].MatchNumber
		})

		target := stage[round][idx]
		changed := false
		for slot, src := range sources {
			if slot > 1 {
				break
			}
			var want *models.Team
			if winner, decided := Winner(src); decided {
				w := winner.Clone()
				want = &w
			}
			current := &target.TeamA
			if slot == 1 {
				current = &target.TeamB
			}
			if sameSlot(*current, want) {
				continue
			}
			*current = want
			changed = true
		}
		if changed {
			stage[round][idx] = clearResult(target)
			anyChange = true
		}
	}
	return anyChange
}

func sameSlot(a, b *models.Team) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID == b.ID
}

// clearResult drops the scores and winner of a match whose pairing changed.
func clearResult(m models.KnockoutMatch) models.KnockoutMatch {
	m.ScoreA1, m.ScoreB1 = nil, nil
	m.ScoreA2, m.ScoreB2 = nil, nil
	m.WinnerID = nil
	return m
}

func roundOrder(r models.KnockoutRound) int {
	for i, known := range models.KnockoutRounds {
		if known == r {
			return i
		}
	}
	return len(models.KnockoutRounds)
}

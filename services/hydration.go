package services

import (
	"github.com/Dosada05/efootball-hub/brackets"
	"github.com/Dosada05/efootball-hub/models"
)

// Hydrate replaces every embedded team reference with the roster record of
// the same id and recomputes group standings. Ids missing from the roster
// become a TBD stub, except in history: archived snapshots outlive the roster
// and are only refreshed while their team still exists.
// Running it twice gives the same result as running it once.
func Hydrate(state models.TournamentState) models.TournamentState {
	state = state.Clone()
	state.Normalize()

	roster := make(map[string]models.Team, len(state.Teams))
	for _, t := range state.Teams {
		if _, dup := roster[t.ID]; !dup {
			roster[t.ID] = t
		}
	}

	resolve := func(ref models.Team) models.Team {
		if t, ok := roster[ref.ID]; ok {
			return t.Clone()
		}
		return models.TBDTeam(ref.ID)
	}

	for i := range state.Matches {
		state.Matches[i].TeamA = resolve(state.Matches[i].TeamA)
		state.Matches[i].TeamB = resolve(state.Matches[i].TeamB)
	}

	for round, matches := range state.KnockoutStage {
		for i := range matches {
			if matches[i].TeamA != nil {
				t := resolve(*matches[i].TeamA)
				matches[i].TeamA = &t
			}
			if matches[i].TeamB != nil {
				t := resolve(*matches[i].TeamB)
				matches[i].TeamB = &t
			}
		}
		state.KnockoutStage[round] = matches
	}

	for i := range state.History {
		h := &state.History[i]
		if t, ok := roster[h.Champion.ID]; ok {
			h.Champion = t.Clone()
		}
		if h.RunnerUp != nil {
			if t, ok := roster[h.RunnerUp.ID]; ok {
				ru := t.Clone()
				h.RunnerUp = &ru
			}
		}
	}

	for i := range state.Groups {
		g := &state.Groups[i]
		teams := make([]models.Team, len(g.Teams))
		for j, ref := range g.Teams {
			teams[j] = resolve(ref)
		}
		g.Teams = teams
		g.Standings = brackets.CalculateStandings(g.Teams, state.Matches, brackets.RefOf(*g))
	}

	return state
}

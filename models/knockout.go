package models

type KnockoutRound string

const (
	RoundPlayOffs      KnockoutRound = "Play-offs"
	RoundOf16          KnockoutRound = "Round of 16"
	RoundQuarterFinals KnockoutRound = "Quarter-finals"
	RoundSemiFinals    KnockoutRound = "Semi-finals"
	RoundFinal         KnockoutRound = "Final"
)

// KnockoutRounds lists the rounds in playing order.
var KnockoutRounds = []KnockoutRound{
	RoundPlayOffs,
	RoundOf16,
	RoundQuarterFinals,
	RoundSemiFinals,
	RoundFinal,
}

func (r KnockoutRound) IsValid() bool {
	for _, known := range KnockoutRounds {
		if r == known {
			return true
		}
	}
	return false
}

// KnockoutMatch is a two-leg tie, or a single match when Round is the Final.
type KnockoutMatch struct {
	ID          string        `json:"id"`
	Round       KnockoutRound `json:"round"`
	MatchNumber int           `json:"match_number"`
	TeamA       *Team         `json:"team_a"`
	TeamB       *Team         `json:"team_b"`
	ScoreA1     *int          `json:"score_a1"`
	ScoreB1     *int          `json:"score_b1"`
	ScoreA2     *int          `json:"score_a2"`
	ScoreB2     *int          `json:"score_b2"`
	WinnerID    *string       `json:"winner_id"`
	NextMatchID *string       `json:"next_match_id,omitempty"`

	Comments []Comment `json:"comments,omitempty"`
}

func (m KnockoutMatch) Clone() KnockoutMatch {
	if m.TeamA != nil {
		t := m.TeamA.Clone()
		m.TeamA = &t
	}
	if m.TeamB != nil {
		t := m.TeamB.Clone()
		m.TeamB = &t
	}
	m.ScoreA1 = cloneInt(m.ScoreA1)
	m.ScoreB1 = cloneInt(m.ScoreB1)
	m.ScoreA2 = cloneInt(m.ScoreA2)
	m.ScoreB2 = cloneInt(m.ScoreB2)
	m.WinnerID = cloneString(m.WinnerID)
	m.NextMatchID = cloneString(m.NextMatchID)
	m.Comments = cloneComments(m.Comments)
	return m
}

// KnockoutStageRounds maps every round name to its matches.
type KnockoutStageRounds map[KnockoutRound][]KnockoutMatch

func NewKnockoutStage() KnockoutStageRounds {
	stage := make(KnockoutStageRounds, len(KnockoutRounds))
	for _, r := range KnockoutRounds {
		stage[r] = []KnockoutMatch{}
	}
	return stage
}

func (s KnockoutStageRounds) Clone() KnockoutStageRounds {
	out := NewKnockoutStage()
	for round, matches := range s {
		cloned := make([]KnockoutMatch, len(matches))
		for i, m := range matches {
			cloned[i] = m.Clone()
		}
		out[round] = cloned
	}
	return out
}

// Find returns the round and index of the match with the given id.
func (s KnockoutStageRounds) Find(id string) (KnockoutRound, int, bool) {
	for _, round := range KnockoutRounds {
		for i, m := range s[round] {
			if m.ID == id {
				return round, i, true
			}
		}
	}
	return "", -1, false
}

func (s KnockoutStageRounds) IsEmpty() bool {
	for _, matches := range s {
		if len(matches) > 0 {
			return false
		}
	}
	return true
}

// All returns every match in round order.
func (s KnockoutStageRounds) All() []KnockoutMatch {
	var out []KnockoutMatch
	for _, round := range KnockoutRounds {
		out = append(out, s[round]...)
	}
	return out
}

package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusLive      MatchStatus = "live"
	MatchStatusFinished  MatchStatus = "finished"
)

func (s MatchStatus) IsValid() bool {
	switch s {
	case MatchStatusScheduled, MatchStatusLive, MatchStatusFinished:
		return true
	}
	return false
}

// Match is a group or league stage fixture. TeamA plays at home.
type Match struct {
	ID       string      `json:"id"`
	TeamA    Team        `json:"team_a"`
	TeamB    Team        `json:"team_b"`
	ScoreA   *int        `json:"score_a"`
	ScoreB   *int        `json:"score_b"`
	Status   MatchStatus `json:"status"`
	Group    string      `json:"group"` // group id, or a legacy group name / letter
	Leg      int         `json:"leg"`
	Matchday int         `json:"matchday"`

	ProofURLs []string       `json:"proof_urls,omitempty"`
	Stats     map[string]int `json:"stats,omitempty"`
	Summary   string         `json:"summary,omitempty"`
	Deadline  *time.Time     `json:"deadline,omitempty"`

	// Projection of TournamentState.Comments, never stored with the match.
	Comments []Comment `json:"comments,omitempty"`
}

func (m Match) HasScore() bool {
	return m.ScoreA != nil && m.ScoreB != nil
}

// Counts reports whether the match contributes to standings.
func (m Match) Counts() bool {
	return m.Status == MatchStatusFinished && m.HasScore()
}

func (m Match) Clone() Match {
	m.TeamA = m.TeamA.Clone()
	m.TeamB = m.TeamB.Clone()
	m.ScoreA = cloneInt(m.ScoreA)
	m.ScoreB = cloneInt(m.ScoreB)
	if m.ProofURLs != nil {
		m.ProofURLs = append([]string(nil), m.ProofURLs...)
	}
	if m.Stats != nil {
		stats := make(map[string]int, len(m.Stats))
		for k, v := range m.Stats {
			stats[k] = v
		}
		m.Stats = stats
	}
	if m.Deadline != nil {
		d := *m.Deadline
		m.Deadline = &d
	}
	m.Comments = cloneComments(m.Comments)
	return m
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// IntPtr is a small helper for building nullable scores.
func IntPtr(v int) *int {
	return &v
}

func StringPtr(v string) *string {
	return &v
}

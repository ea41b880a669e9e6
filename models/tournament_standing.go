package models

// Trend shows how a team's rank moved since the previous matchday.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendSame Trend = "same"
	TrendNew  Trend = "new"
)

// Standing is derived data: one row of a group table.
type Standing struct {
	Team           Team     `json:"team"`
	Played         int      `json:"played"`
	Wins           int      `json:"wins"`
	Draws          int      `json:"draws"`
	Losses         int      `json:"losses"`
	GoalsFor       int      `json:"goals_for"`
	GoalsAgainst   int      `json:"goals_against"`
	GoalDifference int      `json:"goal_difference"`
	Points         int      `json:"points"`
	Form           []string `json:"form"`
	Rank           int      `json:"rank"`
	Trend          Trend    `json:"trend"`
}

const (
	FormWin  = "W"
	FormDraw = "D"
	FormLoss = "L"
)

func (s Standing) Clone() Standing {
	s.Team = s.Team.Clone()
	if s.Form != nil {
		s.Form = append([]string(nil), s.Form...)
	}
	return s
}

type Group struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Teams     []Team     `json:"teams"`
	Standings []Standing `json:"standings"`
}

func (g Group) HasTeam(teamID string) bool {
	for _, t := range g.Teams {
		if t.ID == teamID {
			return true
		}
	}
	return false
}

func (g Group) Clone() Group {
	teams := make([]Team, len(g.Teams))
	for i, t := range g.Teams {
		teams[i] = t.Clone()
	}
	g.Teams = teams
	standings := make([]Standing, len(g.Standings))
	for i, s := range g.Standings {
		standings[i] = s.Clone()
	}
	g.Standings = standings
	return g
}

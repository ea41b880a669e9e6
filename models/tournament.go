package models

import "fmt"

// Mode is an independent tournament format partition. Each mode owns its own
// state document and nothing is shared between modes.
type Mode string

const (
	ModeLeague     Mode = "league"
	ModeTwoLeagues Mode = "two_leagues"
	ModeWakaCL     Mode = "wakacl"
)

var Modes = []Mode{ModeLeague, ModeTwoLeagues, ModeWakaCL}

func (m Mode) IsValid() bool {
	switch m {
	case ModeLeague, ModeTwoLeagues, ModeWakaCL:
		return true
	}
	return false
}

func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !m.IsValid() {
		return "", fmt.Errorf("unknown mode %q", s)
	}
	return m, nil
}

// DefaultGroupCount is the number of groups auto-generation creates for the mode.
func (m Mode) DefaultGroupCount() int {
	switch m {
	case ModeTwoLeagues:
		return 2
	case ModeWakaCL:
		return 4
	default:
		return 1
	}
}

// TournamentStatus представляет стадию турнира.
type TournamentStatus string

const (
	StatusSoon         TournamentStatus = "soon"
	StatusRegistration TournamentStatus = "registration"
	StatusActive       TournamentStatus = "active"
	StatusCompleted    TournamentStatus = "completed"
	StatusCanceled     TournamentStatus = "canceled"
)

func (s TournamentStatus) IsValid() bool {
	switch s {
	case StatusSoon, StatusRegistration, StatusActive, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

type RoundRobinType string

const (
	RoundRobinSingle RoundRobinType = "single"
	RoundRobinDouble RoundRobinType = "double"
)

func (t RoundRobinType) IsValid() bool {
	return t == RoundRobinSingle || t == RoundRobinDouble
}

type ScheduleSettings struct {
	RoundRobinType     RoundRobinType `json:"round_robin_type"`
	GroupCount         int            `json:"group_count"`
	MatchDeadlineHours int            `json:"match_deadline_hours"`
}

func DefaultScheduleSettings(mode Mode) ScheduleSettings {
	return ScheduleSettings{
		RoundRobinType: RoundRobinSingle,
		GroupCount:     mode.DefaultGroupCount(),
	}
}

type Banner struct {
	ImageURL string `json:"image_url"`
	Link     string `json:"link,omitempty"`
	Title    string `json:"title,omitempty"`
}

type Partner struct {
	Name    string `json:"name"`
	LogoURL string `json:"logo_url,omitempty"`
	Link    string `json:"link,omitempty"`
}

// TournamentState is the aggregate root stored as one document per mode.
type TournamentState struct {
	Mode             Mode                `json:"mode"`
	Teams            []Team              `json:"teams"`
	Groups           []Group             `json:"groups"`
	Matches          []Match             `json:"matches"`
	KnockoutStage    KnockoutStageRounds `json:"knockout_stage"`
	History          []SeasonHistory     `json:"history"`
	Rules            string              `json:"rules"`
	Banners          []Banner            `json:"banners"`
	Partners         []Partner           `json:"partners"`
	HeaderLogoURL    string              `json:"header_logo_url,omitempty"`
	RegistrationOpen bool                `json:"registration_open"`
	Status           TournamentStatus    `json:"status"`
	ScheduleSettings *ScheduleSettings   `json:"schedule_settings,omitempty"`
	Version          int64               `json:"version"`

	// Comments live in their own store and are only projected onto matches.
	Comments CommentsByMatch `json:"-"`
}

// NewTournamentState returns an empty state for the mode.
func NewTournamentState(mode Mode) TournamentState {
	settings := DefaultScheduleSettings(mode)
	return TournamentState{
		Mode:             mode,
		Teams:            []Team{},
		Groups:           []Group{},
		Matches:          []Match{},
		KnockoutStage:    NewKnockoutStage(),
		History:          []SeasonHistory{},
		Banners:          []Banner{},
		Partners:         []Partner{},
		Status:           StatusSoon,
		ScheduleSettings: &settings,
		Comments:         CommentsByMatch{},
	}
}

// Normalize fills fields that older documents may not carry.
func (s *TournamentState) Normalize() {
	if s.Teams == nil {
		s.Teams = []Team{}
	}
	if s.Groups == nil {
		s.Groups = []Group{}
	}
	if s.Matches == nil {
		s.Matches = []Match{}
	}
	if s.History == nil {
		s.History = []SeasonHistory{}
	}
	if s.Banners == nil {
		s.Banners = []Banner{}
	}
	if s.Partners == nil {
		s.Partners = []Partner{}
	}
	stage := NewKnockoutStage()
	for round, matches := range s.KnockoutStage {
		if matches != nil {
			stage[round] = matches
		}
	}
	s.KnockoutStage = stage
	if s.Status == "" {
		s.Status = StatusSoon
	}
	if s.ScheduleSettings == nil {
		settings := DefaultScheduleSettings(s.Mode)
		s.ScheduleSettings = &settings
	} else {
		if !s.ScheduleSettings.RoundRobinType.IsValid() {
			s.ScheduleSettings.RoundRobinType = RoundRobinSingle
		}
		if s.ScheduleSettings.GroupCount <= 0 {
			s.ScheduleSettings.GroupCount = s.Mode.DefaultGroupCount()
		}
	}
	if s.Comments == nil {
		s.Comments = CommentsByMatch{}
	}
}

// Settings returns the schedule settings, defaulted when absent.
func (s TournamentState) Settings() ScheduleSettings {
	if s.ScheduleSettings == nil {
		return DefaultScheduleSettings(s.Mode)
	}
	return *s.ScheduleSettings
}

func (s TournamentState) FindTeam(id string) (Team, bool) {
	for _, t := range s.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return Team{}, false
}

// GroupOfTeam returns the group currently holding the team.
func (s TournamentState) GroupOfTeam(teamID string) (Group, bool) {
	for _, g := range s.Groups {
		if g.HasTeam(teamID) {
			return g, true
		}
	}
	return Group{}, false
}

// Clone returns a deep copy, so reducers never alias the caller's slices.
func (s TournamentState) Clone() TournamentState {
	out := s
	out.Teams = make([]Team, len(s.Teams))
	for i, t := range s.Teams {
		out.Teams[i] = t.Clone()
	}
	out.Groups = make([]Group, len(s.Groups))
	for i, g := range s.Groups {
		out.Groups[i] = g.Clone()
	}
	out.Matches = make([]Match, len(s.Matches))
	for i, m := range s.Matches {
		out.Matches[i] = m.Clone()
	}
	out.KnockoutStage = s.KnockoutStage.Clone()
	out.History = make([]SeasonHistory, len(s.History))
	for i, h := range s.History {
		out.History[i] = h.Clone()
	}
	out.Banners = append([]Banner{}, s.Banners...)
	out.Partners = append([]Partner{}, s.Partners...)
	if s.ScheduleSettings != nil {
		settings := *s.ScheduleSettings
		out.ScheduleSettings = &settings
	}
	out.Comments = s.Comments.Clone()
	return out
}

// WithoutComments strips the comment projection before the document is stored.
func (s TournamentState) WithoutComments() TournamentState {
	out := s.Clone()
	out.Comments = CommentsByMatch{}
	for i := range out.Matches {
		out.Matches[i].Comments = nil
	}
	for round, matches := range out.KnockoutStage {
		for i := range matches {
			matches[i].Comments = nil
		}
		out.KnockoutStage[round] = matches
	}
	return out
}

// Public is the view served to anonymous readers and websocket rooms. Every
// team snapshot loses its owner emails.
func (s TournamentState) Public() TournamentState {
	out := s.Clone()
	for i := range out.Teams {
		out.Teams[i] = out.Teams[i].Public()
	}
	for i := range out.Groups {
		g := &out.Groups[i]
		for j := range g.Teams {
			g.Teams[j] = g.Teams[j].Public()
		}
		for j := range g.Standings {
			g.Standings[j].Team = g.Standings[j].Team.Public()
		}
	}
	for i := range out.Matches {
		out.Matches[i].TeamA = out.Matches[i].TeamA.Public()
		out.Matches[i].TeamB = out.Matches[i].TeamB.Public()
	}
	for round, matches := range out.KnockoutStage {
		for i := range matches {
			matches[i].TeamA = publicSlot(matches[i].TeamA)
			matches[i].TeamB = publicSlot(matches[i].TeamB)
		}
		out.KnockoutStage[round] = matches
	}
	for i := range out.History {
		out.History[i].Champion = out.History[i].Champion.Public()
		out.History[i].RunnerUp = publicSlot(out.History[i].RunnerUp)
	}
	return out
}

func publicSlot(t *Team) *Team {
	if t == nil {
		return nil
	}
	p := t.Public()
	return &p
}

package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dosada05/efootball-hub/models"
)

type ActionType string

const (
	ActionSetFullState           ActionType = "SET_FULL_STATE"
	ActionSetMode                ActionType = "SET_MODE"
	ActionAddTeam                ActionType = "ADD_TEAM"
	ActionUpdateTeam             ActionType = "UPDATE_TEAM"
	ActionDeleteTeam             ActionType = "DELETE_TEAM"
	ActionGenerateGroups         ActionType = "GENERATE_GROUPS"
	ActionUpdateMatchScore       ActionType = "UPDATE_MATCH_SCORE"
	ActionUpdateKnockoutMatch    ActionType = "UPDATE_KNOCKOUT_MATCH"
	ActionAddKnockoutMatch       ActionType = "ADD_KNOCKOUT_MATCH"
	ActionDeleteKnockoutMatch    ActionType = "DELETE_KNOCKOUT_MATCH"
	ActionGenerateKnockout       ActionType = "GENERATE_KNOCKOUT_BRACKET"
	ActionUpdateRules            ActionType = "UPDATE_RULES"
	ActionUpdateBanners          ActionType = "UPDATE_BANNERS"
	ActionUpdatePartners         ActionType = "UPDATE_PARTNERS"
	ActionUpdateHeaderLogo       ActionType = "UPDATE_HEADER_LOGO"
	ActionSetRegistrationOpen    ActionType = "SET_REGISTRATION_OPEN"
	ActionSetStatus              ActionType = "SET_STATUS"
	ActionAddHistoryEntry        ActionType = "ADD_HISTORY_ENTRY"
	ActionDeleteHistoryEntry     ActionType = "DELETE_HISTORY_ENTRY"
	ActionAddMatchComment        ActionType = "ADD_MATCH_COMMENT"
	ActionSetComments            ActionType = "SET_COMMENTS"
	ActionReset                  ActionType = "RESET"
	ActionArchiveSeason          ActionType = "ARCHIVE_SEASON"
	ActionAddGroup               ActionType = "ADD_GROUP"
	ActionRemoveGroup            ActionType = "REMOVE_GROUP"
	ActionAddTeamToGroup         ActionType = "ADD_TEAM_TO_GROUP"
	ActionRemoveTeamFromGroup    ActionType = "REMOVE_TEAM_FROM_GROUP"
	ActionGenerateGroupFixtures  ActionType = "GENERATE_GROUP_FIXTURES"
	ActionApproveRegistration    ActionType = "APPROVE_REGISTRATION"
	ActionRequestTeamOwnership   ActionType = "REQUEST_TEAM_OWNERSHIP"
	ActionApproveOwnership       ActionType = "APPROVE_OWNERSHIP"
	ActionRejectOwnership        ActionType = "REJECT_OWNERSHIP"
	ActionUpdateScheduleSettings ActionType = "UPDATE_SCHEDULE_SETTINGS"
	ActionSetMatchSummary        ActionType = "SET_MATCH_SUMMARY"
)

// Action is a closed set of state transitions. Only types in this package
// implement it.
type Action interface {
	Type() ActionType
	isAction()
}

type action struct{}

func (action) isAction() {}

type SetFullState struct {
	action
	State models.TournamentState `json:"state"`
}

type SetMode struct {
	action
	Mode models.Mode `json:"mode"`
}

type AddTeam struct {
	action
	Team models.Team `json:"team"`
}

// UpdateTeam replaces every field of the team with the same id.
type UpdateTeam struct {
	action
	Team models.Team `json:"team"`
}

type DeleteTeam struct {
	action
	TeamID string `json:"team_id"`
}

// GenerateGroups replaces groups, matches and the knockout stage. When Groups
// is empty the roster is split automatically into GroupCount groups.
type GenerateGroups struct {
	action
	Groups         []models.Group        `json:"groups,omitempty"`
	GroupCount     int                   `json:"group_count,omitempty"`
	RoundRobinType models.RoundRobinType `json:"round_robin_type,omitempty"`
	Confirm        bool                  `json:"confirm"`
	Now            time.Time             `json:"-"`
}

type UpdateMatchScore struct {
	action
	MatchID   string             `json:"match_id"`
	ScoreA    int                `json:"score_a"`
	ScoreB    int                `json:"score_b"`
	Status    models.MatchStatus `json:"status,omitempty"`
	ProofURLs []string           `json:"proof_urls,omitempty"`
	Stats     map[string]int     `json:"stats,omitempty"`
}

// UpdateKnockoutMatch sets all four leg scores and the winner at once. Team
// ids are optional; an empty string clears the slot.
type UpdateKnockoutMatch struct {
	action
	MatchID  string  `json:"match_id"`
	TeamAID  *string `json:"team_a_id,omitempty"`
	TeamBID  *string `json:"team_b_id,omitempty"`
	ScoreA1  *int    `json:"score_a1"`
	ScoreB1  *int    `json:"score_b1"`
	ScoreA2  *int    `json:"score_a2"`
	ScoreB2  *int    `json:"score_b2"`
	WinnerID *string `json:"winner_id"`
}

type AddKnockoutMatch struct {
	action
	ID          string               `json:"id,omitempty"`
	Round       models.KnockoutRound `json:"round"`
	MatchNumber int                  `json:"match_number,omitempty"`
	TeamAID     string               `json:"team_a_id,omitempty"`
	TeamBID     string               `json:"team_b_id,omitempty"`
	NextMatchID string               `json:"next_match_id,omitempty"`
}

type DeleteKnockoutMatch struct {
	action
	MatchID string `json:"match_id"`
}

type GenerateKnockoutBracket struct {
	action
}

type UpdateRules struct {
	action
	Rules string `json:"rules"`
}

type UpdateBanners struct {
	action
	Banners []models.Banner `json:"banners"`
}

type UpdatePartners struct {
	action
	Partners []models.Partner `json:"partners"`
}

type UpdateHeaderLogo struct {
	action
	URL string `json:"url"`
}

type SetRegistrationOpen struct {
	action
	Open bool `json:"open"`
}

type SetStatus struct {
	action
	Status models.TournamentStatus `json:"status"`
}

type AddHistoryEntry struct {
	action
	Entry models.SeasonHistory `json:"entry"`
}

type DeleteHistoryEntry struct {
	action
	EntryID string `json:"entry_id"`
}

type AddMatchComment struct {
	action
	Comment models.Comment `json:"comment"`
}

// SetComments carries a comment snapshot from the comment store.
type SetComments struct {
	action
	Comments models.CommentsByMatch `json:"comments"`
}

type Reset struct {
	action
}

type ArchiveSeason struct {
	action
	SeasonName  string    `json:"season_name"`
	KeepTeams   bool      `json:"keep_teams"`
	ArchiveID   string    `json:"-"`
	CompletedAt time.Time `json:"-"`
}

type AddGroup struct {
	action
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

type RemoveGroup struct {
	action
	GroupID string `json:"group_id"`
}

type AddTeamToGroup struct {
	action
	GroupID string `json:"group_id"`
	TeamID  string `json:"team_id"`
}

type RemoveTeamFromGroup struct {
	action
	GroupID string `json:"group_id"`
	TeamID  string `json:"team_id"`
}

type GenerateGroupFixtures struct {
	action
	GroupID        string                `json:"group_id"`
	RoundRobinType models.RoundRobinType `json:"round_robin_type,omitempty"`
	Confirm        bool                  `json:"confirm"`
	Now            time.Time             `json:"-"`
}

// ApproveRegistration adds a registered team while registration is open.
type ApproveRegistration struct {
	action
	Team models.Team `json:"team"`
}

type RequestTeamOwnership struct {
	action
	TeamID string `json:"team_id"`
	Email  string `json:"email"`
}

type ApproveOwnership struct {
	action
	TeamID string `json:"team_id"`
}

// RejectOwnership drops the pending claim so another email can ask.
type RejectOwnership struct {
	action
	TeamID string `json:"team_id"`
}

type UpdateScheduleSettings struct {
	action
	Settings models.ScheduleSettings `json:"settings"`
}

type SetMatchSummary struct {
	action
	MatchID string `json:"match_id"`
	Summary string `json:"summary"`
}

func (SetFullState) Type() ActionType            { return ActionSetFullState }
func (SetMode) Type() ActionType                 { return ActionSetMode }
func (AddTeam) Type() ActionType                 { return ActionAddTeam }
func (UpdateTeam) Type() ActionType              { return ActionUpdateTeam }
func (DeleteTeam) Type() ActionType              { return ActionDeleteTeam }
func (GenerateGroups) Type() ActionType          { return ActionGenerateGroups }
func (UpdateMatchScore) Type() ActionType        { return ActionUpdateMatchScore }
func (UpdateKnockoutMatch) Type() ActionType     { return ActionUpdateKnockoutMatch }
func (AddKnockoutMatch) Type() ActionType        { return ActionAddKnockoutMatch }
func (DeleteKnockoutMatch) Type() ActionType     { return ActionDeleteKnockoutMatch }
func (GenerateKnockoutBracket) Type() ActionType { return ActionGenerateKnockout }
func (UpdateRules) Type() ActionType             { return ActionUpdateRules }
func (UpdateBanners) Type() ActionType           { return ActionUpdateBanners }
func (UpdatePartners) Type() ActionType          { return ActionUpdatePartners }
func (UpdateHeaderLogo) Type() ActionType        { return ActionUpdateHeaderLogo }
func (SetRegistrationOpen) Type() ActionType     { return ActionSetRegistrationOpen }
func (SetStatus) Type() ActionType               { return ActionSetStatus }
func (AddHistoryEntry) Type() ActionType         { return ActionAddHistoryEntry }
func (DeleteHistoryEntry) Type() ActionType      { return ActionDeleteHistoryEntry }
func (AddMatchComment) Type() ActionType         { return ActionAddMatchComment }
func (SetComments) Type() ActionType             { return ActionSetComments }
func (Reset) Type() ActionType                   { return ActionReset }
func (ArchiveSeason) Type() ActionType           { return ActionArchiveSeason }
func (AddGroup) Type() ActionType                { return ActionAddGroup }
func (RemoveGroup) Type() ActionType             { return ActionRemoveGroup }
func (AddTeamToGroup) Type() ActionType          { return ActionAddTeamToGroup }
func (RemoveTeamFromGroup) Type() ActionType     { return ActionRemoveTeamFromGroup }
func (GenerateGroupFixtures) Type() ActionType   { return ActionGenerateGroupFixtures }
func (ApproveRegistration) Type() ActionType     { return ActionApproveRegistration }
func (RequestTeamOwnership) Type() ActionType    { return ActionRequestTeamOwnership }
func (ApproveOwnership) Type() ActionType        { return ActionApproveOwnership }
func (RejectOwnership) Type() ActionType         { return ActionRejectOwnership }
func (UpdateScheduleSettings) Type() ActionType  { return ActionUpdateScheduleSettings }
func (SetMatchSummary) Type() ActionType         { return ActionSetMatchSummary }

// ActionEnvelope is the wire form of an action: {"type": ..., "payload": {...}}.
type ActionEnvelope struct {
	Type    ActionType      `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

var actionDecoders = map[ActionType]func(json.RawMessage) (Action, error){
	ActionSetFullState:           decodeAs[SetFullState],
	ActionSetMode:                decodeAs[SetMode],
	ActionAddTeam:                decodeAs[AddTeam],
	ActionUpdateTeam:             decodeAs[UpdateTeam],
	ActionDeleteTeam:             decodeAs[DeleteTeam],
	ActionGenerateGroups:         decodeAs[GenerateGroups],
	ActionUpdateMatchScore:       decodeAs[UpdateMatchScore],
	ActionUpdateKnockoutMatch:    decodeAs[UpdateKnockoutMatch],
	ActionAddKnockoutMatch:       decodeAs[AddKnockoutMatch],
	ActionDeleteKnockoutMatch:    decodeAs[DeleteKnockoutMatch],
	ActionGenerateKnockout:       decodeAs[GenerateKnockoutBracket],
	ActionUpdateRules:            decodeAs[UpdateRules],
	ActionUpdateBanners:          decodeAs[UpdateBanners],
	ActionUpdatePartners:         decodeAs[UpdatePartners],
	ActionUpdateHeaderLogo:       decodeAs[UpdateHeaderLogo],
	ActionSetRegistrationOpen:    decodeAs[SetRegistrationOpen],
	ActionSetStatus:              decodeAs[SetStatus],
	ActionAddHistoryEntry:        decodeAs[AddHistoryEntry],
	ActionDeleteHistoryEntry:     decodeAs[DeleteHistoryEntry],
	ActionAddMatchComment:        decodeAs[AddMatchComment],
	ActionSetComments:            decodeAs[SetComments],
	ActionReset:                  decodeAs[Reset],
	ActionArchiveSeason:          decodeAs[ArchiveSeason],
	ActionAddGroup:               decodeAs[AddGroup],
	ActionRemoveGroup:            decodeAs[RemoveGroup],
	ActionAddTeamToGroup:         decodeAs[AddTeamToGroup],
	ActionRemoveTeamFromGroup:    decodeAs[RemoveTeamFromGroup],
	ActionGenerateGroupFixtures:  decodeAs[GenerateGroupFixtures],
	ActionApproveRegistration:    decodeAs[ApproveRegistration],
	ActionRequestTeamOwnership:   decodeAs[RequestTeamOwnership],
	ActionApproveOwnership:       decodeAs[ApproveOwnership],
	ActionRejectOwnership:        decodeAs[RejectOwnership],
	ActionUpdateScheduleSettings: decodeAs[UpdateScheduleSettings],
	ActionSetMatchSummary:        decodeAs[SetMatchSummary],
}

func decodeAs[T Action](payload json.RawMessage) (Action, error) {
	var a T
	if len(payload) == 0 || string(payload) == "null" {
		return a, nil
	}
	if err := json.Unmarshal(payload, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return a, nil
}

// DecodeAction turns a wire envelope into a typed action.
func DecodeAction(env ActionEnvelope) (Action, error) {
	decode, ok := actionDecoders[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, env.Type)
	}
	return decode(env.Payload)
}

// stampAction fills ids and timestamps the reducer must not generate itself.
func stampAction(a Action, newID func() string, now time.Time) Action {
	switch act := a.(type) {
	case AddTeam:
		if act.Team.ID == "" {
			act.Team.ID = newID()
		}
		return act
	case ApproveRegistration:
		if act.Team.ID == "" {
			act.Team.ID = newID()
		}
		return act
	case AddKnockoutMatch:
		if act.ID == "" {
			act.ID = newID()
		}
		return act
	case AddGroup:
		if act.ID == "" {
			act.ID = newID()
		}
		return act
	case AddHistoryEntry:
		if act.Entry.ID == "" {
			act.Entry.ID = newID()
		}
		if act.Entry.CompletedAt.IsZero() {
			act.Entry.CompletedAt = now
		}
		return act
	case AddMatchComment:
		if act.Comment.ID == "" {
			act.Comment.ID = newID()
		}
		if act.Comment.CreatedAt.IsZero() {
			act.Comment.CreatedAt = now
		}
		return act
	case ArchiveSeason:
		if act.ArchiveID == "" {
			act.ArchiveID = newID()
		}
		if act.CompletedAt.IsZero() {
			act.CompletedAt = now
		}
		return act
	case GenerateGroups:
		if act.Now.IsZero() {
			act.Now = now
		}
		return act
	case GenerateGroupFixtures:
		if act.Now.IsZero() {
			act.Now = now
		}
		return act
	}
	return a
}

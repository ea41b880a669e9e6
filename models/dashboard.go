package models

// ModeStats is the admin overview of one mode.
type ModeStats struct {
	Mode                   Mode             `json:"mode"`
	Status                 TournamentStatus `json:"status"`
	RegistrationOpen       bool             `json:"registration_open"`
	Version                int64            `json:"version"`
	TeamsTotal             int              `json:"teams_total"`
	GroupsTotal            int              `json:"groups_total"`
	MatchesTotal           int              `json:"matches_total"`
	MatchesFinished        int              `json:"matches_finished"`
	MatchesLive            int              `json:"matches_live"`
	MatchesOverdue         int              `json:"matches_overdue"`
	KnockoutMatchesTotal   int              `json:"knockout_matches_total"`
	CommentsTotal          int              `json:"comments_total"`
	PendingOwnershipClaims int              `json:"pending_ownership_claims"`
	SeasonsArchived        int              `json:"seasons_archived"`
	SyncError              string           `json:"sync_error,omitempty"`
}

type DashboardStats struct {
	Modes []ModeStats `json:"modes"`
}

package models

import (
	"bytes"
	"encoding/json"
)

// TBDTeamName is shown for team references that no longer resolve to the roster.
const TBDTeamName = "TBD"

type Team struct {
	ID                  string            `json:"id"`
	Name                string            `json:"name"`
	LogoURL             string            `json:"logo_url,omitempty"`
	SquadImageURL       string            `json:"squad_image_url,omitempty"`
	ManagerName         string            `json:"manager_name,omitempty"`
	Contact             string            `json:"contact,omitempty"`
	SocialLinks         map[string]string `json:"social_links,omitempty"`
	IsTopSeed           bool              `json:"is_top_seed"`
	OwnerEmail          string            `json:"owner_email,omitempty"`
	RequestedOwnerEmail string            `json:"requested_owner_email,omitempty"`
}

// UnmarshalJSON accepts both a full team object and a bare id string.
// Older documents stored only the id of the team inside matches and groups.
func (t *Team) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*t = Team{ID: id}
		return nil
	}

	type plainTeam Team
	var pt plainTeam
	if err := json.Unmarshal(data, &pt); err != nil {
		return err
	}
	*t = Team(pt)
	return nil
}

// TBDTeam is the stub used when a reference cannot be resolved.
func TBDTeam(id string) Team {
	return Team{ID: id, Name: TBDTeamName}
}

func (t Team) IsTBD() bool {
	return t.Name == TBDTeamName
}

func (t Team) Clone() Team {
	if t.SocialLinks != nil {
		links := make(map[string]string, len(t.SocialLinks))
		for k, v := range t.SocialLinks {
			links[k] = v
		}
		t.SocialLinks = links
	}
	return t
}

// Public drops the owner emails. Anonymous readers never see who claimed a team.
func (t Team) Public() Team {
	t = t.Clone()
	t.OwnerEmail = ""
	t.RequestedOwnerEmail = ""
	return t
}

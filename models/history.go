package models

import "time"

// SeasonHistory is an archived season. Entries are never edited, only removed.
type SeasonHistory struct {
	ID          string    `json:"id"`
	SeasonName  string    `json:"season_name"`
	Champion    Team      `json:"champion"`
	RunnerUp    *Team     `json:"runner_up,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
	Mode        Mode      `json:"mode"`
}

func (h SeasonHistory) Clone() SeasonHistory {
	h.Champion = h.Champion.Clone()
	if h.RunnerUp != nil {
		t := h.RunnerUp.Clone()
		h.RunnerUp = &t
	}
	return h
}

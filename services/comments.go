package services

import (
	"sort"

	"github.com/Dosada05/efootball-hub/models"
)

// MergeComments unions two comment maps. A comment present on both sides is
// taken from the side with the later CreatedAt; on equal timestamps remote
// wins. Each match list comes back sorted by CreatedAt, then id.
func MergeComments(local, remote models.CommentsByMatch) models.CommentsByMatch {
	merged := make(map[string]map[string]models.Comment, len(local)+len(remote))
	put := func(src models.CommentsByMatch, preferOnTie bool) {
		for matchID, comments := range src {
			byID, ok := merged[matchID]
			if !ok {
				byID = make(map[string]models.Comment, len(comments))
				merged[matchID] = byID
			}
			for _, c := range comments {
				if c.MatchID == "" {
					c.MatchID = matchID
				}
				existing, seen := byID[c.ID]
				switch {
				case !seen:
					byID[c.ID] = c
				case c.CreatedAt.After(existing.CreatedAt):
					byID[c.ID] = c
				case preferOnTie && c.CreatedAt.Equal(existing.CreatedAt):
					byID[c.ID] = c
				}
			}
		}
	}
	put(local, false)
	put(remote, true)

	out := make(models.CommentsByMatch, len(merged))
	for matchID, byID := range merged {
		if len(byID) == 0 {
			continue
		}
		list := make([]models.Comment, 0, len(byID))
		for _, c := range byID {
			list = append(list, c)
		}
		sortComments(list)
		out[matchID] = list
	}
	return out
}

func sortComments(list []models.Comment) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}

// ProjectComments copies the side map onto matches and knockout matches.
// The side map stays the only source of truth.
func ProjectComments(state models.TournamentState) models.TournamentState {
	for i := range state.Matches {
		state.Matches[i].Comments = copyComments(state.Comments[state.Matches[i].ID])
	}
	for round, matches := range state.KnockoutStage {
		for i := range matches {
			matches[i].Comments = copyComments(state.Comments[matches[i].ID])
		}
		state.KnockoutStage[round] = matches
	}
	return state
}

func copyComments(list []models.Comment) []models.Comment {
	if len(list) == 0 {
		return nil
	}
	return append([]models.Comment(nil), list...)
}

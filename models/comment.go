package models

import "time"

type Comment struct {
	ID        string    `json:"id"`
	MatchID   string    `json:"match_id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentsByMatch is the comment side-map keyed by match id.
type CommentsByMatch map[string][]Comment

func (c CommentsByMatch) Clone() CommentsByMatch {
	out := make(CommentsByMatch, len(c))
	for matchID, comments := range c {
		out[matchID] = cloneComments(comments)
	}
	return out
}

func cloneComments(comments []Comment) []Comment {
	if comments == nil {
		return nil
	}
	return append([]Comment(nil), comments...)
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/efootball-hub/models"
	"github.com/lib/pq"
)

const CommentChannel = "match_comments"

var ErrCommentConflict = errors.New("comment already exists")

type CommentRepository interface {
	ListByMode(ctx context.Context, mode models.Mode) (models.CommentsByMatch, error)
	Add(ctx context.Context, mode models.Mode, comment models.Comment) error
	Subscribe(ctx context.Context, mode models.Mode, onComments func(models.CommentsByMatch)) (func(), error)
}

type postgresCommentRepository struct {
	db     *sql.DB
	feed   ChangeFeed
	logger *slog.Logger
}

func NewPostgresCommentRepository(db *sql.DB, feed ChangeFeed, logger *slog.Logger) CommentRepository {
	return &postgresCommentRepository{db: db, feed: feed, logger: logger}
}

func (r *postgresCommentRepository) ListByMode(ctx context.Context, mode models.Mode) (models.CommentsByMatch, error) {
	query := `
		SELECT id, match_id, author, body, created_at
		FROM match_comments
		WHERE mode = $1
		ORDER BY match_id, created_at, id`

	rows, err := r.db.QueryContext(ctx, query, string(mode))
	if err != nil {
		return nil, fmt.Errorf("failed to list comments for %s: %w", mode, err)
	}
	defer rows.Close()

	comments := make(models.CommentsByMatch)
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.MatchID, &c.Author, &c.Text, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments[c.MatchID] = append(comments[c.MatchID], c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}
	return comments, nil
}

func (r *postgresCommentRepository) Add(ctx context.Context, mode models.Mode, c models.Comment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO match_comments (id, mode, match_id, author, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := tx.ExecContext(ctx, query, c.ID, string(mode), c.MatchID, c.Author, c.Text, c.CreatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrCommentConflict
		}
		return fmt.Errorf("failed to add comment: %w", err)
	}
	if err := notify(ctx, tx, CommentChannel, string(mode)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit comment: %w", err)
	}
	return nil
}

// Subscribe delivers the whole comment map of the mode on every change.
func (r *postgresCommentRepository) Subscribe(ctx context.Context, mode models.Mode, onComments func(models.CommentsByMatch)) (func(), error) {
	return r.feed.Subscribe(CommentChannel, func(payload string) {
		if payload != "" && payload != string(mode) {
			return
		}
		comments, err := r.ListByMode(ctx, mode)
		if err != nil {
			if ctx.Err() == nil {
				r.logger.Error("failed to reload comments after notification", slog.String("mode", string(mode)), slog.Any("error", err))
			}
			return
		}
		onComments(comments)
	})
}

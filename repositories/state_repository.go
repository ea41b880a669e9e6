package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/efootball-hub/models"
)

const StateChannel = "tournament_state"

var ErrStateNotFound = errors.New("tournament state not found")

type StateRepository interface {
	Load(ctx context.Context, mode models.Mode) (models.TournamentState, error)
	Save(ctx context.Context, mode models.Mode, state models.TournamentState, origin string) error
	Subscribe(ctx context.Context, mode models.Mode, onData func(state models.TournamentState, origin string)) (func(), error)
}

type stateNotification struct {
	Mode    models.Mode `json:"mode"`
	Origin  string      `json:"origin"`
	Version int64       `json:"version"`
}

type postgresStateRepository struct {
	db     *sql.DB
	feed   ChangeFeed
	logger *slog.Logger
}

func NewPostgresStateRepository(db *sql.DB, feed ChangeFeed, logger *slog.Logger) StateRepository {
	return &postgresStateRepository{db: db, feed: feed, logger: logger}
}

func (r *postgresStateRepository) Load(ctx context.Context, mode models.Mode) (models.TournamentState, error) {
	state, _, err := r.load(ctx, r.db, mode)
	return state, err
}

func (r *postgresStateRepository) load(ctx context.Context, exec SQLExecutor, mode models.Mode) (models.TournamentState, string, error) {
	query := `SELECT document, origin FROM tournament_states WHERE mode = $1`

	var (
		raw    []byte
		origin string
	)
	err := exec.QueryRowContext(ctx, query, string(mode)).Scan(&raw, &origin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.TournamentState{}, "", ErrStateNotFound
		}
		return models.TournamentState{}, "", fmt.Errorf("failed to load state for %s: %w", mode, err)
	}

	state, err := decodeState(raw, mode)
	if err != nil {
		return models.TournamentState{}, "", err
	}
	return state, origin, nil
}

// decodeState accepts older documents: missing fields are defaulted.
func decodeState(raw []byte, mode models.Mode) (models.TournamentState, error) {
	var state models.TournamentState
	if err := json.Unmarshal(raw, &state); err != nil {
		return models.TournamentState{}, fmt.Errorf("failed to decode state for %s: %w", mode, err)
	}
	if state.Mode == "" {
		state.Mode = mode
	}
	state.Normalize()
	return state, nil
}

func (r *postgresStateRepository) Save(ctx context.Context, mode models.Mode, state models.TournamentState, origin string) error {
	doc, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode state for %s: %w", mode, err)
	}
	payload, err := json.Marshal(stateNotification{Mode: mode, Origin: origin, Version: state.Version})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO tournament_states (mode, document, version, origin, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (mode) DO UPDATE
		SET document = EXCLUDED.document,
		    version = EXCLUDED.version,
		    origin = EXCLUDED.origin,
		    updated_at = NOW()`

	result, err := tx.ExecContext(ctx, query, string(mode), doc, state.Version, origin)
	if err != nil {
		return fmt.Errorf("failed to save state for %s: %w", mode, err)
	}
	if err := checkAffectedRows(result, ErrStateNotFound); err != nil {
		return err
	}
	if err := notify(ctx, tx, StateChannel, string(payload)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit state for %s: %w", mode, err)
	}
	return nil
}

// Subscribe reloads the document whenever another writer changes it. After a
// listener reconnect the document is reloaded unconditionally.
func (r *postgresStateRepository) Subscribe(ctx context.Context, mode models.Mode, onData func(state models.TournamentState, origin string)) (func(), error) {
	return r.feed.Subscribe(StateChannel, func(payload string) {
		if payload != "" {
			var n stateNotification
			if err := json.Unmarshal([]byte(payload), &n); err != nil {
				r.logger.Warn("malformed state notification", slog.String("payload", payload), slog.Any("error", err))
				return
			}
			if n.Mode != mode {
				return
			}
		}

		state, origin, err := r.load(ctx, r.db, mode)
		if err != nil {
			if !errors.Is(err, ErrStateNotFound) && ctx.Err() == nil {
				r.logger.Error("failed to reload state after notification", slog.String("mode", string(mode)), slog.Any("error", err))
			}
			return
		}
		onData(state, origin)
	})
}

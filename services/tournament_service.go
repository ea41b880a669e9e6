package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/efootball-hub/brackets"
	"github.com/Dosada05/efootball-hub/metrics"
	"github.com/Dosada05/efootball-hub/models"
	"github.com/Dosada05/efootball-hub/repositories"
	"github.com/Dosada05/efootball-hub/storage"
	"github.com/Dosada05/efootball-hub/utils"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultFlushInterval = 2 * time.Second
	summaryTimeout       = 30 * time.Second
	finalFlushTimeout    = 5 * time.Second
	maxProofSize         = 10 << 20
)

// StateStore keeps one state document per mode. Save tags the write with the
// writer's origin so subscribers can recognise their own echo.
type StateStore interface {
	Load(ctx context.Context, mode models.Mode) (models.TournamentState, error)
	Save(ctx context.Context, mode models.Mode, state models.TournamentState, origin string) error
	Subscribe(ctx context.Context, mode models.Mode, onData func(state models.TournamentState, origin string)) (func(), error)
}

type CommentStore interface {
	ListByMode(ctx context.Context, mode models.Mode) (models.CommentsByMatch, error)
	Add(ctx context.Context, mode models.Mode, comment models.Comment) error
	Subscribe(ctx context.Context, mode models.Mode, onComments func(models.CommentsByMatch)) (func(), error)
}

// SummaryGenerator writes a short text report for a finished match.
type SummaryGenerator interface {
	GenerateSummary(ctx context.Context, teamA, teamB models.Team, scoreA, scoreB int) (string, error)
}

type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

type TournamentService interface {
	Start(ctx context.Context) error
	Close(ctx context.Context) error
	State(mode models.Mode) (models.TournamentState, error)
	SyncError(mode models.Mode) string
	Dispatch(ctx context.Context, mode models.Mode, action Action) (models.TournamentState, Result, error)
	AddComment(ctx context.Context, mode models.Mode, comment models.Comment) (models.Comment, error)
	UpdateOwnTeam(ctx context.Context, mode models.Mode, ownerEmail string, input TeamProfileInput) (models.Team, error)
	UploadProof(ctx context.Context, mode models.Mode, matchID, fileName, contentType string, body io.Reader) (string, error)
}

type TournamentServiceOptions struct {
	FlushInterval time.Duration
	Summaries     SummaryGenerator
	Broadcaster   Broadcaster
	Uploader      storage.FileUploader
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
	NewID         func() string
	Now           func() time.Time
}

// TeamProfileInput is what a team owner may change on their own team.
type TeamProfileInput struct {
	Name          *string           `json:"name"`
	LogoURL       *string           `json:"logo_url"`
	SquadImageURL *string           `json:"squad_image_url"`
	ManagerName   *string           `json:"manager_name"`
	Contact       *string           `json:"contact"`
	SocialLinks   map[string]string `json:"social_links"`
}

type modeState struct {
	mu          sync.Mutex
	state       models.TournamentState
	dirty       bool
	syncErr     error
	unsubscribe []func()
}

type tournamentService struct {
	store    StateStore
	comments CommentStore
	opts     TournamentServiceOptions
	logger   *slog.Logger
	origin   string

	modes map[models.Mode]*modeState

	mu      sync.Mutex
	started bool
	closed  bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewTournamentService(store StateStore, comments CommentStore, opts TournamentServiceOptions) TournamentService {
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = DefaultFlushInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = utils.NewID
	}

	modes := make(map[models.Mode]*modeState, len(models.Modes))
	for _, m := range models.Modes {
		modes[m] = &modeState{state: Hydrate(models.NewTournamentState(m))}
	}
	return &tournamentService{
		store:    store,
		comments: comments,
		opts:     opts,
		logger:   opts.Logger.With(slog.String("component", "tournament_service")),
		origin:   opts.NewID(),
		modes:    modes,
	}
}

func (s *tournamentService) mode(mode models.Mode) (*modeState, error) {
	ms, ok := s.modes[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	return ms, nil
}

func (s *tournamentService) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Start loads every mode concurrently, subscribes to remote changes and runs
// the flush loop until Close.
func (s *tournamentService) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started || s.closed {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, mode := range models.Modes {
		mode := mode
		g.Go(func() error {
			return s.load(gctx, mode)
		})
	}
	if err := g.Wait(); err != nil {
		cancel()
		return err
	}

	for _, mode := range models.Modes {
		if err := s.subscribe(runCtx, mode); err != nil {
			cancel()
			return err
		}
	}

	s.wg.Add(1)
	go s.flushLoop(runCtx)
	s.logger.Info("tournament service started", slog.Duration("flush_interval", s.opts.FlushInterval))
	return nil
}

func (s *tournamentService) load(ctx context.Context, mode models.Mode) error {
	ms := s.modes[mode]

	state, err := s.store.Load(ctx, mode)
	switch {
	case errors.Is(err, repositories.ErrStateNotFound):
		s.logger.Info("no stored state, starting empty", slog.String("mode", string(mode)))
		state = models.NewTournamentState(mode)
	case err != nil:
		return fmt.Errorf("load state for %s: %w", mode, err)
	}

	var comments models.CommentsByMatch
	if s.comments != nil {
		if comments, err = s.comments.ListByMode(ctx, mode); err != nil {
			return fmt.Errorf("load comments for %s: %w", mode, err)
		}
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.state = Reduce(ms.state, SetFullState{State: state})
	ms.state = Reduce(ms.state, SetComments{Comments: comments})
	return nil
}

func (s *tournamentService) subscribe(ctx context.Context, mode models.Mode) error {
	ms := s.modes[mode]

	unsubState, err := s.store.Subscribe(ctx, mode, func(state models.TournamentState, origin string) {
		s.onRemoteState(mode, state, origin)
	})
	if err != nil {
		return fmt.Errorf("subscribe to state for %s: %w", mode, err)
	}
	ms.unsubscribe = append(ms.unsubscribe, unsubState)

	if s.comments != nil {
		unsubComments, err := s.comments.Subscribe(ctx, mode, func(comments models.CommentsByMatch) {
			s.onRemoteComments(mode, comments)
		})
		if err != nil {
			return fmt.Errorf("subscribe to comments for %s: %w", mode, err)
		}
		ms.unsubscribe = append(ms.unsubscribe, unsubComments)
	}
	return nil
}

// onRemoteState applies the last full snapshot. Our own writes come back
// through the same channel and are skipped.
func (s *tournamentService) onRemoteState(mode models.Mode, remote models.TournamentState, origin string) {
	if origin == s.origin {
		s.opts.Metrics.RemoteSnapshot(string(mode), false)
		return
	}
	ms := s.modes[mode]

	ms.mu.Lock()
	next, res := ReduceWithResult(ms.state, SetFullState{State: remote})
	if res.Success {
		ms.state = next
		ms.dirty = false
	}
	snapshot := ms.state.Clone()
	ms.mu.Unlock()

	if !res.Success {
		s.logger.Warn("remote snapshot rejected", slog.String("mode", string(mode)), slog.String("reason", res.Message))
		return
	}
	s.opts.Metrics.RemoteSnapshot(string(mode), true)
	s.broadcastState(mode, snapshot)
}

func (s *tournamentService) onRemoteComments(mode models.Mode, comments models.CommentsByMatch) {
	ms := s.modes[mode]

	ms.mu.Lock()
	ms.state = Reduce(ms.state, SetComments{Comments: comments})
	merged := ms.state.Comments.Clone()
	ms.mu.Unlock()

	s.broadcast(mode, brackets.MessageCommentsUpdated, merged)
}

func (s *tournamentService) State(mode models.Mode) (models.TournamentState, error) {
	ms, err := s.mode(mode)
	if err != nil {
		return models.TournamentState{}, err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.state.Clone(), nil
}

// SyncError returns the last store error of the mode, or "" after a
// successful write.
func (s *tournamentService) SyncError(mode models.Mode) string {
	ms, err := s.mode(mode)
	if err != nil {
		return ""
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.syncErr == nil {
		return ""
	}
	return ms.syncErr.Error()
}

// Dispatch runs one action against the mode. Domain failures come back in the
// Result with the state untouched; the error is reserved for bad modes and a
// closed service.
func (s *tournamentService) Dispatch(ctx context.Context, mode models.Mode, action Action) (models.TournamentState, Result, error) {
	ms, err := s.mode(mode)
	if err != nil {
		return models.TournamentState{}, Result{}, err
	}
	if s.isClosed() {
		return models.TournamentState{}, Result{}, ErrServiceClosed
	}

	switch act := action.(type) {
	case SetMode:
		if act.Mode != mode {
			res := failed(fmt.Errorf("%w: mode is fixed to %s for this endpoint", ErrActionRejected, mode))
			state, _ := s.State(mode)
			return state, res, nil
		}
	case AddMatchComment:
		comment := act.Comment
		if _, err := s.AddComment(ctx, mode, comment); err != nil {
			state, _ := s.State(mode)
			return state, failed(err), nil
		}
		state, _ := s.State(mode)
		return state, succeeded(""), nil
	}

	action = stampAction(action, s.opts.NewID, s.opts.Now())

	ms.mu.Lock()
	next, res := ReduceWithResult(ms.state, action)
	if res.Success {
		ms.state = next
		ms.dirty = true
	}
	snapshot := ms.state.Clone()
	ms.mu.Unlock()

	s.opts.Metrics.ActionDispatched(string(mode), string(action.Type()), res.Success)
	if !res.Success {
		s.logger.InfoContext(ctx, "action rejected",
			slog.String("mode", string(mode)),
			slog.String("action", string(action.Type())),
			slog.String("reason", res.Message))
		return snapshot, res, nil
	}

	s.logger.DebugContext(ctx, "action applied",
		slog.String("mode", string(mode)),
		slog.String("action", string(action.Type())),
		slog.Int64("version", snapshot.Version))
	s.broadcastState(mode, snapshot)

	if score, ok := action.(UpdateMatchScore); ok && s.opts.Summaries != nil {
		s.requestSummary(mode, score.MatchID)
	}
	return snapshot, res, nil
}

// AddComment applies the comment optimistically and writes it to the comment
// store. A store failure is logged and reported through SyncError; the local
// comment stays.
func (s *tournamentService) AddComment(ctx context.Context, mode models.Mode, comment models.Comment) (models.Comment, error) {
	ms, err := s.mode(mode)
	if err != nil {
		return models.Comment{}, err
	}
	if s.isClosed() {
		return models.Comment{}, ErrServiceClosed
	}

	stamped := stampAction(AddMatchComment{Comment: comment}, s.opts.NewID, s.opts.Now()).(AddMatchComment)
	stamped.Comment.Text = strings.TrimSpace(stamped.Comment.Text)

	ms.mu.Lock()
	next, res := ReduceWithResult(ms.state, stamped)
	if res.Success {
		ms.state = next
	}
	merged := ms.state.Comments.Clone()
	ms.mu.Unlock()

	s.opts.Metrics.ActionDispatched(string(mode), string(ActionAddMatchComment), res.Success)
	if !res.Success {
		return models.Comment{}, res.Err
	}
	s.broadcast(mode, brackets.MessageCommentsUpdated, merged)

	if s.comments != nil {
		if err := s.comments.Add(ctx, mode, stamped.Comment); err != nil {
			s.logger.ErrorContext(ctx, "failed to store comment",
				slog.String("mode", string(mode)),
				slog.String("match_id", stamped.Comment.MatchID),
				slog.Any("error", err))
			s.setSyncError(mode, err)
		}
	}
	return stamped.Comment, nil
}

// UpdateOwnTeam lets a team owner edit the profile fields of their team.
func (s *tournamentService) UpdateOwnTeam(ctx context.Context, mode models.Mode, ownerEmail string, input TeamProfileInput) (models.Team, error) {
	state, err := s.State(mode)
	if err != nil {
		return models.Team{}, err
	}
	ownerEmail = strings.ToLower(strings.TrimSpace(ownerEmail))
	if ownerEmail == "" {
		return models.Team{}, ErrOwnerActionRequired
	}

	var team models.Team
	found := false
	for _, t := range state.Teams {
		if strings.EqualFold(t.OwnerEmail, ownerEmail) {
			team, found = t.Clone(), true
			break
		}
	}
	if !found {
		return models.Team{}, ErrOwnerActionRequired
	}

	if input.Name != nil {
		team.Name = *input.Name
	}
	if input.LogoURL != nil {
		team.LogoURL = *input.LogoURL
	}
	if input.SquadImageURL != nil {
		team.SquadImageURL = *input.SquadImageURL
	}
	if input.ManagerName != nil {
		team.ManagerName = *input.ManagerName
	}
	if input.Contact != nil {
		team.Contact = *input.Contact
	}
	if input.SocialLinks != nil {
		team.SocialLinks = input.SocialLinks
	}

	next, res, err := s.Dispatch(ctx, mode, UpdateTeam{Team: team})
	if err != nil {
		return models.Team{}, err
	}
	if !res.Success {
		return models.Team{}, res.Err
	}
	updated, _ := next.FindTeam(team.ID)
	return updated, nil
}

// UploadProof stores a match proof image and returns its public URL. The URL
// is attached to the match by a later score update.
func (s *tournamentService) UploadProof(ctx context.Context, mode models.Mode, matchID, fileName, contentType string, body io.Reader) (string, error) {
	if s.opts.Uploader == nil {
		return "", ErrUploadDisabled
	}
	state, err := s.State(mode)
	if err != nil {
		return "", err
	}
	if !matchExists(state, matchID) {
		return "", fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		// браузеры иногда присылают application/octet-stream
		fallback := utils.SafeFileExt(fileName)
		if !proofExtensions[fallback] {
			return "", fmt.Errorf("%w: %v", ErrValidationFailed, err)
		}
		ext = "." + fallback
	}
	key := fmt.Sprintf("proofs/%s/%s/%s%s", mode, matchID, s.opts.NewID(), ext)

	result, err := s.opts.Uploader.Upload(ctx, key, contentType, io.LimitReader(body, maxProofSize))
	if err != nil {
		s.logger.ErrorContext(ctx, "proof upload failed",
			slog.String("mode", string(mode)),
			slog.String("match_id", matchID),
			slog.String("file_name", fileName),
			slog.Any("error", err))
		return "", fmt.Errorf("upload proof: %w", err)
	}

	// матч могли удалить, пока шла загрузка
	if state, err := s.State(mode); err == nil && !matchExists(state, matchID) {
		if err := s.opts.Uploader.Delete(ctx, result.Key); err != nil {
			s.logger.WarnContext(ctx, "failed to delete orphaned proof", slog.String("key", result.Key), slog.Any("error", err))
		}
		return "", fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	return result.Location, nil
}

var proofExtensions = map[string]bool{"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true}

func matchExists(state models.TournamentState, matchID string) bool {
	for _, m := range state.Matches {
		if m.ID == matchID {
			return true
		}
	}
	_, _, ok := state.KnockoutStage.Find(matchID)
	return ok
}

// requestSummary generates the match report in the background. Failures are
// logged and the match simply stays without a summary.
func (s *tournamentService) requestSummary(mode models.Mode, matchID string) {
	s.mu.Lock()
	if s.closed || s.cancel == nil {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()

		state, err := s.State(mode)
		if err != nil {
			return
		}
		idx := -1
		for i, m := range state.Matches {
			if m.ID == matchID {
				idx = i
				break
			}
		}
		if idx < 0 || !state.Matches[idx].Counts() {
			return
		}
		m := state.Matches[idx]

		ctx, cancel := context.WithTimeout(context.Background(), summaryTimeout)
		defer cancel()
		summary, err := s.opts.Summaries.GenerateSummary(ctx, m.TeamA, m.TeamB, *m.ScoreA, *m.ScoreB)
		s.opts.Metrics.SummaryGenerated(err)
		if err != nil {
			s.logger.Warn("match summary generation failed",
				slog.String("mode", string(mode)),
				slog.String("match_id", matchID),
				slog.Any("error", err))
			return
		}

		ms := s.modes[mode]
		ms.mu.Lock()
		current := -1
		for i, cm := range ms.state.Matches {
			if cm.ID == matchID {
				current = i
				break
			}
		}
		// the score may have changed while the summary was being written
		if current < 0 || !sameScore(ms.state.Matches[current], m) {
			ms.mu.Unlock()
			return
		}
		next, res := ReduceWithResult(ms.state, SetMatchSummary{MatchID: matchID, Summary: strings.TrimSpace(summary)})
		if res.Success {
			ms.state = next
			ms.dirty = true
		}
		snapshot := ms.state.Clone()
		ms.mu.Unlock()

		if res.Success {
			s.broadcastState(mode, snapshot)
		}
	}()
}

func sameScore(a, b models.Match) bool {
	return a.Counts() && b.Counts() && *a.ScoreA == *b.ScoreA && *a.ScoreB == *b.ScoreB
}

func (s *tournamentService) flushLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.opts.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.flushAll(ctx)
		case <-ctx.Done():
			finalCtx, cancel := context.WithTimeout(context.Background(), finalFlushTimeout)
			s.flushAll(finalCtx)
			cancel()
			return
		}
	}
}

func (s *tournamentService) flushAll(ctx context.Context) {
	for _, mode := range models.Modes {
		s.flush(ctx, mode)
	}
}

// flush writes the mode document when it has local edits. Edits made while
// the write is in flight keep the mode dirty for the next tick.
func (s *tournamentService) flush(ctx context.Context, mode models.Mode) {
	ms := s.modes[mode]

	ms.mu.Lock()
	if !ms.dirty {
		ms.mu.Unlock()
		return
	}
	doc := ms.state.WithoutComments()
	ms.mu.Unlock()

	started := time.Now()
	err := s.store.Save(ctx, mode, doc, s.origin)
	s.opts.Metrics.FlushCompleted(string(mode), time.Since(started), err)

	ms.mu.Lock()
	if err == nil && ms.state.Version == doc.Version {
		ms.dirty = false
	}
	ms.syncErr = err
	ms.mu.Unlock()

	if err != nil {
		s.logger.Error("failed to flush state",
			slog.String("mode", string(mode)),
			slog.Int64("version", doc.Version),
			slog.Any("error", err))
		s.broadcast(mode, brackets.MessageSyncError, jsonSyncError(err))
	}
}

func (s *tournamentService) setSyncError(mode models.Mode, err error) {
	ms := s.modes[mode]
	ms.mu.Lock()
	ms.syncErr = err
	ms.mu.Unlock()
	s.broadcast(mode, brackets.MessageSyncError, jsonSyncError(err))
}

func jsonSyncError(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}

// broadcastState pushes the public view: rooms are open to anyone.
func (s *tournamentService) broadcastState(mode models.Mode, state models.TournamentState) {
	s.broadcast(mode, brackets.MessageStateUpdated, state.Public())
}

func (s *tournamentService) broadcast(mode models.Mode, messageType string, payload interface{}) {
	if s.opts.Broadcaster == nil {
		return
	}
	room := brackets.RoomForMode(mode)
	s.opts.Broadcaster.BroadcastToRoom(room, brackets.WebSocketMessage{
		Type:    messageType,
		Payload: payload,
		RoomID:  room,
	})
}

// Close stops subscriptions, flushes pending edits and waits for background
// work.
func (s *tournamentService) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cancel := s.cancel
	s.mu.Unlock()

	for _, ms := range s.modes {
		ms.mu.Lock()
		unsubs := ms.unsubscribe
		ms.unsubscribe = nil
		ms.mu.Unlock()
		for _, unsub := range unsubs {
			unsub()
		}
	}
	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Info("tournament service stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("tournament service close: %w", ctx.Err())
	}
}

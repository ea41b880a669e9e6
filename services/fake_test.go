package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/Dosada05/efootball-hub/brackets"
	"github.com/Dosada05/efootball-hub/models"
	"github.com/Dosada05/efootball-hub/repositories"
	"github.com/Dosada05/efootball-hub/storage"
)

type savedDoc struct {
	state  models.TournamentState
	origin string
}

type fakeStateStore struct {
	mu       sync.Mutex
	docs     map[models.Mode]models.TournamentState
	saves    map[models.Mode][]savedDoc
	handlers map[models.Mode]func(models.TournamentState, string)
	saveErr  error
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{
		docs:     make(map[models.Mode]models.TournamentState),
		saves:    make(map[models.Mode][]savedDoc),
		handlers: make(map[models.Mode]func(models.TournamentState, string)),
	}
}

func (f *fakeStateStore) Load(ctx context.Context, mode models.Mode) (models.TournamentState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[mode]
	if !ok {
		return models.TournamentState{}, repositories.ErrStateNotFound
	}
	return doc.Clone(), nil
}

func (f *fakeStateStore) Save(ctx context.Context, mode models.Mode, state models.TournamentState, origin string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.docs[mode] = state.Clone()
	f.saves[mode] = append(f.saves[mode], savedDoc{state: state.Clone(), origin: origin})
	return nil
}

func (f *fakeStateStore) Subscribe(ctx context.Context, mode models.Mode, onData func(models.TournamentState, string)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[mode] = onData
	return func() {
		f.mu.Lock()
		delete(f.handlers, mode)
		f.mu.Unlock()
	}, nil
}

func (f *fakeStateStore) setSaveErr(err error) {
	f.mu.Lock()
	f.saveErr = err
	f.mu.Unlock()
}

func (f *fakeStateStore) savesFor(mode models.Mode) []savedDoc {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]savedDoc(nil), f.saves[mode]...)
}

// push delivers a snapshot the way the change feed would.
func (f *fakeStateStore) push(mode models.Mode, state models.TournamentState, origin string) {
	f.mu.Lock()
	h := f.handlers[mode]
	f.mu.Unlock()
	if h != nil {
		h(state, origin)
	}
}

type fakeCommentStore struct {
	mu       sync.Mutex
	comments map[models.Mode]models.CommentsByMatch
	added    []models.Comment
	addErr   error
	handlers map[models.Mode]func(models.CommentsByMatch)
}

func newFakeCommentStore() *fakeCommentStore {
	return &fakeCommentStore{
		comments: make(map[models.Mode]models.CommentsByMatch),
		handlers: make(map[models.Mode]func(models.CommentsByMatch)),
	}
}

func (f *fakeCommentStore) ListByMode(ctx context.Context, mode models.Mode) (models.CommentsByMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.comments[mode].Clone(), nil
}

func (f *fakeCommentStore) Add(ctx context.Context, mode models.Mode, comment models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, comment)
	return nil
}

func (f *fakeCommentStore) Subscribe(ctx context.Context, mode models.Mode, onComments func(models.CommentsByMatch)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[mode] = onComments
	return func() {}, nil
}

func (f *fakeCommentStore) push(mode models.Mode, comments models.CommentsByMatch) {
	f.mu.Lock()
	h := f.handlers[mode]
	f.mu.Unlock()
	if h != nil {
		h(comments)
	}
}

func (f *fakeCommentStore) addedComments() []models.Comment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Comment(nil), f.added...)
}

type fakeBroadcaster struct {
	mu       sync.Mutex
	messages []brackets.WebSocketMessage
}

func (f *fakeBroadcaster) BroadcastToRoom(roomID string, message interface{}) {
	msg, ok := message.(brackets.WebSocketMessage)
	if !ok {
		return
	}
	f.mu.Lock()
	f.messages = append(f.messages, msg)
	f.mu.Unlock()
}

func (f *fakeBroadcaster) ofType(messageType string) []brackets.WebSocketMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []brackets.WebSocketMessage
	for _, m := range f.messages {
		if m.Type == messageType {
			out = append(out, m)
		}
	}
	return out
}

type fakeUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	// onUpload runs after the object is stored.
	onUpload func()
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{objects: make(map[string][]byte)}
}

func (f *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.objects[key] = buf.Bytes()
	hook := f.onUpload
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return &storage.UploadResult{Key: key, Location: f.GetPublicURL(key), Size: int64(buf.Len())}, nil
}

func (f *fakeUploader) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.example/" + key
}

type fakeSummaries struct {
	mu    sync.Mutex
	calls int
	err   error
	// block, when set, holds the generator until closed.
	block chan struct{}
}

func (f *fakeSummaries) GenerateSummary(ctx context.Context, teamA, teamB models.Team, scoreA, scoreB int) (string, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("%s %d-%d %s", teamA.Name, scoreA, scoreB, teamB.Name), nil
}

// sequentialIDs returns id-1, id-2, ... so tests can predict generated ids.
func sequentialIDs() func() string {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

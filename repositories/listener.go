package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lib/pq"
)

const (
	listenerMinReconnect = 10 * time.Second
	listenerMaxReconnect = time.Minute
	listenerPingEvery    = 90 * time.Second
)

// ChangeFeed delivers NOTIFY payloads per channel. An empty payload means the
// connection was re-established and listeners should refetch.
type ChangeFeed interface {
	Subscribe(channel string, fn func(payload string)) (func(), error)
}

// PostgresNotifier fans out notifications of one pq.Listener connection.
type PostgresNotifier struct {
	listener *pq.Listener
	logger   *slog.Logger

	mu       sync.RWMutex
	handlers map[string]map[int]func(string)
	nextID   int
}

func NewPostgresNotifier(dsn string, logger *slog.Logger) *PostgresNotifier {
	n := &PostgresNotifier{
		logger:   logger,
		handlers: make(map[string]map[int]func(string)),
	}
	n.listener = pq.NewListener(dsn, listenerMinReconnect, listenerMaxReconnect, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnectionAttemptFailed, pq.ListenerEventDisconnected:
			logger.Warn("postgres listener connection problem", slog.Int("event", int(ev)), slog.Any("error", err))
		case pq.ListenerEventReconnected:
			logger.Info("postgres listener reconnected")
		}
	})
	return n
}

func (n *PostgresNotifier) Subscribe(channel string, fn func(payload string)) (func(), error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.handlers[channel]; !ok {
		if err := n.listener.Listen(channel); err != nil && !errors.Is(err, pq.ErrChannelAlreadyOpen) {
			return nil, fmt.Errorf("failed to listen on %s: %w", channel, err)
		}
		n.handlers[channel] = make(map[int]func(string))
	}
	id := n.nextID
	n.nextID++
	n.handlers[channel][id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.handlers[channel], id)
	}, nil
}

// Run dispatches notifications until ctx is cancelled.
func (n *PostgresNotifier) Run(ctx context.Context) {
	ticker := time.NewTicker(listenerPingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case notification := <-n.listener.Notify:
			if notification == nil {
				// pq sends nil after a reconnect, anything may have been missed
				n.dispatchAll()
				continue
			}
			n.dispatch(notification.Channel, notification.Extra)
		case <-ticker.C:
			go func() {
				if err := n.listener.Ping(); err != nil {
					n.logger.Warn("postgres listener ping failed", slog.Any("error", err))
				}
			}()
		}
	}
}

func (n *PostgresNotifier) dispatch(channel, payload string) {
	n.mu.RLock()
	fns := make([]func(string), 0, len(n.handlers[channel]))
	for _, fn := range n.handlers[channel] {
		fns = append(fns, fn)
	}
	n.mu.RUnlock()

	for _, fn := range fns {
		fn(payload)
	}
}

func (n *PostgresNotifier) dispatchAll() {
	n.mu.RLock()
	channels := make([]string, 0, len(n.handlers))
	for ch := range n.handlers {
		channels = append(channels, ch)
	}
	n.mu.RUnlock()

	for _, ch := range channels {
		n.dispatch(ch, "")
	}
}

func (n *PostgresNotifier) Close() error {
	return n.listener.Close()
}

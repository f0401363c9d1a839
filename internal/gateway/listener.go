package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EventCounter records decoded notifications by table and type.
type EventCounter interface {
	Observe(table string, event EventType)
}

// Listener feeds a [Hub] from PostgreSQL LISTEN/NOTIFY.
//
// It holds one pooled connection for its whole lifetime. A lost connection
// ends Run with an error; there is no reconnect loop.
type Listener struct {
	pool    *pgxpool.Pool
	hub     *Hub
	channel string
	counter EventCounter
	logger  *slog.Logger

	listening atomic.Bool
	started   chan struct{}
	startOnce sync.Once
}

// ErrNotListening is reported by [Listener.Ready] while Run is not
// attached to the channel.
var ErrNotListening = errors.New("gateway: change feed is not listening")

// NewListener creates a listener for channel. counter may be nil.
func NewListener(pool *pgxpool.Pool, hub *Hub, channel string, counter EventCounter, logger *slog.Logger) *Listener {
	return &Listener{pool: pool, hub: hub, channel: channel, counter: counter, logger: logger, started: make(chan struct{})}
}

// Run listens until ctx is cancelled. It returns nil on cancellation.
func (l *Listener) Run(ctx context.Context) error {
	connection, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("gateway: acquire listener connection: %w", wrap(err))
	}
	defer connection.Release()

	if _, err := connection.Exec(ctx, "LISTEN "+ident(l.channel)); err != nil {
		return fmt.Errorf("gateway: listen on %s: %w", l.channel, wrap(err))
	}

	l.listening.Store(true)
	defer l.listening.Store(false)
	l.startOnce.Do(func() { close(l.started) })

	l.logger.Info("realtime_listener_started", slog.String("channel", l.channel))

	for {
		notification, err := connection.Conn().WaitForNotification(ctx)
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				l.logger.Info("realtime_listener_stopped", slog.String("channel", l.channel))
				return nil
			}
			return fmt.Errorf("gateway: wait for notification: %w", wrap(err))
		}

		change, err := DecodeNotification(notification.Payload)
		if err != nil {
			l.logger.Warn("realtime_payload_invalid", slog.String("error", err.Error()))
			continue
		}

		if change.Truncated && change.Type != EventDelete {
			if err := l.hydrate(ctx, &change); err != nil {
				l.logger.Warn("realtime_hydrate_failed",
					slog.String("table", change.Table),
					slog.String("error", err.Error()),
				)
				continue
			}
		}

		if l.counter != nil {
			l.counter.Observe(change.Table, change.Type)
		}
		l.hub.Dispatch(change)
	}
}

// Ready reports whether the listener is attached to its channel.
func (l *Listener) Ready(context.Context) error {
	if !l.listening.Load() {
		return ErrNotListening
	}
	return nil
}

// Started is closed once Run is first attached to the channel. Consumers
// that fetch a snapshot wait for it so no change slips in between.
func (l *Listener) Started() <-chan struct{} {
	return l.started
}

// hydrate replaces a key-only record with the full row.
func (l *Listener) hydrate(ctx context.Context, change *Change) error {
	var key struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(change.Record, &key); err != nil || key.ID == "" {
		return fmt.Errorf("truncated record has no id")
	}

	var full json.RawMessage
	sql := "SELECT row_to_json(t) FROM " + ident(change.Table) + " t WHERE t.id = $1"
	if err := l.pool.QueryRow(ctx, sql, key.ID).Scan(&full); err != nil {
		return wrap(err)
	}

	change.Record = full
	change.Truncated = false
	return nil
}

// DecodeNotification parses a trigger payload into a [Change].
func DecodeNotification(payload string) (Change, error) {
	var change Change
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		return Change{}, fmt.Errorf("gateway: invalid change payload: %w", err)
	}
	if change.Table == "" {
		return Change{}, fmt.Errorf("gateway: change payload has no table")
	}

	switch change.Type {
	case EventInsert, EventUpdate, EventDelete:
	default:
		return Change{}, fmt.Errorf("gateway: unknown change type %q", change.Type)
	}

	return change, nil
}

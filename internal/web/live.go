package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/taibuivan/narratives/internal/comment"
	"github.com/taibuivan/narratives/internal/gateway"
	"github.com/taibuivan/narratives/internal/identity"
	"github.com/taibuivan/narratives/internal/literature"
	"github.com/taibuivan/narratives/internal/platform/constants"
	"github.com/taibuivan/narratives/internal/platform/ctxutil"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Frame is one message on a live connection.
type Frame struct {
	Type  string `json:"type"`
	State any    `json:"state"`
}

// Frame types.
const (
	FrameWorks    = "works"
	FrameComments = "comments"
	FrameSession  = "session"
)

type sessionFrame struct {
	Present bool   `json:"present"`
	Email   string `json:"email,omitempty"`
}

// mailbox keeps the latest frame of each type until the writer sends it.
// Older states of the same type are superseded, never queued.
type mailbox struct {
	mu     sync.Mutex
	latest map[string]any
	order  []string
	signal chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{latest: make(map[string]any), signal: make(chan struct{}, 1)}
}

func (m *mailbox) put(kind string, state any) {
	m.mu.Lock()
	if _, queued := m.latest[kind]; !queued {
		m.order = append(m.order, kind)
	}
	m.latest[kind] = state
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
}

func (m *mailbox) drain() []Frame {
	m.mu.Lock()
	defer m.mu.Unlock()

	frames := make([]Frame, 0, len(m.order))
	for _, kind := range m.order {
		frames = append(frames, Frame{Type: kind, State: m.latest[kind]})
	}
	clear(m.latest)
	m.order = m.order[:0]
	return frames
}

// liveWorks streams snapshots of the works list and the viewer's session.
func (handler *Handler) liveWorks(writer http.ResponseWriter, request *http.Request) {
	handler.serveLive(writer, request, func(_ context.Context, box *mailbox) (func(), error) {
		box.put(FrameWorks, handler.deps.Works.State())
		cancel := handler.deps.Works.Watch(func(state literature.ListState) {
			box.put(FrameWorks, state)
		})
		return cancel, nil
	})
}

// liveWork streams the comment thread of one work.
func (handler *Handler) liveWork(writer http.ResponseWriter, request *http.Request) {
	id := chi.URLParam(request, "id")

	handler.serveLive(writer, request, func(ctx context.Context, box *mailbox) (func(), error) {
		thread := comment.NewThread(handler.deps.CommentRepo, handler.deps.Feed, id, handler.deps.Logger)
		thread.Watch(func(state comment.ThreadState) {
			box.put(FrameComments, state)
		})
		if err := thread.Activate(ctx); err != nil && thread.State().Error == "" {
			thread.Deactivate()
			return nil, err
		}
		box.put(FrameComments, thread.State())
		return thread.Deactivate, nil
	})
}

// serveLive upgrades the connection, attaches the session tracker and runs
// the write loop until the client goes away. attach subscribes the
// connection to its hook and returns the matching release.
func (handler *Handler) serveLive(writer http.ResponseWriter, request *http.Request, attach func(context.Context, *mailbox) (func(), error)) {
	logger := ctxutil.GetLogger(request.Context())

	conn, err := upgrader.Upgrade(writer, request, nil)
	if err != nil {
		logger.Warn("live_upgrade_failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	if gauge := handler.deps.LiveGauge; gauge != nil {
		gauge.Inc()
		defer gauge.Dec()
	}

	ctx, cancel := context.WithCancel(context.WithoutCancel(request.Context()))
	defer cancel()

	box := newMailbox()

	release, err := attach(ctx, box)
	if err != nil {
		logger.Warn("live_attach_failed", slog.String("error", err.Error()))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "unavailable"),
			time.Now().Add(writeWait))
		return
	}
	defer release()

	tracker, err := identity.Track(ctx, handler.deps.Auth, identity.Token(request))
	if err != nil {
		logger.Warn("live_session_lookup_failed", slog.String("error", err.Error()))
	} else {
		defer tracker.Close()
		box.put(FrameSession, presence(tracker.Current()))
		tracker.Watch(func(session *gateway.Session) {
			box.put(FrameSession, presence(session))
		})
	}

	quit := make(chan struct{})
	go func() {
		defer close(quit)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				var closeErr *websocket.CloseError
				if !errors.As(err, &closeErr) {
					logger.Debug("live_read_failed", slog.String("error", err.Error()))
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(constants.LivePingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-box.signal:
			for _, frame := range box.drain() {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(frame); err != nil {
					logger.Debug("live_write_failed", slog.String("error", err.Error()))
					return
				}
			}
		}
	}
}

func presence(session *gateway.Session) sessionFrame {
	if session == nil {
		return sessionFrame{}
	}
	return sessionFrame{Present: true, Email: session.User.Email}
}

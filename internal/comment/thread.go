package comment

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/taibuivan/narratives/internal/gateway"
	"github.com/taibuivan/narratives/internal/platform/apperr"
	"github.com/taibuivan/narratives/internal/platform/database/schema"
)

// ThreadState is a point-in-time copy of what a [Thread] holds.
type ThreadState struct {
	Comments  []Comment `json:"comments"`
	IsLoading bool      `json:"is_loading"`
	Error     string    `json:"error,omitempty"`
}

// Thread holds the comments of one work, oldest first, and follows new
// comments on the change feed.
//
// A comment is merged at most once by id, so the realtime echo of a
// comment this thread just added is ignored.
type Thread struct {
	repo         Repository
	feed         gateway.Subscriber
	literatureID string
	logger       *slog.Logger

	mu           sync.Mutex
	state        ThreadState
	active       bool
	generation   uint64
	fetchSeq     uint64
	inFlight     int
	pending      []Comment
	subscription *gateway.Subscription
	watchers     map[int]func(ThreadState)
	nextWatcher  int

	publishMu sync.Mutex
}

// NewThread creates an inactive thread for literatureID.
func NewThread(repo Repository, feed gateway.Subscriber, literatureID string, logger *slog.Logger) *Thread {
	return &Thread{
		repo:         repo,
		feed:         feed,
		literatureID: literatureID,
		logger:       logger,
		watchers:     make(map[int]func(ThreadState)),
	}
}

// Activate subscribes to new comments on the work and loads the existing
// ones. An empty work id does neither.
func (t *Thread) Activate(ctx context.Context) error {
	t.mu.Lock()
	if t.active || t.literatureID == "" {
		t.mu.Unlock()
		return nil
	}
	t.active = true
	t.generation++
	generation := t.generation
	t.mu.Unlock()

	subscription, err := t.feed.Subscribe(gateway.ChangeFilter{
		Table:  schema.Comments.Table,
		Event:  gateway.EventInsert,
		Filter: schema.Comments.LiteratureID + "=eq." + t.literatureID,
	}, t.onInsert)
	if err != nil {
		t.mu.Lock()
		if t.generation == generation {
			t.active = false
		}
		t.mu.Unlock()
		return err
	}

	t.mu.Lock()
	if t.generation != generation {
		t.mu.Unlock()
		subscription.Unsubscribe()
		return nil
	}
	t.subscription = subscription
	t.mu.Unlock()

	return t.Refetch(ctx)
}

// Deactivate releases the subscription and drops every watcher.
func (t *Thread) Deactivate() {
	t.mu.Lock()
	if !t.active {
		t.mu.Unlock()
		return
	}
	t.active = false
	t.generation++
	t.inFlight = 0
	t.pending = nil
	t.state.IsLoading = false
	subscription := t.subscription
	t.subscription = nil
	clear(t.watchers)
	t.mu.Unlock()

	subscription.Unsubscribe()
}

// State returns a copy of the current state.
func (t *Thread) State() ThreadState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot()
}

// Watch calls fn with every new state until cancel is called or the thread
// is deactivated.
func (t *Thread) Watch(fn func(ThreadState)) (cancel func()) {
	t.mu.Lock()
	t.nextWatcher++
	id := t.nextWatcher
	t.watchers[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.watchers, id)
		t.mu.Unlock()
	}
}

// Refetch reloads the comments. Only the latest fetch is applied.
func (t *Thread) Refetch(ctx context.Context) error {
	t.mu.Lock()
	if !t.active {
		t.mu.Unlock()
		return nil
	}
	t.fetchSeq++
	seq, generation := t.fetchSeq, t.generation
	t.inFlight++
	t.state.IsLoading = true
	t.state.Error = ""
	t.mu.Unlock()
	t.publish()

	comments, err := t.repo.ListComments(ctx, t.literatureID)

	t.mu.Lock()
	if generation != t.generation {
		t.mu.Unlock()
		return err
	}
	t.inFlight--
	if seq == t.fetchSeq {
		if err != nil {
			t.state.Error = apperr.Message(err)
		} else {
			merged := slices.Clone(comments)
			for _, comment := range t.pending {
				merged = merge(merged, comment)
			}
			t.state.Comments = merged
		}
	}
	if t.inFlight == 0 {
		t.pending = nil
	}
	t.state.IsLoading = t.inFlight > 0
	t.mu.Unlock()
	t.publish()

	if err != nil {
		t.logger.Warn("comments_fetch_failed",
			slog.String("literature_id", t.literatureID),
			slog.String("error", err.Error()),
		)
	}
	return err
}

// AddComment inserts input remotely and returns the stored rows. The rows
// are merged into the thread right away.
func (t *Thread) AddComment(ctx context.Context, input Input) ([]Comment, error) {
	comments, err := t.repo.CreateComment(ctx, t.literatureID, input)
	if err != nil {
		t.mu.Lock()
		t.state.Error = apperr.Message(err)
		t.mu.Unlock()
		t.publish()
		return nil, err
	}

	for _, comment := range comments {
		t.apply(comment)
	}
	t.publish()
	return comments, nil
}

func (t *Thread) onInsert(change gateway.Change) {
	comment, err := gateway.Decode[Comment](change)
	if err != nil || comment.ID == "" {
		t.logger.Warn("comment_change_invalid", slog.String("literature_id", t.literatureID))
		return
	}

	t.apply(comment)
	t.publish()
}

func (t *Thread) apply(comment Comment) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active || comment.LiteratureID != t.literatureID {
		return
	}
	t.state.Comments = merge(slices.Clone(t.state.Comments), comment)
	if t.inFlight > 0 {
		t.pending = append(t.pending, comment)
	}
}

func (t *Thread) snapshot() ThreadState {
	state := t.state
	state.Comments = slices.Clone(t.state.Comments)
	if state.Comments == nil {
		state.Comments = []Comment{}
	}
	return state
}

func (t *Thread) publish() {
	t.publishMu.Lock()
	defer t.publishMu.Unlock()

	t.mu.Lock()
	state := t.snapshot()
	watchers := make([]func(ThreadState), 0, len(t.watchers))
	for _, fn := range t.watchers {
		watchers = append(watchers, fn)
	}
	t.mu.Unlock()

	for _, fn := range watchers {
		fn(state)
	}
}

package literature

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/taibuivan/narratives/internal/gateway"
	"github.com/taibuivan/narratives/internal/platform/apperr"
	"github.com/taibuivan/narratives/internal/platform/database/schema"
)

// ListState is a point-in-time copy of what a [List] holds.
type ListState struct {
	Works     []Work `json:"works"`
	IsLoading bool   `json:"is_loading"`
	Error     string `json:"error,omitempty"`
}

// pendingChange is a realtime change received while a fetch was in flight.
// It is replayed over that fetch's result.
type pendingChange struct {
	after uint64
	work  Work
	gone  bool
}

// List keeps every work in publication order and follows the change feed.
//
// Local state only changes through a fetch or a realtime change; mutations
// go to the repository and come back through the feed. Every merge is an
// idempotent upsert or removal by id followed by a re-sort.
type List struct {
	repo   Repository
	feed   gateway.Subscriber
	logger *slog.Logger

	mu           sync.Mutex
	state        ListState
	active       bool
	generation   uint64
	fetchSeq     uint64
	appliedSeq   uint64
	inFlight     int
	pending      []pendingChange
	subscription *gateway.Subscription
	watchers     map[int]func(ListState)
	nextWatcher  int

	publishMu sync.Mutex
}

// NewList creates an inactive list hook.
func NewList(repo Repository, feed gateway.Subscriber, logger *slog.Logger) *List {
	return &List{
		repo:     repo,
		feed:     feed,
		logger:   logger,
		watchers: make(map[int]func(ListState)),
	}
}

// Activate subscribes to the literature table and loads every work.
// Calling it on an active list is a no-op.
func (l *List) Activate(ctx context.Context) error {
	l.mu.Lock()
	if l.active {
		l.mu.Unlock()
		return nil
	}
	l.active = true
	l.generation++
	generation := l.generation
	l.mu.Unlock()

	subscription, err := l.feed.Subscribe(gateway.ChangeFilter{
		Table: schema.Literature.Table,
		Event: gateway.EventAll,
	}, l.onChange)
	if err != nil {
		l.mu.Lock()
		if l.generation == generation {
			l.active = false
		}
		l.mu.Unlock()
		return err
	}

	l.mu.Lock()
	if l.generation != generation {
		// Deactivated while subscribing.
		l.mu.Unlock()
		subscription.Unsubscribe()
		return nil
	}
	l.subscription = subscription
	l.mu.Unlock()

	return l.Refetch(ctx)
}

// Deactivate releases the subscription and drops every watcher. Fetches
// still in flight are discarded when they complete.
func (l *List) Deactivate() {
	l.mu.Lock()
	if !l.active {
		l.mu.Unlock()
		return
	}
	l.active = false
	l.generation++
	l.pending = nil
	l.inFlight = 0
	l.state.IsLoading = false
	subscription := l.subscription
	l.subscription = nil
	clear(l.watchers)
	l.mu.Unlock()

	subscription.Unsubscribe()
}

// State returns a copy of the current state.
func (l *List) State() ListState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

// Watch calls fn with every new state until cancel is called or the list
// is deactivated.
func (l *List) Watch(fn func(ListState)) (cancel func()) {
	l.mu.Lock()
	l.nextWatcher++
	id := l.nextWatcher
	l.watchers[id] = fn
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.watchers, id)
		l.mu.Unlock()
	}
}

// Refetch reloads every work. Failures are stored as a normalized message
// and returned; the last known works are kept.
func (l *List) Refetch(ctx context.Context) error {
	l.mu.Lock()
	if !l.active {
		l.state.IsLoading = false
		l.mu.Unlock()
		return nil
	}
	l.fetchSeq++
	seq, generation := l.fetchSeq, l.generation
	l.inFlight++
	l.state.IsLoading = true
	l.state.Error = ""
	l.mu.Unlock()
	l.publish()

	works, err := l.repo.ListWorks(ctx)

	l.mu.Lock()
	if generation != l.generation {
		l.mu.Unlock()
		return err
	}
	l.inFlight--
	if seq > l.appliedSeq {
		l.appliedSeq = seq
		if err != nil {
			l.state.Error = apperr.Message(err)
		} else {
			merged := slices.Clone(works)
			for _, change := range l.pending {
				if change.after >= seq {
					merged = merge(merged, change.work, change.gone)
				}
			}
			Sort(merged)
			l.state.Works = merged
		}
	}
	if l.inFlight == 0 {
		l.pending = nil
	}
	l.state.IsLoading = l.inFlight > 0
	l.mu.Unlock()
	l.publish()

	if err != nil {
		l.logger.Warn("works_fetch_failed", slog.String("error", err.Error()))
	}
	return err
}

// # Mutations

// Add inserts a new work and returns the stored row.
func (l *List) Add(ctx context.Context, draft Draft) (*Work, error) {
	works, err := l.repo.CreateWork(ctx, draft)
	if err != nil {
		return nil, l.fail(err)
	}
	if len(works) == 0 {
		return nil, nil
	}
	return &works[0], nil
}

// Update applies patch to the work with id.
func (l *List) Update(ctx context.Context, id string, patch Patch) error {
	if err := l.repo.UpdateWork(ctx, id, patch); err != nil {
		return l.fail(err)
	}
	return nil
}

// Remove deletes the work with id.
func (l *List) Remove(ctx context.Context, id string) error {
	if err := l.repo.DeleteWork(ctx, id); err != nil {
		return l.fail(err)
	}
	return nil
}

func (l *List) fail(err error) error {
	l.mu.Lock()
	l.state.Error = apperr.Message(err)
	l.mu.Unlock()
	l.publish()
	return err
}

// # Realtime

func (l *List) onChange(change gateway.Change) {
	work, err := gateway.Decode[Work](change)
	if err != nil {
		l.logger.Warn("works_change_invalid", slog.String("error", err.Error()))
		return
	}
	if work.ID == "" {
		l.logger.Warn("works_change_invalid", slog.String("error", "change has no id"))
		return
	}
	gone := change.Type == gateway.EventDelete

	l.mu.Lock()
	if !l.active {
		l.mu.Unlock()
		return
	}
	works := merge(slices.Clone(l.state.Works), work, gone)
	Sort(works)
	l.state.Works = works
	if l.inFlight > 0 {
		l.pending = append(l.pending, pendingChange{after: l.fetchSeq, work: work, gone: gone})
	}
	l.mu.Unlock()
	l.publish()
}

// merge upserts or removes work by id. Applying the same change twice
// yields the same slice.
func merge(works []Work, work Work, gone bool) []Work {
	index := slices.IndexFunc(works, func(existing Work) bool { return existing.ID == work.ID })
	switch {
	case gone && index >= 0:
		return slices.Delete(works, index, index+1)
	case gone:
		return works
	case index >= 0:
		works[index] = work
		return works
	default:
		return append(works, work)
	}
}

// # Helpers

func (l *List) snapshot() ListState {
	state := l.state
	state.Works = slices.Clone(l.state.Works)
	if state.Works == nil {
		state.Works = []Work{}
	}
	return state
}

// publish sends the current state to every watcher. Calls are serialized so
// watchers never see states out of order.
func (l *List) publish() {
	l.publishMu.Lock()
	defer l.publishMu.Unlock()

	l.mu.Lock()
	state := l.snapshot()
	watchers := make([]func(ListState), 0, len(l.watchers))
	for _, fn := range l.watchers {
		watchers = append(watchers, fn)
	}
	l.mu.Unlock()

	for _, fn := range watchers {
		fn(state)
	}
}

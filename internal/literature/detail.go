package literature

import (
	"context"
	"log/slog"
	"sync"

	"github.com/taibuivan/narratives/internal/platform/apperr"
)

// DetailState is a point-in-time copy of what a [Detail] holds.
type DetailState struct {
	Work      *Work  `json:"work"`
	IsLoading bool   `json:"is_loading"`
	Error     string `json:"error,omitempty"`
}

// Detail loads one work by id. It has no realtime subscription. Results
// that arrive after Deactivate, or from a superseded fetch, are dropped.
type Detail struct {
	repo   Repository
	id     string
	logger *slog.Logger

	mu     sync.Mutex
	state  DetailState
	active bool
	seq    uint64
}

// NewDetail creates a detail hook for id. An empty id never issues a request.
func NewDetail(repo Repository, id string, logger *slog.Logger) *Detail {
	return &Detail{repo: repo, id: id, logger: logger, state: DetailState{IsLoading: true}}
}

// Activate runs the first fetch.
func (d *Detail) Activate(ctx context.Context) error {
	d.mu.Lock()
	d.active = true
	d.mu.Unlock()
	return d.Refetch(ctx)
}

// Deactivate ends the hook's lifetime. An in-flight fetch is discarded.
func (d *Detail) Deactivate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active = false
	d.seq++
	d.state.IsLoading = false
}

// Refetch loads the work again. Failures are stored as a normalized message
// and returned; there is no automatic retry.
func (d *Detail) Refetch(ctx context.Context) error {
	d.mu.Lock()
	if !d.active {
		d.mu.Unlock()
		return nil
	}
	if d.id == "" {
		d.state.IsLoading = false
		d.mu.Unlock()
		return nil
	}
	d.seq++
	seq := d.seq
	d.state.IsLoading = true
	d.state.Error = ""
	d.mu.Unlock()

	work, err := d.repo.GetWork(ctx, d.id)

	d.mu.Lock()
	defer d.mu.Unlock()
	if seq != d.seq {
		return err
	}

	d.state.IsLoading = false
	if err != nil {
		d.state.Error = apperr.Message(err)
		d.logger.Warn("work_fetch_failed", slog.String("work_id", d.id), slog.String("error", err.Error()))
		return err
	}
	d.state.Work = work
	return nil
}

// State returns a copy of the current state.
func (d *Detail) State() DetailState {
	d.mu.Lock()
	defer d.mu.Unlock()

	state := d.state
	if d.state.Work != nil {
		work := *d.state.Work
		state.Work = &work
	}
	return state
}

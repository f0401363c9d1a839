package gateway

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// EventType names a row change. [EventAll] matches every type in a filter.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
	EventAll    EventType = "*"
)

// Change is one row-level notification from the change feed.
type Change struct {
	Table           string          `json:"table"`
	Type            EventType       `json:"type"`
	Record          json.RawMessage `json:"record"`
	OldRecord       json.RawMessage `json:"old_record"`
	CommitTimestamp time.Time       `json:"commit_timestamp"`

	// Truncated is set by the trigger when the row was too large for a
	// NOTIFY payload and only key columns were sent.
	Truncated bool `json:"truncated,omitempty"`
}

// Decode unmarshals the new row (or the old row for deletes) into T.
func Decode[T any](change Change) (T, error) {
	var row T
	raw := change.Record
	if change.Type == EventDelete || len(raw) == 0 || string(raw) == "null" {
		raw = change.OldRecord
	}
	if err := json.Unmarshal(raw, &row); err != nil {
		return row, fmt.Errorf("gateway: decode %s %s: %w", change.Table, change.Type, err)
	}
	return row, nil
}

// RowFilter restricts a subscription to rows where Column equals Value.
type RowFilter struct {
	Column string
	Value  string
}

// ParseRowFilter parses the "column=eq.value" syntax. Only equality is supported.
func ParseRowFilter(expression string) (RowFilter, error) {
	column, rest, found := strings.Cut(expression, "=")
	if !found || column == "" {
		return RowFilter{}, fmt.Errorf("gateway: invalid row filter %q", expression)
	}

	value, found := strings.CutPrefix(rest, "eq.")
	if !found {
		return RowFilter{}, fmt.Errorf("gateway: unsupported row filter operator in %q", expression)
	}

	return RowFilter{Column: column, Value: value}, nil
}

// ChangeFilter selects which changes a subscription receives.
type ChangeFilter struct {
	Table  string
	Event  EventType
	Filter string
}

// Handler receives matching changes. Calls for one hub are sequential.
type Handler func(Change)

// Subscriber is the realtime capability data-access components depend on.
type Subscriber interface {
	Subscribe(filter ChangeFilter, handler Handler) (*Subscription, error)
}

// Subscription is a cancellation handle. Unsubscribe is safe to call more
// than once and from any goroutine.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// NewSubscription wraps a cancel function in an idempotent handle.
func NewSubscription(cancel func()) *Subscription {
	return &Subscription{cancel: cancel}
}

// Unsubscribe stops delivery. Only the first call has an effect.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}

// Gauge is the metric the hub reports its subscription count to.
type Gauge interface {
	Inc()
	Dec()
}

type subscriber struct {
	table   string
	event   EventType
	row     *RowFilter
	handler Handler
}

// Hub fans change notifications out to in-process subscribers.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uint64]*subscriber
	nextID      uint64
	gauge       Gauge
	logger      *slog.Logger
}

// NewHub creates an empty hub. gauge may be nil.
func NewHub(logger *slog.Logger, gauge Gauge) *Hub {
	return &Hub{
		subscribers: make(map[uint64]*subscriber),
		gauge:       gauge,
		logger:      logger,
	}
}

// Subscribe registers handler for changes matching filter.
func (h *Hub) Subscribe(filter ChangeFilter, handler Handler) (*Subscription, error) {
	if filter.Table == "" {
		return nil, fmt.Errorf("gateway: subscription requires a table")
	}
	if handler == nil {
		return nil, fmt.Errorf("gateway: subscription requires a handler")
	}

	entry := &subscriber{table: filter.Table, event: filter.Event, handler: handler}
	if entry.event == "" {
		entry.event = EventAll
	}
	if filter.Filter != "" {
		row, err := ParseRowFilter(filter.Filter)
		if err != nil {
			return nil, err
		}
		entry.row = &row
	}

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subscribers[id] = entry
	h.mu.Unlock()

	if h.gauge != nil {
		h.gauge.Inc()
	}

	return NewSubscription(func() { h.remove(id) }), nil
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	_, found := h.subscribers[id]
	delete(h.subscribers, id)
	h.mu.Unlock()

	if found && h.gauge != nil {
		h.gauge.Dec()
	}
}

// Len reports the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Dispatch delivers change to every matching subscriber, one at a time.
// A panicking handler is logged and does not stop delivery to the rest.
func (h *Hub) Dispatch(change Change) {
	h.mu.RLock()
	matched := make([]*subscriber, 0, len(h.subscribers))
	for _, entry := range h.subscribers {
		if entry.matches(change) {
			matched = append(matched, entry)
		}
	}
	h.mu.RUnlock()

	for _, entry := range matched {
		h.deliver(entry, change)
	}
}

func (h *Hub) deliver(entry *subscriber, change Change) {
	defer func() {
		if recovered := recover(); recovered != nil {
			h.logger.Error("realtime_handler_panicked",
				slog.String("table", change.Table),
				slog.Any("error", recovered),
			)
		}
	}()
	entry.handler(change)
}

func (entry *subscriber) matches(change Change) bool {
	if entry.table != change.Table {
		return false
	}
	if entry.event != EventAll && entry.event != change.Type {
		return false
	}
	if entry.row == nil {
		return true
	}

	raw := change.Record
	if change.Type == EventDelete {
		raw = change.OldRecord
	}

	var row map[string]any
	if err := json.Unmarshal(raw, &row); err != nil {
		return false
	}

	value, found := row[entry.row.Column]
	return found && value != nil && fmt.Sprint(value) == entry.row.Value
}

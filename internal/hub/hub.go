package hub

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/atikulmunna/skein/internal/service"
	"github.com/atikulmunna/skein/internal/watcher"
)

const (
	subscriberBuffer = 16

	// DefaultDebounce coalesces bursts of file events into one refresh.
	DefaultDebounce = 250 * time.Millisecond
)

// Summarizer produces the current summary of the logs directory.
type Summarizer interface {
	Summary(ctx context.Context) (service.SummaryResponse, error)
}

// Update is one refreshed view broadcast to subscribers.
type Update struct {
	Seq     uint64                   `json:"seq"`
	Reason  string                   `json:"reason"`
	Summary *service.SummaryResponse `json:"summary,omitempty"`
	Error   string                   `json:"error,omitempty"`
}

// Hub recomputes the summary when the watcher reports a change and
// broadcasts it to every subscriber.
type Hub struct {
	source   Summarizer
	input    <-chan watcher.Event
	debounce time.Duration

	mu          sync.RWMutex
	subscribers []chan Update
	latest      *Update
	seq         uint64
	dropped     int64
}

// New creates a Hub that refreshes from source whenever input delivers an event.
// A nil input means refreshes only happen through Refresh.
func New(input <-chan watcher.Event, source Summarizer) *Hub {
	return &Hub{
		source:   source,
		input:    input,
		debounce: DefaultDebounce,
	}
}

// SetDebounce changes the quiet period before a refresh. Call before Start.
func (h *Hub) SetDebounce(d time.Duration) {
	h.debounce = d
}

// Subscribe returns a buffered channel that will receive every update.
func (h *Hub) Subscribe() <-chan Update {
	ch := make(chan Update, subscriberBuffer)
	h.mu.Lock()
	h.subscribers = append(h.subscribers, ch)
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a channel returned by Subscribe.
func (h *Hub) Unsubscribe(sub <-chan Update) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, ch := range h.subscribers {
		if ch == sub {
			h.subscribers = append(h.subscribers[:i], h.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

// Latest returns the most recent update, if any refresh has run.
func (h *Hub) Latest() (Update, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.latest == nil {
		return Update{}, false
	}
	return *h.latest, true
}

// Dropped returns the total number of updates dropped due to slow consumers.
func (h *Hub) Dropped() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

// Refresh recomputes the summary and broadcasts it.
func (h *Hub) Refresh(ctx context.Context, reason string) Update {
	u := Update{Reason: reason}
	resp, err := h.source.Summary(ctx)
	if err != nil {
		u.Error = err.Error()
		log.Warn().Err(err).Str("reason", reason).Msg("hub: refresh failed")
	} else {
		u.Summary = &resp
	}

	h.mu.Lock()
	h.seq++
	u.Seq = h.seq
	h.latest = &u
	h.mu.Unlock()

	h.broadcast(u)
	return u
}

// Start refreshes once, then again after each quiet burst of input events.
// Blocks until the context is cancelled or the input channel is closed.
func (h *Hub) Start(ctx context.Context) {
	defer h.closeAll()

	h.Refresh(ctx, "startup")

	timer := time.NewTimer(h.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := ""

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case ev, ok := <-h.input:
			if !ok {
				timer.Stop()
				return
			}
			if pending == "" {
				timer.Reset(h.debounce)
			}
			pending = ev.Path
		case <-timer.C:
			h.Refresh(ctx, pending)
			pending = ""
		}
	}
}

// broadcast sends an update to all subscribers.
// If a subscriber's channel is full, the update is dropped for that subscriber.
func (h *Hub) broadcast(u Update) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subscribers {
		select {
		case ch <- u:
		default:
			h.dropped++
			log.Warn().Int64("dropped", h.dropped).Msg("hub: dropped update for slow consumer")
		}
	}
}

// closeAll closes all subscriber channels.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subscribers {
		close(ch)
	}
	h.subscribers = nil
}

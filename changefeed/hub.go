package changefeed

import (
	"context"
	"sync"

	"github.com/pdcgo/ledger_service/logging"
)

// Hub fans events out to in-process subscribers. A subscriber whose buffer
// is full misses the event.
type Hub struct {
	mu   sync.RWMutex
	next int
	subs map[int]chan *Event
}

func NewHub() *Hub {
	return &Hub{
		subs: map[int]chan *Event{},
	}
}

func (h *Hub) Subscribe(buffer int) (<-chan *Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++

	ch := make(chan *Event, buffer)
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
		})
	}
}

// Publish implements Publisher.
func (h *Hub) Publish(ctx context.Context, event *Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subs {
		select {
		case ch <- event:
		default:
			log := logging.FromContext(ctx)
			log.Warn().Int("subscriber", id).Msg("changefeed subscriber lagging, event dropped")
		}
	}

	return nil
}

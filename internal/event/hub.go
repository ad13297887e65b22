package event

import (
	"context"
	"isp-billing/internal/domain/payment"
	"log/slog"
	"sync"
)

const defaultSubscriberBuffer = 8

// Hub is the in-process fan-out used by open views. Each subscriber watches one period.
// A subscriber that is not draining its channel misses notifications instead of blocking the sender.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]*subscription
	nextID uint64
	buffer int
	logger *slog.Logger
}

type subscription struct {
	period payment.Period
	ch     chan Change
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Hub{
		subs:   make(map[uint64]*subscription),
		buffer: defaultSubscriberBuffer,
		logger: logger.With("component", "EventHub"),
	}
}

// Subscribe registers interest in a period. The returned cancel func closes the channel and
// must be called exactly once.
func (h *Hub) Subscribe(period payment.Period) (<-chan Change, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	sub := &subscription{period: period, ch: make(chan Change, h.buffer)}
	h.subs[id] = sub

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

func (h *Hub) Notify(ctx context.Context, change Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, sub := range h.subs {
		if !change.Affects(sub.period) {
			continue
		}
		select {
		case sub.ch <- change:
			delivered++
		default:
			h.logger.WarnContext(ctx, "Subscriber buffer full, dropping notification",
				slog.String("kind", string(change.Kind)), slog.String("period", sub.period.String()))
		}
	}
	h.logger.DebugContext(ctx, "Change fanned out", slog.String("kind", string(change.Kind)), slog.Int("delivered", delivered))
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

var _ Notifier = (*Hub)(nil)

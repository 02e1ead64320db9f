// Package session broadcasts sign-in and sign-out events inside the process.
// Components that keep per-user state subscribe to drop it when a user leaves.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"finlearn/internal/logger"

	"go.uber.org/zap"
)

type EventType string

const (
	SignedIn  EventType = "signed_in"
	SignedOut EventType = "signed_out"
)

type Event struct {
	Type   EventType
	UserID string
	At     time.Time
}

var (
	ErrNotStarted = errors.New("session hub not started")
	ErrClosed     = errors.New("session hub closed")
)

// Subscription delivers events on C until Close is called or the hub closes.
type Subscription struct {
	C <-chan Event

	ch   chan Event
	id   uint64
	hub  *Hub
	once sync.Once
}

// Close detaches the subscription and closes C. It is safe to call twice.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.detach(s.id)
	})
}

// Hub fans events out to subscribers. It must be started before Publish and
// closed on shutdown.
type Hub struct {
	mu      sync.RWMutex
	subs    map[uint64]*Subscription
	nextID  uint64
	seen    map[string]struct{}
	events  chan Event
	done    chan struct{}
	wg      sync.WaitGroup
	started bool
	closed  bool
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	return &Hub{
		subs:   make(map[uint64]*Subscription),
		seen:   make(map[string]struct{}),
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
}

// Start launches the dispatch loop.
func (h *Hub) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	if h.started {
		return nil
	}
	h.started = true
	h.wg.Add(1)
	go h.run()
	return nil
}

// Close stops dispatch, drops queued events and closes every subscription.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	close(h.done)
	h.mu.Unlock()

	h.wg.Wait()

	h.mu.Lock()
	for id, sub := range h.subs {
		close(sub.ch)
		delete(h.subs, id)
	}
	h.mu.Unlock()
	return nil
}

// Subscribe registers a listener with a buffered channel of the given size.
func (h *Hub) Subscribe(buffer int) (*Subscription, error) {
	if buffer <= 0 {
		buffer = 16
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}
	h.nextID++
	ch := make(chan Event, buffer)
	sub := &Subscription{C: ch, ch: ch, id: h.nextID, hub: h}
	h.subs[sub.id] = sub
	return sub, nil
}

// Handle subscribes fn and runs it for every event on its own goroutine until
// the returned subscription is closed.
func (h *Hub) Handle(name string, fn func(Event)) (*Subscription, error) {
	sub, err := h.Subscribe(0)
	if err != nil {
		return nil, err
	}
	go func() {
		for ev := range sub.C {
			func() {
				defer func() {
					if r := recover(); r != nil {
						logger.Get().Error("Session handler panicked",
							zap.String("handler", name), zap.Any("panic", r))
					}
				}()
				fn(ev)
			}()
		}
	}()
	return sub, nil
}

// Publish queues ev for delivery. It blocks while the queue is full until ctx
// is done.
func (h *Hub) Publish(ctx context.Context, ev Event) error {
	h.mu.RLock()
	started, closed := h.started, h.closed
	h.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	if !started {
		return ErrNotStarted
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	h.mu.Lock()
	switch ev.Type {
	case SignedIn:
		h.seen[ev.UserID] = struct{}{}
	case SignedOut:
		delete(h.seen, ev.UserID)
	}
	h.mu.Unlock()

	select {
	case h.events <- ev:
		return nil
	case <-h.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Seen reports whether userID has signed in since the process started and
// not signed out since.
func (h *Hub) Seen(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.seen[userID]
	return ok
}

func (h *Hub) detach(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub, ok := h.subs[id]; ok {
		close(sub.ch)
		delete(h.subs, id)
	}
}

func (h *Hub) run() {
	defer h.wg.Done()
	for {
		select {
		case <-h.done:
			return
		case ev := <-h.events:
			h.dispatch(ev)
		}
	}
}

// dispatch never blocks on a slow subscriber; a full buffer drops the event.
func (h *Hub) dispatch(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, sub := range h.subs {
		select {
		case sub.ch <- ev:
		default:
			logger.Get().Warn("Dropping session event for slow subscriber",
				zap.Uint64("subscription", id),
				zap.String("type", string(ev.Type)),
				zap.String("user_id", ev.UserID))
		}
	}
}

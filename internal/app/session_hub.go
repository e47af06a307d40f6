package app

import (
	"context"
	"sync"

	"tutordesk/internal/model"
)

const subscriberBuffer = 8

// SessionHub delivers session events to the SSE subscribers of this process.
// Used directly as the publisher when no broker is configured.
type SessionHub struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan model.SessionEvent
}

func NewSessionHub() *SessionHub {
	return &SessionHub{subs: make(map[string]map[int]chan model.SessionEvent)}
}

// Subscribe returns the event stream of one account and a function that ends it.
func (h *SessionHub) Subscribe(userID string) (<-chan model.SessionEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan model.SessionEvent, subscriberBuffer)
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[int]chan model.SessionEvent)
	}
	h.subs[userID][id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[userID], id)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			close(ch)
		})
	}
}

// Dispatch never blocks: a subscriber whose buffer is full misses the event
// and resynchronises on its next request.
func (h *SessionHub) Dispatch(evt model.SessionEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[evt.UserID] {
		select {
		case ch <- evt:
		default:
		}
	}
}

func (h *SessionHub) Publish(_ context.Context, evt model.SessionEvent) error {
	h.Dispatch(evt)
	return nil
}

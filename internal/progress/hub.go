// Package progress delivers per-user pipeline status messages to server-sent event listeners.
package progress

import (
	"context"
	"errors"
	"sync"
	"time"

	"mathgen-backend/internal/shared/telemetry"
)

const (
	TypeProgress = "progress"
	TypePing     = "ping"
	TypeError    = "error"
)

// ConnectedMessage is queued when a listener creates a user's mailbox.
const ConnectedMessage = "Connected to progress updates"

// DefaultWait bounds how long Next blocks before yielding a ping.
const DefaultWait = 30 * time.Second

// ErrClosed is returned by Next once the mailbox has been removed.
var ErrClosed = errors.New("progress mailbox closed")

// Event is one message on a user's progress stream.
type Event struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

// Publisher is the write side used by the generation pipeline.
type Publisher interface {
	Send(userID, message string)
	SendError(userID, message string)
}

type mailbox struct {
	queue  []Event
	notify chan struct{}
	done   chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{notify: make(chan struct{}, 1), done: make(chan struct{})}
}

// Hub owns one unbounded FIFO mailbox per user id.
// Concurrent subscribers on one id share the mailbox and race for events.
// A mailbox fed by runs nobody listens to keeps every event until the user
// subscribes and drains it, or until Remove or Close drops it.
type Hub struct {
	mu     sync.Mutex
	boxes  map[string]*mailbox
	closed bool
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{boxes: make(map[string]*mailbox)}
}

// Send enqueues a progress event, creating the mailbox when absent.
func (h *Hub) Send(userID, message string) {
	h.push(userID, Event{Type: TypeProgress, Message: message})
}

// SendError enqueues an error event, creating the mailbox when absent.
func (h *Hub) SendError(userID, message string) {
	h.push(userID, Event{Type: TypeError, Message: message})
}

func (h *Hub) push(userID string, ev Event) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	box, ok := h.boxes[userID]
	if !ok {
		box = newMailbox()
		h.boxes[userID] = box
	}
	box.queue = append(box.queue, ev)
	h.mu.Unlock()

	select {
	case box.notify <- struct{}{}:
	default:
	}
	telemetry.Info("progress.send", map[string]any{"user_id": userID, "type": ev.Type, "message": ev.Message})
}

// Subscribe attaches to the user's mailbox. A mailbox created here starts with the connect event.
func (h *Hub) Subscribe(userID string) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		box := newMailbox()
		close(box.done)
		return &Subscription{hub: h, userID: userID, box: box}
	}
	box, ok := h.boxes[userID]
	if !ok {
		box = newMailbox()
		box.queue = append(box.queue, Event{Type: TypeProgress, Message: ConnectedMessage})
		h.boxes[userID] = box
	}
	return &Subscription{hub: h, userID: userID, box: box}
}

// Remove deletes the user's mailbox and wakes its subscribers. Queued events are dropped.
func (h *Hub) Remove(userID string) {
	h.mu.Lock()
	box, ok := h.boxes[userID]
	if ok {
		delete(h.boxes, userID)
	}
	h.mu.Unlock()
	if ok {
		close(box.done)
	}
}

// Close drops every mailbox and ends all subscriptions with ErrClosed.
// Later sends are discarded and later subscriptions are already closed.
func (h *Hub) Close() {
	h.mu.Lock()
	boxes := h.boxes
	h.boxes = make(map[string]*mailbox)
	h.closed = true
	h.mu.Unlock()
	for _, box := range boxes {
		close(box.done)
	}
	telemetry.Info("progress.close", map[string]any{"mailboxes": len(boxes)})
}

// Pending reports how many events wait in the user's mailbox.
func (h *Hub) Pending(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if box, ok := h.boxes[userID]; ok {
		return len(box.queue)
	}
	return 0
}

func (h *Hub) pop(box *mailbox) (Event, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(box.queue) == 0 {
		return Event{}, false
	}
	ev := box.queue[0]
	box.queue[0] = Event{}
	box.queue = box.queue[1:]
	return ev, true
}

// Subscription reads one user's mailbox.
type Subscription struct {
	hub    *Hub
	userID string
	box    *mailbox
}

// UserID returns the subscribed user.
func (s *Subscription) UserID() string { return s.userID }

// Next pops the oldest event, waiting at most wait. A timeout yields a ping event.
func (s *Subscription) Next(ctx context.Context, wait time.Duration) (Event, error) {
	if wait <= 0 {
		wait = DefaultWait
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	for {
		select {
		case <-s.box.done:
			return Event{}, ErrClosed
		default:
		}
		if ev, ok := s.hub.pop(s.box); ok {
			return ev, nil
		}
		select {
		case <-s.box.notify:
		case <-s.box.done:
			return Event{}, ErrClosed
		case <-timer.C:
			return Event{Type: TypePing}, nil
		case <-ctx.Done():
			return Event{}, ctx.Err()
		}
	}
}

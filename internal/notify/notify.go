// Package notify carries user-facing notifications from commands to
// whatever surface renders them.
package notify

import (
	"sync"
	"time"
)

type Level int

const (
	LevelSuccess Level = iota
	LevelInfo
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelInfo:
		return "info"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

type Notification struct {
	Level   Level
	Message string
	At      time.Time
}

// Sink receives notifications. Implementations must be safe for concurrent use.
type Sink interface {
	Notify(n Notification)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Notification)

func (f SinkFunc) Notify(n Notification) { f(n) }

// Notifier broadcasts notifications to every subscriber. Sends never block:
// a subscriber whose buffer is full misses the notification.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan Notification]struct{}
	now       func() time.Time
}

func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan Notification]struct{}),
		now:       time.Now,
	}
}

// Subscribe returns a channel receiving future notifications. Call
// Unsubscribe when done.
func (n *Notifier) Subscribe() chan Notification {
	ch := make(chan Notification, 8)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan Notification) {
	n.mu.Lock()
	if _, ok := n.listeners[ch]; ok {
		delete(n.listeners, ch)
		close(ch)
	}
	n.mu.Unlock()
}

func (n *Notifier) Notify(note Notification) {
	if note.At.IsZero() {
		note.At = n.now()
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- note:
		default:
		}
	}
}

package repository

import "sync"

// Change identifies a mutated record pushed to subscribers.
type Change struct {
	Resource string `json:"resource"`
	ID       string `json:"id"`
}

// Notifier fans out change notifications to subscribers. Slow subscribers
// drop notifications rather than block writers.
type Notifier struct {
	mu   sync.Mutex
	subs map[int]chan Change
	next int
}

// NewNotifier constructs an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]chan Change)}
}

// Subscribe registers a subscriber and returns its channel plus a cancel
// function. The channel is closed on cancel.
func (n *Notifier) Subscribe(buffer int) (<-chan Change, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	n.mu.Lock()
	id := n.next
	n.next++
	ch := make(chan Change, buffer)
	n.subs[id] = ch
	n.mu.Unlock()

	cancel := func() {
		n.mu.Lock()
		if sub, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(sub)
		}
		n.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the change to every subscriber without blocking.
func (n *Notifier) Publish(change Change) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- change:
		default:
		}
	}
}

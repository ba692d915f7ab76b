// Package notify persists user notifications and fans them out to live
// subscribers.
package notify

import (
	"sync"

	"github.com/vidforge/vidforge/internal/models"
)

// subscriberBuffer is the per-subscriber channel capacity. Events beyond a
// full buffer are dropped rather than blocking the pipeline.
const subscriberBuffer = 16

// Registry tracks live notification subscribers per user. Safe for
// concurrent use.
type Registry struct {
	mu   sync.RWMutex
	subs map[string]map[chan *models.Notification]struct{}
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		subs: make(map[string]map[chan *models.Notification]struct{}),
	}
}

// Subscribe registers a listener for a user's notifications. The returned
// cancel function must be called to release the subscription; it closes the
// channel.
func (r *Registry) Subscribe(userID string) (<-chan *models.Notification, func()) {
	ch := make(chan *models.Notification, subscriberBuffer)

	r.mu.Lock()
	if r.subs[userID] == nil {
		r.subs[userID] = make(map[chan *models.Notification]struct{})
	}
	r.subs[userID][ch] = struct{}{}
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		if set, ok := r.subs[userID]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(r.subs, userID)
			}
		}
		r.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers a notification to every live subscriber of its user.
// Slow subscribers with full buffers miss the event; persisted rows remain
// the source of truth.
func (r *Registry) Publish(n *models.Notification) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for ch := range r.subs[n.UserID] {
		select {
		case ch <- n:
		default:
		}
	}
}

// SubscriberCount returns the number of live subscribers for a user.
func (r *Registry) SubscriberCount(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs[userID])
}

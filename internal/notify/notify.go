package notify

import (
	"sync"
	"time"
)

// Kind classifies a notification
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// DefaultTTL is how long a notification stays visible
const DefaultTTL = 3 * time.Second

// Notification is one transient message shown to the operator
type Notification struct {
	Seq       int64     `json:"seq"`
	Kind      Kind      `json:"kind"`
	View      string    `json:"view,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Center stores recent notifications and fans them out to subscribers
type Center struct {
	mu      sync.RWMutex
	nextSeq int64
	ttl     time.Duration
	max     int
	items   []Notification
	subs    map[chan Notification]struct{}
	now     func() time.Time
}

// NewCenter creates a bounded notification buffer
func NewCenter(ttl time.Duration, max int) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if max <= 0 {
		max = 200
	}
	return &Center{
		ttl:  ttl,
		max:  max,
		subs: make(map[chan Notification]struct{}),
		now:  time.Now,
	}
}

// For returns a Notifier that tags every message with a view name
func (c *Center) For(view string) *ViewNotifier {
	return &ViewNotifier{center: c, view: view}
}

// Publish appends one notification and delivers it to subscribers.
// Slow subscribers drop messages rather than block the publisher.
func (c *Center) Publish(kind Kind, view, message string) Notification {
	c.mu.Lock()
	c.nextSeq++
	now := c.now()
	n := Notification{
		Seq:       c.nextSeq,
		Kind:      kind,
		View:      view,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}
	c.items = append(c.items, n)
	if len(c.items) > c.max {
		c.items = append([]Notification(nil), c.items[len(c.items)-c.max:]...)
	}
	c.mu.Unlock()

	// Cancel closes channels under the write lock, so sends hold the read lock.
	c.mu.RLock()
	for ch := range c.subs {
		select {
		case ch <- n:
		default:
		}
	}
	c.mu.RUnlock()
	return n
}

// Since returns notifications with sequence strictly greater than seq
func (c *Center) Since(seq int64) []Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Notification, 0, len(c.items))
	for _, n := range c.items {
		if n.Seq > seq {
			out = append(out, n)
		}
	}
	return out
}

// Active returns the notifications that have not yet expired
func (c *Center) Active() []Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	out := []Notification{}
	for _, n := range c.items {
		if now.Before(n.ExpiresAt) {
			out = append(out, n)
		}
	}
	return out
}

// Subscribe returns a channel receiving every new notification and a cancel func
func (c *Center) Subscribe() (<-chan Notification, func()) {
	ch := make(chan Notification, 16)
	c.mu.Lock()
	c.subs[ch] = struct{}{}
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, ch)
			c.mu.Unlock()
			close(ch)
		})
	}
}

// ViewNotifier publishes into a Center on behalf of one view
type ViewNotifier struct {
	center *Center
	view   string
}

// Success publishes a success notification
func (v *ViewNotifier) Success(message string) {
	v.center.Publish(KindSuccess, v.view, message)
}

// Error publishes an error notification
func (v *ViewNotifier) Error(message string) {
	v.center.Publish(KindError, v.view, message)
}

package tui

import (
	"sync"
	"time"

	"github.com/colonyops/violations/internal/core/eventbus"
)

const (
	defaultToastTTL   = 5 * time.Second
	defaultMaxToasts  = 5
	toastTickInterval = 100 * time.Millisecond
	toastWidth        = 50
)

// Notification is a message shown to the user as a toast.
type Notification struct {
	Level     eventbus.Level
	Message   string
	CreatedAt time.Time
}

// NotificationBuffer collects notifications published on the bus until the
// model drains them.
type NotificationBuffer struct {
	mu            sync.Mutex
	notifications []Notification
}

// NewNotificationBuffer returns a buffer subscribed to bus notifications.
func NewNotificationBuffer(bus *eventbus.EventBus) *NotificationBuffer {
	b := &NotificationBuffer{}
	if bus != nil {
		bus.SubscribeNotificationPublished(func(p eventbus.NotificationPublishedPayload) {
			b.Push(Notification{Level: p.Level, Message: p.Message})
		})
	}
	return b
}

// Push appends a notification.
func (b *NotificationBuffer) Push(n Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	b.mu.Lock()
	b.notifications = append(b.notifications, n)
	b.mu.Unlock()
}

// Drain returns all buffered notifications and clears the buffer.
func (b *NotificationBuffer) Drain() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.notifications) == 0 {
		return nil
	}

	out := make([]Notification, len(b.notifications))
	copy(out, b.notifications)
	b.notifications = b.notifications[:0]
	return out
}

type toast struct {
	notification Notification
	remaining    time.Duration
}

// ToastController manages the lifecycle of active toast notifications.
type ToastController struct {
	toasts  []toast
	ticking bool
}

// Push adds a notification to the toast stack, evicting the oldest beyond
// defaultMaxToasts.
func (c *ToastController) Push(n Notification) {
	c.toasts = append(c.toasts, toast{notification: n, remaining: defaultToastTTL})
	if len(c.toasts) > defaultMaxToasts {
		c.toasts = c.toasts[len(c.toasts)-defaultMaxToasts:]
	}
}

// Tick decrements the remaining TTL on all toasts by d and removes
// any that have expired.
func (c *ToastController) Tick(d time.Duration) {
	alive := c.toasts[:0]
	for _, t := range c.toasts {
		t.remaining -= d
		if t.remaining > 0 {
			alive = append(alive, t)
		}
	}
	c.toasts = alive
}

// Dismiss removes the newest toast.
func (c *ToastController) Dismiss() {
	if len(c.toasts) > 0 {
		c.toasts = c.toasts[:len(c.toasts)-1]
	}
}

// HasToasts returns true if there are any active toasts.
func (c *ToastController) HasToasts() bool {
	return len(c.toasts) > 0
}

// Toasts returns the active toasts, oldest first.
func (c *ToastController) Toasts() []toast {
	return c.toasts
}

package timeline

import (
	"sync"

	"parley/internal/domain"
)

// Feed is the notification side of the reconciliation pattern, newest first.
// Live pushes are prepended with no de-duplication against the snapshot; a
// refresh (Reset) is the explicit reconciliation point.
type Feed struct {
	mu    sync.Mutex
	items []*domain.Notification
}

func NewFeed() *Feed {
	return &Feed{}
}

// Reset replaces the feed with a snapshot (descending order, as served).
func (f *Feed) Reset(snapshot []*domain.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append([]*domain.Notification(nil), snapshot...)
}

// PushLive prepends a live-delivered notification.
func (f *Feed) PushLive(n *domain.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append([]*domain.Notification{n}, f.items...)
}

// MarkRead flips the local read flag immediately, without waiting for server
// confirmation. Returns true when the notification was unread.
func (f *Feed) MarkRead(id int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.items {
		if n.ID == id {
			if n.Read {
				return false
			}
			n.Read = true
			return true
		}
	}
	return false
}

// Unread counts locally unread notifications.
func (f *Feed) Unread() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, n := range f.items {
		if !n.Read {
			count++
		}
	}
	return count
}

// Items returns the current feed, newest first.
func (f *Feed) Items() []*domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Notification, len(f.items))
	copy(out, f.items)
	return out
}

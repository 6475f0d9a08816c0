// Package timeline merges the two views of a conversation — the paginated
// historical pull and the live event push — into one ordered, gap-free,
// duplicate-free sequence, and mirrors the same pattern for the notification
// feed.
package timeline

import (
	"sync"

	"parley/internal/domain"
)

// Buffer holds the reconciled message sequence for one open conversation
// view. History pages are prepended, live events appended; an identifier is
// never present twice no matter how often the live stream repeats it.
type Buffer struct {
	mu       sync.Mutex
	messages []*domain.Message
	seen     map[int64]struct{}
}

func NewBuffer() *Buffer {
	return &Buffer{seen: make(map[int64]struct{})}
}

// Reset replaces the buffer with a full snapshot, ascending order.
func (b *Buffer) Reset(snapshot []*domain.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.messages = make([]*domain.Message, 0, len(snapshot))
	b.seen = make(map[int64]struct{}, len(snapshot))
	for _, m := range snapshot {
		b.messages = append(b.messages, m)
		b.seen[m.ID] = struct{}{}
	}
}

// PrependPage prepends an older history page (ascending order, as served by
// the pager). An empty page is a no-op. Entries already held are skipped, so
// a page overlapping the live stream cannot introduce duplicates.
func (b *Buffer) PrependPage(page []*domain.Message) {
	if len(page) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	fresh := make([]*domain.Message, 0, len(page))
	for _, m := range page {
		if _, ok := b.seen[m.ID]; ok {
			continue
		}
		b.seen[m.ID] = struct{}{}
		fresh = append(fresh, m)
	}
	b.messages = append(fresh, b.messages...)
}

// Append adds a live message to the end of the sequence. Returns false when
// the identifier is already present — an optimistically appended own message,
// or a duplicate delivery.
func (b *Buffer) Append(m *domain.Message) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.seen[m.ID]; ok {
		return false
	}
	b.seen[m.ID] = struct{}{}
	b.messages = append(b.messages, m)
	return true
}

// Messages returns the current sequence, ascending.
func (b *Buffer) Messages() []*domain.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*domain.Message, len(b.messages))
	copy(out, b.messages)
	return out
}

// Oldest returns the earliest held message, used as the cursor for the next
// backward page.
func (b *Buffer) Oldest() *domain.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.messages) == 0 {
		return nil
	}
	return b.messages[0]
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.messages)
}

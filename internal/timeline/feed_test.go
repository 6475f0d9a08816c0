package timeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"parley/internal/domain"
	"parley/internal/timeline"
)

func notif(id int64, read bool) *domain.Notification {
	return &domain.Notification{
		ID:   id,
		Kind: domain.NotificationKindNewMessage,
		Text: "someone sent a message",
		Read: read,
	}
}

func TestFeedPushLive(t *testing.T) {
	f := timeline.NewFeed()
	f.Reset([]*domain.Notification{notif(2, true), notif(1, true)})

	f.PushLive(notif(3, false))
	items := f.Items()
	assert.Equal(t, int64(3), items[0].ID)
	assert.Len(t, items, 3)

	// Live pushes are not de-duplicated; a refresh is the reconciliation
	// point.
	f.PushLive(notif(3, false))
	assert.Len(t, f.Items(), 4)

	f.Reset([]*domain.Notification{notif(3, false), notif(2, true), notif(1, true)})
	assert.Len(t, f.Items(), 3)
}

func TestFeedMarkRead(t *testing.T) {
	f := timeline.NewFeed()
	f.Reset([]*domain.Notification{notif(2, false), notif(1, true)})
	assert.Equal(t, 1, f.Unread())

	assert.True(t, f.MarkRead(2))
	assert.Equal(t, 0, f.Unread())

	// Marking again is a no-op, not an error.
	assert.False(t, f.MarkRead(2))
	assert.False(t, f.MarkRead(99))
}

package timeline_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"parley/internal/domain"
	"parley/internal/timeline"
)

func msg(id int64, body string) *domain.Message {
	return &domain.Message{
		ID:             id,
		ConversationID: 1,
		SenderID:       1,
		Body:           body,
		CreatedAt:      time.Unix(0, id*int64(time.Second)).UTC(),
	}
}

func ids(msgs []*domain.Message) []int64 {
	out := make([]int64, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}

func TestBufferAppend(t *testing.T) {
	t.Run("AppendsInOrder", func(t *testing.T) {
		b := timeline.NewBuffer()
		assert.True(t, b.Append(msg(1, "a")))
		assert.True(t, b.Append(msg(2, "b")))
		assert.Equal(t, []int64{1, 2}, ids(b.Messages()))
	})

	t.Run("DuplicateIdentifierIsRejected", func(t *testing.T) {
		b := timeline.NewBuffer()
		assert.True(t, b.Append(msg(1, "a")))
		// Same id arriving again, e.g. the live echo of an optimistically
		// appended own message.
		assert.False(t, b.Append(msg(1, "a")))
		assert.False(t, b.Append(msg(1, "a")))
		assert.Equal(t, 1, b.Len())
	})
}

func TestBufferReset(t *testing.T) {
	b := timeline.NewBuffer()
	b.Append(msg(9, "stale"))

	b.Reset([]*domain.Message{msg(1, "a"), msg(2, "b"), msg(3, "c")})
	assert.Equal(t, []int64{1, 2, 3}, ids(b.Messages()))

	// The stale entry is gone, so its id is appendable again.
	assert.True(t, b.Append(msg(9, "live")))
}

func TestBufferPrependPage(t *testing.T) {
	t.Run("PrependsOlderPage", func(t *testing.T) {
		b := timeline.NewBuffer()
		b.Reset([]*domain.Message{msg(4, "d"), msg(5, "e")})

		b.PrependPage([]*domain.Message{msg(1, "a"), msg(2, "b"), msg(3, "c")})
		assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(b.Messages()))
	})

	t.Run("EmptyPageIsNoOp", func(t *testing.T) {
		b := timeline.NewBuffer()
		b.Reset([]*domain.Message{msg(4, "d")})
		b.PrependPage(nil)
		b.PrependPage([]*domain.Message{})
		assert.Equal(t, []int64{4}, ids(b.Messages()))
	})

	t.Run("OverlappingEntriesAreSkipped", func(t *testing.T) {
		b := timeline.NewBuffer()
		b.Reset([]*domain.Message{msg(3, "c"), msg(4, "d")})
		b.PrependPage([]*domain.Message{msg(2, "b"), msg(3, "c")})
		assert.Equal(t, []int64{2, 3, 4}, ids(b.Messages()))
	})
}

func TestBufferOldest(t *testing.T) {
	b := timeline.NewBuffer()
	assert.Nil(t, b.Oldest())

	b.Reset([]*domain.Message{msg(2, "b"), msg(3, "c")})
	oldest := b.Oldest()
	assert.NotNil(t, oldest)
	assert.Equal(t, int64(2), oldest.ID)

	b.PrependPage([]*domain.Message{msg(1, "a")})
	assert.Equal(t, int64(1), b.Oldest().ID)
}

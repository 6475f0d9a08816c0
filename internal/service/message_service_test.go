package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"parley/internal/domain"
	"parley/internal/service"
)

type MockConversationRepo struct {
	mock.Mock
}

func (m *MockConversationRepo) Create(ctx context.Context, c *domain.Conversation, participantIDs []int64) error {
	args := m.Called(ctx, c, participantIDs)
	return args.Error(0)
}

func (m *MockConversationRepo) GetByID(ctx context.Context, id int64) (*domain.Conversation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockConversationRepo) ListForUser(ctx context.Context, userID int64) ([]*domain.ConversationSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ConversationSummary), args.Error(1)
}

type MockParticipantRepo struct {
	mock.Mock
}

func (m *MockParticipantRepo) ListParticipants(ctx context.Context, conversationID int64) ([]*domain.User, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockParticipantRepo) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	args := m.Called(ctx, conversationID, userID)
	return args.Bool(0), args.Error(1)
}

type MockMessageRepo struct {
	mock.Mock
}

func (m *MockMessageRepo) Create(ctx context.Context, msg *domain.Message, notifs []*domain.Notification) error {
	args := m.Called(ctx, msg, notifs)
	if args.Error(0) == nil {
		msg.ID = 100
		msg.CreatedAt = time.Now().UTC()
		for i, n := range notifs {
			n.ID = int64(200 + i)
			n.MessageID = &msg.ID
			n.CreatedAt = msg.CreatedAt
		}
	}
	return args.Error(0)
}

func (m *MockMessageRepo) ListPage(ctx context.Context, conversationID int64, before *time.Time, limit int) ([]*domain.Message, error) {
	args := m.Called(ctx, conversationID, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

// recordingPublisher captures what was published and whether the rows were
// already persisted at that point.
type recordingPublisher struct {
	persisted *bool

	messages           []*domain.Message
	notifications      []*domain.Notification
	publishedBeforeTxn bool
}

func (p *recordingPublisher) PublishMessage(m *domain.Message) {
	if p.persisted != nil && !*p.persisted {
		p.publishedBeforeTxn = true
	}
	p.messages = append(p.messages, m)
}

func (p *recordingPublisher) PublishNotification(n *domain.Notification) {
	if p.persisted != nil && !*p.persisted {
		p.publishedBeforeTxn = true
	}
	p.notifications = append(p.notifications, n)
}

func strPtr(s string) *string { return &s }

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	alice := &domain.User{ID: 1, Email: "alice@example.com", DisplayName: strPtr("Alice")}
	bob := &domain.User{ID: 2, Email: "bob@example.com"}

	t.Run("FansOutToOtherParticipants", func(t *testing.T) {
		convs := new(MockConversationRepo)
		parts := new(MockParticipantRepo)
		msgs := new(MockMessageRepo)
		persisted := false
		pub := &recordingPublisher{persisted: &persisted}
		svc := service.NewMessageService(convs, parts, msgs, pub, zerolog.Nop())

		parts.On("IsParticipant", mock.Anything, int64(7), int64(1)).Return(true, nil)
		convs.On("GetByID", mock.Anything, int64(7)).Return(&domain.Conversation{ID: 7}, nil)
		parts.On("ListParticipants", mock.Anything, int64(7)).Return([]*domain.User{alice, bob}, nil)
		msgs.On("Create", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			persisted = true
		}).Return(nil)

		msg, err := svc.Submit(ctx, 7, 1, "hello")
		assert.NoError(t, err)
		assert.Equal(t, "hello", msg.Body)
		assert.Equal(t, int64(100), msg.ID)

		// One broadcast, one notification for Bob, none for the sender.
		assert.Len(t, pub.messages, 1)
		assert.Len(t, pub.notifications, 1)
		assert.Equal(t, int64(2), pub.notifications[0].UserID)
		assert.Equal(t, "Alice sent a message", pub.notifications[0].Text)
		assert.Equal(t, domain.NotificationKindNewMessage, pub.notifications[0].Kind)
		assert.Equal(t, &msg.ID, pub.notifications[0].MessageID)

		// Publication must happen-after durable commit.
		assert.False(t, pub.publishedBeforeTxn)
	})

	t.Run("NamedConversationText", func(t *testing.T) {
		convs := new(MockConversationRepo)
		parts := new(MockParticipantRepo)
		msgs := new(MockMessageRepo)
		pub := &recordingPublisher{}
		svc := service.NewMessageService(convs, parts, msgs, pub, zerolog.Nop())

		parts.On("IsParticipant", mock.Anything, int64(7), int64(2)).Return(true, nil)
		convs.On("GetByID", mock.Anything, int64(7)).Return(&domain.Conversation{ID: 7, Name: strPtr("launch plans")}, nil)
		parts.On("ListParticipants", mock.Anything, int64(7)).Return([]*domain.User{alice, bob}, nil)
		msgs.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		_, err := svc.Submit(ctx, 7, 2, "on it")
		assert.NoError(t, err)
		assert.Len(t, pub.notifications, 1)
		// Bob has no display name, so his email is used.
		assert.Equal(t, `bob@example.com replied in "launch plans"`, pub.notifications[0].Text)
		assert.Equal(t, int64(1), pub.notifications[0].UserID)
	})

	t.Run("NonParticipantGetsNotFound", func(t *testing.T) {
		convs := new(MockConversationRepo)
		parts := new(MockParticipantRepo)
		msgs := new(MockMessageRepo)
		pub := &recordingPublisher{}
		svc := service.NewMessageService(convs, parts, msgs, pub, zerolog.Nop())

		parts.On("IsParticipant", mock.Anything, int64(7), int64(3)).Return(false, nil)

		_, err := svc.Submit(ctx, 7, 3, "hi")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Empty(t, pub.messages)
		msgs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("EmptyBodyIsRejected", func(t *testing.T) {
		convs := new(MockConversationRepo)
		parts := new(MockParticipantRepo)
		msgs := new(MockMessageRepo)
		pub := &recordingPublisher{}
		svc := service.NewMessageService(convs, parts, msgs, pub, zerolog.Nop())

		_, err := svc.Submit(ctx, 7, 1, "   \n\t ")
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		parts.AssertNotCalled(t, "IsParticipant", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("BodyIsTrimmed", func(t *testing.T) {
		convs := new(MockConversationRepo)
		parts := new(MockParticipantRepo)
		msgs := new(MockMessageRepo)
		pub := &recordingPublisher{}
		svc := service.NewMessageService(convs, parts, msgs, pub, zerolog.Nop())

		parts.On("IsParticipant", mock.Anything, int64(7), int64(1)).Return(true, nil)
		convs.On("GetByID", mock.Anything, int64(7)).Return(&domain.Conversation{ID: 7}, nil)
		parts.On("ListParticipants", mock.Anything, int64(7)).Return([]*domain.User{alice, bob}, nil)
		msgs.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		msg, err := svc.Submit(ctx, 7, 1, "  hello  ")
		assert.NoError(t, err)
		assert.Equal(t, "hello", msg.Body)
	})
}

func TestListPage(t *testing.T) {
	ctx := context.Background()

	t.Run("NonParticipantGetsNotFound", func(t *testing.T) {
		convs := new(MockConversationRepo)
		parts := new(MockParticipantRepo)
		msgs := new(MockMessageRepo)
		svc := service.NewMessageService(convs, parts, msgs, &recordingPublisher{}, zerolog.Nop())

		parts.On("IsParticipant", mock.Anything, int64(7), int64(3)).Return(false, nil)

		_, err := svc.ListPage(ctx, 7, 3, nil, 50)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("LimitDefaultsAndClamps", func(t *testing.T) {
		convs := new(MockConversationRepo)
		parts := new(MockParticipantRepo)
		msgs := new(MockMessageRepo)
		svc := service.NewMessageService(convs, parts, msgs, &recordingPublisher{}, zerolog.Nop())

		parts.On("IsParticipant", mock.Anything, int64(7), int64(1)).Return(true, nil)
		msgs.On("ListPage", mock.Anything, int64(7), (*time.Time)(nil), 50).Return([]*domain.Message{}, nil).Once()
		msgs.On("ListPage", mock.Anything, int64(7), (*time.Time)(nil), 100).Return([]*domain.Message{}, nil).Once()

		_, err := svc.ListPage(ctx, 7, 1, nil, 0)
		assert.NoError(t, err)
		_, err = svc.ListPage(ctx, 7, 1, nil, 500)
		assert.NoError(t, err)
		msgs.AssertExpectations(t)
	})
}

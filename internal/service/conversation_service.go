package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"parley/internal/domain"
)

type ConversationService struct {
	conversations domain.ConversationRepository
	participants  domain.ParticipantRepository
}

func NewConversationService(
	conversations domain.ConversationRepository,
	participants domain.ParticipantRepository,
) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		participants:  participants,
	}
}

// ConversationView is a conversation plus its participant list, as returned
// by Create and Get.
type ConversationView struct {
	domain.Conversation
	Participants []*domain.User `json:"participants"`
}

// Create creates a conversation with the creator and the invited users as
// participants. Membership is fixed at creation time.
func (s *ConversationService) Create(ctx context.Context, creatorID int64, name *string, participantIDs []int64) (*ConversationView, error) {
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			name = nil
		} else {
			name = &trimmed
		}
	}

	ids := lo.Uniq(append([]int64{creatorID}, participantIDs...))

	conv := &domain.Conversation{Name: name}
	if err := s.conversations.Create(ctx, conv, ids); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	members, err := s.participants.ListParticipants(ctx, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return &ConversationView{Conversation: *conv, Participants: members}, nil
}

// List returns the caller's conversations, newest activity first, each with a
// last-message preview and the full participant list.
func (s *ConversationService) List(ctx context.Context, userID int64) ([]*domain.ConversationSummary, error) {
	summaries, err := s.conversations.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	for _, sum := range summaries {
		members, err := s.participants.ListParticipants(ctx, sum.ID)
		if err != nil {
			return nil, fmt.Errorf("list participants: %w", err)
		}
		sum.Participants = members
	}
	return summaries, nil
}

// Get returns one conversation with participants. Non-members get
// ErrNotFound, indistinguishable from a conversation that does not exist.
func (s *ConversationService) Get(ctx context.Context, conversationID, userID int64) (*ConversationView, error) {
	ok, err := s.participants.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return nil, fmt.Errorf("check participant: %w", err)
	}
	if !ok {
		return nil, domain.ErrNotFound
	}

	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	if conv == nil {
		return nil, domain.ErrNotFound
	}

	members, err := s.participants.ListParticipants(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return &ConversationView{Conversation: *conv, Participants: members}, nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"

	"podm-backend/internal/apperr"
	"podm-backend/internal/auth"
	"podm-backend/internal/batch"
	"podm-backend/internal/dto"
	"podm-backend/internal/model"
	"podm-backend/internal/repository"

	"github.com/google/uuid"
)

type MessageService interface {
	Send(ctx context.Context, caller auth.CallerContext, recipientID, body string, ppvPrice *int64) (*model.Message, error)
	Broadcast(ctx context.Context, caller auth.CallerContext, req *dto.BroadcastRequest) (*dto.BroadcastResponse, error)
}

type messageServiceImpl struct {
	userRepo    repository.UserRepository
	subRepo     repository.SubscriptionRepository
	messageRepo repository.MessageRepository
	logger      *slog.Logger
}

func NewMessageService(
	userRepo repository.UserRepository,
	subRepo repository.SubscriptionRepository,
	messageRepo repository.MessageRepository,
	logger *slog.Logger,
) MessageService {
	return &messageServiceImpl{
		userRepo:    userRepo,
		subRepo:     subRepo,
		messageRepo: messageRepo,
		logger:      logger,
	}
}

func (s *messageServiceImpl) Send(ctx context.Context, caller auth.CallerContext, recipientID, body string, ppvPrice *int64) (*model.Message, error) {
	if body == "" {
		return nil, fmt.Errorf("%w: empty message body", apperr.ErrInvalidInput)
	}
	if ppvPrice != nil && *ppvPrice <= 0 {
		return nil, fmt.Errorf("%w: ppv price must be positive", apperr.ErrInvalidInput)
	}
	if ppvPrice != nil && !caller.IsCreator() {
		return nil, fmt.Errorf("%w: only creators can send pay-per-view messages", apperr.ErrUnauthorized)
	}

	if _, err := s.userRepo.Get(ctx, recipientID); err != nil {
		return nil, fmt.Errorf("get recipient: %w", err)
	}

	msg := &model.Message{
		ID:          uuid.NewString(),
		SenderID:    caller.ID,
		RecipientID: recipientID,
		Body:        body,
		PPVPrice:    ppvPrice,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	return msg, nil
}

// Broadcast sends one message to every active subscriber of the
// calling creator. Delivery is sequential best-effort: a failed send
// is logged and skipped, never retried, and never aborts the rest.
// Completion time grows linearly with the subscriber count; a creator
// with a large audience belongs on a background queue, not here.
func (s *messageServiceImpl) Broadcast(ctx context.Context, caller auth.CallerContext, req *dto.BroadcastRequest) (*dto.BroadcastResponse, error) {
	if !caller.IsCreator() {
		return nil, fmt.Errorf("broadcast: %w", apperr.ErrUnauthorized)
	}
	if req.Body == "" {
		return nil, fmt.Errorf("%w: empty message body", apperr.ErrInvalidInput)
	}
	if req.PPVPrice != nil && *req.PPVPrice <= 0 {
		return nil, fmt.Errorf("%w: ppv price must be positive", apperr.ErrInvalidInput)
	}

	subscriberIDs, err := s.subRepo.ListActivePayerIDs(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}

	results := batch.BestEffort(subscriberIDs, func(recipientID string) error {
		return s.messageRepo.Create(ctx, &model.Message{
			ID:          uuid.NewString(),
			SenderID:    caller.ID,
			RecipientID: recipientID,
			Body:        req.Body,
			PPVPrice:    req.PPVPrice,
		})
	})

	failed := batch.Failed(results)
	for _, f := range failed {
		s.logger.Error("broadcast send failed", "creator_id", caller.ID, "recipient_id", f.Item, "error", f.Err)
	}

	return &dto.BroadcastResponse{
		Sent:   len(results) - len(failed),
		Failed: len(failed),
	}, nil
}

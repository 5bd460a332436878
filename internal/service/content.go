package service

import (
	"context"
	"errors"
	"fmt"

	"podm-backend/internal/apperr"
	"podm-backend/internal/auth"
	"podm-backend/internal/model"
	"podm-backend/internal/repository"

	"github.com/google/uuid"
)

type ContentService interface {
	CreatePost(ctx context.Context, caller auth.CallerContext, title, body, visibility string, ppvPrice *int64) (*model.Content, error)
	AppendMedia(ctx context.Context, caller auth.CallerContext, contentID, mediaURL string, version int64) error
}

type contentServiceImpl struct {
	contentRepo repository.ContentRepository
}

func NewContentService(contentRepo repository.ContentRepository) ContentService {
	return &contentServiceImpl{contentRepo: contentRepo}
}

func (s *contentServiceImpl) CreatePost(ctx context.Context, caller auth.CallerContext, title, body, visibility string, ppvPrice *int64) (*model.Content, error) {
	if !caller.IsCreator() {
		return nil, fmt.Errorf("create post: %w", apperr.ErrUnauthorized)
	}
	if title == "" {
		return nil, fmt.Errorf("%w: title required", apperr.ErrInvalidInput)
	}

	switch visibility {
	case model.VisibilityPublic, model.VisibilitySubscribers:
		if ppvPrice != nil {
			return nil, fmt.Errorf("%w: ppv price only valid on ppv content", apperr.ErrInvalidInput)
		}
	case model.VisibilityPPV:
		if ppvPrice == nil || *ppvPrice <= 0 {
			return nil, fmt.Errorf("%w: ppv content requires a positive price", apperr.ErrInvalidInput)
		}
	default:
		return nil, fmt.Errorf("%w: unknown visibility %q", apperr.ErrInvalidInput, visibility)
	}

	content := &model.Content{
		ID:         uuid.NewString(),
		CreatorID:  caller.ID,
		Title:      title,
		Body:       body,
		Visibility: visibility,
		PPVPrice:   ppvPrice,
	}
	if err := s.contentRepo.Create(ctx, content); err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}

	return content, nil
}

// AppendMedia adds a URL to the post's gallery under an optimistic
// version check; concurrent appends race on the version and the loser
// gets apperr.ErrConflict to retry with a fresh read.
func (s *contentServiceImpl) AppendMedia(ctx context.Context, caller auth.CallerContext, contentID, mediaURL string, version int64) error {
	if mediaURL == "" {
		return fmt.Errorf("%w: media url required", apperr.ErrInvalidInput)
	}

	content, err := s.contentRepo.Get(ctx, contentID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return fmt.Errorf("content: %w", apperr.ErrUnauthorized)
		}
		return fmt.Errorf("get content: %w", err)
	}
	if content.CreatorID != caller.ID {
		return fmt.Errorf("content: %w", apperr.ErrUnauthorized)
	}

	return s.contentRepo.AppendMedia(ctx, contentID, mediaURL, version)
}

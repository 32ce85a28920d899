// Package chapter manages the chapters themselves.
package chapter

import (
	"context"
	"time"

	"chapterlink/internal/domain"
	"chapterlink/pkg/logger"
	"chapterlink/pkg/validator"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, c *domain.Chapter) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Chapter, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Chapter, error)
}

type Service struct {
	repo   Repository
	logger logger.Logger
}

func NewService(repo Repository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// CreateChapterRequest captures the fields for a new chapter.
type CreateChapterRequest struct {
	Name     string    `json:"name" validate:"required,min=2,max=120"`
	Region   string    `json:"region" validate:"max=120"`
	LeaderID uuid.UUID `json:"leader_id" validate:"required"`
}

func (s *Service) Create(ctx context.Context, req *CreateChapterRequest) (*domain.Chapter, error) {
	now := time.Now()
	c := &domain.Chapter{
		ID:        uuid.New(),
		Name:      validator.Sanitize(req.Name),
		Region:    validator.Sanitize(req.Region),
		LeaderID:  req.LeaderID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("chapter created", map[string]interface{}{
		"chapter_id": c.ID,
		"name":       c.Name,
	})

	return c, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Chapter, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*domain.Chapter, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.List(ctx, limit, offset)
}

package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"model-lineage-registry/internal/core/domain"
	ports "model-lineage-registry/internal/core/ports/output"
)

type ModelService struct {
	repo ports.ModelRepository
}

func NewModelService(repo ports.ModelRepository) *ModelService {
	return &ModelService{repo: repo}
}

func (s *ModelService) Create(ctx context.Context, name, description string, labels map[string]string) (*domain.Model, error) {
	if name == "" {
		return nil, domain.ErrInvalidModelName
	}
	if labels == nil {
		labels = make(map[string]string)
	}

	now := time.Now()
	model := &domain.Model{
		ID:          uuid.New(),
		CreatedAt:   now,
		UpdatedAt:   now,
		Name:        name,
		Slug:        generateSlug(name),
		Description: description,
		State:       domain.ModelStateLive,
		Labels:      labels,
	}

	if err := s.repo.Create(ctx, model); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, model.ID)
}

func (s *ModelService) Get(ctx context.Context, id uuid.UUID) (*domain.Model, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ModelService) GetBySlug(ctx context.Context, slug string) (*domain.Model, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *ModelService) List(ctx context.Context, filter ports.ModelListFilter) ([]*domain.Model, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.repo.List(ctx, filter)
}

// Archive retires a model. Models are never deleted.
func (s *ModelService) Archive(ctx context.Context, id uuid.UUID) (*domain.Model, error) {
	model, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if model.State == domain.ModelStateArchived {
		return model, nil
	}
	model.State = domain.ModelStateArchived
	model.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, model); err != nil {
		return nil, err
	}
	return model, nil
}

func generateSlug(name string) string {
	slug := ""
	for _, ch := range name {
		if (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') || ch == '-' {
			slug += string(ch)
		} else if ch >= 'A' && ch <= 'Z' {
			slug += string(ch + 32)
		} else if ch == ' ' || ch == '_' {
			slug += "-"
		}
	}
	if len(slug) > 60 {
		slug = slug[:60]
	}
	return slug
}

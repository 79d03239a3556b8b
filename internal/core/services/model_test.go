package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"model-lineage-registry/internal/core/domain"
	ports "model-lineage-registry/internal/core/ports/output"
	"model-lineage-registry/internal/testutil"
)

func TestModelService_Create(t *testing.T) {
	repo := new(testutil.MockModelRepo)
	svc := NewModelService(repo)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Model")).Return(nil)
	repo.On("GetByID", mock.Anything, mock.AnythingOfType("uuid.UUID")).
		Return(&domain.Model{Name: "Support Bot v2", Slug: "support-bot-v2"}, nil)

	model, err := svc.Create(context.Background(), "Support Bot v2", "fine-tuned support assistant", nil)
	assert.NoError(t, err)
	assert.Equal(t, "support-bot-v2", model.Slug)

	created := repo.Calls[0].Arguments.Get(1).(*domain.Model)
	assert.Equal(t, "support-bot-v2", created.Slug)
	assert.Equal(t, domain.ModelStateLive, created.State)
	assert.NotNil(t, created.Labels)
}

func TestModelService_Create_EmptyName(t *testing.T) {
	repo := new(testutil.MockModelRepo)
	svc := NewModelService(repo)

	_, err := svc.Create(context.Background(), "", "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidModelName)
	repo.AssertNotCalled(t, "Create")
}

func TestModelService_Create_SlugConflict(t *testing.T) {
	repo := new(testutil.MockModelRepo)
	svc := NewModelService(repo)

	repo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrModelSlugConflict)

	_, err := svc.Create(context.Background(), "support bot", "", nil)
	assert.ErrorIs(t, err, domain.ErrModelSlugConflict)
}

func TestModelService_List_ClampsLimit(t *testing.T) {
	repo := new(testutil.MockModelRepo)
	svc := NewModelService(repo)

	repo.On("List", mock.Anything, ports.ModelListFilter{Limit: 20}).Return([]*domain.Model{}, 0, nil).Once()
	_, _, err := svc.List(context.Background(), ports.ModelListFilter{})
	assert.NoError(t, err)

	repo.On("List", mock.Anything, ports.ModelListFilter{Limit: 100}).Return([]*domain.Model{}, 0, nil).Once()
	_, _, err = svc.List(context.Background(), ports.ModelListFilter{Limit: 500})
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestModelService_Archive(t *testing.T) {
	repo := new(testutil.MockModelRepo)
	svc := NewModelService(repo)

	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(&domain.Model{ID: id, State: domain.ModelStateLive}, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Model")).Return(nil)

	model, err := svc.Archive(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, domain.ModelStateArchived, model.State)
}

func TestModelService_Archive_Idempotent(t *testing.T) {
	repo := new(testutil.MockModelRepo)
	svc := NewModelService(repo)

	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(&domain.Model{ID: id, State: domain.ModelStateArchived}, nil)

	model, err := svc.Archive(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, domain.ModelStateArchived, model.State)
	repo.AssertNotCalled(t, "Update")
}

func TestGenerateSlug(t *testing.T) {
	assert.Equal(t, "support-bot-v2", generateSlug("Support Bot v2"))
	assert.Equal(t, "llama-3-8b", generateSlug("Llama_3 8B"))
	assert.Equal(t, "model", generateSlug("Model!@#"))
}

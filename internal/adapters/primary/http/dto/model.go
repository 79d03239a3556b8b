package dto

import (
	"time"

	"github.com/google/uuid"

	"model-lineage-registry/internal/core/domain"
)

type CreateModelRequest struct {
	Name        string            `json:"name" binding:"required,max=100"`
	Description string            `json:"description"`
	Labels      map[string]string `json:"labels"`
}

type ModelResponse struct {
	ID               uuid.UUID         `json:"id"`
	CreatedAt        string            `json:"created_at"`
	UpdatedAt        string            `json:"updated_at"`
	Name             string            `json:"name"`
	Slug             string            `json:"slug"`
	Description      string            `json:"description"`
	State            string            `json:"state"`
	CurrentVersionID *uuid.UUID        `json:"current_version_id"`
	QualityScore     *float64          `json:"quality_score"`
	Labels           map[string]string `json:"labels"`
}

type ListModelsResponse struct {
	Items      []ModelResponse `json:"items"`
	Total      int             `json:"total"`
	PageSize   int             `json:"page_size"`
	NextOffset int             `json:"next_offset"`
}

func ToModelResponse(m *domain.Model) ModelResponse {
	return ModelResponse{
		ID:               m.ID,
		CreatedAt:        m.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        m.UpdatedAt.Format(time.RFC3339),
		Name:             m.Name,
		Slug:             m.Slug,
		Description:      m.Description,
		State:            string(m.State),
		CurrentVersionID: m.CurrentVersionID,
		QualityScore:     m.QualityScore,
		Labels:           m.Labels,
	}
}

package dto

import (
	"time"

	"github.com/google/uuid"

	"model-lineage-registry/internal/core/domain"
	"model-lineage-registry/internal/core/services"
)

type DataSourceDTO struct {
	Name    string `json:"name" binding:"required"`
	URI     string `json:"uri"`
	License string `json:"license"`
	Records int64  `json:"records"`
}

type RecordDatasetRequest struct {
	Name            string                       `json:"name" binding:"required"`
	Version         string                       `json:"version"`
	Sources         []DataSourceDTO              `json:"sources" binding:"required,min=1"`
	QualityMetrics  domain.DatasetQualityMetrics `json:"quality_metrics"`
	Licensing       domain.Licensing             `json:"licensing"`
	ConsentObtained bool                         `json:"consent_obtained"`
	Certifications  []string                     `json:"certifications"`
	SampleTexts     []string                     `json:"sample_texts"`
	RecordedBy      string                       `json:"recorded_by"`
}

type AddPreprocessingStepRequest struct {
	Name            string            `json:"name" binding:"required"`
	Description     string            `json:"description"`
	AffectedSamples int64             `json:"affected_samples"`
	Parameters      map[string]string `json:"parameters"`
}

type AppendAuditEntryRequest struct {
	Actor  string `json:"actor" binding:"required"`
	Action string `json:"action" binding:"required"`
	Detail string `json:"detail"`
}

type ProvenanceResponse struct {
	ID                 uuid.UUID                    `json:"id"`
	Version            string                       `json:"version"`
	Name               string                       `json:"name"`
	Sources            []domain.DataSource          `json:"sources"`
	PreprocessingSteps []domain.PreprocessingStep   `json:"preprocessing_steps"`
	QualityMetrics     domain.DatasetQualityMetrics `json:"quality_metrics"`
	Licensing          domain.Licensing             `json:"licensing"`
	ComplianceFlags    domain.ComplianceFlags       `json:"compliance_flags"`
	AuditLog           []domain.AuditEntry          `json:"audit_log"`
	CreatedAt          string                       `json:"created_at"`
	UpdatedAt          string                       `json:"updated_at"`
}

func (r RecordDatasetRequest) ToSpec() services.DatasetSpec {
	spec := services.DatasetSpec{
		Name:            r.Name,
		Version:         r.Version,
		QualityMetrics:  r.QualityMetrics,
		Licensing:       r.Licensing,
		ConsentObtained: r.ConsentObtained,
		Certifications:  r.Certifications,
		SampleTexts:     r.SampleTexts,
		RecordedBy:      r.RecordedBy,
	}
	for _, src := range r.Sources {
		spec.Sources = append(spec.Sources, domain.DataSource{
			Name:    src.Name,
			URI:     src.URI,
			License: src.License,
			Records: src.Records,
		})
	}
	return spec
}

func ToProvenanceResponse(p *domain.DatasetProvenance) ProvenanceResponse {
	return ProvenanceResponse{
		ID:                 p.ID,
		Version:            p.Version,
		Name:               p.Name,
		Sources:            p.Sources,
		PreprocessingSteps: p.PreprocessingSteps,
		QualityMetrics:     p.QualityMetrics,
		Licensing:          p.Licensing,
		ComplianceFlags:    p.ComplianceFlags,
		AuditLog:           p.AuditLog,
		CreatedAt:          p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          p.UpdatedAt.Format(time.RFC3339),
	}
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"model-lineage-registry/internal/core/domain"
	ports "model-lineage-registry/internal/core/ports/output"
)

type DatasetSpec struct {
	Name            string
	Version         string
	Sources         []domain.DataSource
	QualityMetrics  domain.DatasetQualityMetrics
	Licensing       domain.Licensing
	ConsentObtained bool
	Certifications  []string
	// SampleTexts are handed to the PII scanner; they are not stored.
	SampleTexts []string
	RecordedBy  string
}

// ProvenanceService records dataset origins and derives compliance flags.
// Flags are computed from scan results and preprocessing history, never
// taken from the caller.
type ProvenanceService struct {
	repo    ports.ProvenanceRepository
	scanner ports.PIIScanner
}

func NewProvenanceService(repo ports.ProvenanceRepository, scanner ports.PIIScanner) *ProvenanceService {
	return &ProvenanceService{repo: repo, scanner: scanner}
}

func (s *ProvenanceService) RecordDataset(ctx context.Context, spec DatasetSpec) (*domain.DatasetProvenance, error) {
	scan, err := s.scanner.Scan(ctx, spec.SampleTexts)
	if err != nil {
		return nil, fmt.Errorf("pii scan: %w", err)
	}

	now := time.Now()
	prov := &domain.DatasetProvenance{
		ID:             uuid.New(),
		Version:        spec.Version,
		Name:           spec.Name,
		Sources:        spec.Sources,
		QualityMetrics: spec.QualityMetrics,
		Licensing:      spec.Licensing,
		ComplianceFlags: domain.ComplianceFlags{
			ConsentObtained: spec.ConsentObtained,
			Certifications:  spec.Certifications,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	prov.ComplianceFlags = domain.DeriveComplianceFlags(prov, scan.Detected)
	prov.AuditLog = append(prov.AuditLog, domain.AuditEntry{
		At:     now,
		Actor:  spec.RecordedBy,
		Action: "dataset_recorded",
		Detail: fmt.Sprintf("sources=%d pii_detected=%t", len(spec.Sources), scan.Detected),
	})

	if err := s.repo.Create(ctx, prov); err != nil {
		return nil, err
	}

	if scan.Detected {
		log.WithFields(log.Fields{
			"dataset_id": prov.ID,
			"locations":  len(scan.Locations),
		}).Warn("PII detected in dataset samples")
	}
	return prov, nil
}

// AddPreprocessingStep appends a step and re-derives the compliance flags;
// a pii_removal step that touched samples flips piiRemoved after a positive
// scan.
func (s *ProvenanceService) AddPreprocessingStep(ctx context.Context, datasetID uuid.UUID, step domain.PreprocessingStep) (*domain.DatasetProvenance, error) {
	prov, err := s.repo.GetByID(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	if step.AppliedAt.IsZero() {
		step.AppliedAt = time.Now()
	}
	prov.PreprocessingSteps = append(prov.PreprocessingSteps, step)
	prov.ComplianceFlags = domain.DeriveComplianceFlags(prov, prov.ComplianceFlags.PIIDetected)
	prov.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, prov); err != nil {
		return nil, err
	}
	if err := s.repo.AppendAudit(ctx, datasetID, domain.AuditEntry{
		At:     time.Now(),
		Action: "preprocessing_step_added",
		Detail: step.Name,
	}); err != nil {
		return nil, err
	}
	return prov, nil
}

// ValidateCompliance checks the requested standards against the record's
// rule table. The report is data, not an error: every violation names the
// standard that produced it. The check is pure over the stored record, so
// repeated calls on an unmodified dataset return identical reports.
func (s *ProvenanceService) ValidateCompliance(ctx context.Context, datasetID uuid.UUID, standards []string) (*domain.ComplianceReport, error) {
	prov, err := s.repo.GetByID(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	report := &domain.ComplianceReport{
		DatasetID:  datasetID,
		Compliant:  true,
		Violations: []domain.ComplianceIssue{},
		Warnings:   []domain.ComplianceIssue{},
		CheckedAt:  time.Now(),
	}
	for _, standard := range standards {
		violations, warnings := domain.CheckStandard(prov, standard)
		report.Violations = append(report.Violations, violations...)
		report.Warnings = append(report.Warnings, warnings...)
	}
	report.Compliant = len(report.Violations) == 0
	return report, nil
}

func (s *ProvenanceService) AppendAuditEntry(ctx context.Context, datasetID uuid.UUID, entry domain.AuditEntry) error {
	if _, err := s.repo.GetByID(ctx, datasetID); err != nil {
		return err
	}
	if entry.At.IsZero() {
		entry.At = time.Now()
	}
	return s.repo.AppendAudit(ctx, datasetID, entry)
}

func (s *ProvenanceService) Get(ctx context.Context, datasetID uuid.UUID) (*domain.DatasetProvenance, error) {
	return s.repo.GetByID(ctx, datasetID)
}

package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type DataSource struct {
	Name    string `json:"name"`
	URI     string `json:"uri"`
	License string `json:"license"`
	Records int64  `json:"records"`
}

type PreprocessingStep struct {
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	AffectedSamples int64             `json:"affected_samples"`
	Parameters      map[string]string `json:"parameters,omitempty"`
	AppliedAt       time.Time         `json:"applied_at"`
}

type DatasetQualityMetrics struct {
	SampleCount     int64   `json:"sample_count"`
	Completeness    float64 `json:"completeness"`
	DuplicationRate float64 `json:"duplication_rate"`
}

type Licensing struct {
	License       string `json:"license"`
	Attribution   string `json:"attribution"`
	CommercialUse bool   `json:"commercial_use"`
}

// ComplianceFlags are derived from sources, preprocessing steps and PII scan
// results. Callers never set them directly.
type ComplianceFlags struct {
	PIIDetected     bool     `json:"pii_detected"`
	PIIRemoved      bool     `json:"pii_removed"`
	ConsentObtained bool     `json:"consent_obtained"`
	Certifications  []string `json:"certifications"`
}

type AuditEntry struct {
	At     time.Time `json:"at"`
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
	Detail string    `json:"detail,omitempty"`
}

type DatasetProvenance struct {
	ID                 uuid.UUID             `json:"id"`
	Version            string                `json:"version"`
	Name               string                `json:"name"`
	Sources            []DataSource          `json:"sources"`
	PreprocessingSteps []PreprocessingStep   `json:"preprocessing_steps"`
	QualityMetrics     DatasetQualityMetrics `json:"quality_metrics"`
	Licensing          Licensing             `json:"licensing"`
	ComplianceFlags    ComplianceFlags       `json:"compliance_flags"`
	AuditLog           []AuditEntry          `json:"audit_log"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

// StepPIIRemoval is the preprocessing step name the compliance derivation
// recognizes as redaction.
const StepPIIRemoval = "pii_removal"

// DeriveComplianceFlags recomputes the derived flags from the record's
// current state. piiDetected comes from the stored scan outcome; piiRemoved
// holds only when detected PII was followed by a redaction step that
// actually touched samples.
func DeriveComplianceFlags(p *DatasetProvenance, piiDetected bool) ComplianceFlags {
	flags := ComplianceFlags{
		PIIDetected:     piiDetected,
		ConsentObtained: p.ComplianceFlags.ConsentObtained,
		Certifications:  p.ComplianceFlags.Certifications,
	}
	if piiDetected {
		for _, step := range p.PreprocessingSteps {
			if step.Name == StepPIIRemoval && step.AffectedSamples > 0 {
				flags.PIIRemoved = true
				break
			}
		}
	}
	return flags
}

// HasUnredactedPII reports whether the dataset still carries detected PII.
func (f ComplianceFlags) HasUnredactedPII() bool {
	return f.PIIDetected && !f.PIIRemoved
}

func (f ComplianceFlags) HasCertification(name string) bool {
	for _, cert := range f.Certifications {
		if strings.EqualFold(cert, name) {
			return true
		}
	}
	return false
}

type ComplianceIssue struct {
	Standard string `json:"standard"`
	Message  string `json:"message"`
}

type ComplianceReport struct {
	DatasetID  uuid.UUID         `json:"dataset_id"`
	Compliant  bool              `json:"compliant"`
	Violations []ComplianceIssue `json:"violations"`
	Warnings   []ComplianceIssue `json:"warnings"`
	CheckedAt  time.Time         `json:"checked_at"`
}

const (
	StandardGDPR  = "gdpr"
	StandardCCPA  = "ccpa"
	StandardHIPAA = "hipaa"
)

// CertHIPAA is the certification entry HIPAA checks require.
const CertHIPAA = "hipaa_compliant"

// CheckStandard evaluates one compliance standard against the record's
// fixed rule table and returns per-standard violations and warnings, so a
// caller sees exactly which standard failed and why.
func CheckStandard(p *DatasetProvenance, standard string) (violations, warnings []ComplianceIssue) {
	std := strings.ToLower(standard)
	issue := func(msg string) ComplianceIssue {
		return ComplianceIssue{Standard: std, Message: msg}
	}

	switch std {
	case StandardGDPR:
		if p.ComplianceFlags.HasUnredactedPII() {
			violations = append(violations, issue("dataset contains detected PII without a redaction step"))
		}
		if !p.ComplianceFlags.ConsentObtained {
			violations = append(violations, issue("no record of data subject consent"))
		}
	case StandardCCPA:
		if p.ComplianceFlags.HasUnredactedPII() {
			violations = append(violations, issue("dataset contains detected PII without a redaction step"))
		}
		for _, src := range p.Sources {
			if src.License == "" {
				warnings = append(warnings, issue(fmt.Sprintf("source %q has no license recorded", src.Name)))
			}
		}
	case StandardHIPAA:
		if !p.ComplianceFlags.HasCertification(CertHIPAA) {
			violations = append(violations, issue("missing hipaa_compliant certification entry"))
		}
		if p.ComplianceFlags.HasUnredactedPII() {
			violations = append(violations, issue("dataset contains detected PII without a redaction step"))
		}
	default:
		warnings = append(warnings, issue("unknown compliance standard, no rules applied"))
	}
	return violations, warnings
}

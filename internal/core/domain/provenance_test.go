package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveComplianceFlags_NoPII(t *testing.T) {
	p := &DatasetProvenance{
		ComplianceFlags: ComplianceFlags{ConsentObtained: true, Certifications: []string{"soc2"}},
	}

	flags := DeriveComplianceFlags(p, false)
	assert.False(t, flags.PIIDetected)
	assert.False(t, flags.PIIRemoved)
	assert.True(t, flags.ConsentObtained)
	assert.Equal(t, []string{"soc2"}, flags.Certifications)
}

func TestDeriveComplianceFlags_PIIWithoutRedaction(t *testing.T) {
	p := &DatasetProvenance{}
	flags := DeriveComplianceFlags(p, true)
	assert.True(t, flags.PIIDetected)
	assert.False(t, flags.PIIRemoved)
	assert.True(t, flags.HasUnredactedPII())
}

func TestDeriveComplianceFlags_PIIRedacted(t *testing.T) {
	p := &DatasetProvenance{
		PreprocessingSteps: []PreprocessingStep{
			{Name: "dedup", AffectedSamples: 120},
			{Name: StepPIIRemoval, AffectedSamples: 42},
		},
	}
	flags := DeriveComplianceFlags(p, true)
	assert.True(t, flags.PIIDetected)
	assert.True(t, flags.PIIRemoved)
	assert.False(t, flags.HasUnredactedPII())
}

func TestDeriveComplianceFlags_RedactionStepTouchedNothing(t *testing.T) {
	p := &DatasetProvenance{
		PreprocessingSteps: []PreprocessingStep{{Name: StepPIIRemoval, AffectedSamples: 0}},
	}
	flags := DeriveComplianceFlags(p, true)
	assert.False(t, flags.PIIRemoved)
}

func TestCheckStandard_GDPR(t *testing.T) {
	p := &DatasetProvenance{
		ComplianceFlags: ComplianceFlags{PIIDetected: true, ConsentObtained: false},
	}
	violations, warnings := CheckStandard(p, "GDPR")
	assert.Len(t, violations, 2)
	assert.Empty(t, warnings)

	p.ComplianceFlags = ComplianceFlags{PIIDetected: true, PIIRemoved: true, ConsentObtained: true}
	violations, _ = CheckStandard(p, StandardGDPR)
	assert.Empty(t, violations)
}

func TestCheckStandard_CCPA(t *testing.T) {
	p := &DatasetProvenance{
		Sources: []DataSource{
			{Name: "forum-dump"},
			{Name: "support-chats", License: "cc-by-4.0"},
		},
	}
	violations, warnings := CheckStandard(p, StandardCCPA)
	assert.Empty(t, violations)
	assert.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "forum-dump")
}

func TestCheckStandard_HIPAA(t *testing.T) {
	p := &DatasetProvenance{}
	violations, _ := CheckStandard(p, StandardHIPAA)
	assert.Len(t, violations, 1)

	p.ComplianceFlags.Certifications = []string{"HIPAA_Compliant"}
	violations, _ = CheckStandard(p, StandardHIPAA)
	assert.Empty(t, violations)
}

func TestCheckStandard_Unknown(t *testing.T) {
	violations, warnings := CheckStandard(&DatasetProvenance{}, "pci-dss")
	assert.Empty(t, violations)
	assert.Len(t, warnings, 1)
}

func TestCheckStandard_Deterministic(t *testing.T) {
	p := &DatasetProvenance{
		ComplianceFlags: ComplianceFlags{PIIDetected: true},
		CreatedAt:       time.Now(),
	}
	v1, w1 := CheckStandard(p, StandardGDPR)
	v2, w2 := CheckStandard(p, StandardGDPR)
	assert.Equal(t, v1, v2)
	assert.Equal(t, w1, w2)
}

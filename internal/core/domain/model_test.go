package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(VersionStatusBuilding, VersionStatusEvaluating))
	assert.True(t, CanTransition(VersionStatusBuilding, VersionStatusFailed))
	assert.True(t, CanTransition(VersionStatusEvaluating, VersionStatusReady))
	assert.True(t, CanTransition(VersionStatusEvaluating, VersionStatusFailed))
	assert.True(t, CanTransition(VersionStatusReady, VersionStatusPublished))
	assert.True(t, CanTransition(VersionStatusPublished, VersionStatusDeprecated))
	assert.True(t, CanTransition(VersionStatusDeprecated, VersionStatusArchived))
}

func TestCanTransition_Rejected(t *testing.T) {
	assert.False(t, CanTransition(VersionStatusBuilding, VersionStatusPublished))
	assert.False(t, CanTransition(VersionStatusReady, VersionStatusBuilding))
	assert.False(t, CanTransition(VersionStatusPublished, VersionStatusReady))
	assert.False(t, CanTransition(VersionStatusPublished, VersionStatusArchived))
}

func TestCanTransition_TerminalStates(t *testing.T) {
	for _, to := range []VersionStatus{
		VersionStatusBuilding, VersionStatusEvaluating, VersionStatusReady,
		VersionStatusPublished, VersionStatusDeprecated,
	} {
		assert.False(t, CanTransition(VersionStatusFailed, to))
		assert.False(t, CanTransition(VersionStatusArchived, to))
	}
}

func TestIsMutable(t *testing.T) {
	assert.True(t, IsMutable(&ModelVersion{Status: VersionStatusBuilding}))
	assert.True(t, IsMutable(&ModelVersion{Status: VersionStatusEvaluating}))
	assert.True(t, IsMutable(&ModelVersion{Status: VersionStatusReady}))
	assert.False(t, IsMutable(&ModelVersion{Status: VersionStatusPublished}))
	assert.False(t, IsMutable(&ModelVersion{Status: VersionStatusDeprecated}))
	assert.False(t, IsMutable(&ModelVersion{Status: VersionStatusFailed}))
}

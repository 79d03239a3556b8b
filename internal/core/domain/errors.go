package domain

import "errors"

// ============================================================================
// Not Found Errors
// ============================================================================

var (
	ErrModelNotFound       = errors.New("model not found")
	ErrVersionNotFound     = errors.New("model version not found")
	ErrLineageNodeNotFound = errors.New("lineage node not found")
	ErrDatasetNotFound     = errors.New("dataset provenance record not found")
	ErrEvaluationNotFound  = errors.New("evaluation result not found")
)

// ============================================================================
// Conflict Errors
// ============================================================================

var (
	ErrModelSlugConflict = errors.New("model with this slug already exists")
	ErrVersionConflict   = errors.New("version with this number already exists for this model")
	ErrDuplicateNode     = errors.New("lineage node with this id already exists")
	ErrDatasetConflict   = errors.New("dataset provenance record already exists for this id")
)

// ============================================================================
// Validation Errors
// ============================================================================

var (
	ErrInvalidModelName        = errors.New("model name is required")
	ErrInvalidSemver           = errors.New("version must be a valid MAJOR.MINOR.PATCH semantic version")
	ErrVersionNotIncremented   = errors.New("version must be greater than the highest published version")
	ErrInvalidStatusTransition = errors.New("invalid version status transition")
	ErrCyclicLineage           = errors.New("edge would create a cycle in the lineage graph")
	ErrInvalidNodeType         = errors.New("invalid lineage node type")
	ErrInvalidRelationType     = errors.New("invalid lineage relation type")
	ErrInvalidBenchmarkName    = errors.New("benchmark name is required")
	ErrResultNotFinal          = errors.New("evaluation result must be COMPLETED or FAILED to be ingested")
	ErrChecksumMismatch        = errors.New("artifact checksum does not match object store")
)

// ============================================================================
// Business Rule Errors
// ============================================================================

var (
	ErrComplianceViolation = errors.New("version is trained on non-compliant data")
	ErrVersionImmutable    = errors.New("published version is immutable")
	ErrModelArchived       = errors.New("model is archived")
	ErrStaleResult         = errors.New("a newer result for this version and benchmark was already ingested")
	ErrEvaluationDisabled  = errors.New("evaluation cluster is not configured")
)

// CodeInternal is reported for storage and other unclassified failures,
// together with a correlation id for triage.
const CodeInternal = "INTERNAL"

var errorCodes = map[error]string{
	ErrModelNotFound:           "MODEL_NOT_FOUND",
	ErrVersionNotFound:         "VERSION_NOT_FOUND",
	ErrLineageNodeNotFound:     "LINEAGE_NODE_NOT_FOUND",
	ErrDatasetNotFound:         "DATASET_NOT_FOUND",
	ErrEvaluationNotFound:      "EVALUATION_NOT_FOUND",
	ErrModelSlugConflict:       "MODEL_SLUG_CONFLICT",
	ErrVersionConflict:         "VERSION_CONFLICT",
	ErrDuplicateNode:           "DUPLICATE_NODE",
	ErrDatasetConflict:         "DATASET_CONFLICT",
	ErrInvalidModelName:        "INVALID_MODEL_NAME",
	ErrInvalidSemver:           "INVALID_SEMVER",
	ErrVersionNotIncremented:   "VERSION_NOT_INCREMENTED",
	ErrInvalidStatusTransition: "INVALID_STATUS_TRANSITION",
	ErrCyclicLineage:           "CYCLIC_LINEAGE",
	ErrInvalidNodeType:         "INVALID_NODE_TYPE",
	ErrInvalidRelationType:     "INVALID_RELATION_TYPE",
	ErrInvalidBenchmarkName:    "INVALID_BENCHMARK_NAME",
	ErrResultNotFinal:          "RESULT_NOT_FINAL",
	ErrChecksumMismatch:        "CHECKSUM_MISMATCH",
	ErrComplianceViolation:     "COMPLIANCE_VIOLATION",
	ErrVersionImmutable:        "VERSION_IMMUTABLE",
	ErrModelArchived:           "MODEL_ARCHIVED",
	ErrStaleResult:             "STALE_RESULT",
	ErrEvaluationDisabled:      "EVALUATION_DISABLED",
}

// ErrorCode maps a domain error to its stable, client-facing code.
// Unknown errors map to CodeInternal so internal detail never leaks.
func ErrorCode(err error) string {
	for sentinel, code := range errorCodes {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return CodeInternal
}

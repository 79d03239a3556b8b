package domain

import (
	"time"

	"github.com/google/uuid"
)

type EvaluationStatus string

const (
	EvaluationStatusPending   EvaluationStatus = "PENDING"
	EvaluationStatusRunning   EvaluationStatus = "RUNNING"
	EvaluationStatusCompleted EvaluationStatus = "COMPLETED"
	EvaluationStatusFailed    EvaluationStatus = "FAILED"
)

// IsFinalEvaluationStatus reports whether a result may be ingested.
// COMPLETED and FAILED results are immutable once stored.
func IsFinalEvaluationStatus(s EvaluationStatus) bool {
	return s == EvaluationStatusCompleted || s == EvaluationStatusFailed
}

type TaskScore struct {
	TaskName    string  `json:"task_name"`
	Score       float64 `json:"score"`
	SampleCount int64   `json:"sample_count"`
}

// EvaluationMetrics carries the sub-metrics feeding the quality score.
// Every field is optional; a missing metric simply contributes nothing and
// its weight is renormalized across the metrics that are present.
type EvaluationMetrics struct {
	MMLUScore       *float64 `json:"mmlu_score,omitempty"`
	HellaSwagScore  *float64 `json:"hellaswag_score,omitempty"`
	TruthfulQAScore *float64 `json:"truthfulqa_score,omitempty"`
	ToxicityScore   *float64 `json:"toxicity_score,omitempty"`
	BiasScore       *float64 `json:"bias_score,omitempty"`
	RobustnessScore *float64 `json:"robustness_score,omitempty"`
	LatencyP50Ms    *float64 `json:"latency_p50_ms,omitempty"`
	ThroughputRPS   *float64 `json:"throughput_rps,omitempty"`
}

type EvaluationResult struct {
	ID               uuid.UUID         `json:"id"`
	ModelVersionID   uuid.UUID         `json:"model_version_id"`
	BenchmarkName    string            `json:"benchmark_name"`
	BenchmarkVersion string            `json:"benchmark_version"`
	OverallScore     float64           `json:"overall_score"`
	TaskScores       []TaskScore       `json:"task_scores,omitempty"`
	Metrics          EvaluationMetrics `json:"metrics"`
	Status           EvaluationStatus  `json:"status"`
	FailureReason    string            `json:"failure_reason,omitempty"`
	EvaluatedAt      time.Time         `json:"evaluated_at"`
	CreatedAt        time.Time         `json:"created_at"`
}

type LeaderboardEntry struct {
	ModelVersionID uuid.UUID `json:"model_version_id"`
	Score          float64   `json:"score"`
	EvaluatedAt    time.Time `json:"evaluated_at"`
}

// Benchmark names with a well-known slot in the quality score formula.
// A result for one of these that does not spell out the sub-metric still
// contributes its overall score to that slot.
const (
	BenchmarkMMLU       = "mmlu"
	BenchmarkHellaSwag  = "hellaswag"
	BenchmarkTruthfulQA = "truthfulqa"
	BenchmarkToxicity   = "toxicity"
	BenchmarkBias       = "bias"
	BenchmarkRobustness = "robustness"
)

// MergeMetrics folds a set of completed results (latest per benchmark) into
// one metrics view for scoring. Explicit sub-metrics win over the
// benchmark-name fallback.
func MergeMetrics(results []*EvaluationResult) EvaluationMetrics {
	var merged EvaluationMetrics
	for _, r := range results {
		if r.Status != EvaluationStatusCompleted {
			continue
		}
		score := r.OverallScore
		switch r.BenchmarkName {
		case BenchmarkMMLU:
			if merged.MMLUScore == nil {
				merged.MMLUScore = &score
			}
		case BenchmarkHellaSwag:
			if merged.HellaSwagScore == nil {
				merged.HellaSwagScore = &score
			}
		case BenchmarkTruthfulQA:
			if merged.TruthfulQAScore == nil {
				merged.TruthfulQAScore = &score
			}
		case BenchmarkToxicity:
			if merged.ToxicityScore == nil {
				merged.ToxicityScore = &score
			}
		case BenchmarkBias:
			if merged.BiasScore == nil {
				merged.BiasScore = &score
			}
		case BenchmarkRobustness:
			if merged.RobustnessScore == nil {
				merged.RobustnessScore = &score
			}
		}
		mergeExplicit(&merged, r.Metrics)
	}
	return merged
}

func mergeExplicit(dst *EvaluationMetrics, src EvaluationMetrics) {
	if src.MMLUScore != nil {
		dst.MMLUScore = src.MMLUScore
	}
	if src.HellaSwagScore != nil {
		dst.HellaSwagScore = src.HellaSwagScore
	}
	if src.TruthfulQAScore != nil {
		dst.TruthfulQAScore = src.TruthfulQAScore
	}
	if src.ToxicityScore != nil {
		dst.ToxicityScore = src.ToxicityScore
	}
	if src.BiasScore != nil {
		dst.BiasScore = src.BiasScore
	}
	if src.RobustnessScore != nil {
		dst.RobustnessScore = src.RobustnessScore
	}
	if src.LatencyP50Ms != nil {
		dst.LatencyP50Ms = src.LatencyP50Ms
	}
	if src.ThroughputRPS != nil {
		dst.ThroughputRPS = src.ThroughputRPS
	}
}

package dto

import (
	"time"

	"github.com/google/uuid"

	"model-lineage-registry/internal/core/domain"
)

type IngestResultRequest struct {
	ModelVersionID   uuid.UUID                `json:"model_version_id" binding:"required"`
	BenchmarkName    string                   `json:"benchmark_name" binding:"required"`
	BenchmarkVersion string                   `json:"benchmark_version"`
	OverallScore     float64                  `json:"overall_score"`
	TaskScores       []domain.TaskScore       `json:"task_scores"`
	Metrics          domain.EvaluationMetrics `json:"metrics"`
	Status           string                   `json:"status" binding:"required"`
	FailureReason    string                   `json:"failure_reason"`
	EvaluatedAt      *time.Time               `json:"evaluated_at"`
}

type DispatchEvaluationRequest struct {
	Benchmarks []string `json:"benchmarks" binding:"required,min=1"`
}

type DispatchEvaluationResponse struct {
	JobID string `json:"job_id"`
}

type EvaluationResultResponse struct {
	ID               uuid.UUID                `json:"id"`
	ModelVersionID   uuid.UUID                `json:"model_version_id"`
	BenchmarkName    string                   `json:"benchmark_name"`
	BenchmarkVersion string                   `json:"benchmark_version"`
	OverallScore     float64                  `json:"overall_score"`
	TaskScores       []domain.TaskScore       `json:"task_scores,omitempty"`
	Metrics          domain.EvaluationMetrics `json:"metrics"`
	Status           string                   `json:"status"`
	FailureReason    string                   `json:"failure_reason,omitempty"`
	EvaluatedAt      string                   `json:"evaluated_at"`
}

type LeaderboardResponse struct {
	Benchmark string                    `json:"benchmark"`
	Entries   []domain.LeaderboardEntry `json:"entries"`
}

func (r IngestResultRequest) ToDomain() *domain.EvaluationResult {
	result := &domain.EvaluationResult{
		ModelVersionID:   r.ModelVersionID,
		BenchmarkName:    r.BenchmarkName,
		BenchmarkVersion: r.BenchmarkVersion,
		OverallScore:     r.OverallScore,
		TaskScores:       r.TaskScores,
		Metrics:          r.Metrics,
		Status:           domain.EvaluationStatus(r.Status),
		FailureReason:    r.FailureReason,
	}
	if r.EvaluatedAt != nil {
		result.EvaluatedAt = *r.EvaluatedAt
	}
	return result
}

func ToEvaluationResultResponse(res *domain.EvaluationResult) EvaluationResultResponse {
	return EvaluationResultResponse{
		ID:               res.ID,
		ModelVersionID:   res.ModelVersionID,
		BenchmarkName:    res.BenchmarkName,
		BenchmarkVersion: res.BenchmarkVersion,
		OverallScore:     res.OverallScore,
		TaskScores:       res.TaskScores,
		Metrics:          res.Metrics,
		Status:           string(res.Status),
		FailureReason:    res.FailureReason,
		EvaluatedAt:      res.EvaluatedAt.Format(time.RFC3339),
	}
}

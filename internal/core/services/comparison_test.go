package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"model-lineage-registry/internal/core/domain"
	"model-lineage-registry/internal/testutil"
)

func TestComparisonService_CompareVersions(t *testing.T) {
	versionRepo := new(testutil.MockVersionRepo)
	evalRepo := new(testutil.MockEvaluationRepo)
	svc := NewComparisonService(versionRepo, evalRepo)

	modelID := uuid.New()
	va := &domain.ModelVersion{
		ID: uuid.New(), ModelID: modelID, Version: "1.0.0",
		Artifacts:   domain.ModelArtifacts{SizeBytes: 1000},
		Performance: domain.PerformanceProfile{LatencyP50Ms: fp(100), ThroughputRPS: fp(50)},
	}
	vb := &domain.ModelVersion{
		ID: uuid.New(), ModelID: modelID, Version: "1.1.0",
		Artifacts:   domain.ModelArtifacts{SizeBytes: 1100},
		Performance: domain.PerformanceProfile{LatencyP50Ms: fp(110), ThroughputRPS: fp(60)},
	}

	versionRepo.On("GetByModelAndVersion", mock.Anything, modelID, "1.0.0").Return(va, nil)
	versionRepo.On("GetByModelAndVersion", mock.Anything, modelID, "1.1.0").Return(vb, nil)
	evalRepo.On("ListByVersion", mock.Anything, va.ID).Return([]*domain.EvaluationResult{
		{BenchmarkName: "mmlu", OverallScore: 70, Status: domain.EvaluationStatusCompleted},
		{BenchmarkName: "toxicity", OverallScore: 10, Status: domain.EvaluationStatusCompleted},
		{BenchmarkName: "hellaswag", OverallScore: 65, Status: domain.EvaluationStatusCompleted},
	}, nil)
	evalRepo.On("ListByVersion", mock.Anything, vb.ID).Return([]*domain.EvaluationResult{
		{BenchmarkName: "mmlu", OverallScore: 80, Status: domain.EvaluationStatusCompleted},
		{BenchmarkName: "toxicity", OverallScore: 6, Status: domain.EvaluationStatusCompleted},
		// hellaswag never ran against B, so it stays out of the aggregate.
	}, nil)

	report, err := svc.CompareVersions(context.Background(), modelID, "1.0.0", "1.1.0")
	assert.NoError(t, err)

	assert.InDelta(t, 10, *report.SizeChangePct, 0.001)
	assert.InDelta(t, 10, *report.Performance.LatencyDeltaMs, 0.001)
	assert.InDelta(t, 10, *report.Performance.LatencyDeltaPct, 0.001)
	assert.InDelta(t, 20, *report.Performance.ThroughputDeltaPct, 0.001)

	assert.Len(t, report.EvaluationDeltas, 2)
	assert.InDelta(t, 10, report.EvaluationDeltas["mmlu"].ScoreDelta, 0.001)
	assert.InDelta(t, -4, report.EvaluationDeltas["toxicity"].ScoreDelta, 0.001)
	// (10 + -4) / 2 = 3.0: clear win with no 20% latency regression.
	assert.InDelta(t, 3.0, *report.AggregateScoreDelta, 0.001)
	assert.Equal(t, domain.RecommendationBetter, report.Recommendation)
}

func TestComparisonService_CompareVersions_LatencyRegressionBlocksUpgrade(t *testing.T) {
	versionRepo := new(testutil.MockVersionRepo)
	evalRepo := new(testutil.MockEvaluationRepo)
	svc := NewComparisonService(versionRepo, evalRepo)

	modelID := uuid.New()
	va := &domain.ModelVersion{
		ID: uuid.New(), ModelID: modelID, Version: "1.0.0",
		Performance: domain.PerformanceProfile{LatencyP50Ms: fp(100)},
	}
	vb := &domain.ModelVersion{
		ID: uuid.New(), ModelID: modelID, Version: "2.0.0",
		Performance: domain.PerformanceProfile{LatencyP50Ms: fp(150)},
	}

	versionRepo.On("GetByModelAndVersion", mock.Anything, modelID, "1.0.0").Return(va, nil)
	versionRepo.On("GetByModelAndVersion", mock.Anything, modelID, "2.0.0").Return(vb, nil)
	evalRepo.On("ListByVersion", mock.Anything, va.ID).Return([]*domain.EvaluationResult{
		{BenchmarkName: "mmlu", OverallScore: 70, Status: domain.EvaluationStatusCompleted},
	}, nil)
	evalRepo.On("ListByVersion", mock.Anything, vb.ID).Return([]*domain.EvaluationResult{
		{BenchmarkName: "mmlu", OverallScore: 80, Status: domain.EvaluationStatusCompleted},
	}, nil)

	report, err := svc.CompareVersions(context.Background(), modelID, "1.0.0", "2.0.0")
	assert.NoError(t, err)
	assert.InDelta(t, 10, *report.AggregateScoreDelta, 0.001)
	// +10 points but latency regressed 50%.
	assert.Equal(t, domain.RecommendationSimilar, report.Recommendation)
}

func TestComparisonService_CompareVersions_NoSharedBenchmarks(t *testing.T) {
	versionRepo := new(testutil.MockVersionRepo)
	evalRepo := new(testutil.MockEvaluationRepo)
	svc := NewComparisonService(versionRepo, evalRepo)

	modelID := uuid.New()
	va := &domain.ModelVersion{ID: uuid.New(), ModelID: modelID, Version: "1.0.0"}
	vb := &domain.ModelVersion{ID: uuid.New(), ModelID: modelID, Version: "1.1.0"}

	versionRepo.On("GetByModelAndVersion", mock.Anything, modelID, "1.0.0").Return(va, nil)
	versionRepo.On("GetByModelAndVersion", mock.Anything, modelID, "1.1.0").Return(vb, nil)
	evalRepo.On("ListByVersion", mock.Anything, va.ID).Return([]*domain.EvaluationResult{
		{BenchmarkName: "mmlu", OverallScore: 70, Status: domain.EvaluationStatusCompleted},
	}, nil)
	evalRepo.On("ListByVersion", mock.Anything, vb.ID).Return([]*domain.EvaluationResult{}, nil)

	report, err := svc.CompareVersions(context.Background(), modelID, "1.0.0", "1.1.0")
	assert.NoError(t, err)
	assert.Nil(t, report.AggregateScoreDelta)
	assert.Empty(t, report.EvaluationDeltas)
	assert.Equal(t, domain.RecommendationSimilar, report.Recommendation)
}

func TestComparisonService_CompareVersions_UsesLatestPerBenchmark(t *testing.T) {
	versionRepo := new(testutil.MockVersionRepo)
	evalRepo := new(testutil.MockEvaluationRepo)
	svc := NewComparisonService(versionRepo, evalRepo)

	modelID := uuid.New()
	va := &domain.ModelVersion{ID: uuid.New(), ModelID: modelID, Version: "1.0.0"}
	vb := &domain.ModelVersion{ID: uuid.New(), ModelID: modelID, Version: "1.1.0"}
	old := time.Now().Add(-time.Hour)
	recent := time.Now()

	versionRepo.On("GetByModelAndVersion", mock.Anything, modelID, "1.0.0").Return(va, nil)
	versionRepo.On("GetByModelAndVersion", mock.Anything, modelID, "1.1.0").Return(vb, nil)
	evalRepo.On("ListByVersion", mock.Anything, va.ID).Return([]*domain.EvaluationResult{
		{BenchmarkName: "mmlu", OverallScore: 60, Status: domain.EvaluationStatusCompleted, EvaluatedAt: old},
		{BenchmarkName: "mmlu", OverallScore: 72, Status: domain.EvaluationStatusCompleted, EvaluatedAt: recent},
		{BenchmarkName: "mmlu", OverallScore: 99, Status: domain.EvaluationStatusFailed, EvaluatedAt: recent},
	}, nil)
	evalRepo.On("ListByVersion", mock.Anything, vb.ID).Return([]*domain.EvaluationResult{
		{BenchmarkName: "mmlu", OverallScore: 75, Status: domain.EvaluationStatusCompleted, EvaluatedAt: recent},
	}, nil)

	report, err := svc.CompareVersions(context.Background(), modelID, "1.0.0", "1.1.0")
	assert.NoError(t, err)
	assert.InDelta(t, 72, report.EvaluationDeltas["mmlu"].ScoreA, 0.001)
	assert.InDelta(t, 3, report.EvaluationDeltas["mmlu"].ScoreDelta, 0.001)
}

func TestComparisonService_CompareVersions_UnknownVersion(t *testing.T) {
	versionRepo := new(testutil.MockVersionRepo)
	evalRepo := new(testutil.MockEvaluationRepo)
	svc := NewComparisonService(versionRepo, evalRepo)

	modelID := uuid.New()
	versionRepo.On("GetByModelAndVersion", mock.Anything, modelID, "9.9.9").
		Return(nil, domain.ErrVersionNotFound)

	_, err := svc.CompareVersions(context.Background(), modelID, "9.9.9", "1.0.0")
	assert.ErrorIs(t, err, domain.ErrVersionNotFound)
}

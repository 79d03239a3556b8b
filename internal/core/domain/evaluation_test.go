package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFinalEvaluationStatus(t *testing.T) {
	assert.True(t, IsFinalEvaluationStatus(EvaluationStatusCompleted))
	assert.True(t, IsFinalEvaluationStatus(EvaluationStatusFailed))
	assert.False(t, IsFinalEvaluationStatus(EvaluationStatusPending))
	assert.False(t, IsFinalEvaluationStatus(EvaluationStatusRunning))
}

func TestMergeMetrics_BenchmarkNameFallback(t *testing.T) {
	results := []*EvaluationResult{
		{BenchmarkName: BenchmarkMMLU, OverallScore: 75, Status: EvaluationStatusCompleted},
		{BenchmarkName: BenchmarkToxicity, OverallScore: 8, Status: EvaluationStatusCompleted},
	}

	merged := MergeMetrics(results)
	assert.NotNil(t, merged.MMLUScore)
	assert.InDelta(t, 75, *merged.MMLUScore, 0.001)
	assert.NotNil(t, merged.ToxicityScore)
	assert.InDelta(t, 8, *merged.ToxicityScore, 0.001)
	assert.Nil(t, merged.HellaSwagScore)
}

func TestMergeMetrics_ExplicitMetricsWin(t *testing.T) {
	results := []*EvaluationResult{
		{
			BenchmarkName: BenchmarkMMLU,
			OverallScore:  75,
			Status:        EvaluationStatusCompleted,
			Metrics:       EvaluationMetrics{MMLUScore: f(81), LatencyP50Ms: f(120)},
		},
	}

	merged := MergeMetrics(results)
	assert.InDelta(t, 81, *merged.MMLUScore, 0.001)
	assert.InDelta(t, 120, *merged.LatencyP50Ms, 0.001)
}

func TestMergeMetrics_SkipsNonCompleted(t *testing.T) {
	results := []*EvaluationResult{
		{BenchmarkName: BenchmarkMMLU, OverallScore: 90, Status: EvaluationStatusFailed},
		{BenchmarkName: BenchmarkMMLU, OverallScore: 10, Status: EvaluationStatusPending},
	}
	merged := MergeMetrics(results)
	assert.Nil(t, merged.MMLUScore)
}

func TestMergeMetrics_UnknownBenchmark(t *testing.T) {
	results := []*EvaluationResult{
		{BenchmarkName: "internal-regression-suite", OverallScore: 88, Status: EvaluationStatusCompleted},
	}
	merged := MergeMetrics(results)
	assert.Equal(t, EvaluationMetrics{}, merged)
}

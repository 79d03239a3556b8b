package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func f(v float64) *float64 { return &v }

func TestQualityScore_AllMetrics(t *testing.T) {
	metrics := EvaluationMetrics{
		MMLUScore:       f(80),
		HellaSwagScore:  f(70),
		TruthfulQAScore: f(60),
		ToxicityScore:   f(10),
		BiasScore:       f(5),
		RobustnessScore: f(75),
		LatencyP50Ms:    f(50),
		ThroughputRPS:   f(100),
	}

	score, ok := QualityScore(metrics, DefaultScoreBounds)
	assert.True(t, ok)

	// accuracy = 0.4*80 + 0.3*70 + 0.3*60 = 71
	// safety = 100 - (0.6*10 + 0.4*5) = 92
	// performance = 100 (latency at ref), efficiency = 100 (rps at ref)
	// total = 0.30*71 + 0.25*92 + 0.20*100 + 0.15*75 + 0.10*100
	assert.InDelta(t, 85.55, score, 0.001)
}

func TestQualityScore_RenormalizesMissingMetrics(t *testing.T) {
	// Only MMLU present: accuracy collapses to the single sub-metric and
	// the top level collapses to accuracy alone.
	score, ok := QualityScore(EvaluationMetrics{MMLUScore: f(80)}, DefaultScoreBounds)
	assert.True(t, ok)
	assert.InDelta(t, 80, score, 0.001)
}

func TestQualityScore_PartialAccuracy(t *testing.T) {
	// mmlu and hellaswag present: (0.4*90 + 0.3*60) / 0.7
	score, ok := QualityScore(EvaluationMetrics{
		MMLUScore:      f(90),
		HellaSwagScore: f(60),
	}, DefaultScoreBounds)
	assert.True(t, ok)
	assert.InDelta(t, (0.4*90+0.3*60)/0.7, score, 0.001)
}

func TestQualityScore_NoMetrics(t *testing.T) {
	_, ok := QualityScore(EvaluationMetrics{}, DefaultScoreBounds)
	assert.False(t, ok)
}

func TestNormalizeLatency(t *testing.T) {
	b := DefaultScoreBounds
	assert.InDelta(t, 100, normalizeLatency(10, b), 0.001)
	assert.InDelta(t, 100, normalizeLatency(50, b), 0.001)
	assert.InDelta(t, 0, normalizeLatency(2000, b), 0.001)
	assert.InDelta(t, 0, normalizeLatency(5000, b), 0.001)
	assert.InDelta(t, 50, normalizeLatency(1025, b), 0.001)
}

func TestNormalizeThroughput(t *testing.T) {
	b := DefaultScoreBounds
	assert.InDelta(t, 0, normalizeThroughput(0, b), 0.001)
	assert.InDelta(t, 50, normalizeThroughput(50, b), 0.001)
	assert.InDelta(t, 100, normalizeThroughput(100, b), 0.001)
	assert.InDelta(t, 100, normalizeThroughput(400, b), 0.001)
}

func TestNormalizeLatency_DegenerateBoundsFallBack(t *testing.T) {
	b := ScoreBounds{RefLatencyMs: 100, MaxLatencyMs: 100}
	assert.InDelta(t, normalizeLatency(500, DefaultScoreBounds), normalizeLatency(500, b), 0.001)
}

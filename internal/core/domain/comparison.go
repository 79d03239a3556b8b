package domain

import (
	"time"

	"github.com/google/uuid"
)

type Recommendation string

const (
	RecommendationBetter  Recommendation = "better"
	RecommendationWorse   Recommendation = "worse"
	RecommendationSimilar Recommendation = "similar"
)

// Thresholds of the upgrade recommendation rule. A deterministic rule is
// used deliberately: per-sample score distributions are not part of the
// data model, so a statistical significance test has nothing to run on.
const (
	RecommendScoreDelta        = 2.0
	RecommendLatencyRegressPct = 20.0
)

type BenchmarkDelta struct {
	ScoreA     float64 `json:"score_a"`
	ScoreB     float64 `json:"score_b"`
	ScoreDelta float64 `json:"score_delta"`
}

// PerformanceDeltas reports serving-characteristic changes from version A
// to version B. A negative latency delta is an improvement.
type PerformanceDeltas struct {
	LatencyDeltaMs     *float64 `json:"latency_delta_ms,omitempty"`
	LatencyDeltaPct    *float64 `json:"latency_delta_pct,omitempty"`
	ThroughputDeltaRPS *float64 `json:"throughput_delta_rps,omitempty"`
	ThroughputDeltaPct *float64 `json:"throughput_delta_pct,omitempty"`
}

// ComparisonReport is computed on demand and never persisted.
type ComparisonReport struct {
	ModelID             uuid.UUID                 `json:"model_id"`
	VersionA            string                    `json:"version_a"`
	VersionB            string                    `json:"version_b"`
	SizeChangePct       *float64                  `json:"size_change_pct,omitempty"`
	Performance         PerformanceDeltas         `json:"performance"`
	EvaluationDeltas    map[string]BenchmarkDelta `json:"evaluation_deltas"`
	AggregateScoreDelta *float64                  `json:"aggregate_score_delta,omitempty"`
	Recommendation      Recommendation            `json:"recommendation"`
	GeneratedAt         time.Time                 `json:"generated_at"`
}

// Recommend applies the threshold rule: B is better when the aggregate
// evaluation delta exceeds +2.0 points without a latency regression over
// 20%, worse under the mirrored condition, otherwise similar.
func Recommend(aggregateDelta *float64, latencyDeltaPct *float64) Recommendation {
	if aggregateDelta == nil {
		return RecommendationSimilar
	}
	regression := latencyDeltaPct != nil && *latencyDeltaPct > RecommendLatencyRegressPct
	improvement := latencyDeltaPct != nil && *latencyDeltaPct < -RecommendLatencyRegressPct

	switch {
	case *aggregateDelta > RecommendScoreDelta && !regression:
		return RecommendationBetter
	case *aggregateDelta < -RecommendScoreDelta && !improvement:
		return RecommendationWorse
	}
	return RecommendationSimilar
}

// PercentChange returns (b-a)/a as a percentage, nil when a is zero.
func PercentChange(a, b float64) *float64 {
	if a == 0 {
		return nil
	}
	pct := (b - a) / a * 100
	return &pct
}

package domain

// ScoreBounds configures the reference bounds used to normalize latency and
// throughput into 0-100 sub-scores. The normalization is linear min-max:
// latency at or below RefLatencyMs scores 100 and at or above MaxLatencyMs
// scores 0; throughput at or above RefThroughputRPS scores 100 and at 0
// scores 0. A linear curve was chosen because no canonical formula exists;
// any monotonic bounded curve satisfies the scoring contract.
type ScoreBounds struct {
	RefLatencyMs     float64
	MaxLatencyMs     float64
	RefThroughputRPS float64
}

// DefaultScoreBounds are used when the deployment does not configure its own.
var DefaultScoreBounds = ScoreBounds{
	RefLatencyMs:     50,
	MaxLatencyMs:     2000,
	RefThroughputRPS: 100,
}

// Fixed top-level and sub-metric weights of the quality score.
const (
	weightAccuracy    = 0.30
	weightSafety      = 0.25
	weightPerformance = 0.20
	weightRobustness  = 0.15
	weightEfficiency  = 0.10

	weightMMLU       = 0.4
	weightHellaSwag  = 0.3
	weightTruthfulQA = 0.3

	weightToxicity = 0.6
	weightBias     = 0.4
)

type weighted struct {
	value  *float64
	weight float64
}

// weightedMean averages the present terms with their weights renormalized,
// so a partial set of metrics never drags the score toward zero. The second
// return is false when no term is present at all.
func weightedMean(terms ...weighted) (float64, bool) {
	var sum, weightSum float64
	for _, t := range terms {
		if t.value == nil {
			continue
		}
		sum += t.weight * (*t.value)
		weightSum += t.weight
	}
	if weightSum == 0 {
		return 0, false
	}
	return sum / weightSum, true
}

// QualityScore aggregates evaluation metrics into a single 0-100 score:
//
//	0.30*accuracy + 0.25*safety + 0.20*performance + 0.15*robustness + 0.10*efficiency
//
// with accuracy = 0.4*mmlu + 0.3*hellaswag + 0.3*truthfulqa and
// safety = 100 - (0.6*toxicity + 0.4*bias). Missing sub-metrics drop out
// and the remaining weights are renormalized at every level.
// The boolean return is false when nothing at all was scored.
func QualityScore(m EvaluationMetrics, bounds ScoreBounds) (float64, bool) {
	var accuracy, safety, performance, efficiency *float64

	if v, ok := weightedMean(
		weighted{m.MMLUScore, weightMMLU},
		weighted{m.HellaSwagScore, weightHellaSwag},
		weighted{m.TruthfulQAScore, weightTruthfulQA},
	); ok {
		accuracy = &v
	}

	if v, ok := weightedMean(
		weighted{m.ToxicityScore, weightToxicity},
		weighted{m.BiasScore, weightBias},
	); ok {
		s := 100 - v
		safety = &s
	}

	if m.LatencyP50Ms != nil {
		v := normalizeLatency(*m.LatencyP50Ms, bounds)
		performance = &v
	}
	if m.ThroughputRPS != nil {
		v := normalizeThroughput(*m.ThroughputRPS, bounds)
		efficiency = &v
	}

	return weightedMean(
		weighted{accuracy, weightAccuracy},
		weighted{safety, weightSafety},
		weighted{performance, weightPerformance},
		weighted{m.RobustnessScore, weightRobustness},
		weighted{efficiency, weightEfficiency},
	)
}

func normalizeLatency(latencyMs float64, b ScoreBounds) float64 {
	ref, max := b.RefLatencyMs, b.MaxLatencyMs
	if max <= ref {
		ref, max = DefaultScoreBounds.RefLatencyMs, DefaultScoreBounds.MaxLatencyMs
	}
	return clamp01((max-latencyMs)/(max-ref)) * 100
}

func normalizeThroughput(rps float64, b ScoreBounds) float64 {
	ref := b.RefThroughputRPS
	if ref <= 0 {
		ref = DefaultScoreBounds.RefThroughputRPS
	}
	return clamp01(rps/ref) * 100
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

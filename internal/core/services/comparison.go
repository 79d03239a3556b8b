package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"model-lineage-registry/internal/core/domain"
	ports "model-lineage-registry/internal/core/ports/output"
)

// ComparisonService computes version-to-version reports on demand. It reads
// from the version and evaluation stores and never writes anything.
type ComparisonService struct {
	versionRepo ports.ModelVersionRepository
	evalRepo    ports.EvaluationRepository
}

func NewComparisonService(versionRepo ports.ModelVersionRepository, evalRepo ports.EvaluationRepository) *ComparisonService {
	return &ComparisonService{versionRepo: versionRepo, evalRepo: evalRepo}
}

// CompareVersions produces the delta report from versionA to versionB of
// one model. Both versions must belong to the model.
func (s *ComparisonService) CompareVersions(ctx context.Context, modelID uuid.UUID, versionA, versionB string) (*domain.ComparisonReport, error) {
	va, err := s.versionRepo.GetByModelAndVersion(ctx, modelID, versionA)
	if err != nil {
		return nil, err
	}
	vb, err := s.versionRepo.GetByModelAndVersion(ctx, modelID, versionB)
	if err != nil {
		return nil, err
	}

	report := &domain.ComparisonReport{
		ModelID:          modelID,
		VersionA:         versionA,
		VersionB:         versionB,
		EvaluationDeltas: make(map[string]domain.BenchmarkDelta),
		GeneratedAt:      time.Now(),
	}

	if va.Artifacts.SizeBytes > 0 {
		report.SizeChangePct = domain.PercentChange(
			float64(va.Artifacts.SizeBytes), float64(vb.Artifacts.SizeBytes))
	}
	report.Performance = performanceDeltas(va, vb)

	if err := s.evaluationDeltas(ctx, va, vb, report); err != nil {
		return nil, err
	}

	report.Recommendation = domain.Recommend(report.AggregateScoreDelta, report.Performance.LatencyDeltaPct)
	return report, nil
}

func performanceDeltas(va, vb *domain.ModelVersion) domain.PerformanceDeltas {
	var deltas domain.PerformanceDeltas
	if va.Performance.LatencyP50Ms != nil && vb.Performance.LatencyP50Ms != nil {
		d := *vb.Performance.LatencyP50Ms - *va.Performance.LatencyP50Ms
		deltas.LatencyDeltaMs = &d
		deltas.LatencyDeltaPct = domain.PercentChange(*va.Performance.LatencyP50Ms, *vb.Performance.LatencyP50Ms)
	}
	if va.Performance.ThroughputRPS != nil && vb.Performance.ThroughputRPS != nil {
		d := *vb.Performance.ThroughputRPS - *va.Performance.ThroughputRPS
		deltas.ThroughputDeltaRPS = &d
		deltas.ThroughputDeltaPct = domain.PercentChange(*va.Performance.ThroughputRPS, *vb.Performance.ThroughputRPS)
	}
	return deltas
}

// evaluationDeltas pairs the latest COMPLETED result per benchmark shared
// by both versions; benchmarks run against only one side do not count
// toward the aggregate.
func (s *ComparisonService) evaluationDeltas(ctx context.Context, va, vb *domain.ModelVersion, report *domain.ComparisonReport) error {
	resultsA, err := s.completedByBenchmark(ctx, va.ID)
	if err != nil {
		return err
	}
	resultsB, err := s.completedByBenchmark(ctx, vb.ID)
	if err != nil {
		return err
	}

	var sum float64
	var n int
	for benchmark, ra := range resultsA {
		rb, ok := resultsB[benchmark]
		if !ok {
			continue
		}
		delta := domain.BenchmarkDelta{
			ScoreA:     ra.OverallScore,
			ScoreB:     rb.OverallScore,
			ScoreDelta: rb.OverallScore - ra.OverallScore,
		}
		report.EvaluationDeltas[benchmark] = delta
		sum += delta.ScoreDelta
		n++
	}
	if n > 0 {
		aggregate := sum / float64(n)
		report.AggregateScoreDelta = &aggregate
	}
	return nil
}

func (s *ComparisonService) completedByBenchmark(ctx context.Context, versionID uuid.UUID) (map[string]*domain.EvaluationResult, error) {
	results, err := s.evalRepo.ListByVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}
	latest := make(map[string]*domain.EvaluationResult)
	for _, r := range results {
		if r.Status != domain.EvaluationStatusCompleted {
			continue
		}
		if prev, ok := latest[r.BenchmarkName]; ok && prev.EvaluatedAt.After(r.EvaluatedAt) {
			continue
		}
		latest[r.BenchmarkName] = r
	}
	return latest, nil
}

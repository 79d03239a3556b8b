package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"model-lineage-registry/internal/core/domain"
	ports "model-lineage-registry/internal/core/ports/output"
)

// EvaluationTimeoutReason is recorded on a version whose evaluation job
// exceeded its deadline.
const EvaluationTimeoutReason = "evaluation timeout"

// EvaluationService ingests benchmark results and maintains the cached
// quality scores. Ingestion is safe under concurrent calls for different
// versions; for the same version and benchmark the last writer by
// evaluatedAt wins.
type EvaluationService struct {
	repo        ports.EvaluationRepository
	versionRepo ports.ModelVersionRepository
	modelRepo   ports.ModelRepository
	cluster     ports.EvaluationCluster
	bounds      domain.ScoreBounds
	jobDeadline time.Duration
}

func NewEvaluationService(
	repo ports.EvaluationRepository,
	versionRepo ports.ModelVersionRepository,
	modelRepo ports.ModelRepository,
	cluster ports.EvaluationCluster,
	bounds domain.ScoreBounds,
	jobDeadline time.Duration,
) *EvaluationService {
	if bounds == (domain.ScoreBounds{}) {
		bounds = domain.DefaultScoreBounds
	}
	if jobDeadline <= 0 {
		jobDeadline = time.Hour
	}
	return &EvaluationService{
		repo:        repo,
		versionRepo: versionRepo,
		modelRepo:   modelRepo,
		cluster:     cluster,
		bounds:      bounds,
		jobDeadline: jobDeadline,
	}
}

// Dispatch hands a benchmark suite to the external cluster. The job carries
// a deadline; results come back asynchronously through IngestResult.
func (s *EvaluationService) Dispatch(ctx context.Context, versionID uuid.UUID, benchmarks []string) (string, error) {
	if s.cluster == nil {
		return "", domain.ErrEvaluationDisabled
	}
	if len(benchmarks) == 0 {
		return "", domain.ErrInvalidBenchmarkName
	}
	version, err := s.versionRepo.GetByID(ctx, versionID)
	if err != nil {
		return "", err
	}

	jobID, err := s.cluster.Dispatch(ctx, version.ID, benchmarks, s.jobDeadline)
	if err != nil {
		return "", err
	}
	log.WithFields(log.Fields{
		"version_id": versionID,
		"job_id":     jobID,
		"benchmarks": benchmarks,
	}).Info("evaluation job dispatched")
	return jobID, nil
}

// IngestResult accepts a final (COMPLETED or FAILED) result from the
// cluster callback. COMPLETED results trigger recomputation of the owning
// version's cached quality score; FAILED results are stored with their
// failure reason and leave scores untouched.
func (s *EvaluationService) IngestResult(ctx context.Context, result *domain.EvaluationResult) (*domain.EvaluationResult, error) {
	if result.BenchmarkName == "" {
		return nil, domain.ErrInvalidBenchmarkName
	}
	if !domain.IsFinalEvaluationStatus(result.Status) {
		return nil, domain.ErrResultNotFinal
	}

	version, err := s.versionRepo.GetByID(ctx, result.ModelVersionID)
	if err != nil {
		return nil, err
	}

	if result.ID == uuid.Nil {
		result.ID = uuid.New()
	}
	if result.EvaluatedAt.IsZero() {
		result.EvaluatedAt = time.Now()
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now()
	}

	if err := s.repo.Upsert(ctx, result); err != nil {
		if errors.Is(err, domain.ErrStaleResult) {
			// A newer writer already won; not a failure for the caller.
			log.WithFields(log.Fields{
				"version_id": result.ModelVersionID,
				"benchmark":  result.BenchmarkName,
			}).Info("stale evaluation result discarded")
			return result, nil
		}
		return nil, err
	}

	if result.Status == domain.EvaluationStatusCompleted {
		if err := s.recomputeScores(ctx, version); err != nil {
			return nil, err
		}
	} else {
		log.WithFields(log.Fields{
			"version_id": result.ModelVersionID,
			"benchmark":  result.BenchmarkName,
			"reason":     result.FailureReason,
		}).Warn("evaluation failed")
	}
	return result, nil
}

// recomputeScores treats the cached scores as pure functions of the stored
// results: the version score is recomputed from its merged metrics, the
// model score from the mean over its scored versions.
func (s *EvaluationService) recomputeScores(ctx context.Context, version *domain.ModelVersion) error {
	results, err := s.repo.ListByVersion(ctx, version.ID)
	if err != nil {
		return err
	}
	metrics := domain.MergeMetrics(results)
	score, ok := domain.QualityScore(metrics, s.bounds)
	if !ok {
		return nil
	}
	if err := s.versionRepo.UpdateQualityScore(ctx, version.ID, score); err != nil {
		return err
	}
	if metrics.LatencyP50Ms != nil || metrics.ThroughputRPS != nil {
		perf := domain.PerformanceProfile{
			LatencyP50Ms:  metrics.LatencyP50Ms,
			ThroughputRPS: metrics.ThroughputRPS,
		}
		if err := s.versionRepo.UpdatePerformance(ctx, version.ID, perf); err != nil {
			return err
		}
	}

	versions, err := s.versionRepo.ListByModel(ctx, version.ModelID)
	if err != nil {
		return err
	}
	var sum float64
	var n int
	for _, v := range versions {
		if v.ID == version.ID {
			// Score just written above; the listed row may predate it.
			sum += score
			n++
			continue
		}
		if v.QualityScore != nil {
			sum += *v.QualityScore
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return s.modelRepo.UpdateQualityScore(ctx, version.ModelID, sum/float64(n))
}

// MarkTimedOut handles a job deadline expiry: partial unfinished results
// are discarded and the version fails with the timeout reason, keeping
// leaderboard semantics all-or-nothing per evaluation job.
func (s *EvaluationService) MarkTimedOut(ctx context.Context, versionID uuid.UUID) error {
	version, err := s.versionRepo.GetByID(ctx, versionID)
	if err != nil {
		return err
	}
	if !domain.CanTransition(version.Status, domain.VersionStatusFailed) {
		// The version already left the evaluating phase; nothing to fail.
		return nil
	}
	discarded, err := s.repo.DeleteUnfinishedByVersion(ctx, versionID)
	if err != nil {
		return err
	}
	if err := s.versionRepo.UpdateStatus(ctx, versionID, version.Status, domain.VersionStatusFailed, EvaluationTimeoutReason); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"version_id": versionID,
		"discarded":  discarded,
	}).Warn("evaluation timed out")
	return nil
}

// SweepTimedOut fails every version that has been EVALUATING for longer
// than the job deadline. Run periodically; see RunTimeoutSweeper.
func (s *EvaluationService) SweepTimedOut(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.jobDeadline)
	stalled, err := s.versionRepo.ListStalledInEvaluation(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	var failed int
	for _, version := range stalled {
		if err := s.MarkTimedOut(ctx, version.ID); err != nil {
			log.WithError(err).WithField("version_id", version.ID).
				Error("timeout sweep failed for version")
			continue
		}
		failed++
	}
	return failed, nil
}

// RunTimeoutSweeper blocks, sweeping on every interval tick until ctx is
// cancelled.
func (s *EvaluationService) RunTimeoutSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.SweepTimedOut(ctx); err != nil {
				log.WithError(err).Error("evaluation timeout sweep failed")
			} else if n > 0 {
				log.WithField("failed_versions", n).Warn("evaluation timeout sweep")
			}
		}
	}
}

// GetLeaderboard returns COMPLETED results for a benchmark ranked by score
// descending, ties broken by earliest evaluatedAt so the ordering is
// reproducible.
func (s *EvaluationService) GetLeaderboard(ctx context.Context, benchmark string, limit int) ([]domain.LeaderboardEntry, error) {
	if benchmark == "" {
		return nil, domain.ErrInvalidBenchmarkName
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	results, err := s.repo.ListCompletedByBenchmark(ctx, benchmark, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.LeaderboardEntry, 0, len(results))
	for _, r := range results {
		entries = append(entries, domain.LeaderboardEntry{
			ModelVersionID: r.ModelVersionID,
			Score:          r.OverallScore,
			EvaluatedAt:    r.EvaluatedAt,
		})
	}
	return entries, nil
}

func (s *EvaluationService) ListByVersion(ctx context.Context, versionID uuid.UUID) ([]*domain.EvaluationResult, error) {
	if _, err := s.versionRepo.GetByID(ctx, versionID); err != nil {
		return nil, err
	}
	return s.repo.ListByVersion(ctx, versionID)
}

package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PIIScanResult is the scanner's verdict over a batch of sample texts.
type PIIScanResult struct {
	Detected  bool
	Locations []PIILocation
}

type PIILocation struct {
	SampleIndex int    `json:"sample_index"`
	Kind        string `json:"kind"`
	Offset      int    `json:"offset"`
}

// PIIScanner is the external detection collaborator. Compliance flags are
// derived from its result, never from caller-supplied booleans.
type PIIScanner interface {
	Scan(ctx context.Context, samples []string) (*PIIScanResult, error)
}

// EvaluationCluster dispatches benchmark jobs to the external compute
// cluster. Results come back asynchronously through result ingestion.
type EvaluationCluster interface {
	Dispatch(ctx context.Context, versionID uuid.UUID, benchmarks []string, deadline time.Duration) (jobID string, err error)
}

type ObjectInfo struct {
	Checksum  string
	SizeBytes int64
}

// ObjectStore exposes the artifact store. The registry only ever stats
// objects to verify paths and checksums; bytes stay in the store.
type ObjectStore interface {
	Stat(ctx context.Context, path string) (*ObjectInfo, error)
}

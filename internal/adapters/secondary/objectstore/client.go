package objectstore

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"model-lineage-registry/internal/config"
	ports "model-lineage-registry/internal/core/ports/output"
)

type storeClient struct {
	baseURL string
	client  *http.Client
	enabled bool
}

// NewStoreClient builds the artifact-store adapter. The registry never
// moves artifact bytes; it only stats objects to confirm that a version's
// model path exists and its checksum matches.
func NewStoreClient(cfg *config.ObjectStoreConfig) ports.ObjectStore {
	if !cfg.Enabled {
		return nil
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &storeClient{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		enabled: true,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *storeClient) Stat(ctx context.Context, path string) (*ports.ObjectInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/"+strings.TrimLeft(path, "/"), nil)
	if err != nil {
		return nil, fmt.Errorf("build stat request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stat object: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("object %s not found in store", path)
	default:
		return nil, fmt.Errorf("object store returned status %d", resp.StatusCode)
	}

	info := &ports.ObjectInfo{
		Checksum: strings.Trim(resp.Header.Get("ETag"), `"`),
	}
	if size := resp.Header.Get("Content-Length"); size != "" {
		if n, err := strconv.ParseInt(size, 10, 64); err == nil {
			info.SizeBytes = n
		}
	}
	return info, nil
}

package piiscan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"model-lineage-registry/internal/config"
	ports "model-lineage-registry/internal/core/ports/output"
)

type scannerClient struct {
	baseURL string
	client  *http.Client
	enabled bool
}

// NewScannerClient creates the PII scanner adapter. When the scanner is
// disabled every scan reports no PII, which keeps development environments
// working without the external service.
func NewScannerClient(cfg *config.PIIScannerConfig) ports.PIIScanner {
	if !cfg.Enabled {
		return &scannerClient{enabled: false}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &scannerClient{
		baseURL: cfg.URL,
		enabled: true,
		client:  &http.Client{Timeout: timeout},
	}
}

type scanRequest struct {
	Samples []string `json:"samples"`
}

type scanResponse struct {
	PIIDetected bool                `json:"pii_detected"`
	Locations   []ports.PIILocation `json:"locations"`
}

func (c *scannerClient) Scan(ctx context.Context, samples []string) (*ports.PIIScanResult, error) {
	if !c.enabled || len(samples) == 0 {
		if !c.enabled && len(samples) > 0 {
			log.Warn("PII scanner disabled, samples not scanned")
		}
		return &ports.PIIScanResult{}, nil
	}

	body, err := json.Marshal(scanRequest{Samples: samples})
	if err != nil {
		return nil, fmt.Errorf("marshal scan request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/scan", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build scan request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pii scan request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pii scanner returned status %d", resp.StatusCode)
	}

	var out scanResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode scan response: %w", err)
	}
	return &ports.PIIScanResult{
		Detected:  out.PIIDetected,
		Locations: out.Locations,
	}, nil
}

package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tair/movie-favorites/internal/favorite/domain"
)

// Health is the API's /health report as seen by the client.
type Health struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Cache     string `json:"cache"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// Health probes the API. The breaker is bypassed so a probe works while it
// is open. An unreachable API yields status "unreachable" and an error.
func (c *Client) Health(ctx context.Context) (Health, error) {
	start := time.Now()
	result := Health{Status: "unreachable"}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		result.Error = err.Error()
		return result, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	result.LatencyMS = time.Since(start).Milliseconds()
	if err != nil {
		result.Error = fmt.Sprintf("Failed to reach service: %v", err)
		return result, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	// Unhealthy responses still carry the report.
	latency := result.LatencyMS
	err = json.NewDecoder(resp.Body).Decode(&result)
	result.LatencyMS = latency
	if err != nil {
		result.Status = "unhealthy"
		result.Error = fmt.Sprintf("status %d", resp.StatusCode)
		return result, nil
	}
	if resp.StatusCode != http.StatusOK && result.Status == "" {
		result.Status = "unhealthy"
	}
	return result, nil
}

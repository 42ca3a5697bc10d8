package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Source fetches the weekly schedule of a group.
type Source interface {
	FetchWeekly(ctx context.Context, groupID int) (*Weekly, error)
}

// HTTPSource reads schedules from a JSON API. URLTemplate takes the group ID
// as its only verb, e.g. "https://example.com/group/%d/week".
type HTTPSource struct {
	URLTemplate string
	client      *http.Client
}

// NewHTTPSource creates a source with a bounded request timeout.
func NewHTTPSource(urlTemplate string) *HTTPSource {
	return &HTTPSource{
		URLTemplate: urlTemplate,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchWeekly implements Source.
func (s *HTTPSource) FetchWeekly(ctx context.Context, groupID int) (*Weekly, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(s.URLTemplate, groupID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var weekly Weekly
	if err := json.Unmarshal(body, &weekly); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schedule for group %d: %w", groupID, err)
	}
	return &weekly, nil
}

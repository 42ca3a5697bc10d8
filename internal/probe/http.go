package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPChecker treats any HTTP response from the host as proof of power.
type HTTPChecker struct {
	Client *http.Client
}

// NewHTTPChecker creates a checker that does not follow redirects, since any
// response already answers the question.
func NewHTTPChecker() *HTTPChecker {
	return &HTTPChecker{
		Client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Check implements Checker.
func (c *HTTPChecker) Check(ctx context.Context, host string, timeout time.Duration) (bool, error) {
	target := host
	if !strings.Contains(target, "://") {
		target = "http://" + target
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request for %s: %w", host, err)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return false, nil
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	return true, nil
}

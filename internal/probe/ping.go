package probe

import (
	"context"
	"fmt"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

// PingChecker sends a single ICMP echo per attempt.
type PingChecker struct {
	// Privileged switches from unprivileged UDP pings to raw sockets.
	Privileged bool
}

// Check implements Checker.
func (c *PingChecker) Check(ctx context.Context, host string, timeout time.Duration) (bool, error) {
	pinger, err := probing.NewPinger(host)
	if err != nil {
		return false, fmt.Errorf("failed to resolve %s: %w", host, err)
	}
	pinger.Count = 1
	pinger.Timeout = timeout
	pinger.SetPrivileged(c.Privileged)

	if err := pinger.RunWithContext(ctx); err != nil {
		if ctx.Err() != nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to ping %s: %w", host, err)
	}
	return pinger.Statistics().PacketsRecv > 0, nil
}

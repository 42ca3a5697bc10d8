package probe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"power-status-backend/internal/model"
)

type mockChecker struct {
	CheckFunc func(ctx context.Context, host string, timeout time.Duration) (bool, error)
	calls     atomic.Int32
}

func (m *mockChecker) Check(ctx context.Context, host string, timeout time.Duration) (bool, error) {
	m.calls.Add(1)
	return m.CheckFunc(ctx, host, timeout)
}

func newTestProber(checker Checker) *Prober {
	return NewProber(map[model.CheckType]Checker{model.CheckTypePing: checker}, time.Second, time.Millisecond)
}

func TestProber_Probe(t *testing.T) {
	place := model.Place{ID: "kyiv-1", Host: "10.0.0.1", CheckType: model.CheckTypePing}

	t.Run("succeeds on first attempt", func(t *testing.T) {
		checker := &mockChecker{CheckFunc: func(context.Context, string, time.Duration) (bool, error) {
			return true, nil
		}}
		alive, err := newTestProber(checker).Probe(context.Background(), place, time.Minute)
		require.NoError(t, err)
		assert.True(t, alive)
		assert.Equal(t, int32(1), checker.calls.Load())
	})

	t.Run("retries until success", func(t *testing.T) {
		checker := &mockChecker{}
		checker.CheckFunc = func(context.Context, string, time.Duration) (bool, error) {
			return checker.calls.Load() >= 3, nil
		}
		alive, err := newTestProber(checker).Probe(context.Background(), place, time.Minute)
		require.NoError(t, err)
		assert.True(t, alive)
		assert.Equal(t, int32(3), checker.calls.Load())
	})

	t.Run("budget exhausted is false without error", func(t *testing.T) {
		checker := &mockChecker{CheckFunc: func(context.Context, string, time.Duration) (bool, error) {
			return false, nil
		}}
		p := newTestProber(checker)

		clock := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
		p.now = func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		}

		alive, err := p.Probe(context.Background(), place, 7*time.Minute)
		require.NoError(t, err)
		assert.False(t, alive)
		assert.Equal(t, int32(7), checker.calls.Load())
	})

	t.Run("setup error propagates", func(t *testing.T) {
		checker := &mockChecker{CheckFunc: func(context.Context, string, time.Duration) (bool, error) {
			return false, errors.New("no such host")
		}}
		alive, err := newTestProber(checker).Probe(context.Background(), place, time.Minute)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no such host")
		assert.False(t, alive)
	})

	t.Run("unknown check type", func(t *testing.T) {
		checker := &mockChecker{}
		_, err := newTestProber(checker).Probe(context.Background(), model.Place{ID: "x", CheckType: "snmp"}, time.Minute)
		require.Error(t, err)
		assert.Equal(t, int32(0), checker.calls.Load())
	})

	t.Run("empty check type defaults to ping", func(t *testing.T) {
		checker := &mockChecker{CheckFunc: func(context.Context, string, time.Duration) (bool, error) {
			return true, nil
		}}
		alive, err := newTestProber(checker).Probe(context.Background(), model.Place{ID: "x", Host: "h"}, time.Minute)
		require.NoError(t, err)
		assert.True(t, alive)
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		checker := &mockChecker{CheckFunc: func(context.Context, string, time.Duration) (bool, error) {
			cancel()
			return false, nil
		}}
		p := NewProber(map[model.CheckType]Checker{model.CheckTypePing: checker}, time.Second, time.Hour)
		alive, err := p.Probe(ctx, place, 24*time.Hour)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, alive)
	})
}

func TestHTTPChecker_Check(t *testing.T) {
	t.Run("any response counts as alive", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		alive, err := NewHTTPChecker().Check(context.Background(), server.URL, time.Second)
		require.NoError(t, err)
		assert.True(t, alive)
	})

	t.Run("scheme is optional", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()

		alive, err := NewHTTPChecker().Check(context.Background(), server.Listener.Addr().String(), time.Second)
		require.NoError(t, err)
		assert.True(t, alive)
	})

	t.Run("unreachable host is not alive", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		addr := server.URL
		server.Close()

		alive, err := NewHTTPChecker().Check(context.Background(), addr, time.Second)
		require.NoError(t, err)
		assert.False(t, alive)
	})

	t.Run("malformed target is an error", func(t *testing.T) {
		_, err := NewHTTPChecker().Check(context.Background(), "http://[::1", time.Second)
		assert.Error(t, err)
	})
}

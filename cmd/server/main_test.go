package main

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Signal/internal/app"
	"github.com/dkeye/Signal/internal/app/orch"
	"github.com/dkeye/Signal/internal/core"
)

type closeConn struct {
	closed atomic.Bool
}

func (c *closeConn) TrySend(core.Frame) error { return nil }
func (c *closeConn) Close()                   { c.closed.Store(true) }

func newRunFixture(t *testing.T, addr string) (*http.Server, *orch.Orchestrator, *closeConn) {
	t.Helper()
	o := &orch.Orchestrator{Registry: app.NewRegistry(), Policy: app.SimplePolicy{}}
	conn := &closeConn{}
	o.Connect(conn)
	srv := &http.Server{Addr: addr, Handler: http.NotFoundHandler(), ReadHeaderTimeout: time.Second}
	return srv, o, conn
}

func runAsync(ctx context.Context, srv *http.Server, o *orch.Orchestrator, after time.Duration) <-chan error {
	done := make(chan error, 1)
	go func() { done <- run(ctx, srv, o, after) }()
	return done
}

func TestRunStopsAfterScheduledDuration(t *testing.T) {
	srv, o, conn := newRunFixture(t, "127.0.0.1:0")

	done := runAsync(context.Background(), srv, o, 50*time.Millisecond)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server still running after scheduled shutdown")
	}
	assert.True(t, conn.closed.Load())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	srv, o, conn := newRunFixture(t, "127.0.0.1:0")
	ctx, cancel := context.WithCancel(context.Background())

	done := runAsync(ctx, srv, o, 0)

	select {
	case <-done:
		t.Fatal("server stopped without cancel")
	case <-time.After(100 * time.Millisecond):
	}
	assert.False(t, conn.closed.Load())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server still running after cancel")
	}
	assert.True(t, conn.closed.Load())
}

func TestRunReportsListenError(t *testing.T) {
	srv, o, conn := newRunFixture(t, "127.0.0.1:-1")

	done := runAsync(context.Background(), srv, o, 0)

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("listen error not reported")
	}
	assert.True(t, conn.closed.Load())
}

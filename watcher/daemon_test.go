package watcher

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/kevwatch/kevwatch/model"
	"github.com/kevwatch/kevwatch/notify"
)

func TestNewDaemonDefaultInterval(t *testing.T) {
	d := NewDaemon(nil, nil, "", 0, zap.NewNop())
	assert.Equal(t, DefaultInterval, d.interval)

	d = NewDaemon(nil, nil, "", 5*time.Minute, zap.NewNop())
	assert.Equal(t, 5*time.Minute, d.interval)
}

func TestDaemonRunStopsOnCancel(t *testing.T) {
	st := newFakeStore()
	fetcher := &fakeFetcher{catalogs: []*model.RawCatalog{
		rawCatalog(t, "2024.01.01", "2024-01-01T00:00:00Z",
			vuln("CVE-2024-0001", "2024-01-01")),
	}}
	eng := newTestEngine(t, fetcher, st)

	d := NewDaemon(eng, notify.NewNotifier(time.Second, zap.NewNop()),
		filepath.Join(t.TempDir(), "webhooks.conf"), 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	// Give the loop time for the first cycle and at least one tick.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("daemon did not stop after context cancellation")
	}

	assert.True(t, st.hasInfo, "the first cycle should have run before cancellation")
	assert.GreaterOrEqual(t, fetcher.calls, 1)
}

func TestDaemonKeepsRunningAfterFailedCycle(t *testing.T) {
	st := newFakeStore()
	fetcher := &fakeFetcher{err: assert.AnError}
	eng := newTestEngine(t, fetcher, st)

	d := NewDaemon(eng, notify.NewNotifier(time.Second, zap.NewNop()),
		filepath.Join(t.TempDir(), "webhooks.conf"), 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	d.Run(ctx)

	assert.False(t, st.hasInfo)
}

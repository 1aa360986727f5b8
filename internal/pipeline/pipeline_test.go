package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Sureka400/Ecolens-AI/internal/domain"
	"github.com/Sureka400/Ecolens-AI/internal/observability"
	"github.com/Sureka400/Ecolens-AI/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockLoader struct {
	mu       sync.Mutex
	batches  [][]domain.OutputEvent
	failures int // number of leading calls that fail
	calls    int
}

func (m *mockLoader) LoadBatch(_ context.Context, events []domain.OutputEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.calls <= m.failures {
		return errors.New("broker unavailable")
	}
	m.batches = append(m.batches, append([]domain.OutputEvent(nil), events...))
	return nil
}

func (m *mockLoader) loaded() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.batches {
		n += len(b)
	}
	return n
}

func (m *mockLoader) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

func testEvent(session string) domain.ActivityEvent {
	return domain.NewActivityEvent(domain.ActivityLocationSelected, session,
		domain.Location{Lat: 48.8566, Lon: 2.3522, Name: "Paris"})
}

func runRelay(t *testing.T, r *pipeline.Relay) (cancel func()) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	return func() {
		stop()
		require.NoError(t, <-done)
	}
}

// --- tests ---

func TestRelay_FlushesFullBatch(t *testing.T) {
	ldr := &mockLoader{}
	r := pipeline.New(ldr, slog.Default(), newTestMetrics(), 2, time.Hour)
	stop := runRelay(t, r)
	defer stop()

	require.True(t, r.Publish(testEvent("s1")))
	require.True(t, r.Publish(testEvent("s1")))

	require.Eventually(t, func() bool { return ldr.loaded() == 2 }, 2*time.Second, 10*time.Millisecond)

	ldr.mu.Lock()
	defer ldr.mu.Unlock()
	require.Len(t, ldr.batches, 1)
	assert.Equal(t, []byte("s1"), ldr.batches[0][0].Key)
}

func TestRelay_FlushesOnInterval(t *testing.T) {
	ldr := &mockLoader{}
	r := pipeline.New(ldr, slog.Default(), newTestMetrics(), 50, 20*time.Millisecond)
	stop := runRelay(t, r)
	defer stop()

	require.True(t, r.Publish(testEvent("s1")))

	require.Eventually(t, func() bool { return ldr.loaded() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestRelay_RetriesWithBackoff(t *testing.T) {
	ldr := &mockLoader{failures: 2}
	r := pipeline.New(ldr, slog.Default(), newTestMetrics(), 1, time.Hour)
	stop := runRelay(t, r)
	defer stop()

	require.True(t, r.Publish(testEvent("s1")))

	// 200ms + 400ms of backoff before the third attempt succeeds.
	require.Eventually(t, func() bool { return ldr.loaded() == 1 }, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, 3, ldr.callCount())
}

func TestRelay_DropsWhenQueueFull(t *testing.T) {
	ldr := &mockLoader{}
	r := pipeline.New(ldr, slog.Default(), newTestMetrics(), 1, time.Hour) // queue holds 4

	for range 4 {
		require.True(t, r.Publish(testEvent("s1")))
	}
	assert.False(t, r.Publish(testEvent("s1")), "fifth event should be dropped")
}

func TestRelay_DrainsOnShutdown(t *testing.T) {
	ldr := &mockLoader{}
	r := pipeline.New(ldr, slog.Default(), newTestMetrics(), 10, time.Hour)

	for range 3 {
		require.True(t, r.Publish(testEvent("s1")))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, r.Run(ctx))

	assert.Equal(t, 3, ldr.loaded())
}

func TestRelay_Readiness(t *testing.T) {
	r := pipeline.New(&mockLoader{}, slog.Default(), newTestMetrics(), 10, time.Hour)
	require.Error(t, r.CheckReadiness(context.Background()))

	stop := runRelay(t, r)
	require.Eventually(t, func() bool { return r.CheckReadiness(context.Background()) == nil },
		time.Second, 5*time.Millisecond)

	stop()
	assert.Error(t, r.CheckReadiness(context.Background()))
}

func TestSerialize(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2026, time.April, 26, 15, 10, 0, 0, time.UTC))
	domain.SetClock(fakeClock)
	t.Cleanup(func() {
		domain.SetClock(nil)
	})

	evt := testEvent("sess-42")
	evt.ReportID = 7

	out, err := pipeline.Serialize(evt)
	require.NoError(t, err)
	assert.Equal(t, []byte("sess-42"), out.Key)
	assert.Equal(t, "location_selected", out.Headers["event_type"])
	assert.Equal(t, evt.ID, out.Headers["event_id"])
	assert.Equal(t, "2026-04-26T15:10:00Z", out.Headers["occurred_at"])

	var roundtrip domain.ActivityEvent
	require.NoError(t, json.Unmarshal(out.Value, &roundtrip))
	if diff := cmp.Diff(evt, roundtrip); diff != "" {
		t.Fatalf("roundtrip mismatch (-want +got):\n%s", diff)
	}
}

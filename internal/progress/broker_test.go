package progress

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(ch <-chan Event) []Event {
	var out []Event
	for ev := range ch {
		out = append(out, ev)
	}
	return out
}

func TestBrokerDeliversCheckpointsThenCloses(t *testing.T) {
	b := NewBroker()
	defer b.Stop()

	events, cancel := b.Subscribe("run-1")
	defer cancel()
	b.Publish("run-1", 0, "Loading files...")
	b.Publish("run-1", 20, "Building orders...")
	b.Finish("run-1")

	got := drain(events)
	require.Len(t, got, 3)
	assert.Equal(t, 20, got[1].Percent)
	assert.Equal(t, Event{Percent: 100, Stage: "Building orders...", Done: true}, got[2])

	b.Publish("run-1", 40, "late")
	last, ok := b.Last("run-1")
	require.True(t, ok)
	assert.True(t, last.Done, "events after Finish are ignored")
}

func TestLateSubscriberGetsLatestEvent(t *testing.T) {
	b := NewBroker()
	defer b.Stop()

	b.Publish("run-2", 60, "Merging Invoices...")
	events, cancel := b.Subscribe("run-2")
	first := <-events
	assert.Equal(t, 60, first.Percent)
	cancel()
	cancel()

	b.Fail("run-2", "boom")
	finished, _ := b.Subscribe("run-2")
	got := drain(finished)
	require.Len(t, got, 1)
	assert.Equal(t, "boom", got[0].Error)
	assert.True(t, got[0].Done)
}

func TestSweepForgetsFinishedRuns(t *testing.T) {
	b := NewBroker()
	defer b.Stop()
	b.Finish("old")
	b.Publish("active", 20, "Building orders...")
	events, cancel := b.Subscribe("active")
	defer cancel()
	<-events

	assert.Equal(t, 0, b.Sweep(time.Now()))
	assert.Equal(t, 1, b.Sweep(time.Now().Add(time.Hour)))
	_, ok := b.Last("old")
	assert.False(t, ok)
	_, ok = b.Last("active")
	assert.True(t, ok)
}

func TestSweepForgetsAbandonedSubscriptions(t *testing.T) {
	b := NewBroker()
	defer b.Stop()

	for i := 0; i < 100; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		req := httptest.NewRequest(http.MethodGet, "/merge/unknown/progress", nil).WithContext(ctx)
		b.ServeSSE(httptest.NewRecorder(), req, fmt.Sprintf("unknown-%d", i))
	}
	b.Publish("idle", 0, "Loading files...")

	assert.Equal(t, 0, b.Sweep(time.Now()))
	assert.Equal(t, 101, b.Sweep(time.Now().Add(time.Hour)))
	_, ok := b.Last("unknown-0")
	assert.False(t, ok)
	assert.Empty(t, b.runs)
}

func TestServeSSEStreamsUntilDone(t *testing.T) {
	b := NewBroker()
	defer b.Stop()
	b.Publish("run-3", 80, "Deriving status...")
	b.Finish("run-3")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/merge/run-3/progress", nil)
	b.ServeSSE(rec, req, "run-3")

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Equal(t, 1, strings.Count(body, "data: "))
	assert.Contains(t, body, `"percent":100`)
	assert.Contains(t, body, `"done":true`)
}

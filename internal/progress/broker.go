package progress

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"
)

// Event is one progress checkpoint of a merge run.
type Event struct {
	Percent int    `json:"percent"`
	Stage   string `json:"stage"`
	Done    bool   `json:"done,omitempty"`
	Error   string `json:"error,omitempty"`
}

type run struct {
	last       Event
	subs       map[chan Event]struct{}
	finished   bool
	finishedAt time.Time
	touched    time.Time
}

// Broker fans progress events out to SSE subscribers by run id. A subscriber
// that joins late first receives the latest event of the run.
type Broker struct {
	mu        sync.Mutex
	runs      map[string]*run
	retention time.Duration
	stopCh    chan struct{}
	stopOnce  sync.Once
}

const (
	subscriberBuffer = 16
	pingInterval     = 30 * time.Second
	defaultRetention = 10 * time.Minute
)

func NewBroker() *Broker {
	b := &Broker{
		runs:      make(map[string]*run),
		retention: defaultRetention,
		stopCh:    make(chan struct{}),
	}
	go b.sweepLoop()
	return b
}

func (b *Broker) runLocked(id string) *run {
	r, ok := b.runs[id]
	if !ok {
		r = &run{subs: make(map[chan Event]struct{})}
		b.runs[id] = r
	}
	r.touched = time.Now()
	return r
}

// Publish records a checkpoint and forwards it to current subscribers. Slow
// subscribers miss intermediate checkpoints rather than block the run.
func (b *Broker) Publish(runID string, percent int, stage string) {
	b.send(runID, Event{Percent: percent, Stage: stage})
}

// Finish marks the run complete and closes every subscription.
func (b *Broker) Finish(runID string) {
	b.mu.Lock()
	last := Event{Percent: 100}
	if r, ok := b.runs[runID]; ok {
		last = r.last
	}
	b.mu.Unlock()
	last.Percent, last.Done = 100, true
	b.send(runID, last)
}

// Fail ends the run with an error message.
func (b *Broker) Fail(runID, msg string) {
	b.mu.Lock()
	last := Event{}
	if r, ok := b.runs[runID]; ok {
		last = r.last
	}
	b.mu.Unlock()
	last.Done, last.Error = true, msg
	b.send(runID, last)
}

func (b *Broker) send(runID string, ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := b.runLocked(runID)
	if r.finished {
		return
	}
	r.last = ev
	for ch := range r.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	if ev.Done {
		r.finished = true
		r.finishedAt = time.Now()
		for ch := range r.subs {
			close(ch)
			delete(r.subs, ch)
		}
	}
}

// Last returns the most recent event of a run.
func (b *Broker) Last(runID string) (Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.runs[runID]
	if !ok {
		return Event{}, false
	}
	return r.last, true
}

// Subscribe returns a channel of events for runID and a cancel func. The
// channel is closed when the run finishes.
func (b *Broker) Subscribe(runID string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	r := b.runLocked(runID)
	if r.finished {
		ch <- r.last
		close(ch)
		return ch, func() {}
	}
	if r.last != (Event{}) {
		ch <- r.last
	}
	r.subs[ch] = struct{}{}
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := r.subs[ch]; ok {
			delete(r.subs, ch)
			close(ch)
		}
	}
}

// ServeSSE streams the run's events until it finishes or the client leaves.
func (b *Broker) ServeSSE(w http.ResponseWriter, r *http.Request, runID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	events, cancel := b.Subscribe(runID)
	defer cancel()
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	log.Printf("[SSE] Subscribed to run %s from %s", runID, r.RemoteAddr)

	for {
		select {
		case ev, open := <-events:
			if !open {
				return
			}
			if err := writeEvent(w, ev); err != nil {
				log.Printf("[SSE] Write failed for run %s: %v", runID, err)
				return
			}
			flusher.Flush()
		case <-ping.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		case <-b.stopCh:
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}

func (b *Broker) sweepLoop() {
	ticker := time.NewTicker(b.retention)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			b.Sweep(time.Now())
		case <-b.stopCh:
			return
		}
	}
}

// Sweep forgets runs that finished more than the retention window before now,
// and unfinished runs nobody is watching that have been idle that long.
func (b *Broker) Sweep(now time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	removed := 0
	for id, r := range b.runs {
		if b.expired(r, now) {
			delete(b.runs, id)
			removed++
		}
	}
	return removed
}

func (b *Broker) expired(r *run, now time.Time) bool {
	if r.finished {
		return now.Sub(r.finishedAt) > b.retention
	}
	return len(r.subs) == 0 && now.Sub(r.touched) > b.retention
}

func (b *Broker) Stop() {
	b.stopOnce.Do(func() {
		close(b.stopCh)
	})
}

package reportstore

import (
	"fmt"
	"sync"
	"time"

	"LowesMerge/internal/config"
	"LowesMerge/internal/logger"
)

// Report is one generated workbook kept for re-download.
type Report struct {
	RunID     string
	Filename  string
	Data      []byte
	CreatedAt time.Time
}

// Store holds recent reports in memory keyed by run id. Entries older than the
// TTL are evicted by a heartbeat sweep.
type Store struct {
	reports  map[string]Report
	mu       sync.RWMutex
	stopChan chan struct{}
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
}

func NewReportStoreService(cfg map[string]interface{}) *Store {
	ttl, _ := time.ParseDuration(config.DefaultReportTTL)
	interval, _ := time.ParseDuration(config.DefaultSweepInterval)
	if d, ok := durationSetting(cfg, "ttl"); ok {
		ttl = d
	}
	if d, ok := durationSetting(cfg, "sweep_interval"); ok {
		interval = d
	}
	return New(ttl, interval)
}

func New(ttl, interval time.Duration) *Store {
	return &Store{
		reports:  make(map[string]Report),
		stopChan: make(chan struct{}),
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
	}
}

// durationSetting accepts "30m" style strings or a bare number of seconds.
func durationSetting(cfg map[string]interface{}, key string) (time.Duration, bool) {
	switch v := cfg[key].(type) {
	case string:
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d, true
		}
	case int:
		if v > 0 {
			return time.Duration(v) * time.Second, true
		}
	case float64:
		if v > 0 {
			return time.Duration(v) * time.Second, true
		}
	}
	return 0, false
}

func (s *Store) Name() string { return "reportstore" }

func (s *Store) Start() error {
	logger.Audit(fmt.Sprintf("ReportStore started (ttl=%s, sweep=%s)", s.ttl, s.interval))
	go s.heartbeatLoop()
	return nil
}

func (s *Store) Stop() error {
	close(s.stopChan)
	return nil
}

func (s *Store) heartbeatLoop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				logger.Audit(fmt.Sprintf("ReportStore evicted %d expired report(s)", n))
			}
		}
	}
}

// Put stores a report; CreatedAt is stamped when zero.
func (s *Store) Put(r Report) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[r.RunID] = r
}

// Get returns an unexpired report.
func (s *Store) Get(runID string) (Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[runID]
	if !ok || s.expired(r) {
		return Report{}, false
	}
	return r, true
}

func (s *Store) Remove(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reports, runID)
}

// List returns the run ids currently held, expired or not.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.reports))
	for id := range s.reports {
		ids = append(ids, id)
	}
	return ids
}

// Sweep evicts expired reports and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, r := range s.reports {
		if s.expired(r) {
			delete(s.reports, id)
			removed++
		}
	}
	return removed
}

func (s *Store) expired(r Report) bool {
	return s.ttl > 0 && s.now().Sub(r.CreatedAt) > s.ttl
}

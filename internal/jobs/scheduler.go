package jobs

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"LowesMerge/internal/checksum"
	"LowesMerge/internal/config"
	"LowesMerge/internal/logger"
	"LowesMerge/internal/merge"

	"github.com/robfig/cron/v3"
)

// InboxConfig holds the inbox sweep settings from services.yaml.
type InboxConfig struct {
	Schedule  string
	InboxDir  string
	OutboxDir string
	TimeZone  string
}

func NewDefaultInboxConfig() *InboxConfig {
	return &InboxConfig{
		Schedule:  config.DefaultInboxSchedule,
		InboxDir:  config.DefaultInboxDir,
		OutboxDir: config.DefaultOutboxDir,
		TimeZone:  config.ReportTimeZone,
	}
}

// InboxService periodically merges file sets dropped into the inbox directory.
type InboxService struct {
	cfg    *InboxConfig
	runner *merge.Runner
	cron   *cron.Cron
	ledger *checksum.Ledger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewInboxService(cfg map[string]interface{}, runner *merge.Runner) *InboxService {
	ic := NewDefaultInboxConfig()
	if cfg != nil {
		if v, ok := cfg["schedule"].(string); ok && v != "" {
			ic.Schedule = v
		}
		if v, ok := cfg["inbox_dir"].(string); ok && v != "" {
			ic.InboxDir = v
		}
		if v, ok := cfg["outbox_dir"].(string); ok && v != "" {
			ic.OutboxDir = v
		}
		if v, ok := cfg["time_zone"].(string); ok && v != "" {
			ic.TimeZone = v
		}
	}
	return &InboxService{cfg: ic, runner: runner}
}

func (s *InboxService) Name() string {
	return "inbox"
}

func (s *InboxService) Start() error {
	log.Println("[Inbox] Starting inbox sweep service...")
	for _, dir := range []string{s.cfg.InboxDir, s.cfg.OutboxDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	ledger, err := checksum.LoadLedger(filepath.Join(s.cfg.OutboxDir, processedLedger))
	if err != nil {
		return err
	}
	s.ledger = ledger

	loc, err := time.LoadLocation(s.cfg.TimeZone)
	if err != nil {
		loc = time.UTC
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	_, err = s.cron.AddFunc(s.cfg.Schedule, func() {
		if _, err := s.Sweep(s.ctx); err != nil {
			logger.Audit(fmt.Sprintf("Inbox sweep failed: %v", err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule inbox sweep %q: %w", s.cfg.Schedule, err)
	}
	s.cron.Start()

	logger.Audit(fmt.Sprintf("Inbox sweep scheduled (%s, %s) on %s", s.cfg.Schedule, loc, s.cfg.InboxDir))
	return nil
}

func (s *InboxService) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	log.Println("[Inbox] Inbox sweep service stopped.")
	return nil
}

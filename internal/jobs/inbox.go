package jobs

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"LowesMerge/internal/checksum"
	"LowesMerge/internal/merge"
)

// processedLedger lives in the outbox and lists fingerprints already merged.
const processedLedger = ".processed"

var inputExtensions = map[string]bool{".xlsx": true, ".xlsm": true, ".xls": true, ".csv": true, ".txt": true}

// Roles are matched by filename keyword, case-insensitively.
var roleKeywords = []struct {
	role    string
	keyword string
}{
	{"orders", "order"},
	{"shipments", "ship"},
	{"invoices", "invoice"},
}

// SweepResult lists what one sweep did, by inbox sub-directory name.
type SweepResult struct {
	Merged     []string
	Failed     []string
	Skipped    []string
	Incomplete []string
}

// fileSet is one inbox sub-directory split by role.
type fileSet struct {
	dir   string
	files map[string]string
}

// classify returns the role of a filename, or "" when it matches none or is
// not a spreadsheet.
func classify(name string) string {
	if strings.HasPrefix(name, ".") || !inputExtensions[strings.ToLower(filepath.Ext(name))] {
		return ""
	}
	lower := strings.ToLower(name)
	for _, rk := range roleKeywords {
		if strings.Contains(lower, rk.keyword) {
			return rk.role
		}
	}
	return ""
}

func scanDir(dir string) (fileSet, error) {
	set := fileSet{dir: dir, files: make(map[string]string)}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return set, err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		role := classify(e.Name())
		if role == "" {
			continue
		}
		if prev, dup := set.files[role]; dup {
			return set, fmt.Errorf("more than one %s file: %s and %s", role, prev, e.Name())
		}
		set.files[role] = e.Name()
	}
	return set, nil
}

func (fs fileSet) complete() bool {
	return len(fs.files) == len(roleKeywords)
}

func (fs fileSet) load(role string) (*merge.File, []byte, error) {
	name := fs.files[role]
	data, err := os.ReadFile(filepath.Join(fs.dir, name))
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", name, err)
	}
	return &merge.File{Name: name, Data: data}, data, nil
}

// Sweep merges every complete, not yet processed file set under the inbox.
func (s *InboxService) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	entries, err := os.ReadDir(s.cfg.InboxDir)
	if err != nil {
		return res, fmt.Errorf("read inbox %s: %w", s.cfg.InboxDir, err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)

	for _, name := range dirs {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		switch s.process(ctx, name) {
		case outcomeMerged:
			res.Merged = append(res.Merged, name)
		case outcomeFailed:
			res.Failed = append(res.Failed, name)
		case outcomeSkipped:
			res.Skipped = append(res.Skipped, name)
		default:
			res.Incomplete = append(res.Incomplete, name)
		}
	}
	if n := len(res.Merged) + len(res.Failed); n > 0 {
		log.Printf("[Inbox] Sweep merged %d, failed %d, skipped %d", len(res.Merged), len(res.Failed), len(res.Skipped))
	}
	return res, nil
}

type outcome int

const (
	outcomeIncomplete outcome = iota
	outcomeSkipped
	outcomeMerged
	outcomeFailed
)

func (s *InboxService) process(ctx context.Context, name string) outcome {
	set, err := scanDir(filepath.Join(s.cfg.InboxDir, name))
	if err != nil {
		s.writeError(name, err)
		return outcomeFailed
	}
	if !set.complete() {
		return outcomeIncomplete
	}

	req := merge.Request{Source: merge.SourceInbox}
	var parts [][]byte
	for _, rk := range roleKeywords {
		f, data, err := set.load(rk.role)
		if err != nil {
			s.writeError(name, err)
			return outcomeFailed
		}
		parts = append(parts, data)
		switch rk.role {
		case "orders":
			req.Orders = f
		case "shipments":
			req.Shipments = f
		case "invoices":
			req.Invoices = f
		}
	}

	fp := checksum.Fingerprint(parts...)
	// mark first so a set that keeps failing is not retried every tick
	first, err := s.ledger.MarkIfNew(fp)
	if err != nil {
		log.Printf("[ERROR] [Inbox] %v", err)
	}
	if !first {
		return outcomeSkipped
	}

	out, err := s.runner.Run(ctx, req)
	if err != nil {
		s.writeError(name, err)
		return outcomeFailed
	}
	target := filepath.Join(s.cfg.OutboxDir, out.Filename)
	if _, err := os.Stat(target); err == nil {
		target = filepath.Join(s.cfg.OutboxDir, name+"_"+out.Filename)
	}
	if err := os.WriteFile(target, out.Workbook, 0644); err != nil {
		s.writeError(name, fmt.Errorf("write report: %w", err))
		return outcomeFailed
	}
	log.Printf("[Inbox] Merged %s into %s (run %s)", name, target, out.RunID)
	return outcomeMerged
}

func (s *InboxService) writeError(name string, cause error) {
	log.Printf("[ERROR] [Inbox] %s: %v", name, cause)
	path := filepath.Join(s.cfg.OutboxDir, name+".error.txt")
	if err := os.WriteFile(path, []byte(cause.Error()+"\n"), 0644); err != nil {
		log.Printf("[ERROR] [Inbox] write %s: %v", path, err)
	}
}

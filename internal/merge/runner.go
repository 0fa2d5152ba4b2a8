// Package merge runs the reconcile pipeline for one set of uploaded files and
// fans the outcome out to the report store, progress subscribers, the S3
// archive and the run audit.
package merge

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"LowesMerge/internal/audit"
	"LowesMerge/internal/logger"
	"LowesMerge/internal/lookup"
	"LowesMerge/internal/notification"
	"LowesMerge/internal/reconcile"
	"LowesMerge/internal/reportstore"
	"LowesMerge/internal/sheet"

	"github.com/google/uuid"
)

// Sources of a run.
const (
	SourceUpload = "upload"
	SourceInbox  = "inbox"
)

// File is one input spreadsheet as received.
type File struct {
	Name string
	Data []byte
}

func (f *File) empty() bool { return f == nil || len(f.Data) == 0 }

// Request names the three inputs of a run. Shipments and Invoices are optional.
type Request struct {
	RunID     string
	Source    string
	Orders    *File
	Shipments *File
	Invoices  *File
}

// Outcome is a successful run.
type Outcome struct {
	RunID      string
	Filename   string
	Workbook   []byte
	Stats      reconcile.Stats
	ArchiveURL string
}

// InputError reports an input file that could not be read. The caller sent
// bad data; nothing on the server failed.
type InputError struct {
	Role string
	Name string
	Err  error
}

func (e *InputError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s file: %v", e.Role, e.Err)
	}
	return fmt.Sprintf("%s file %q: %v", e.Role, e.Name, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// ErrNoOrders is returned when the orders file is absent or empty.
var ErrNoOrders = errors.New("an orders file is required")

type ProgressSink interface {
	Publish(runID string, percent int, stage string)
	Finish(runID string)
	Fail(runID, msg string)
}

type Archiver interface {
	Upload(ctx context.Context, runID, filename string, data []byte) (string, error)
}

type Recorder interface {
	Start(ctx context.Context, run audit.Run) error
	Finish(ctx context.Context, run audit.Run) error
}

// Runner holds the collaborators of a merge. Every field but Lookups may be nil.
type Runner struct {
	Lookups  *lookup.Tables
	Reports  *reportstore.Store
	Progress ProgressSink
	Archive  Archiver
	Audit    Recorder
	Notices  *notification.NotificationService
	Now      func() time.Time
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Run executes one merge. Errors are *InputError, *reconcile.MissingColumnsError,
// ErrNoOrders, or a wrapped internal failure.
func (r *Runner) Run(ctx context.Context, req Request) (*Outcome, error) {
	if req.RunID == "" {
		req.RunID = NewRunID()
	}
	if req.Source == "" {
		req.Source = SourceUpload
	}
	rec := audit.Run{ID: req.RunID, Source: req.Source, StartedAt: r.now()}
	if r.Audit != nil {
		if err := r.Audit.Start(ctx, rec); err != nil {
			log.Printf("[ERROR] [Merge] audit start for run %s: %v", req.RunID, err)
		}
	}
	logger.Audit(fmt.Sprintf("merge run %s started (source=%s)", req.RunID, req.Source))

	out, err := r.run(ctx, req)
	finished := r.now()
	rec.FinishedAt = &finished
	if err != nil {
		rec.Status, rec.Error = audit.StatusFailed, err.Error()
		r.finish(ctx, rec)
		if r.Progress != nil {
			r.Progress.Fail(req.RunID, err.Error())
		}
		logger.Audit(fmt.Sprintf("merge run %s failed: %v", req.RunID, err))
		return nil, err
	}

	rec.Status = audit.StatusSucceeded
	rec.Filename = out.Filename
	rec.OrderRows = out.Stats.Orders.RawRows
	rec.OutputRows = out.Stats.OutputRows
	rec.MatchedShipments = out.Stats.MatchedShipments
	rec.MatchedInvoices = out.Stats.MatchedInvoices
	r.finish(ctx, rec)
	if r.Progress != nil {
		r.Progress.Finish(req.RunID)
	}
	logger.Audit(fmt.Sprintf("merge run %s finished: %s, %d rows", req.RunID, out.Filename, out.Stats.OutputRows))
	return out, nil
}

func (r *Runner) run(ctx context.Context, req Request) (*Outcome, error) {
	progress := func(percent int, stage string) {
		if r.Progress != nil {
			r.Progress.Publish(req.RunID, percent, stage)
		}
	}
	progress(0, reconcile.StageLoading)

	if req.Orders.empty() {
		return nil, ErrNoOrders
	}
	orders, err := readInput("orders", req.Orders)
	if err != nil {
		return nil, err
	}
	shipments, err := readInput("shipments", req.Shipments)
	if err != nil {
		return nil, err
	}
	invoices, err := readInput("invoices", req.Invoices)
	if err != nil {
		return nil, err
	}

	res, err := reconcile.Run(reconcile.Inputs{
		Orders:    orders,
		Shipments: shipments,
		Invoices:  invoices,
	}, reconcile.Options{Lookups: r.Lookups, Progress: progress, Now: r.Now})
	if err != nil {
		return nil, err
	}
	data, err := res.Workbook()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	out := &Outcome{
		RunID:    req.RunID,
		Filename: res.Filename,
		Workbook: data,
		Stats:    res.Stats,
	}
	if r.Reports != nil {
		r.Reports.Put(reportstore.Report{RunID: req.RunID, Filename: res.Filename, Data: data})
	}
	if r.Archive != nil {
		url, err := r.Archive.Upload(ctx, req.RunID, res.Filename, data)
		if err != nil {
			log.Printf("[ERROR] [Merge] archive run %s: %v", req.RunID, err)
		} else {
			out.ArchiveURL = url
		}
	}
	log.Printf("[INFO] [Merge] run %s: %d order rows -> %d lines, %d/%d shipment groups matched, %d invoices matched",
		req.RunID, res.Stats.Orders.RawRows, res.Stats.OutputRows,
		res.Stats.MatchedShipments, res.Stats.ShipmentGroups, res.Stats.MatchedInvoices)
	return out, nil
}

// readInput parses an optional file; an absent one is a nil table.
func readInput(role string, f *File) (*sheet.Table, error) {
	if f.empty() {
		return nil, nil
	}
	t, err := sheet.Read(f.Name, f.Data)
	if err != nil {
		return nil, &InputError{Role: role, Name: f.Name, Err: err}
	}
	return t, nil
}

func (r *Runner) finish(ctx context.Context, rec audit.Run) {
	if r.Audit != nil {
		if err := r.Audit.Finish(ctx, rec); err != nil {
			log.Printf("[ERROR] [Merge] audit finish for run %s: %v", rec.ID, err)
		}
	}
	if r.Notices != nil {
		r.Notices.AddNotification(notification.Notice{
			RunID:    rec.ID,
			Source:   rec.Source,
			Filename: rec.Filename,
			Status:   rec.Status,
			Message:  rec.Error,
			Rows:     rec.OutputRows,
			At:       finishedAt(rec),
		})
	}
}

func finishedAt(rec audit.Run) time.Time {
	if rec.FinishedAt == nil {
		return time.Time{}
	}
	return *rec.FinishedAt
}

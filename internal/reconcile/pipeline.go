// Package reconcile merges the Orders, Shipments and Invoices exports of the
// Lowe's vendor portal into one report with a row per purchase-order line.
//
// The stages run in a fixed order, each returning new values:
//
//	Normalize -> BuildOrderLines -> AggregateShipments/JoinShipments ->
//	AggregateInvoices/JoinInvoices -> Derive -> Project
package reconcile

import (
	"time"
	_ "time/tzdata"

	"LowesMerge/internal/config"
	"LowesMerge/internal/lookup"
	"LowesMerge/internal/sheet"
)

// Inputs are the three raw tables of one run. Shipments and Invoices may be nil.
type Inputs struct {
	Orders    *sheet.Table
	Shipments *sheet.Table
	Invoices  *sheet.Table
}

// ProgressFunc receives checkpoint percentages (0..100) with a short stage label.
type ProgressFunc func(percent int, stage string)

type Options struct {
	Lookups  *lookup.Tables
	Progress ProgressFunc
	Now      func() time.Time
}

// Stats summarizes one run.
type Stats struct {
	Orders           OrderStats
	ShipmentRows     int
	ShipmentGroups   int
	InvoiceRows      int
	InvoiceGroups    int
	MatchedShipments int
	MatchedInvoices  int
	JoinedOnShipTo   bool
	OutputRows       int
}

// Result is the projected report and the filename it should be delivered under.
type Result struct {
	Report      *sheet.Table
	Filename    string
	GeneratedAt time.Time
	Stats       Stats
}

// Progress checkpoints.
const (
	StageLoading   = "Loading files..."
	StageOrders    = "Building orders..."
	StageShipments = "Merging Shipments..."
	StageInvoices  = "Merging Invoices..."
	StageDeriving  = "Deriving status..."
	StageComplete  = "Complete"
)

// Run executes the whole pipeline. The only error it returns is
// *MissingColumnsError; every other anomaly degrades to empty cells.
func Run(in Inputs, opts Options) (*Result, error) {
	progress := opts.Progress
	if progress == nil {
		progress = func(int, string) {}
	}
	tables := opts.Lookups
	if tables == nil {
		tables = lookup.Default()
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	progress(0, StageLoading)
	orders := Normalize(in.Orders)
	if err := CheckOrderColumns(orders); err != nil {
		return nil, err
	}
	shipments := Normalize(in.Shipments)
	invoices := Normalize(in.Invoices)

	progress(20, StageOrders)
	lines, orderStats := BuildOrderLines(orders, tables)

	progress(40, StageShipments)
	withShipTo := UseShipTo(orders, shipments)
	shipAggs := AggregateShipments(shipments, withShipTo)
	rows := JoinShipments(lines, shipAggs, withShipTo)

	progress(60, StageInvoices)
	invAggs := AggregateInvoices(invoices)
	rows = JoinInvoices(rows, InvoicesByPO(invAggs))

	progress(80, StageDeriving)
	rows = Derive(rows)
	report := Project(JoinedTable(rows, JoinedColumns(orders, shipments, invoices)))

	stats := Stats{
		Orders:         orderStats,
		ShipmentRows:   shipments.Len(),
		ShipmentGroups: len(shipAggs),
		InvoiceRows:    invoices.Len(),
		InvoiceGroups:  len(invAggs),
		JoinedOnShipTo: withShipTo,
		OutputRows:     report.Len(),
	}
	for _, r := range rows {
		if r.HasShipment {
			stats.MatchedShipments++
		}
		if r.HasInvoice {
			stats.MatchedInvoices++
		}
	}

	generated := now()
	progress(100, StageComplete)
	return &Result{
		Report:      report,
		Filename:    ReportFilename(generated),
		GeneratedAt: generated,
		Stats:       stats,
	}, nil
}

// Workbook renders the report as an .xlsx file.
func (r *Result) Workbook() ([]byte, error) {
	return sheet.WriteWorkbook(r.Report, config.ReportSheetName)
}

// ReportFilename is Lowes_Merged_<YYYY-MM-DD_HHMM>.xlsx in the reporting time zone.
func ReportFilename(t time.Time) string {
	return config.ReportFilePrefix + t.In(ReportLocation()).Format(config.ReportTimestamp) + ".xlsx"
}

// ReportLocation falls back to UTC when the zone database is unavailable.
func ReportLocation() *time.Location {
	loc, err := time.LoadLocation(config.ReportTimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

package reconcile

import (
	"database/sql"
	"strings"
	"time"
)

// Fulfillment statuses.
const (
	StatusNotInvoiced        = "Not Invoiced"
	StatusShippedNotInvoiced = "Shipped Not Invoiced"
	StatusInvoiced           = "Invoiced"
)

// Late-ship verdicts. LateUnknown is reported when either date is missing.
const (
	LateYes     = "Yes"
	LateNo      = "No"
	LateUnknown = ""
)

// FulfillmentStatus: an invoice beats a shipment, a shipment beats nothing.
func FulfillmentStatus(invoiceNumber string, shipDate sql.NullTime) string {
	switch {
	case strings.TrimSpace(invoiceNumber) != "":
		return StatusInvoiced
	case shipDate.Valid:
		return StatusShippedNotInvoiced
	default:
		return StatusNotInvoiced
	}
}

// LateShip compares calendar days; it never answers "No" without both dates.
func LateShip(shipDate, requested sql.NullTime) string {
	if !shipDate.Valid || !requested.Valid {
		return LateUnknown
	}
	if day(shipDate).After(day(requested)) {
		return LateYes
	}
	return LateNo
}

func day(t sql.NullTime) time.Time {
	y, m, d := t.Time.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

package reconcile

import (
	"database/sql"

	"LowesMerge/internal/parse"
	"LowesMerge/internal/sheet"

	"github.com/shopspring/decimal"
)

// InvoiceAggregate is one invoice with a representative value per field.
type InvoiceAggregate struct {
	InvoiceNumber string
	PONumber      string
	InvoiceDate   sql.NullTime
	Discount      decimal.NullDecimal
	Total         decimal.NullDecimal
	RecordType    string
	Purpose       string
	Records       int
}

// AggregateInvoices groups invoice rows by invoice number and takes the first
// non-empty value of each field. Rows without an invoice number are skipped.
// Aggregates are returned in order of first appearance.
func AggregateInvoices(invoices *sheet.Table) []InvoiceAggregate {
	poCol := ColInvoicePO
	if !invoices.Has(poCol) {
		poCol = ColPONumber
	}
	fields := []string{poCol, ColInvoiceDate, ColDiscountAmount, ColInvoiceTotal, ColRecordType, ColInvoicePurpose}

	type group struct {
		records int
		first   map[string]string
	}
	var order []string
	groups := make(map[string]*group)
	for r := range invoices.Rows {
		num := parse.CanonicalID(invoices.Get(r, ColInvoiceNumber))
		if num == "" {
			continue
		}
		g, ok := groups[num]
		if !ok {
			g = &group{first: make(map[string]string, len(fields))}
			groups[num] = g
			order = append(order, num)
		}
		g.records++
		for _, f := range fields {
			if g.first[f] != "" {
				continue
			}
			g.first[f] = invoices.Get(r, f)
		}
	}

	out := make([]InvoiceAggregate, 0, len(order))
	for _, num := range order {
		g := groups[num]
		out = append(out, InvoiceAggregate{
			InvoiceNumber: num,
			PONumber:      parse.CanonicalID(g.first[poCol]),
			InvoiceDate:   parse.NullDate(g.first[ColInvoiceDate]),
			Discount:      parse.NullCurrency(g.first[ColDiscountAmount]),
			Total:         parse.NullCurrency(g.first[ColInvoiceTotal]),
			RecordType:    g.first[ColRecordType],
			Purpose:       g.first[ColInvoicePurpose],
			Records:       g.records,
		})
	}
	return out
}

// InvoicesByPO picks one invoice per canonical PO number so the order join never
// fans out: the latest invoice date wins, ties go to the earlier invoice.
func InvoicesByPO(invoices []InvoiceAggregate) map[string]InvoiceAggregate {
	out := make(map[string]InvoiceAggregate, len(invoices))
	for _, inv := range invoices {
		if inv.PONumber == "" {
			continue
		}
		cur, ok := out[inv.PONumber]
		if !ok || newerInvoice(inv, cur) {
			out[inv.PONumber] = inv
		}
	}
	return out
}

func newerInvoice(a, b InvoiceAggregate) bool {
	if !a.InvoiceDate.Valid {
		return false
	}
	return !b.InvoiceDate.Valid || a.InvoiceDate.Time.After(b.InvoiceDate.Time)
}

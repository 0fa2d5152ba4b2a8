package reconcile

import (
	"database/sql"
	"sort"
	"strings"

	"LowesMerge/internal/lookup"
	"LowesMerge/internal/parse"
	"LowesMerge/internal/sheet"

	"github.com/shopspring/decimal"
)

// OrderLine is one purchase-order line item with its PO-level metadata attached.
type OrderLine struct {
	PONumber          string
	LineNumber        string
	PODate            sql.NullTime
	VendorNumber      string
	VBUName           string
	ItemCode          string
	VendorItem        string
	ItemName          string
	ItemType          string
	Quantity          decimal.NullDecimal
	Pallets           decimal.NullDecimal
	UnitPrice         decimal.NullDecimal
	MerchandiseTotal  decimal.NullDecimal
	ShipTo            string
	ShipToName        string
	ShipToState       string
	RequestedDelivery sql.NullTime
}

// OrderStats counts how the raw order rows were classified.
type OrderStats struct {
	RawRows       int
	HeaderRows    int
	DetailRows    int
	DuplicateRows int
	MissingPORows int
	EmittedLines  int
	HeaderOnlyPOs int
}

// Columns that belong to a line item and are never inherited from a PO header row.
var lineLevelColumns = map[string]bool{
	ColLineNumber: true,
	ColQtyOrdered: true,
	ColUnitPrice:  true,
	ColItemCode:   true,
	ColItemName:   true,
}

// BuildOrderLines splits orders into header and detail rows, joins each PO's
// header metadata onto its details, drops duplicate lines and computes the
// line-level fields. The result is sorted most recent PO first.
func BuildOrderLines(orders *sheet.Table, tables *lookup.Tables) ([]OrderLine, OrderStats) {
	stats := OrderStats{RawRows: orders.Len()}
	poCol := orders.Index(ColPONumber)
	lineCol := orders.Index(ColLineNumber)
	qtyCol := orders.Index(ColQtyOrdered)

	headers := make(map[string][]string)
	var details []int
	for r := range orders.Rows {
		po := parse.CanonicalID(orders.Cell(r, poCol))
		if orders.Cell(r, lineCol) == "" && orders.Cell(r, qtyCol) == "" {
			stats.HeaderRows++
			if po != "" {
				headers[po] = mergeHeader(headers[po], orders, r)
			}
			continue
		}
		stats.DetailRows++
		details = append(details, r)
	}

	seen := make(map[string]bool, len(details))
	withDetails := make(map[string]bool, len(headers))
	lines := make([]OrderLine, 0, len(details))
	for _, r := range details {
		po := parse.CanonicalID(orders.Cell(r, poCol))
		if po == "" {
			stats.MissingPORows++
			continue
		}
		withDetails[po] = true
		get := coalescer(orders, r, headers[po])

		key := strings.Join([]string{
			po,
			parse.CanonicalID(get(ColLineNumber)),
			parse.CanonicalID(get(ColItemCode)),
			parse.CanonicalID(get(ColVendorNumber)),
		}, "\x1f")
		if seen[key] {
			stats.DuplicateRows++
			continue
		}
		seen[key] = true
		lines = append(lines, newOrderLine(po, get, tables))
	}
	for po := range headers {
		if !withDetails[po] {
			stats.HeaderOnlyPOs++
		}
	}

	SortOrderLines(lines)
	stats.EmittedLines = len(lines)
	return lines, stats
}

// mergeHeader folds row r into a PO's header metadata, keeping the first
// non-empty value seen per column.
func mergeHeader(meta []string, orders *sheet.Table, r int) []string {
	if meta == nil {
		meta = make([]string, len(orders.Header))
	}
	for c, name := range orders.Header {
		if lineLevelColumns[name] || meta[c] != "" {
			continue
		}
		meta[c] = orders.Cell(r, c)
	}
	return meta
}

// coalescer reads a detail row, falling back to the PO header metadata for empty cells.
func coalescer(orders *sheet.Table, r int, header []string) func(string) string {
	return func(name string) string {
		c := orders.Index(name)
		if v := orders.Cell(r, c); v != "" {
			return v
		}
		if c < 0 || header == nil || lineLevelColumns[name] {
			return ""
		}
		return header[c]
	}
}

func newOrderLine(po string, get func(string) string, tables *lookup.Tables) OrderLine {
	line := OrderLine{
		PONumber:          po,
		LineNumber:        parse.CanonicalID(get(ColLineNumber)),
		PODate:            parse.NullDate(get(ColPODate)),
		VendorNumber:      parse.CanonicalID(get(ColVendorNumber)),
		ItemCode:          parse.CanonicalID(get(ColItemCode)),
		ItemName:          get(ColItemName),
		Quantity:          parse.NullNumber(get(ColQtyOrdered)),
		UnitPrice:         parse.NullCurrency(get(ColUnitPrice)),
		ShipTo:            parse.CanonicalID(get(ColShipTo)),
		ShipToName:        get(ColShipToName),
		ShipToState:       get(ColShipToState),
		RequestedDelivery: parse.NullDate(get(ColRequestedDelivery)),
	}
	if line.Quantity.Valid && line.UnitPrice.Valid {
		line.MerchandiseTotal = decimal.NewNullDecimal(line.Quantity.Decimal.Mul(line.UnitPrice.Decimal))
	}
	if tables == nil {
		return line
	}
	line.VBUName, _ = tables.VBUName(line.VendorNumber)
	line.VendorItem, _ = tables.VendorItem(line.ItemCode)
	line.ItemType, _ = tables.ItemType(line.ItemCode)
	if size, ok := tables.PalletSize(line.ItemCode); ok && line.Quantity.Valid {
		pallets := line.Quantity.Decimal.Div(decimal.NewFromFloat(size)).Round(1)
		line.Pallets = decimal.NewNullDecimal(pallets)
	}
	return line
}

// SortOrderLines orders lines by PO date descending, then numeric PO number
// descending, then line number ascending. Missing dates and non-numeric PO
// numbers sort last.
func SortOrderLines(lines []OrderLine) {
	sort.SliceStable(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if a.PODate.Valid != b.PODate.Valid {
			return a.PODate.Valid
		}
		if a.PODate.Valid && !a.PODate.Time.Equal(b.PODate.Time) {
			return a.PODate.Time.After(b.PODate.Time)
		}
		pa, aok := parse.Number(a.PONumber)
		pb, bok := parse.Number(b.PONumber)
		if aok != bok {
			return aok
		}
		if aok && !pa.Equal(pb) {
			return pa.GreaterThan(pb)
		}
		la, aok := parse.Number(a.LineNumber)
		lb, bok := parse.Number(b.LineNumber)
		if aok && bok {
			return la.LessThan(lb)
		}
		return aok && !bok
	})
}

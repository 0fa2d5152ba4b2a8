package reconcile

import (
	"strconv"

	"LowesMerge/internal/parse"
	"LowesMerge/internal/sheet"
)

// MergedRow is one order line with its (at most one) shipment and invoice.
type MergedRow struct {
	OrderLine
	Shipment          ShipmentAggregate
	HasShipment       bool
	Invoice           InvoiceAggregate
	HasInvoice        bool
	FulfillmentStatus string
	LateShip          string
}

// JoinShipments left-joins shipment aggregates onto order lines. The output has
// exactly one row per line.
func JoinShipments(lines []OrderLine, shipments map[ShipmentKey]ShipmentAggregate, withShipTo bool) []MergedRow {
	rows := make([]MergedRow, len(lines))
	for i, line := range lines {
		rows[i].OrderLine = line
		if agg, ok := shipments[KeyForLine(line, withShipTo)]; ok {
			rows[i].Shipment = agg
			rows[i].HasShipment = true
		}
	}
	return rows
}

// JoinInvoices left-joins invoices onto rows by canonical PO number and returns new rows.
func JoinInvoices(rows []MergedRow, byPO map[string]InvoiceAggregate) []MergedRow {
	out := make([]MergedRow, len(rows))
	copy(out, rows)
	for i := range out {
		if inv, ok := byPO[parse.CanonicalID(out[i].PONumber)]; ok {
			out[i].Invoice = inv
			out[i].HasInvoice = true
		}
	}
	return out
}

// Derive fills FulfillmentStatus and LateShip on a copy of rows.
func Derive(rows []MergedRow) []MergedRow {
	out := make([]MergedRow, len(rows))
	copy(out, rows)
	for i := range out {
		out[i].FulfillmentStatus = FulfillmentStatus(out[i].Invoice.InvoiceNumber, out[i].Shipment.ShipDate)
		out[i].LateShip = LateShip(out[i].Shipment.ShipDate, out[i].RequestedDelivery)
	}
	return out
}

// Fields renders the row as display text keyed by output column.
func (m MergedRow) Fields() map[string]string {
	f := map[string]string{
		OutPONumber:          m.PONumber,
		OutPODate:            parse.FormatNullDate(m.PODate),
		OutVBUNumber:         m.VendorNumber,
		OutVBUName:           m.VBUName,
		OutItemCode:          m.ItemCode,
		OutVendorItem:        m.VendorItem,
		OutItemName:          m.ItemName,
		OutItemType:          m.ItemType,
		OutQtyOrdered:        parse.FormatNullNumber(m.Quantity),
		OutPallets:           "",
		OutUnitPrice:         parse.FormatNullCurrency(m.UnitPrice),
		OutMerchandiseTotal:  parse.FormatNullCurrency(m.MerchandiseTotal),
		OutLineNumber:        m.LineNumber,
		OutShipToCode:        m.ShipTo,
		OutShipToName:        m.ShipToName,
		OutShipToState:       m.ShipToState,
		OutRequestedDelivery: parse.FormatNullDate(m.RequestedDelivery),
		OutFulfillmentStatus: m.FulfillmentStatus,
		OutLateShip:          m.LateShip,
		OutASNDate:           parse.FormatNullDate(m.Shipment.ASNDate),
		OutShipDate:          parse.FormatNullDate(m.Shipment.ShipDate),
		OutBOL:               m.Shipment.BOL,
		OutSCAC:              m.Shipment.SCAC,
		OutInvoiceNumber:     m.Invoice.InvoiceNumber,
		OutInvoiceDate:       parse.FormatNullDate(m.Invoice.InvoiceDate),
		OutInvoiceDiscount:   parse.FormatNullCurrency(m.Invoice.Discount),
		OutInvoiceTotal:      parse.FormatNullCurrency(m.Invoice.Total),
	}
	if m.Pallets.Valid {
		f[OutPallets] = m.Pallets.Decimal.StringFixed(1)
	}
	if m.PODate.Valid {
		f[OutMonth] = strconv.Itoa(int(m.PODate.Time.Month()))
		f[OutYear] = strconv.Itoa(m.PODate.Time.Year())
		f[OutQuarter] = parse.Quarter(m.PODate.Time)
	}
	return f
}

// JoinedColumns lists the output columns that have a source in the given
// (normalized) inputs. Derived status columns are always present.
func JoinedColumns(orders, shipments, invoices *sheet.Table) []string {
	sources := []struct {
		col string
		ok  bool
	}{
		{OutPONumber, true},
		{OutLineNumber, true},
		{OutPODate, orders.Has(ColPODate)},
		{OutVBUNumber, orders.Has(ColVendorNumber)},
		{OutVBUName, orders.Has(ColVendorNumber)},
		{OutItemCode, orders.Has(ColItemCode)},
		{OutVendorItem, orders.Has(ColItemCode)},
		{OutItemType, orders.Has(ColItemCode)},
		{OutPallets, orders.Has(ColItemCode) && orders.Has(ColQtyOrdered)},
		{OutItemName, orders.Has(ColItemName)},
		{OutQtyOrdered, orders.Has(ColQtyOrdered)},
		{OutUnitPrice, orders.Has(ColUnitPrice)},
		{OutMerchandiseTotal, orders.Has(ColQtyOrdered) && orders.Has(ColUnitPrice)},
		{OutShipToCode, orders.Has(ColShipTo)},
		{OutShipToName, orders.Has(ColShipToName)},
		{OutShipToState, orders.Has(ColShipToState)},
		{OutRequestedDelivery, orders.Has(ColRequestedDelivery)},
		{OutMonth, orders.Has(ColPODate)},
		{OutYear, orders.Has(ColPODate)},
		{OutQuarter, orders.Has(ColPODate)},
		{OutASNDate, shipments.Has(ColASNDate)},
		{OutShipDate, shipments.Has(ColShipDate)},
		{OutBOL, shipments.Has(ColBOL)},
		{OutSCAC, shipments.Has(ColSCAC)},
		{OutInvoiceNumber, invoices.Has(ColInvoiceNumber)},
		{OutInvoiceDate, invoices.Has(ColInvoiceDate)},
		{OutInvoiceDiscount, invoices.Has(ColDiscountAmount)},
		{OutInvoiceTotal, invoices.Has(ColInvoiceTotal)},
		{OutFulfillmentStatus, true},
		{OutLateShip, true},
	}
	cols := make([]string, 0, len(sources))
	for _, s := range sources {
		if s.ok {
			cols = append(cols, s.col)
		}
	}
	return cols
}

// JoinedTable materializes rows over cols; missing values stay "".
func JoinedTable(rows []MergedRow, cols []string) *sheet.Table {
	data := make([][]string, len(rows))
	for i, row := range rows {
		fields := row.Fields()
		rec := make([]string, len(cols))
		for c, col := range cols {
			rec[c] = fields[col]
		}
		data[i] = rec
	}
	return sheet.New(cols, data)
}

package reconcile

import "LowesMerge/internal/sheet"

// Output columns, in report order.
const (
	OutPONumber          = "PO#"
	OutPODate            = "PO Date"
	OutVBUNumber         = "VBU#"
	OutVBUName           = "VBU Name"
	OutItemCode          = "Item#"
	OutVendorItem        = "Vendor Item#"
	OutItemName          = "Item Name"
	OutItemType          = "Item Type"
	OutQtyOrdered        = "Qty Ordered"
	OutPallets           = "Pallets"
	OutUnitPrice         = "Unit Price"
	OutMerchandiseTotal  = "Merchandise Total"
	OutLineNumber        = "PO Line#"
	OutShipToCode        = "Ship To Code"
	OutShipToName        = "Ship To Name"
	OutShipToState       = "Ship To State"
	OutRequestedDelivery = "Requested Delivery Date"
	OutFulfillmentStatus = "Fulfillment Status"
	OutLateShip          = "Late Ship"
	OutASNDate           = "ASN Date"
	OutShipDate          = "Ship Date"
	OutBOL               = "BOL"
	OutSCAC              = "SCAC"
	OutInvoiceNumber     = "Invoice#"
	OutInvoiceDate       = "Invoice Date"
	OutInvoiceDiscount   = "Invoice Discount"
	OutInvoiceTotal      = "Invoice Total"
	OutMonth             = "Month Filter"
	OutYear              = "Year Filter"
	OutQuarter           = "Quarter Filter"
)

// OutputColumns is the fixed report layout.
var OutputColumns = []string{
	OutPONumber, OutPODate, OutVBUNumber, OutVBUName, OutItemCode, OutVendorItem,
	OutItemName, OutItemType, OutQtyOrdered, OutPallets, OutUnitPrice, OutMerchandiseTotal,
	OutLineNumber, OutShipToCode, OutShipToName, OutShipToState, OutRequestedDelivery,
	OutFulfillmentStatus, OutLateShip, OutASNDate, OutShipDate, OutBOL, OutSCAC,
	OutInvoiceNumber, OutInvoiceDate, OutInvoiceDiscount, OutInvoiceTotal,
	OutMonth, OutYear, OutQuarter,
}

// Project reindexes joined onto OutputColumns. Columns joined lacks are
// created empty; every row has exactly len(OutputColumns) cells.
func Project(joined *sheet.Table) *sheet.Table {
	idx := make([]int, len(OutputColumns))
	for i, col := range OutputColumns {
		idx[i] = joined.Index(col)
	}
	rows := make([][]string, joined.Len())
	for r := range rows {
		rec := make([]string, len(OutputColumns))
		for i, c := range idx {
			rec[i] = joined.Cell(r, c)
		}
		rows[r] = rec
	}
	return sheet.New(OutputColumns, rows)
}

package reconcile

import (
	"fmt"
	"strings"

	"LowesMerge/internal/sheet"
)

// Canonical input columns. Every input table is renamed onto this vocabulary
// before any field is read by name.
const (
	ColPONumber          = "PO Number"
	ColLineNumber        = "PO Line#"
	ColQtyOrdered        = "Qty Ordered"
	ColUnitPrice         = "Unit Price"
	ColVendorNumber      = "Vendor #"
	ColPODate            = "PO Date"
	ColRequestedDelivery = "Requested Delivery Date"
	ColItemCode          = "Buyers Catalog or Stock Keeping #"
	ColItemName          = "Product/Item Description"
	ColShipTo            = "Ship To Location"
	ColShipToName        = "Ship To Name"
	ColShipToState       = "Ship To State"

	ColASNDate  = "ASN Date"
	ColShipDate = "Ship Date"
	ColBOL      = "BOL"
	ColSCAC     = "SCAC"

	ColInvoiceNumber  = "Invoice Number"
	ColInvoicePO      = "Retailers PO #"
	ColInvoiceDate    = "Invoice Date"
	ColInvoiceTotal   = "Invoice Total"
	ColDiscountAmount = "Discount Amount"
	ColRecordType     = "Record Type"
	ColInvoicePurpose = "Invoice Purpose"
)

// RequiredOrderColumns must be present in the Orders table for a run to proceed.
var RequiredOrderColumns = []string{ColPONumber, ColLineNumber}

// headerSynonyms is keyed by the folded form of a header (see foldHeader).
var headerSynonyms = map[string]string{
	"po number":             ColPONumber,
	"po #":                  ColPONumber,
	"po#":                   ColPONumber,
	"po no":                 ColPONumber,
	"po no.":                ColPONumber,
	"purchase order number": ColPONumber,

	"po line#":       ColLineNumber,
	"po line #":      ColLineNumber,
	"po line number": ColLineNumber,
	"po line":        ColLineNumber,
	"line #":         ColLineNumber,
	"line number":    ColLineNumber,

	"qty ordered":      ColQtyOrdered,
	"quantity ordered": ColQtyOrdered,
	"ordered qty":      ColQtyOrdered,

	"unit price": ColUnitPrice,
	"unit cost":  ColUnitPrice,

	"vendor #":      ColVendorNumber,
	"vendor#":       ColVendorNumber,
	"vendor number": ColVendorNumber,
	"vbu#":          ColVendorNumber,
	"vbu #":         ColVendorNumber,

	"po date":             ColPODate,
	"purchase order date": ColPODate,

	"requested delivery date": ColRequestedDelivery,
	"req delivery date":       ColRequestedDelivery,
	"requested delivery":      ColRequestedDelivery,

	"buyers catalog or stock keeping #":  ColItemCode,
	"buyer's catalog or stock keeping #": ColItemCode,
	"buyer item #":                       ColItemCode,
	"buyer item#":                        ColItemCode,
	"buyer item number":                  ColItemCode,
	"item #":                             ColItemCode,
	"item#":                              ColItemCode,

	"product/item description": ColItemName,
	"item description":         ColItemName,
	"item name":                ColItemName,

	"ship to location": ColShipTo,
	"ship-to location": ColShipTo,
	"location #":       ColShipTo,
	"location#":        ColShipTo,
	"ship to code":     ColShipTo,

	"ship to name":  ColShipToName,
	"location name": ColShipToName,
	"ship to state": ColShipToState,

	"asn date":       ColASNDate,
	"ship date":      ColShipDate,
	"bol":            ColBOL,
	"bol #":          ColBOL,
	"bol#":           ColBOL,
	"bill of lading": ColBOL,
	"scac":           ColSCAC,
	"carrier scac":   ColSCAC,

	"invoice number": ColInvoiceNumber,
	"invoice #":      ColInvoiceNumber,
	"invoice#":       ColInvoiceNumber,
	"invoice no":     ColInvoiceNumber,

	"retailers po #":        ColInvoicePO,
	"retailer's po #":       ColInvoicePO,
	"retailers po number":   ColInvoicePO,
	"retailer's po number":  ColInvoicePO,
	"retailers po#":         ColInvoicePO,
	"invoice date":          ColInvoiceDate,
	"invoice total":         ColInvoiceTotal,
	"invoice amount":        ColInvoiceTotal,
	"total invoice amount":  ColInvoiceTotal,
	"discount amount":       ColDiscountAmount,
	"invoice discount":      ColDiscountAmount,
	"record type":           ColRecordType,
	"invoice purpose":       ColInvoicePurpose,
	"invoice purpose code":  ColInvoicePurpose,
	"discounted amount":     ColDiscountAmount,
	"discount amount total": ColDiscountAmount,

	// the portal's own spelling
	"discounted amounted_discount amount": ColDiscountAmount,
}

func foldHeader(s string) string {
	s = strings.ReplaceAll(s, "’", "'")
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// CanonicalColumn maps a raw header onto the canonical vocabulary; unknown
// headers come back trimmed but otherwise unchanged.
func CanonicalColumn(raw string) string {
	if c, ok := headerSynonyms[foldHeader(raw)]; ok {
		return c
	}
	return strings.TrimSpace(raw)
}

// Normalize returns t with every header mapped through CanonicalColumn. When
// two raw headers land on the same canonical name the later one is suffixed.
func Normalize(t *sheet.Table) *sheet.Table {
	if t == nil {
		return sheet.New(nil, nil)
	}
	return t.Rename(CanonicalColumn)
}

// MissingColumnsError reports required Orders columns that were not found.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("Your %s column(s) are either missing or in the incorrect format.", strings.Join(e.Missing, ", "))
}

// CheckOrderColumns fails with *MissingColumnsError naming every absent required column.
func CheckOrderColumns(orders *sheet.Table) error {
	var missing []string
	for _, col := range RequiredOrderColumns {
		if !orders.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Missing: missing}
	}
	return nil
}

package reconcile

import (
	"testing"

	"LowesMerge/internal/lookup"
	"LowesMerge/internal/parse"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderHeader = []string{
	"PO Number", "PO Line#", "PO Date", "Vendor #", "Buyers Catalog or Stock Keeping #",
	"Qty Ordered", "Unit Price", "Ship To Location", "Requested Delivery Date",
}

func TestBuildOrderLinesJoinsHeaderMetadata(t *testing.T) {
	orders := Normalize(table(orderHeader,
		// details listed before their header row; the join must not depend on file order
		[]string{"100", "1", "", "", "71894", "10", "$2.00", "", ""},
		[]string{"100", "2", "", "", "72931", "60", "$5.50", "2222", ""},
		[]string{"100", "", "2024-03-01", "118871", "", "", "", "1111", "2024-03-08"},
	))

	lines, stats := BuildOrderLines(orders, lookup.Default())
	require.Len(t, lines, 2)
	assert.Equal(t, 1, stats.HeaderRows)
	assert.Equal(t, 2, stats.DetailRows)

	byLine := map[string]OrderLine{}
	for _, l := range lines {
		byLine[l.LineNumber] = l
	}
	first := byLine["1"]
	assert.Equal(t, "100", first.PONumber)
	assert.Equal(t, "3/1/2024", parse.FormatNullDate(first.PODate))
	assert.Equal(t, "118871", first.VendorNumber)
	assert.Equal(t, "Fostoria", first.VBUName)
	assert.Equal(t, "1111", first.ShipTo)
	assert.Equal(t, "3/8/2024", parse.FormatNullDate(first.RequestedDelivery))

	assert.Equal(t, "2222", byLine["2"].ShipTo, "a detail row's own value wins over the header's")
}

func TestBuildOrderLinesDerivedFields(t *testing.T) {
	orders := Normalize(table(orderHeader,
		[]string{"100", "1", "2024-03-01", "118871", "71894", "10", "$2.00", "", ""},
		[]string{"100", "2", "2024-03-01", "999999", "000000", "abc", "$1,250.00", "", ""},
		[]string{"100", "3", "2024-03-01", "118871", "5516714", "420", "bad price", "", ""},
	))
	lines, _ := BuildOrderLines(orders, lookup.Default())
	require.Len(t, lines, 3)

	l1 := lines[0]
	assert.Equal(t, "B1246160", l1.VendorItem)
	assert.Equal(t, "Sunniland", l1.ItemType)
	assert.Equal(t, "$20.00", parse.FormatNullCurrency(l1.MerchandiseTotal))
	require.True(t, l1.Pallets.Valid)
	assert.Equal(t, "0.8", l1.Pallets.Decimal.StringFixed(1))

	l2 := lines[1]
	assert.Equal(t, "", l2.VBUName, "unknown vendor codes resolve to empty")
	assert.Equal(t, "", l2.VendorItem)
	assert.False(t, l2.Quantity.Valid)
	assert.Equal(t, "$1,250.00", parse.FormatNullCurrency(l2.UnitPrice))
	assert.False(t, l2.MerchandiseTotal.Valid, "missing quantity propagates")
	assert.False(t, l2.Pallets.Valid)

	l3 := lines[2]
	assert.False(t, l3.UnitPrice.Valid)
	assert.False(t, l3.MerchandiseTotal.Valid)
	assert.Equal(t, "2.0", l3.Pallets.Decimal.StringFixed(1))
}

func TestBuildOrderLinesDropsDuplicatesAndHeaderNoise(t *testing.T) {
	orders := Normalize(table(orderHeader,
		[]string{"100", "", "2024-03-01", "118871", "", "", "", "", ""},
		[]string{"100", "", "2024-03-01", "118871", "", "", "", "", ""},
		[]string{"100", "1", "", "", "71894", "10", "$2.00", "", ""},
		[]string{"100.0", "1.0", "", "118871", "71894", "10", "$2.00", "", ""},
		[]string{"", "1", "", "", "71894", "10", "$2.00", "", ""},
		[]string{"200", "", "2024-02-01", "118872", "", "", "", "", ""},
		[]string{"300", "", "", "", "71894", "4", "", "", ""},
	))
	lines, stats := BuildOrderLines(orders, lookup.Default())

	require.Len(t, lines, 2)
	assert.Equal(t, 1, stats.DuplicateRows)
	assert.Equal(t, 1, stats.MissingPORows)
	assert.Equal(t, 1, stats.HeaderOnlyPOs)
	assert.Equal(t, 2, stats.EmittedLines)
	for _, l := range lines {
		assert.NotEmpty(t, l.PONumber)
		assert.True(t, l.LineNumber != "" || l.Quantity.Valid)
	}
	assert.Equal(t, "300", lines[1].PONumber, "qty without a line number is still a detail row")
}

func TestSortOrderLines(t *testing.T) {
	orders := Normalize(table(orderHeader,
		[]string{"99", "1", "2024-01-15", "", "", "1", "", "", ""},
		[]string{"1000", "2", "2024-03-01", "", "", "1", "", "", ""},
		[]string{"1000", "1", "2024-03-01", "", "", "1", "", "", ""},
		[]string{"200", "1", "2024-03-01", "", "", "1", "", "", ""},
		[]string{"5", "1", "", "", "", "1", "", "", ""},
	))
	lines, _ := BuildOrderLines(orders, nil)

	var got []string
	for _, l := range lines {
		got = append(got, l.PONumber+"/"+l.LineNumber)
	}
	assert.Equal(t, []string{"1000/1", "1000/2", "200/1", "99/1", "5/1"}, got)
}

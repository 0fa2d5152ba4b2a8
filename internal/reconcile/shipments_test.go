package reconcile

import (
	"testing"

	"LowesMerge/internal/parse"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var shipmentHeader = []string{"PO #", "Buyer Item #", "Location #", "ASN Date", "Ship Date", "BOL", "SCAC"}

func TestAggregateShipmentsCollapsesPerKey(t *testing.T) {
	shipments := Normalize(table(shipmentHeader,
		[]string{"100", "71894", "1111", "2024-01-01", "2024-01-05", "B1", "UPSN"},
		[]string{"100.0", "71894", "1111", "2024-01-03", "2024-01-09", "B2", ""},
		[]string{"100", "71894", "1111", "", "2024-01-02", "B1", "FXFE"},
		[]string{"100", "72931", "1111", "", "not a date", "", ""},
		[]string{"", "71894", "1111", "2024-01-01", "2024-01-05", "B9", ""},
	))

	aggs := AggregateShipments(shipments, false)
	require.Len(t, aggs, 2)

	agg, ok := aggs[ShipmentKey{PONumber: "100", ItemCode: "71894"}]
	require.True(t, ok)
	assert.Equal(t, 3, agg.Records)
	assert.Equal(t, "1/9/2024", parse.FormatNullDate(agg.ShipDate))
	assert.Equal(t, "1/3/2024", parse.FormatNullDate(agg.ASNDate))
	assert.Equal(t, "B1/B2", agg.BOL)
	assert.Equal(t, "FXFE/UPSN", agg.SCAC)

	empty := aggs[ShipmentKey{PONumber: "100", ItemCode: "72931"}]
	assert.False(t, empty.ShipDate.Valid)
	assert.Equal(t, "", empty.BOL)
}

func TestShipmentKeyUsesShipToOnlyWhenBothSidesHaveIt(t *testing.T) {
	orders := Normalize(table([]string{"PO Number", "Ship To Location"}))
	withLocation := Normalize(table(shipmentHeader))
	withoutLocation := Normalize(table([]string{"PO #", "Buyer Item #", "Ship Date"}))

	assert.True(t, UseShipTo(orders, withLocation))
	assert.False(t, UseShipTo(orders, withoutLocation))
	assert.False(t, UseShipTo(Normalize(table([]string{"PO Number"})), withLocation))

	line := OrderLine{PONumber: "100", ItemCode: "71894", ShipTo: "1111"}
	assert.Equal(t, ShipmentKey{"100", "71894", "1111"}, KeyForLine(line, true))
	assert.Equal(t, ShipmentKey{"100", "71894", ""}, KeyForLine(line, false))
}

func TestJoinShipmentsSplitsByShipTo(t *testing.T) {
	shipments := Normalize(table(shipmentHeader,
		[]string{"100", "71894", "1111", "", "2024-01-05", "B1", ""},
		[]string{"100", "71894", "2222", "", "2024-01-07", "B2", ""},
	))
	lines := []OrderLine{
		{PONumber: "100", LineNumber: "1", ItemCode: "71894", ShipTo: "1111"},
		{PONumber: "100", LineNumber: "2", ItemCode: "71894", ShipTo: "2222"},
		{PONumber: "100", LineNumber: "3", ItemCode: "71894", ShipTo: "3333"},
	}

	rows := JoinShipments(lines, AggregateShipments(shipments, true), true)
	require.Len(t, rows, len(lines))
	assert.Equal(t, "B1", rows[0].Shipment.BOL)
	assert.Equal(t, "B2", rows[1].Shipment.BOL)
	assert.False(t, rows[2].HasShipment)

	rows = JoinShipments(lines, AggregateShipments(shipments, false), false)
	for _, row := range rows {
		assert.Equal(t, "B1/B2", row.Shipment.BOL)
		assert.Equal(t, "1/7/2024", parse.FormatNullDate(row.Shipment.ShipDate))
	}
}

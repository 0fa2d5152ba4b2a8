package reconcile

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func nullTime(y int, m time.Month, d int) sql.NullTime {
	return sql.NullTime{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

func TestFulfillmentStatus(t *testing.T) {
	shipped := nullTime(2024, 3, 10)
	assert.Equal(t, StatusInvoiced, FulfillmentStatus("INV-1", shipped))
	assert.Equal(t, StatusInvoiced, FulfillmentStatus("INV-1", sql.NullTime{}))
	assert.Equal(t, StatusShippedNotInvoiced, FulfillmentStatus("", shipped))
	assert.Equal(t, StatusShippedNotInvoiced, FulfillmentStatus("   ", shipped))
	assert.Equal(t, StatusNotInvoiced, FulfillmentStatus("", sql.NullTime{}))
}

func TestLateShip(t *testing.T) {
	requested := nullTime(2024, 3, 8)
	assert.Equal(t, LateYes, LateShip(nullTime(2024, 3, 10), requested))
	assert.Equal(t, LateNo, LateShip(nullTime(2024, 3, 8), requested))
	assert.Equal(t, LateNo, LateShip(nullTime(2024, 3, 1), requested))
	assert.Equal(t, LateUnknown, LateShip(sql.NullTime{}, requested))
	assert.Equal(t, LateUnknown, LateShip(nullTime(2024, 3, 10), sql.NullTime{}))

	sameDayLater := sql.NullTime{Time: time.Date(2024, 3, 8, 17, 30, 0, 0, time.UTC), Valid: true}
	assert.Equal(t, LateNo, LateShip(sameDayLater, requested), "time of day is ignored")
}

func TestDeriveCopiesRows(t *testing.T) {
	rows := []MergedRow{{
		OrderLine: OrderLine{PONumber: "100", RequestedDelivery: nullTime(2024, 3, 8)},
		Shipment:  ShipmentAggregate{ShipDate: nullTime(2024, 3, 10)},
	}}
	out := Derive(rows)
	assert.Equal(t, StatusShippedNotInvoiced, out[0].FulfillmentStatus)
	assert.Equal(t, LateYes, out[0].LateShip)
	assert.Empty(t, rows[0].FulfillmentStatus)
}

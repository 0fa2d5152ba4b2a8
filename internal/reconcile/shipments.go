package reconcile

import (
	"database/sql"
	"sort"
	"strings"

	"LowesMerge/internal/parse"
	"LowesMerge/internal/sheet"
)

// ShipmentKey identifies the order line a shipment notice belongs to. ShipTo is
// empty when the join runs without ship-to.
type ShipmentKey struct {
	PONumber string
	ItemCode string
	ShipTo   string
}

// ShipmentAggregate is every shipment notice for one key collapsed into one row.
type ShipmentAggregate struct {
	Key      ShipmentKey
	ASNDate  sql.NullTime
	ShipDate sql.NullTime
	BOL      string
	SCAC     string
	Records  int
}

// ShipmentDelimiter joins multiple BOL and SCAC values.
const ShipmentDelimiter = "/"

// UseShipTo reports whether the shipment join key includes ship-to: both the
// orders and the shipments must carry the column.
func UseShipTo(orders, shipments *sheet.Table) bool {
	return orders.Has(ColShipTo) && shipments.Has(ColShipTo)
}

// KeyForLine builds the shipment join key for an order line.
func KeyForLine(line OrderLine, withShipTo bool) ShipmentKey {
	k := ShipmentKey{PONumber: line.PONumber, ItemCode: line.ItemCode}
	if withShipTo {
		k.ShipTo = line.ShipTo
	}
	return k
}

// AggregateShipments collapses shipment rows per key: latest ASN and ship date,
// and the sorted, duplicate-free set of BOL and SCAC values.
func AggregateShipments(shipments *sheet.Table, withShipTo bool) map[ShipmentKey]ShipmentAggregate {
	type group struct {
		agg  ShipmentAggregate
		bols map[string]bool
		scac map[string]bool
	}
	groups := make(map[ShipmentKey]*group)
	for r := range shipments.Rows {
		key := ShipmentKey{
			PONumber: parse.CanonicalID(shipments.Get(r, ColPONumber)),
			ItemCode: parse.CanonicalID(shipments.Get(r, ColItemCode)),
		}
		if withShipTo {
			key.ShipTo = parse.CanonicalID(shipments.Get(r, ColShipTo))
		}
		if key.PONumber == "" {
			continue
		}
		g, ok := groups[key]
		if !ok {
			g = &group{agg: ShipmentAggregate{Key: key}, bols: map[string]bool{}, scac: map[string]bool{}}
			groups[key] = g
		}
		g.agg.Records++
		g.agg.ASNDate = latest(g.agg.ASNDate, parse.NullDate(shipments.Get(r, ColASNDate)))
		g.agg.ShipDate = latest(g.agg.ShipDate, parse.NullDate(shipments.Get(r, ColShipDate)))
		if v := shipments.Get(r, ColBOL); v != "" {
			g.bols[v] = true
		}
		if v := shipments.Get(r, ColSCAC); v != "" {
			g.scac[v] = true
		}
	}

	out := make(map[ShipmentKey]ShipmentAggregate, len(groups))
	for key, g := range groups {
		g.agg.BOL = joinSet(g.bols)
		g.agg.SCAC = joinSet(g.scac)
		out[key] = g.agg
	}
	return out
}

func latest(cur, next sql.NullTime) sql.NullTime {
	if !next.Valid {
		return cur
	}
	if !cur.Valid || next.Time.After(cur.Time) {
		return next
	}
	return cur
}

func joinSet(set map[string]bool) string {
	if len(set) == 0 {
		return ""
	}
	vals := make([]string, 0, len(set))
	for v := range set {
		vals = append(vals, v)
	}
	sort.Strings(vals)
	return strings.Join(vals, ShipmentDelimiter)
}

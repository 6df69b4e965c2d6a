package dashboard

import (
	"github.com/twpayne/go-geom"

	"github.com/coastmove/atoll-dashboard/internal/boundary"
)

var demographicFields = []string{"Atoll", "Population", "Income", "Floodplain", "Risk_Perce", "Coast_P", "ID"}

func square(x, y float64) *geom.Polygon {
	return geom.NewPolygonFlat(geom.XY, []float64{
		x, y, x + 0.1, y, x + 0.1, y + 0.1, x, y + 0.1, x, y,
	}, []int{10})
}

func record(idx int, atoll string, pop float64, id float64) *boundary.Record {
	var atollVal any
	if atoll != "" {
		atollVal = atoll
	}
	return &boundary.Record{
		Index:    idx,
		Atoll:    atoll,
		Geometry: square(171+float64(idx), 7),
		Attrs: map[string]any{
			"Atoll":      atollVal,
			"Population": pop,
			"Income":     1200.5,
			"Floodplain": 0.25,
			"Risk_Perce": "high",
			"Coast_P":    0.7,
			"ID":         id,
		},
	}
}

// testDataset has administrative rows for Majuro (twice) and Ebeye plus one
// row without an atoll; the atoll table covers Majuro, Jaluit and Arno.
func testDataset() *boundary.Dataset {
	admin := boundary.NewTable("admin", "Atoll", demographicFields, []*boundary.Record{
		record(0, "Majuro", 27797, 1),
		record(1, "Ebeye", 9614, 2),
		record(2, "Majuro", 1200, 3),
		record(3, "", 0, 4),
	})
	atolls := boundary.NewTable("atolls", "Atoll", demographicFields, []*boundary.Record{
		record(0, "Majuro", 28997, 10),
		record(1, "Jaluit", 1788, 11),
		record(2, "Arno", 1794, 12),
	})
	return &boundary.Dataset{Admin: admin, Atolls: atolls, IDField: "ID"}
}

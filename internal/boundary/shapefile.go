package boundary

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// ReadShapefile loads a polygon shapefile together with its .dbf attributes.
// A sibling .cpg file selects the attribute code page.
func ReadShapefile(ctx context.Context, name, path, atollField string) (*Table, error) {
	dec, err := codePage(path)
	if err != nil {
		return nil, err
	}

	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	shpFields := reader.Fields()
	fields := make([]string, len(shpFields))
	numeric := make([]bool, len(shpFields))
	for i, f := range shpFields {
		fields[i] = strings.TrimRight(f.String(), "\x00")
		numeric[i] = f.Fieldtype == 'N' || f.Fieldtype == 'F'
	}

	var (
		records []*Record
		dropped int
	)

	for reader.Next() {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "boundary: context cancelled")
		}

		idx, shape := reader.Shape()

		attrs := make(map[string]any, len(fields))
		for i, field := range fields {
			val := strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
			attrs[field] = attributeValue(val, numeric[i], dec)
		}

		poly, n, err := shapePolygon(shape)
		if err != nil {
			return nil, eris.Wrapf(err, "boundary: %s record %d", name, idx)
		}
		dropped += n

		records = append(records, &Record{
			Index:    len(records),
			Atoll:    atollName(attrs, atollField),
			Geometry: poly,
			Attrs:    attrs,
		})
	}
	if err := reader.Err(); err != nil {
		return nil, eris.Wrapf(err, "boundary: read shapefile %s", path)
	}

	return newTable(name, atollField, fields, records, dropped), nil
}

func attributeValue(val string, numeric bool, dec *encoding.Decoder) any {
	if val == "" {
		return nil
	}
	if numeric {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			// dBASE writes overflowing numbers as runs of '*'.
			return nil
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	}
	if dec != nil {
		if s, err := dec.String(val); err == nil {
			return s
		}
	}
	return val
}

// codePage returns a decoder for the .cpg next to path, or nil when absent.
func codePage(path string) (*encoding.Decoder, error) {
	cpg := strings.TrimSuffix(path, filepath.Ext(path)) + ".cpg"
	data, err := os.ReadFile(cpg)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "boundary: read %s", cpg)
	}

	label := strings.TrimSpace(string(data))
	if label == "" {
		return nil, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: unsupported code page %q", label)
	}
	zap.L().Debug("boundary: using dbf code page", zap.String("path", path), zap.String("code_page", label))
	return enc.NewDecoder(), nil
}

// shapePolygon converts a shapefile shape into a single polygon.
func shapePolygon(shape shp.Shape) (*geom.Polygon, int, error) {
	switch s := shape.(type) {
	case nil, *shp.Null:
		return nil, 0, nil
	case *shp.Polygon:
		poly, n := firstPolygonFromRings(splitRings(s.Parts, s.Points))
		return poly, n, nil
	case *shp.PolygonZ:
		poly, n := firstPolygonFromRings(splitRings(s.Parts, s.Points))
		return poly, n, nil
	case *shp.PolygonM:
		poly, n := firstPolygonFromRings(splitRings(s.Parts, s.Points))
		return poly, n, nil
	default:
		return nil, 0, eris.Wrapf(ErrUnsupportedGeometry, "boundary: shapefile %T", shape)
	}
}

// splitRings cuts a shapefile point list at its part offsets into flat XY rings.
func splitRings(parts []int32, points []shp.Point) [][]float64 {
	rings := make([][]float64, 0, len(parts))
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || start >= end || int(end) > len(points) {
			continue
		}
		ring := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			ring = append(ring, points[j].X, points[j].Y)
		}
		rings = append(rings, ring)
	}
	return rings
}

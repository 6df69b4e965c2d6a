package boundary

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"golang.org/x/text/unicode/norm"
)

// ErrUnsupportedGeometry is returned for shapes that are neither polygons
// nor multi-polygons.
var ErrUnsupportedGeometry = eris.New("boundary: unsupported geometry")

// Simplify reduces g to a single XY polygon. A multi-polygon keeps only its
// first part; the number of discarded parts is returned. Empty input yields nil.
func Simplify(g geom.T) (*geom.Polygon, int, error) {
	switch t := g.(type) {
	case nil:
		return nil, 0, nil
	case *geom.Polygon:
		if t == nil || t.NumLinearRings() == 0 {
			return nil, 0, nil
		}
		return toXY(t), 0, nil
	case *geom.MultiPolygon:
		if t == nil || t.NumPolygons() == 0 {
			return nil, 0, nil
		}
		first := t.Polygon(0)
		if first.NumLinearRings() == 0 {
			return nil, t.NumPolygons() - 1, nil
		}
		return toXY(first), t.NumPolygons() - 1, nil
	default:
		return nil, 0, eris.Wrapf(ErrUnsupportedGeometry, "boundary: %T", g)
	}
}

// toXY drops any Z or M ordinates.
func toXY(p *geom.Polygon) *geom.Polygon {
	if p.Layout() == geom.XY {
		return geom.NewPolygonFlat(geom.XY, p.FlatCoords(), p.Ends()).SetSRID(4326)
	}

	stride := p.Stride()
	flat := p.FlatCoords()
	xy := make([]float64, 0, len(flat)/stride*2)
	for i := 0; i+1 < len(flat); i += stride {
		xy = append(xy, flat[i], flat[i+1])
	}

	ends := make([]int, len(p.Ends()))
	for i, e := range p.Ends() {
		ends[i] = e / stride * 2
	}

	return geom.NewPolygonFlat(geom.XY, xy, ends).SetSRID(4326)
}

// firstPolygonFromRings groups shapefile rings into polygons and returns the
// first one. Shapefiles store outer rings clockwise and holes
// counter-clockwise; each clockwise ring after the first starts a new polygon.
func firstPolygonFromRings(rings [][]float64) (*geom.Polygon, int) {
	if len(rings) == 0 {
		return nil, 0
	}

	var flat []float64
	var ends []int
	dropped := 0
	inFirst := true
	started := false

	for _, ring := range rings {
		if len(ring) < 2 {
			continue
		}
		if started && signedArea(ring) < 0 {
			dropped++
			inFirst = false
			continue
		}
		if !inFirst {
			continue
		}
		started = true
		flat = append(flat, ring...)
		ends = append(ends, len(flat))
	}

	if len(ends) == 0 {
		return nil, dropped
	}
	return geom.NewPolygonFlat(geom.XY, flat, ends).SetSRID(4326), dropped
}

// signedArea is the shoelace area of a flat XY ring; negative means clockwise.
func signedArea(ring []float64) float64 {
	var sum float64
	n := len(ring) / 2
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += ring[2*i]*ring[2*j+1] - ring[2*j]*ring[2*i+1]
	}
	return sum / 2
}

// normalizeName trims and NFC-normalises an atoll name so that names typed
// with combining marks compare equal to their precomposed forms.
func normalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

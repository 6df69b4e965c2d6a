package boundary

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

type rawFeatureCollection struct {
	Type     string       `json:"type"`
	Features []rawFeature `json:"features"`
}

type rawFeature struct {
	Type       string          `json:"type"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties json.RawMessage `json:"properties"`
}

// ReadGeoJSON loads a GeoJSON FeatureCollection of (multi)polygons.
func ReadGeoJSON(ctx context.Context, name, path, atollField string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	return DecodeGeoJSON(ctx, name, f, atollField)
}

// DecodeGeoJSON parses a FeatureCollection from r.
func DecodeGeoJSON(ctx context.Context, name string, r io.Reader, atollField string) (*Table, error) {
	var fc rawFeatureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, eris.Wrapf(err, "boundary: decode %s geojson", name)
	}
	if fc.Type != "FeatureCollection" {
		return nil, eris.Errorf("boundary: %s: expected FeatureCollection, got %q", name, fc.Type)
	}

	var (
		fields  []string
		seen    = make(map[string]struct{})
		records = make([]*Record, 0, len(fc.Features))
		dropped int
	)

	for i, feat := range fc.Features {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "boundary: context cancelled")
		}

		keys, attrs, err := decodeProperties(feat.Properties)
		if err != nil {
			return nil, eris.Wrapf(err, "boundary: %s feature %d properties", name, i)
		}
		for _, k := range keys {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				fields = append(fields, k)
			}
		}

		g, err := decodeGeometry(feat.Geometry)
		if err != nil {
			return nil, eris.Wrapf(err, "boundary: %s feature %d geometry", name, i)
		}
		poly, n, err := Simplify(g)
		if err != nil {
			return nil, eris.Wrapf(err, "boundary: %s feature %d", name, i)
		}
		dropped += n

		records = append(records, &Record{
			Index:    i,
			Atoll:    atollName(attrs, atollField),
			Geometry: poly,
			Attrs:    attrs,
		})
	}

	return newTable(name, atollField, fields, records, dropped), nil
}

func decodeGeometry(raw json.RawMessage) (geom.T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var g geom.T
	if err := geojson.Unmarshal(trimmed, &g); err != nil {
		return nil, err
	}
	return g, nil
}

// decodeProperties walks a properties object token by token so the keys
// keep their file order.
func decodeProperties(raw json.RawMessage) ([]string, map[string]any, error) {
	attrs := make(map[string]any)
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, attrs, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, eris.Errorf("expected object, got %v", tok)
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, eris.Errorf("expected key, got %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, eris.Wrapf(err, "property %q", key)
		}
		if _, dup := attrs[key]; !dup {
			keys = append(keys, key)
		}
		attrs[key] = normalizeValue(v)
	}

	return keys, attrs, nil
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return t
	}
}

// atollName extracts the parent-atoll name and rewrites the attribute in
// its normalised form.
func atollName(attrs map[string]any, field string) string {
	v, ok := attrs[field]
	if !ok || v == nil {
		return ""
	}
	var s string
	switch t := v.(type) {
	case string:
		s = normalizeName(t)
		attrs[field] = s
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
	return s
}

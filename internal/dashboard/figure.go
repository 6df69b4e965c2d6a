package dashboard

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/coastmove/atoll-dashboard/internal/boundary"
)

// ErrUnknownField is returned when the requested demographic column is not
// present in the table being drawn.
var ErrUnknownField = eris.New("dashboard: unknown field")

// Trace is one Plotly data trace.
type Trace interface {
	TraceType() string
}

// Figure is a Plotly figure description ready for Plotly.react.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Choropleths returns the choropleth traces of the figure.
func (f *Figure) Choropleths() []*ChoroplethMapbox {
	var out []*ChoroplethMapbox
	for _, t := range f.Data {
		if c, ok := t.(*ChoroplethMapbox); ok {
			out = append(out, c)
		}
	}
	return out
}

// ChoroplethMapbox colours GeoJSON features by a value.
type ChoroplethMapbox struct {
	Type         string                     `json:"type"`
	GeoJSON      *geojson.FeatureCollection `json:"geojson"`
	Locations    []string                   `json:"locations"`
	FeatureIDKey string                     `json:"featureidkey"`
	Z            []any                      `json:"z"`
	ColorScale   string                     `json:"colorscale"`
	ColorBar     ColorBar                   `json:"colorbar"`
	HoverInfo    string                     `json:"hoverinfo"`
	Text         []string                   `json:"text"`
	ShowLegend   bool                       `json:"showlegend"`
}

// TraceType implements Trace.
func (*ChoroplethMapbox) TraceType() string { return "choroplethmapbox" }

// ScatterMapbox is the empty point layer drawn under administrative boundaries.
type ScatterMapbox struct {
	Type       string    `json:"type"`
	Lat        []float64 `json:"lat"`
	Lon        []float64 `json:"lon"`
	Mode       string    `json:"mode"`
	Marker     Marker    `json:"marker"`
	ShowLegend bool      `json:"showlegend"`
	HoverInfo  string    `json:"hoverinfo"`
}

// TraceType implements Trace.
func (*ScatterMapbox) TraceType() string { return "scattermapbox" }

// Marker styles scatter points.
type Marker struct {
	Size int `json:"size"`
}

// ColorBar positions the colour legend next to the map.
type ColorBar struct {
	Title     Title   `json:"title"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	YAnchor   string  `json:"yanchor"`
	XAnchor   string  `json:"xanchor"`
	Thickness int     `json:"thickness"`
	Len       float64 `json:"len"`
}

// Title is a Plotly title object.
type Title struct {
	Text string `json:"text"`
}

// Layout is the Plotly layout for the map figure.
type Layout struct {
	Mapbox Mapbox `json:"mapbox"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Margin Margin `json:"margin"`
}

// Mapbox holds the base-map style and viewport.
type Mapbox struct {
	Style  string  `json:"style"`
	Center LatLon  `json:"center"`
	Zoom   float64 `json:"zoom"`
}

// LatLon is a map coordinate.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Margin is the figure padding in pixels.
type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
	B int `json:"b"`
}

// MapStyle fixes the viewport, size and colour scale of every render.
type MapStyle struct {
	Style      string
	CenterLat  float64
	CenterLon  float64
	Zoom       float64
	Width      int
	Height     int
	ColorScale string
}

// DefaultMapStyle centres the Marshall Islands on an OpenStreetMap base.
func DefaultMapStyle() MapStyle {
	return MapStyle{
		Style:      "open-street-map",
		CenterLat:  7,
		CenterLon:  171,
		Zoom:       4,
		Width:      800,
		Height:     600,
		ColorScale: "YlOrRd",
	}
}

func (s MapStyle) layout() Layout {
	return Layout{
		Mapbox: Mapbox{
			Style:  s.Style,
			Center: LatLon{Lat: s.CenterLat, Lon: s.CenterLon},
			Zoom:   s.Zoom,
		},
		Width:  s.Width,
		Height: s.Height,
	}
}

// MapQuery is the state of the three sidebar controls.
type MapQuery struct {
	Field      string
	ShowAtolls bool
	Atolls     []string
}

// RenderMap draws either the administrative or the atoll layer, never both,
// coloured by q.Field and restricted to q.Atolls when any are selected.
func RenderMap(ds *boundary.Dataset, q MapQuery, style MapStyle) (*Figure, error) {
	table := ds.Admin
	if q.ShowAtolls {
		table = ds.Atolls
	}
	table = table.Filter(q.Atolls)

	if !table.HasField(q.Field) {
		return nil, eris.Wrapf(ErrUnknownField, "dashboard: %q not in %s table", q.Field, table.Name())
	}

	fig := &Figure{Layout: style.layout()}
	if !q.ShowAtolls {
		fig.Data = append(fig.Data, &ScatterMapbox{
			Type:      "scattermapbox",
			Lat:       []float64{},
			Lon:       []float64{},
			Mode:      "markers",
			Marker:    Marker{Size: 1},
			HoverInfo: "none",
		})
	}
	fig.Data = append(fig.Data, choropleth(table, q.Field, ds.IDField, style.ColorScale))

	return fig, nil
}

func choropleth(table *boundary.Table, field, idField, colorScale string) *ChoroplethMapbox {
	records := table.Records()
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(records))}
	locations := make([]string, 0, len(records))
	z := make([]any, 0, len(records))
	text := make([]string, 0, len(records))

	for _, r := range records {
		id := strconv.Itoa(r.Index)
		if r.Geometry != nil {
			fc.Features = append(fc.Features, &geojson.Feature{
				ID:         id,
				Geometry:   r.Geometry,
				Properties: r.Attrs,
			})
		}
		v, _ := r.Value(field)
		locations = append(locations, id)
		z = append(z, v)
		text = append(text, HoverText(r, idField))
	}

	return &ChoroplethMapbox{
		Type:         "choroplethmapbox",
		GeoJSON:      fc,
		Locations:    locations,
		FeatureIDKey: "id",
		Z:            z,
		ColorScale:   colorScale,
		ColorBar: ColorBar{
			Title:     Title{Text: field},
			X:         0.93,
			Y:         0.5,
			YAnchor:   "middle",
			XAnchor:   "left",
			Thickness: 5,
			Len:       0.4,
		},
		HoverInfo: "location+z+text",
		Text:      text,
	}
}

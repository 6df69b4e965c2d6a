package dashboard

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coastmove/atoll-dashboard/internal/boundary"
)

func newTestRouter(page *Page) http.Handler {
	return newDatasetRouter(testDataset(), page)
}

func newDatasetRouter(ds *boundary.Dataset, page *Page) http.Handler {
	h := NewHandler(ds, DefaultMapStyle(), "Population", page)
	r := chi.NewRouter()
	h.Routes(r)
	return r
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Fields(t *testing.T) {
	rec := get(t, newTestRouter(nil), "/api/fields")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var opts []Option
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opts))
	require.Len(t, opts, len(demographicFields))
	assert.Equal(t, Option{Label: "Atoll", Value: "Atoll"}, opts[0])
}

func TestHandler_Atolls(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"default is admin layer", "", []string{"Majuro", "Ebeye"}},
		{"admin layer", "?show_atolls=false", []string{"Majuro", "Ebeye"}},
		{"atoll layer", "?show_atolls=true", []string{"Majuro", "Jaluit", "Arno"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newTestRouter(nil), "/api/atolls"+tt.query)
			require.Equal(t, http.StatusOK, rec.Code)

			var opts []Option
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opts))
			var got []string
			for _, o := range opts {
				got = append(got, o.Value)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandler_AtollsBadFlag(t *testing.T) {
	rec := get(t, newTestRouter(nil), "/api/atolls?show_atolls=maybe")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid show_atolls value"}`, rec.Body.String())
}

type figureDoc struct {
	Data []struct {
		Type      string   `json:"type"`
		Locations []string `json:"locations"`
		Z         []any    `json:"z"`
	} `json:"data"`
	Layout struct {
		Mapbox struct {
			Style string `json:"style"`
		} `json:"mapbox"`
	} `json:"layout"`
}

func TestHandler_Figure(t *testing.T) {
	rec := get(t, newTestRouter(nil), "/api/figure?field=Population&show_atolls=true&atoll=Majuro")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc figureDoc
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Len(t, doc.Data, 1)
	assert.Equal(t, "choroplethmapbox", doc.Data[0].Type)
	assert.Equal(t, []string{"0"}, doc.Data[0].Locations)
	assert.Equal(t, "open-street-map", doc.Layout.Mapbox.Style)
}

func TestHandler_FigureDefaults(t *testing.T) {
	rec := get(t, newTestRouter(nil), "/api/figure")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc figureDoc
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Len(t, doc.Data, 2)
	assert.Equal(t, "scattermapbox", doc.Data[0].Type)
	assert.Equal(t, "choroplethmapbox", doc.Data[1].Type)
	assert.Equal(t, []any{27797.0, 9614.0, 1200.0, 0.0}, doc.Data[1].Z)
}

func TestHandler_FigureMultipleAtolls(t *testing.T) {
	rec := get(t, newTestRouter(nil), "/api/figure?field=ID&atoll=Majuro&atoll=Ebeye&atoll=%20")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc figureDoc
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, []string{"0", "1", "2"}, doc.Data[1].Locations)
}

func TestHandler_FigureUnknownField(t *testing.T) {
	rec := get(t, newTestRouter(nil), "/api/figure?field=Rainfall")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"error":"unknown field: Rainfall"}`, rec.Body.String())
}

func TestHandler_FigureBadFlag(t *testing.T) {
	rec := get(t, newTestRouter(nil), "/api/figure?show_atolls=yes")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Index(t *testing.T) {
	page := &Page{Title: "Atoll Dashboard", Fields: FieldOptions(testDataset()), DefaultField: "Population"}

	rec := get(t, newTestRouter(page), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<h1>Atoll Dashboard</h1>")
}

func TestHandler_IndexWithoutPage(t *testing.T) {
	rec := get(t, newTestRouter(nil), "/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_FigureUnencodableValue(t *testing.T) {
	ds := testDataset()
	ds.Admin.Records()[1].Attrs["Income"] = math.NaN()

	rec := get(t, newDatasetRouter(ds, nil), "/api/figure?field=Population")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"encode response failed"}`, rec.Body.String())
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusCreated, map[string]int{"n": 1})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"n":1}`, rec.Body.String())

	rec = httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, []float64{math.Inf(1)})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

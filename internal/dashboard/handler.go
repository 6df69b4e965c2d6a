package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/coastmove/atoll-dashboard/internal/boundary"
)

const tracerName = "github.com/coastmove/atoll-dashboard/internal/dashboard"

// Handler serves the dashboard page and the two reactive endpoints.
type Handler struct {
	data         *boundary.Dataset
	style        MapStyle
	defaultField string
	page         *Page
}

// NewHandler creates a Handler over an already-loaded dataset.
func NewHandler(data *boundary.Dataset, style MapStyle, defaultField string, page *Page) *Handler {
	return &Handler{
		data:         data,
		style:        style,
		defaultField: defaultField,
		page:         page,
	}
}

// Routes mounts the page and API endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Index)
	r.Route("/api", func(r chi.Router) {
		r.Get("/fields", h.Fields)
		r.Get("/atolls", h.Atolls)
		r.Get("/figure", h.Figure)
	})
}

// Index renders the HTML page.
func (h *Handler) Index(w http.ResponseWriter, _ *http.Request) {
	if h.page == nil {
		http.Error(w, "page not configured", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.page.Render(w); err != nil {
		zap.L().Error("dashboard: page render failed", zap.Error(err))
		http.Error(w, "page render failed", http.StatusInternalServerError)
	}
}

// Fields handles GET /api/fields.
func (h *Handler) Fields(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, FieldOptions(h.data))
}

// Atolls handles GET /api/atolls?show_atolls=bool.
func (h *Handler) Atolls(w http.ResponseWriter, r *http.Request) {
	show, err := parseBool(r.URL.Query().Get("show_atolls"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid show_atolls value")
		return
	}

	_, span := otel.Tracer(tracerName).Start(r.Context(), "dashboard.atoll_options")
	defer span.End()

	opts := AtollOptions(h.data, show)
	span.SetAttributes(
		attribute.Bool("show_atolls", show),
		attribute.Int("options", len(opts)),
	)
	writeJSON(w, http.StatusOK, opts)
}

// Figure handles GET /api/figure?field=&show_atolls=&atoll=...
func (h *Handler) Figure(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseMapQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, span := otel.Tracer(tracerName).Start(r.Context(), "dashboard.render_map")
	defer span.End()
	span.SetAttributes(
		attribute.String("field", q.Field),
		attribute.Bool("show_atolls", q.ShowAtolls),
		attribute.StringSlice("atolls", q.Atolls),
	)

	fig, err := RenderMap(h.data, q, h.style)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render failed")
		if errors.Is(err, ErrUnknownField) {
			writeError(w, http.StatusUnprocessableEntity, "unknown field: "+q.Field)
			return
		}
		zap.L().Error("dashboard: render failed", zap.String("field", q.Field), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}

	writeJSON(w, http.StatusOK, fig)
}

func (h *Handler) parseMapQuery(r *http.Request) (MapQuery, error) {
	values := r.URL.Query()

	show, err := parseBool(values.Get("show_atolls"))
	if err != nil {
		return MapQuery{}, eris.New("invalid show_atolls value")
	}

	field := strings.TrimSpace(values.Get("field"))
	if field == "" {
		field = h.defaultField
	}

	var atolls []string
	for _, a := range values["atoll"] {
		if a = strings.TrimSpace(a); a != "" {
			atolls = append(atolls, a)
		}
	}

	return MapQuery{Field: field, ShowAtolls: show, Atolls: atolls}, nil
}

func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

// writeJSON encodes v before committing the status so that an encoding
// failure still reaches the client as a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		zap.L().Error("dashboard: encode response", zap.Error(err))
		status = http.StatusInternalServerError
		body = []byte(`{"error":"encode response failed"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		zap.L().Debug("dashboard: write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

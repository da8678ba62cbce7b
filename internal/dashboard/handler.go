package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/mikey/email-triage-dashboard/internal/core"
	"github.com/mikey/email-triage-dashboard/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Service is the slice of the classification service the dashboard drives
type Service interface {
	Submit(ctx context.Context, subject, body string) (*core.EmailRecord, int, error)
	Records(ctx context.Context) ([]core.EmailRecord, error)
	Record(ctx context.Context, position int) (*core.EmailRecord, error)
	ModelName() string
}

// Handler serves the dashboard page and its JSON API
type Handler struct {
	service        Service
	logger         *zap.Logger
	renderer       *renderer
	maxBodyBytes   int64
	requestTimeout time.Duration
}

// NewHandler creates a new dashboard handler
func NewHandler(service Service, logger *zap.Logger, maxBodyBytes int64, requestTimeout time.Duration) (*Handler, error) {
	r, err := newRenderer()
	if err != nil {
		return nil, err
	}
	return &Handler{
		service:        service,
		logger:         logger,
		renderer:       r,
		maxBodyBytes:   maxBodyBytes,
		requestTimeout: requestTimeout,
	}, nil
}

// Router builds the route table
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.instrument)

	r.HandleFunc("/", h.handleDashboard).Methods(http.MethodGet)
	r.HandleFunc("/emails", h.handleFormSubmit).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/emails", h.handleListEmails).Methods(http.MethodGet)
	api.HandleFunc("/emails", h.handleCreateEmail).Methods(http.MethodPost)
	api.HandleFunc("/emails/{position:[0-9]+}", h.handleGetEmail).Methods(http.MethodGet)

	r.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// instrument records latency per route template and bounds request time
func (h *Handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		if h.requestTimeout > 0 {
			ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
			defer cancel()
			r = r.WithContext(ctx)
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}
		metrics.RecordHTTPRequestDuration(r.Method, path, strconv.Itoa(rec.status), time.Since(start))

		h.logger.Debug("Handled request",
			zap.String("method", r.Method),
			zap.String("path", path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := FilterFromQuery(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	selected := -1
	if raw := q.Get("selected"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			selected = n
		}
	}

	h.renderPage(w, r, http.StatusOK, filter, selected, "")
}

func (h *Handler) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	filter, err := FilterFromQuery(r.PostForm)
	if err != nil {
		filter = DefaultFilter()
	}

	// Inputs are not echoed back, so the form is cleared after every submit
	_, _, err = h.service.Submit(r.Context(), r.PostForm.Get("subject"), r.PostForm.Get("body"))
	switch {
	case err == nil:
		http.Redirect(w, r, "/?"+filter.Query().Encode(), http.StatusSeeOther)
	case errors.Is(err, core.ErrMissingSubjectOrBody):
		h.renderPage(w, r, http.StatusBadRequest, filter, -1, WarningIncomplete)
	default:
		h.logger.Error("Failed to classify email", zap.Error(err))
		h.renderPage(w, r, http.StatusInternalServerError, filter, -1, "Classification failed, please try again")
	}
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, filter Filter, selected int, warning string) {
	records, err := h.service.Records(r.Context())
	if err != nil {
		h.logger.Error("Failed to list email records", zap.Error(err))
		http.Error(w, "failed to load emails", http.StatusInternalServerError)
		return
	}

	page := newPageData(h.service.ModelName(), filter, records, selected)
	page.Warning = warning

	var buf bytes.Buffer
	if err := h.renderer.render(&buf, page); err != nil {
		h.logger.Error("Failed to render dashboard", zap.Error(err))
		http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type listResponse struct {
	Filter Filter `json:"filter"`
	Total  int    `json:"total"`
	Emails []Row  `json:"emails"`
}

type emailResponse struct {
	Position int              `json:"position"`
	Email    core.EmailRecord `json:"email"`
	Tags     []Tag            `json:"tags"`
}

type submitRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) handleListEmails(w http.ResponseWriter, r *http.Request) {
	filter, err := FilterFromQuery(r.URL.Query())
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	records, err := h.service.Records(r.Context())
	if err != nil {
		h.logger.Error("Failed to list email records", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load emails"})
		return
	}

	h.writeJSON(w, http.StatusOK, listResponse{
		Filter: filter,
		Total:  len(records),
		Emails: filter.Apply(records),
	})
}

func (h *Handler) handleCreateEmail(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	record, position, err := h.service.Submit(r.Context(), req.Subject, req.Body)
	if err != nil {
		if errors.Is(err, core.ErrMissingSubjectOrBody) {
			h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: WarningIncomplete})
			return
		}
		h.logger.Error("Failed to classify email", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "classification failed"})
		return
	}

	w.Header().Set("Location", "/api/emails/"+strconv.Itoa(position))
	h.writeJSON(w, http.StatusCreated, emailResponse{
		Position: position,
		Email:    *record,
		Tags:     Tags(*record),
	})
}

func (h *Handler) handleGetEmail(w http.ResponseWriter, r *http.Request) {
	position, err := strconv.Atoi(mux.Vars(r)["position"])
	if err != nil {
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: core.ErrRecordNotFound.Error()})
		return
	}

	record, err := h.service.Record(r.Context(), position)
	if err != nil {
		if errors.Is(err, core.ErrRecordNotFound) {
			h.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
			return
		}
		h.logger.Error("Failed to load email record", zap.Error(err), zap.Int("position", position))
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load email"})
		return
	}

	h.writeJSON(w, http.StatusOK, emailResponse{
		Position: position,
		Email:    *record,
		Tags:     Tags(*record),
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"model":  h.service.ModelName(),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("Failed to encode JSON response", zap.Error(err))
	}
}

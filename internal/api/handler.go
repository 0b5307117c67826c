// Package api implements the HTTP surface of the curation service.
//
// Routes:
//
//	GET  /health                  → liveness
//	GET  /directory               → all canonical galleries, best quality first
//	GET  /directory/{galleryId}   → one gallery
//	POST /directory/merge         → canonicalize and upsert raw portal records (?portal= tags untagged ones)
//	POST /validations/lookup      → validation state for a set of listing ids
//	POST /jobs/enrichment/run     → run one enrichment batch now
//	POST /jobs/validation/run     → run one validation pass now
//	GET  /jobs/{job}/last         → event of the most recent run of a job
//	GET  /metrics                 → Prometheus exposition
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"artfair/curation-service/internal/curation"
	"artfair/curation-service/internal/enrichment"
	"artfair/curation-service/internal/jobs"
	"artfair/curation-service/internal/model"
	"artfair/curation-service/internal/validation"
)

const (
	serviceName = "curation-service"
	version     = "1.0.0"

	jobSecretHeader = "X-Job-Secret"
	maxBodyBytes    = 8 << 20
)

// Service is the read and merge surface. *curation.Service satisfies it.
type Service interface {
	ListGalleries(ctx context.Context) ([]model.CanonicalGallery, error)
	GetGallery(ctx context.Context, galleryID string) (*model.CanonicalGallery, error)
	Merge(ctx context.Context, sourcePortal string, raw []model.RawDirectoryRecord) (curation.MergeResult, error)
	ValidationMap(ctx context.Context, ids []string) (map[string]curation.ValidationView, error)
}

// Jobs triggers background jobs on demand. *jobs.Runner satisfies it.
type Jobs interface {
	RunEnrichment(ctx context.Context) (enrichment.Summary, error)
	RunValidation(ctx context.Context) (validation.RunSummary, error)
	LastRun(job string) (jobs.Event, bool)
}

// Handler holds shared dependencies.
type Handler struct {
	service   Service
	jobs      Jobs
	gatherer  prometheus.Gatherer
	jobSecret string
	logger    *slog.Logger
}

// New returns a configured Handler. An empty jobSecret leaves the job
// routes open.
func New(service Service, jobs Jobs, gatherer prometheus.Gatherer, jobSecret string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service:   service,
		jobs:      jobs,
		gatherer:  gatherer,
		jobSecret: jobSecret,
		logger:    logger.With("component", "api"),
	}
}

// Router returns a chi router with every route mounted.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	h.Register(r)
	return r
}

// Register mounts the curation routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.handleHealth)
	r.Get("/directory", h.handleListGalleries)
	r.Get("/directory/{galleryId}", h.handleGetGallery)
	r.Post("/directory/merge", h.handleMerge)
	r.Post("/validations/lookup", h.handleValidationLookup)

	r.Group(func(r chi.Router) {
		r.Use(h.requireJobSecret)
		r.Post("/jobs/enrichment/run", h.handleRunEnrichment)
		r.Post("/jobs/validation/run", h.handleRunValidation)
	})
	r.Get("/jobs/{job}/last", h.handleLastRun)

	if h.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}
}

// ─── Handlers ────────────────────────────────────────────────────────────────

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	jsonOK(w, map[string]string{"status": "ok", "service": serviceName, "version": version})
}

func (h *Handler) handleListGalleries(w http.ResponseWriter, r *http.Request) {
	galleries, err := h.service.ListGalleries(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "list galleries", err)
		return
	}
	jsonOK(w, galleries)
}

func (h *Handler) handleGetGallery(w http.ResponseWriter, r *http.Request) {
	g, err := h.service.GetGallery(r.Context(), chi.URLParam(r, "galleryId"))
	if err != nil {
		h.writeServiceError(w, r, "get gallery", err)
		return
	}
	jsonOK(w, g)
}

func (h *Handler) handleMerge(w http.ResponseWriter, r *http.Request) {
	var raw []model.RawDirectoryRecord
	if !decodeBody(w, r, &raw) {
		return
	}
	res, err := h.service.Merge(r.Context(), r.URL.Query().Get("portal"), raw)
	if err != nil {
		h.writeServiceError(w, r, "merge", err)
		return
	}
	jsonOK(w, res)
}

type lookupRequest struct {
	IDs []string `json:"ids"`
}

func (h *Handler) handleValidationLookup(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	if !decodeBody(w, r, &req) {
		return
	}
	m, err := h.service.ValidationMap(r.Context(), req.IDs)
	if err != nil {
		h.writeServiceError(w, r, "validation lookup", err)
		return
	}
	jsonOK(w, m)
}

func (h *Handler) handleRunEnrichment(w http.ResponseWriter, r *http.Request) {
	sum, err := h.jobs.RunEnrichment(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "run enrichment", err)
		return
	}
	jsonOK(w, sum)
}

func (h *Handler) handleRunValidation(w http.ResponseWriter, r *http.Request) {
	sum, err := h.jobs.RunValidation(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "run validation", err)
		return
	}
	jsonOK(w, sum)
}

func (h *Handler) handleLastRun(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.jobs.LastRun(chi.URLParam(r, "job"))
	if !ok {
		jsonError(w, "not found", http.StatusNotFound)
		return
	}
	jsonOK(w, ev)
}

// ─── Middleware ──────────────────────────────────────────────────────────────

func (h *Handler) requireJobSecret(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.jobSecret != "" {
			got := r.Header.Get(jobSecretHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(h.jobSecret)) != 1 {
				jsonError(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var ve *curation.ValidationError
	switch {
	case errors.Is(err, curation.ErrNotFound):
		jsonError(w, "not found", http.StatusNotFound)
	case errors.As(err, &ve):
		jsonError(w, ve.Msg, http.StatusBadRequest)
	default:
		h.logger.ErrorContext(r.Context(), op+" failed",
			"request_id", middleware.GetReqID(r.Context()), "err", err)
		jsonError(w, "internal server error", http.StatusInternalServerError)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

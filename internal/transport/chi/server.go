package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchsync/internal/db"
	"github.com/kailas-cloud/searchsync/internal/domain"
	"github.com/kailas-cloud/searchsync/internal/domain/search/request"
	"github.com/kailas-cloud/searchsync/internal/metrics"
	healthuc "github.com/kailas-cloud/searchsync/internal/usecase/health"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API.
type Server struct {
	search        Searcher
	sync          Synchronizer
	records       RecordStore
	admin         Administrator
	health        *healthuc.Service
	registry      Registry
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search Searcher,
	sync Synchronizer,
	records RecordStore,
	admin Administrator,
	health *healthuc.Service,
	registry Registry,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search:   search,
		sync:     sync,
		records:  records,
		admin:    admin,
		health:   health,
		registry: registry,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUnknownType, http.StatusNotFound, codeUnknownType),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(db.ErrIndexNotFound, http.StatusNotFound, codeIndexNotFound),
		sentinelHandler(domain.ErrInvalidRecord, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidFieldSpec, http.StatusBadRequest, codeValidationFailed),
		typedHandler[*domain.LookupError](http.StatusBadGateway, codeLookupFailed),
		typedHandler[*domain.BulkSubmissionError](http.StatusBadGateway, codeBulkFailed),
	}
	return s
}

// Router builds the chi router with the standard middleware chain.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(APIKeyAuth(apiKeys))
	r.Use(metrics.Middleware())

	r.Post("/search", s.Search)
	r.Post("/sync", s.SyncAll)
	r.Post("/sync/{type}", s.SyncType)
	r.Get("/records/{type}/{id}", s.GetRecord)
	r.Put("/records/{type}/{id}", s.PutRecord)
	r.Delete("/records/{type}/{id}", s.DeleteRecord)
	r.Put("/mappings", s.PutMappings)
	r.Put("/mappings/{type}", s.PutMapping)
	r.Post("/indexes/{index}/refresh", s.RefreshIndex)
	r.Post("/indexes/{index}/flush", s.FlushIndex)
	r.Post("/indexes/{index}/truncate", s.TruncateIndex)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeBadRequest, "method not allowed")
	})
	return r
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	recs, err := s.search.Search(r.Context(), request.Options{
		Index: req.Index,
		Types: req.Types,
		From:  req.From,
		Size:  req.Size,
		Info:  req.Info,
	}, req.Query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]RecordResponse, len(recs))
	for i, rec := range recs {
		items[i] = recordToResponse(rec)
	}
	writeJSON(w, http.StatusOK, SearchResponse{Items: items})
}

// SyncAll handles POST /sync. A started synchronization runs to completion even if
// the client goes away.
func (s *Server) SyncAll(w http.ResponseWriter, r *http.Request) {
	results, err := s.sync.SynchronizeAll(context.WithoutCancel(r.Context()))

	resp := SyncResponse{Results: make([]SyncResult, len(results))}
	for i, res := range results {
		resp.Results[i] = syncResultToResponse(res)
	}
	if err != nil {
		s.logger.Error("synchronization failed", zap.Error(err))
		resp.Error = err.Error()
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// SyncType handles POST /sync/{type}. Like SyncAll it ignores client cancellation.
func (s *Server) SyncType(w http.ResponseWriter, r *http.Request) {
	typeName := chi.URLParam(r, "type")
	if _, err := s.registry.Require(typeName); err != nil {
		s.handleDomainError(w, err)
		return
	}

	res, err := s.sync.SynchronizeType(context.WithoutCancel(r.Context()), typeName)
	resp := SyncResponse{Results: []SyncResult{syncResultToResponse(res)}}
	if err != nil {
		s.logger.Error("synchronization failed", zap.String("type", typeName), zap.Error(err))
		resp.Error = err.Error()
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetRecord handles GET /records/{type}/{id}.
func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request) {
	typeName, id := chi.URLParam(r, "type"), chi.URLParam(r, "id")
	if _, err := s.registry.Require(typeName); err != nil {
		s.handleDomainError(w, err)
		return
	}

	rec, err := s.records.FindOne(r.Context(), typeName, id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recordToResponse(rec))
}

// PutRecord handles PUT /records/{type}/{id}. The saved record is indexed by the store hooks.
func (s *Server) PutRecord(w http.ResponseWriter, r *http.Request) {
	typeName, id := chi.URLParam(r, "type"), chi.URLParam(r, "id")
	desc, err := s.registry.Require(typeName)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if fields == nil {
		fields = make(map[string]any)
	}
	if raw, ok := fields[desc.IdentityField()]; ok && fmt.Sprint(raw) != id {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			fmt.Sprintf("%s %q does not match the path id %q", desc.IdentityField(), fmt.Sprint(raw), id))
		return
	}
	fields[desc.IdentityField()] = id

	rec, err := desc.NewRecord(fields)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if err := s.records.Save(r.Context(), rec); err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recordToResponse(rec))
}

// DeleteRecord handles DELETE /records/{type}/{id}. The index entry is removed by the store hooks.
func (s *Server) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	typeName, id := chi.URLParam(r, "type"), chi.URLParam(r, "id")
	if _, err := s.registry.Require(typeName); err != nil {
		s.handleDomainError(w, err)
		return
	}

	if err := s.records.Remove(r.Context(), typeName, id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PutMappings handles PUT /mappings.
func (s *Server) PutMappings(w http.ResponseWriter, r *http.Request) {
	if err := s.admin.PutMappings(r.Context()); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PutMapping handles PUT /mappings/{type}.
func (s *Server) PutMapping(w http.ResponseWriter, r *http.Request) {
	if err := s.admin.PutMapping(r.Context(), chi.URLParam(r, "type")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RefreshIndex handles POST /indexes/{index}/refresh.
func (s *Server) RefreshIndex(w http.ResponseWriter, r *http.Request) {
	s.indexOp(w, r, s.admin.Refresh)
}

// FlushIndex handles POST /indexes/{index}/flush.
func (s *Server) FlushIndex(w http.ResponseWriter, r *http.Request) {
	s.indexOp(w, r, s.admin.Flush)
}

// TruncateIndex handles POST /indexes/{index}/truncate.
func (s *Server) TruncateIndex(w http.ResponseWriter, r *http.Request) {
	s.indexOp(w, r, s.admin.Truncate)
}

func (s *Server) indexOp(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, index string) error) {
	if err := op(r.Context(), chi.URLParam(r, "index")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string)
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrUnknownType,
		domain.ErrNotFound,
		db.ErrIndexNotFound,
		domain.ErrInvalidRecord,
		domain.ErrInvalidQuery,
		domain.ErrInvalidFieldSpec,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	var lerr *domain.LookupError
	if errors.As(err, &lerr) {
		return fmt.Sprintf("lookup of %s/%s failed", lerr.Type, lerr.ID)
	}
	var berr *domain.BulkSubmissionError
	if errors.As(err, &berr) {
		return fmt.Sprintf("bulk submission of %d items failed", berr.Items)
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// typedHandler returns an errorHandler that matches an error type anywhere in the chain.
func typedHandler[E error](status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		var target E
		if !errors.As(err, &target) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

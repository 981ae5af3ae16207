// Package httpapi serves the assistant over HTTP for the web front end.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "product-assistant/internal/common/errors"
	"product-assistant/internal/common/logger"
	"product-assistant/internal/common/metrics"
	"product-assistant/internal/models"
	productassistant "product-assistant/internal/workers/assistant/product-assistant"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const requestIDHeader = "X-Request-ID"

// Assistant runs one conversation through the pipeline.
type Assistant interface {
	Run(ctx context.Context, query string) (*productassistant.Reply, error)
}

// Pinger reports whether the catalog backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	assistant Assistant
	catalog   Pinger
	logger    logger.Logger
}

func New(assistant Assistant, catalog Pinger, log logger.Logger) *Server {
	return &Server{
		assistant: assistant,
		catalog:   catalog,
		logger:    log.WithFields(map[string]interface{}{"component": "httpapi"}),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/search", s.handleSearch)

	return r
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	log := s.logger.WithFields(map[string]interface{}{"requestId": w.Header().Get(requestIDHeader)})

	var req models.SearchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := s.assistant.Run(r.Context(), req.Query)
	if err != nil {
		stdErr := apperrors.AsStandardError(err)
		log.Error("search request failed", map[string]interface{}{
			"code":  string(stdErr.Code),
			"error": err,
		})
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Info("search request served", map[string]interface{}{
		"state":   string(reply.State),
		"results": len(reply.Results),
	})
	respondJSON(w, http.StatusOK, models.SearchResponse{
		Results: reply.Results,
		Message: reply.Message,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if s.catalog != nil {
		if err := s.catalog.Ping(ctx); err != nil {
			s.logger.Warn("catalog not ready", map[string]interface{}{"error": err})
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// requestID keeps an incoming X-Request-ID or mints one, and echoes it back.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out interface{}) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, models.ErrorResponse{Error: message})
}

package delivery

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/example/order-fulfillment/internal/api/middleware"
	"github.com/example/order-fulfillment/internal/apperr"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const (
	Route = "/api/DeliveryOrderProcessor"

	FunctionsKeyHeader = "x-functions-key"

	SavedMessage = "Order data successfully saved"

	maxBodyBytes = 1 << 20
)

// Handler serves the delivery order ingestion endpoint.
type Handler struct {
	processor *Processor
}

func NewHandler(processor *Processor) *Handler {
	return &Handler{processor: processor}
}

// NewRouter mounts the ingestion endpoint behind the functions key check.
func NewRouter(h *Handler, functionsKey string, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.With(middleware.FunctionKey(FunctionsKeyHeader, functionsKey)).Post(Route, h.Ingest)
	return r
}

func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	status, message := h.processor.Respond(r.Context(), body)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, message)
}

// Respond runs Ingest and maps the outcome to a status code and message.
// The HTTP and Lambda entry points both answer through it.
func (p *Processor) Respond(ctx context.Context, body []byte) (int, string) {
	if _, err := p.Ingest(ctx, body); err != nil {
		if errors.Is(err, apperr.ErrMalformedInput) {
			return http.StatusBadRequest, err.Error()
		}
		return http.StatusInternalServerError, "failed to save order data"
	}
	return http.StatusOK, SavedMessage
}

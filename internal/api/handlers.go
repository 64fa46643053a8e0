package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/example/order-fulfillment/internal/api/middleware"
	"github.com/example/order-fulfillment/internal/apperr"
	"github.com/example/order-fulfillment/internal/command"
	"github.com/example/order-fulfillment/internal/domain/order"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type CheckoutHandler interface {
	Checkout(ctx context.Context, cmd command.Checkout) (*order.Order, error)
}

type Handlers struct {
	cmdHandler CheckoutHandler
	logger     zerolog.Logger
}

func NewHandlers(cmdHandler CheckoutHandler, logger zerolog.Logger) *Handlers {
	return &Handlers{
		cmdHandler: cmdHandler,
		logger:     logger,
	}
}

type checkoutRequest struct {
	ShipToAddress *order.Address `json:"shipToAddress"`
}

type orderResponse struct {
	ID            int               `json:"id"`
	BuyerID       string            `json:"buyerId"`
	OrderDate     time.Time         `json:"orderDate"`
	ShipToAddress order.Address     `json:"shipToAddress"`
	OrderItems    []order.OrderItem `json:"orderItems"`
	Total         decimal.Decimal   `json:"total"`
}

func newOrderResponse(o *order.Order) orderResponse {
	return orderResponse{
		ID:            o.ID,
		BuyerID:       o.BuyerID,
		OrderDate:     o.OrderDate,
		ShipToAddress: o.ShipToAddress,
		OrderItems:    o.Items(),
		Total:         o.Total(),
	}
}

// Checkout Handlers

func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	basketID, err := strconv.Atoi(chi.URLParam(r, "basketID"))
	if err != nil || basketID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid basket id")
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ShipToAddress == nil {
		respondError(w, http.StatusBadRequest, "shipToAddress is required")
		return
	}

	buyerID := middleware.GetBuyerID(r.Context())
	if buyerID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	o, err := h.cmdHandler.Checkout(r.Context(), command.Checkout{
		BasketID:      basketID,
		BuyerID:       buyerID,
		ShipToAddress: *req.ShipToAddress,
	})
	if err != nil {
		var dispatchErr *command.DispatchError
		if errors.As(err, &dispatchErr) {
			respondJSON(w, http.StatusBadGateway, map[string]any{
				"error":   "order created but could not be dispatched",
				"orderId": dispatchErr.OrderID,
			})
			return
		}

		status := apperr.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error().Err(err).Int("basket_id", basketID).Msg("checkout failed")
			respondError(w, status, http.StatusText(status))
			return
		}
		respondError(w, status, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, newOrderResponse(o))
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

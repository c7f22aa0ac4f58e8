// Package http exposes the order creation API of the cart service.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shopatlas/orderflow/internal/cart/application"
	"github.com/shopatlas/orderflow/internal/cart/domain"
)

type Handler struct {
	log *slog.Logger
	svc *application.Service
}

func NewHandler(log *slog.Logger, svc *application.Service) *Handler {
	return &Handler{log: log, svc: svc}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/create-order", h.createOrder)
	r.Get("/health", h.health)
	r.Get("/", h.root)
	return r
}

type createOrderReq struct {
	OrderID       string `json:"orderId"`
	NumberOfItems int    `json:"numberOfItems"`
}

type createOrderResp struct {
	domain.Order
	EventPublished bool `json:"eventPublished"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OrderID == "" {
		writeError(w, http.StatusBadRequest, "orderId is required")
		return
	}
	if req.NumberOfItems < 1 {
		writeError(w, http.StatusBadRequest, "numberOfItems must be greater than or equal to 1")
		return
	}

	res, err := h.svc.CreateOrder(r.Context(), req.OrderID, req.NumberOfItems)
	if err != nil {
		if errors.Is(err, application.ErrOrderExists) {
			writeError(w, http.StatusConflict, "Order with ID '"+req.OrderID+"' already exists")
			return
		}
		h.log.Error("create order failed", "order_id", req.OrderID, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, createOrderResp{
		Order:          res.Order,
		EventPublished: res.EventPublished,
	})
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "Cart Service",
	})
}

func (h *Handler) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the Cart Service",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

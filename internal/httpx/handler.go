// Package httpx exposes the order core over HTTP.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mincheol-dev/sneakershop/internal/httpx/middlewares"
	"github.com/mincheol-dev/sneakershop/internal/inventory"
	"github.com/mincheol-dev/sneakershop/internal/order/domain"
	"github.com/mincheol-dev/sneakershop/internal/order/eventlog"
	"github.com/mincheol-dev/sneakershop/internal/order/lifecycle"
	"github.com/mincheol-dev/sneakershop/internal/order/store"
	"github.com/mincheol-dev/sneakershop/internal/payment"
	"github.com/mincheol-dev/sneakershop/internal/storage"
)

// OrderService is the slice of the lifecycle manager the handler consumes.
type OrderService interface {
	CreateOrder(ctx context.Context, userID string, req lifecycle.CreateOrderRequest) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, to domain.Status) (*domain.Order, error)
	ForceCancelAndDelete(ctx context.Context, orderID string) error
	ListUserOrders(ctx context.Context, userID string) ([]*domain.Order, error)
	ListAllOrders(ctx context.Context) ([]*domain.Order, error)
	OrderHistory(ctx context.Context, orderID string) ([]*eventlog.Entry, error)
}

type Handler struct {
	orders OrderService
	log    *slog.Logger
}

func NewHandler(orders OrderService, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{orders: orders, log: log}
}

// CreateOrder handles POST /orders.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := middlewares.IdentityFromContext(r.Context())

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.PaymentID == "" || len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "paymentId and items are required")
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), id.UserID, lifecycle.CreateOrderRequest{
		Lines:           toDomainLines(req.Items),
		TotalPrice:      req.TotalPrice,
		ShippingFee:     req.ShippingFee,
		ShippingAddress: toDomainAddress(req.ShippingAddress),
		PaymentRef:      req.PaymentID,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{Success: true, Order: mapOrderToResponse(order)})
}

// ListMyOrders handles GET /orders/my.
func (h *Handler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	id, _ := middlewares.IdentityFromContext(r.Context())

	orders, err := h.orders.ListUserOrders(r.Context(), id.UserID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Orders: mapOrdersToResponse(orders)})
}

// ListAllOrders handles GET /orders/admin/all.
func (h *Handler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAllOrders(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Orders: mapOrdersToResponse(orders)})
}

// UpdateStatus handles PATCH /orders/{orderID}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown status "+req.Status)
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), orderID, status)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: "order status changed to " + string(status),
		Order:   mapOrderToResponse(order),
	})
}

// DeleteOrder handles DELETE /orders/{orderID}: force cancel plus hard delete.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	if err := h.orders.ForceCancelAndDelete(r.Context(), orderID); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "order deleted and stock restored"})
}

// OrderHistory handles GET /orders/{orderID}/events (admin).
func (h *Handler) OrderHistory(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	entries, err := h.orders.OrderHistory(r.Context(), orderID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	type eventDTO struct {
		Kind      string `json:"kind"`
		Detail    string `json:"detail"`
		TraceID   string `json:"traceId,omitempty"`
		CreatedAt string `json:"createdAt"`
	}
	out := make([]eventDTO, len(entries))
	for i, e := range entries {
		out[i] = eventDTO{
			Kind:      string(e.Kind),
			Detail:    e.Detail,
			TraceID:   e.TraceID,
			CreatedAt: e.CreatedAt.Format(time.RFC3339Nano),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "events": out})
}

// writeDomainError maps the error taxonomy onto HTTP statuses. Business-rule
// failures are 400 and must not be retried; a transaction conflict is 409 and
// safe to retry because no partial state survived.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var insufficient *inventory.InsufficientError

	switch {
	case errors.Is(err, payment.ErrMismatch),
		errors.Is(err, payment.ErrLookup),
		errors.Is(err, store.ErrDuplicatePayment),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrNoLines),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrPaymentRefMissing):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &insufficient):
		writeError(w, http.StatusBadRequest, insufficient.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusBadRequest, "order not found")
	case errors.Is(err, storage.ErrTxConflict):
		writeError(w, http.StatusConflict, "concurrent update, retry the request")
	default:
		h.log.ErrorContext(r.Context(), "internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Message: msg})
}

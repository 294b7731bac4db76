package http

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dejobratic/shoporders/internal/orders/app"
	"github.com/dejobratic/shoporders/internal/orders/app/commands"
	"github.com/dejobratic/shoporders/internal/orders/app/queries"
	"github.com/dejobratic/shoporders/internal/orders/domain"
	"github.com/dejobratic/shoporders/internal/orders/ports"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	replayedHeader       = "Idempotent-Replayed"
	maxBodyBytes         = 1 << 20
)

// Handler exposes HTTP endpoints for order operations.
type Handler struct {
	service *app.Service
	logger  *slog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(service *app.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Register binds the order routes under /v1/orders.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1/orders", func(r chi.Router) {
		r.Post("/", h.createOrder)
		r.Get("/", h.listOrders)
		r.Get("/customer/{email}", h.findOrdersByEmail)
		r.Get("/{id}", h.getOrder)
		r.Put("/{id}/status", h.updateStatus)
		r.Delete("/{id}", h.cancelOrder)
		r.Post("/{id}/cancel", h.cancelOrder)
	})
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "request body could not be read", nil)
		return
	}

	idemKey := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))
	fingerprint := fingerprintOf(body)
	if idemKey != "" {
		stored, err := h.service.GetIdempotentResponse(ctx, idemKey)
		if err != nil {
			writeServiceError(ctx, w, h.logger, err)
			return
		}
		if stored != nil {
			if stored.Fingerprint != "" && stored.Fingerprint != fingerprint {
				writeError(w, http.StatusUnprocessableEntity, "Idempotency-Key was already used with a different request body", nil)
				return
			}
			replay(w, stored)
			return
		}
	}

	var req createOrderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload", nil)
		return
	}

	order, err := h.service.CreateOrder(ctx, app.CreateOrderInput{
		Customer: req.customer(),
		Items:    req.lineItems(),
	})
	if err != nil && !errors.Is(err, app.ErrEventPublish) {
		writeServiceError(ctx, w, h.logger, err)
		return
	}

	encoded, err := json.Marshal(envelope{
		Success: true,
		Message: "order created",
		Data: createdOrderResponse{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber(),
			Summary:     toSummaryResponse(h.service.Summarize(*order)),
		},
	})
	if err != nil {
		writeServiceError(ctx, w, h.logger, err)
		return
	}

	if idemKey != "" {
		stored := ports.StoredResponse{
			StatusCode:  http.StatusCreated,
			Body:        encoded,
			OrderID:     order.ID,
			Fingerprint: fingerprint,
		}
		// The order exists at this point; a lost key only costs replay on retry.
		if err := h.service.SaveIdempotentResponse(ctx, idemKey, stored); err != nil {
			h.logger.WarnContext(ctx, "failed to store idempotent response", "order_id", order.ID, "error", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Location", "/v1/orders/"+order.ID)
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(encoded)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	page, err := parsePositive(params.Get("page"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", map[string]string{"page": "page must be a positive integer"})
		return
	}
	limit, err := parsePositive(params.Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", map[string]string{"limit": "limit must be a positive integer"})
		return
	}

	result, err := h.service.ListOrders(r.Context(), queries.ListOrdersQuery{
		Status: params.Get("status"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, err)
		return
	}

	writeData(w, http.StatusOK, "", toOrderListResponse(result))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, "", toOrderResponse(*order))
}

func (h *Handler) findOrdersByEmail(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if unescaped, err := url.PathUnescape(email); err == nil {
		email = unescaped
	}

	result, err := h.service.FindOrdersByEmail(r.Context(), email)
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, "", toCustomerOrdersResponse(result))
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload", nil)
		return
	}

	status := domain.OrderStatus(strings.TrimSpace(req.Status))
	if status == "" {
		writeError(w, http.StatusBadRequest, "validation failed", map[string]string{"status": "status is required"})
		return
	}
	if !status.IsValid() {
		writeError(w, http.StatusBadRequest, "invalid status", map[string]any{"validStatuses": validStatuses()})
		return
	}

	change, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), status)
	h.writeStatusChange(w, r, change, err, "order status updated")
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	change, err := h.service.CancelOrder(r.Context(), chi.URLParam(r, "id"))
	h.writeStatusChange(w, r, change, err, "order cancelled")
}

// writeStatusChange reports a persisted change as success even when its event was lost.
func (h *Handler) writeStatusChange(w http.ResponseWriter, r *http.Request, change *commands.StatusChange, err error, message string) {
	if err != nil && (change == nil || !errors.Is(err, app.ErrEventPublish)) {
		writeServiceError(r.Context(), w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, message, toStatusChangeResponse(change))
}

func replay(w http.ResponseWriter, stored *ports.StoredResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(replayedHeader, "true")
	if stored.OrderID != "" {
		w.Header().Set("Location", "/v1/orders/"+stored.OrderID)
	}
	w.WriteHeader(stored.StatusCode)
	_, _ = w.Write(stored.Body)
}

func fingerprintOf(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// parsePositive reads an optional positive integer; empty means zero.
func parsePositive(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.New("not a positive integer")
	}
	return n, nil
}

package submissions

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/landing-intake/internal/payments"
	"github.com/wolfman30/landing-intake/internal/redact"
)

type orderResponse struct {
	Success     bool   `json:"success"`
	OrderID     string `json:"orderId"`
	ApprovalURL string `json:"approvalUrl"`
	OrderNumber string `json:"orderNumber"`
}

// CreateOrder handles POST /api/paypal/create-order.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, KindPurchase, "Failed to create PayPal order", h.createOrder)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) int {
	var sub PurchaseSubmission
	if status, ok := h.decode(w, r, &sub); !ok {
		return status
	}
	if h.orders == nil {
		return writeError(w, http.StatusInternalServerError, "PayPal credentials not configured", "")
	}

	var order *payments.Order
	createStep := Step{
		Provider:  "paypal",
		Operation: "create_order",
		Policy:    Critical,
		Run: func(ctx context.Context) error {
			var err error
			order, err = h.orders.CreateOrder(ctx, payments.OrderRequest{
				Amount:   sub.Amount,
				Metadata: sub.Metadata(),
			})
			return err
		},
	}
	if err := h.steps.run(r.Context(), createStep); err != nil {
		return writeOrderError(w, err)
	}

	// The order exists from here on; the admin email cannot undo it.
	_ = h.steps.run(r.Context(), h.notifyAdmin(composePurchase(sub, order)))

	h.logger.Info("purchase order created",
		"order_id", order.ProviderID,
		"order_number", order.OrderNumber,
		"amount", sub.Amount.String(),
		"submitter", redact.Fingerprint(sub.FormData.Email),
	)
	return writeJSON(w, http.StatusOK, orderResponse{
		Success:     true,
		OrderID:     order.ProviderID,
		ApprovalURL: order.ApprovalURL,
		OrderNumber: order.OrderNumber,
	})
}

// GetOrder handles GET /api/paypal/orders/{orderID}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "order_lookup", "Failed to fetch PayPal order", h.getOrder)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) int {
	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
	if orderID == "" {
		return writeError(w, http.StatusBadRequest, "Order ID is required", "")
	}
	if h.orders == nil {
		return writeError(w, http.StatusInternalServerError, "PayPal credentials not configured", "")
	}

	var summary *payments.OrderSummary
	lookupStep := Step{
		Provider:  "paypal",
		Operation: "get_order",
		Policy:    Critical,
		Run: func(ctx context.Context) error {
			var err error
			summary, err = h.orders.LookupOrder(ctx, orderID)
			return err
		},
	}
	if err := h.steps.run(r.Context(), lookupStep); err != nil {
		var providerErr *payments.ProviderError
		if errors.As(err, &providerErr) && providerErr.NotFound() {
			return writeError(w, http.StatusNotFound, "Order not found", "")
		}
		if errors.Is(err, payments.ErrNotConfigured) {
			return writeError(w, http.StatusInternalServerError, "PayPal credentials not configured", "")
		}
		return writeError(w, http.StatusInternalServerError, "Failed to fetch PayPal order", err.Error())
	}
	return writeJSON(w, http.StatusOK, summary)
}

// writeOrderError maps PaymentOrderCreator failures to 500 responses.
// Credential values never reach the response.
func writeOrderError(w http.ResponseWriter, err error) int {
	var (
		authErr     *payments.AuthError
		providerErr *payments.ProviderError
	)
	switch {
	case errors.Is(err, payments.ErrNotConfigured):
		return writeError(w, http.StatusInternalServerError, "PayPal credentials not configured", "")
	case errors.As(err, &authErr):
		return writeError(w, http.StatusInternalServerError, "Failed to get PayPal access token", authErr.Error())
	case errors.As(err, &providerErr):
		return writeError(w, http.StatusInternalServerError, "Failed to create PayPal order", providerErr.Body)
	case errors.Is(err, payments.ErrMissingApprovalLink):
		return writeError(w, http.StatusInternalServerError, "No approval URL found in PayPal response", "")
	default:
		return writeError(w, http.StatusInternalServerError, "Failed to create PayPal order", err.Error())
	}
}

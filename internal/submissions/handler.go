package submissions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/wolfman30/landing-intake/internal/notify"
	"github.com/wolfman30/landing-intake/internal/observability/metrics"
	"github.com/wolfman30/landing-intake/internal/payments"
	"github.com/wolfman30/landing-intake/pkg/logging"
)

const maxBodyBytes = 1 << 20

// Notifier delivers admin emails. It reports failures in the Outcome.
type Notifier interface {
	Send(ctx context.Context, msg notify.Message) notify.Outcome
}

// OrderCreator starts PayPal checkouts and reads them back.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req payments.OrderRequest) (*payments.Order, error)
	LookupOrder(ctx context.Context, orderID string) (*payments.OrderSummary, error)
}

// Handler serves the contact, lead and purchase endpoints.
type Handler struct {
	notifier   Notifier
	orders     OrderCreator
	adminEmail notify.Recipients
	metrics    *metrics.SubmissionMetrics
	logger     *logging.Logger
	steps      stepRunner
}

func NewHandler(notifier Notifier, orders OrderCreator, adminEmail string, m *metrics.SubmissionMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		notifier:   notifier,
		orders:     orders,
		adminEmail: notify.To(adminEmail),
		metrics:    m,
		logger:     logger,
		steps:      stepRunner{metrics: m, logger: logger},
	}
}

// serve runs fn, records the response status and converts a panic into the
// form's own 500 message.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, form Kind, failure string, fn func(http.ResponseWriter, *http.Request) int) {
	status := http.StatusInternalServerError
	defer func() {
		if rec := recover(); rec != nil {
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			h.logger.Error("submission handler panic", "form", string(form), "panic", fmt.Sprint(rec))
			status = writeError(w, http.StatusInternalServerError, failure, fmt.Sprint(rec))
		}
		h.metrics.ObserveSubmission(string(form), status)
	}()
	status = fn(w, r)
}

// decode reads a JSON body into rec and validates it. On failure it writes
// the 400 response and returns its status with ok=false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, rec Record) (int, bool) {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(rec); err != nil {
		h.logger.Warn("invalid submission body", "form", string(rec.Kind()), "error", err)
		return writeError(w, http.StatusBadRequest, "Invalid request body", err.Error()), false
	}
	if err := rec.Validate(); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":   verr.Message,
				"details": verr.Details(),
			}), false
		}
		return writeError(w, http.StatusBadRequest, "Invalid request body", err.Error()), false
	}
	return 0, true
}

// notifyAdmin builds the best-effort admin email step.
func (h *Handler) notifyAdmin(n Notification) Step {
	return Step{
		Provider:  "email",
		Operation: "notify_admin",
		Policy:    BestEffort,
		Run: func(ctx context.Context) error {
			if h.notifier == nil {
				return notify.ErrNotConfigured
			}
			return h.notifier.Send(ctx, notify.Message{
				To:      h.adminEmail,
				Subject: n.Subject,
				HTML:    n.HTML,
			}).Err()
		},
	}
}

func writeError(w http.ResponseWriter, status int, msg, details string) int {
	body := map[string]string{"error": msg}
	if details != "" {
		body["details"] = details
	}
	return writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, payload any) int {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
	return status
}

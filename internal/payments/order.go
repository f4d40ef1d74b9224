package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/landing-intake/pkg/logging"
)

// DefaultOrderPrefix prefixes locally generated order numbers.
const DefaultOrderPrefix = "LP"

// Provider is the PayPal capability the order creator depends on.
type Provider interface {
	AccessToken(ctx context.Context) (string, error)
	CreateOrder(ctx context.Context, accessToken string, params OrderParams) (*ProviderOrder, error)
	GetOrder(ctx context.Context, accessToken, orderID string) (*ProviderOrder, error)
}

// Amount is a USD amount in cents.
type Amount int64

// MaxAmount caps a single order at $1,000,000.00.
const MaxAmount Amount = 100_000_000

// ParseAmount parses a decimal dollar amount such as "199" or "199.50" exactly.
// Trailing zeros past the cents are allowed; any other third decimal is rejected.
func ParseAmount(raw string) (Amount, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	whole, frac, hasDot := strings.Cut(raw, ".")
	if !isDigits(whole) || (hasDot && !isDigits(frac)) {
		return 0, fmt.Errorf("%w %q", ErrInvalidAmount, raw)
	}
	if len(frac) > 2 {
		frac = strings.TrimRight(frac, "0")
		if len(frac) > 2 {
			return 0, fmt.Errorf("%w %q: more than two decimal places", ErrInvalidAmount, raw)
		}
	}
	whole = strings.TrimLeft(whole, "0")
	if len(whole) > 9 {
		return 0, fmt.Errorf("%w %q: exceeds %s", ErrInvalidAmount, raw, MaxAmount)
	}
	dollars, _ := strconv.ParseInt("0"+whole, 10, 64)
	cents, _ := strconv.ParseInt((frac + "00")[:2], 10, 64)
	amount := Amount(dollars*100 + cents)
	if amount > MaxAmount {
		return 0, fmt.Errorf("%w %q: exceeds %s", ErrInvalidAmount, raw, MaxAmount)
	}
	return amount, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// UnmarshalJSON accepts a JSON number, a numeric string or null.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = 0
		return nil
	}
	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
	}
	parsed, err := ParseAmount(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// String renders the amount as PayPal expects it, e.g. "199.00".
func (a Amount) String() string {
	sign := ""
	if a < 0 {
		sign = "-"
		a = -a
	}
	return fmt.Sprintf("%s%d.%02d", sign, a/100, a%100)
}

// Metadata is the submission snapshot carried on the provider order.
type Metadata struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	Company    string   `json:"company"`
	Website    string   `json:"website"`
	Location   string   `json:"location"`
	Needs      string   `json:"needs"`
	References []string `json:"references"`
}

type OrderRequest struct {
	Amount      Amount
	Description string
	Metadata    Metadata
}

// Order is the outcome of a successful purchase initiation.
type Order struct {
	ProviderID  string
	Status      string
	ApprovalURL string
	OrderNumber string
}

// OrderSummary is a provider order with its metadata decoded.
type OrderSummary struct {
	ID       string    `json:"id"`
	Status   string    `json:"status"`
	Amount   string    `json:"amount,omitempty"`
	Currency string    `json:"currency,omitempty"`
	Metadata *Metadata `json:"metadata,omitempty"`
	// CustomID holds the raw value when it is not a metadata document.
	CustomID string `json:"customId,omitempty"`
}

// OrderCreator runs the purchase flow against a Provider and numbers orders locally.
type OrderCreator struct {
	provider    Provider
	prefix      string
	description string
	now         func() time.Time
	token       func() string
	logger      *logging.Logger
}

// CreatorOption customizes an OrderCreator.
type CreatorOption func(*OrderCreator)

// WithOrderClock overrides the clock used for order numbers.
func WithOrderClock(now func() time.Time) CreatorOption {
	return func(o *OrderCreator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithOrderToken overrides the random suffix of order numbers.
func WithOrderToken(token func() string) CreatorOption {
	return func(o *OrderCreator) {
		if token != nil {
			o.token = token
		}
	}
}

func NewOrderCreator(provider Provider, prefix, description string, logger *logging.Logger, opts ...CreatorOption) *OrderCreator {
	if logger == nil {
		logger = logging.Default()
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultOrderPrefix
	}
	o := &OrderCreator{
		provider:    provider,
		prefix:      prefix,
		description: description,
		now:         time.Now,
		token:       orderToken,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// CreateOrder acquires a token, creates the provider order and extracts its approval link.
// No order number is issued unless every step succeeds.
func (o *OrderCreator) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if o == nil || o.provider == nil {
		return nil, ErrNotConfigured
	}
	token, err := o.provider.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	customID, err := json.Marshal(req.Metadata)
	if err != nil {
		return nil, fmt.Errorf("payments: encode metadata: %w", err)
	}
	description := req.Description
	if strings.TrimSpace(description) == "" {
		description = o.description
	}
	created, err := o.provider.CreateOrder(ctx, token, OrderParams{
		Amount:      req.Amount,
		Description: description,
		CustomID:    string(customID),
	})
	if err != nil {
		return nil, err
	}

	approval, err := ApprovalURL(created.Links)
	if err != nil {
		o.logger.Error("paypal order missing approval link", "order_id", created.ID)
		return nil, err
	}

	order := &Order{
		ProviderID:  created.ID,
		Status:      created.Status,
		ApprovalURL: approval,
		OrderNumber: o.orderNumber(),
	}
	o.logger.Info("paypal order created", "order_id", order.ProviderID, "order_number", order.OrderNumber)
	return order, nil
}

// LookupOrder fetches a provider order and decodes the submission metadata it carries.
func (o *OrderCreator) LookupOrder(ctx context.Context, orderID string) (*OrderSummary, error) {
	if o == nil || o.provider == nil {
		return nil, ErrNotConfigured
	}
	token, err := o.provider.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	order, err := o.provider.GetOrder(ctx, token, orderID)
	if err != nil {
		return nil, err
	}

	summary := &OrderSummary{ID: order.ID, Status: order.Status}
	if len(order.PurchaseUnits) == 0 {
		return summary, nil
	}
	unit := order.PurchaseUnits[0]
	summary.Amount = unit.Amount.Value
	summary.Currency = unit.Amount.CurrencyCode
	if unit.CustomID != "" {
		var meta Metadata
		if err := json.Unmarshal([]byte(unit.CustomID), &meta); err == nil {
			summary.Metadata = &meta
		} else {
			summary.CustomID = unit.CustomID
		}
	}
	return summary, nil
}

func (o *OrderCreator) orderNumber() string {
	return fmt.Sprintf("%s-%d-%s", o.prefix, o.now().UnixMilli(), o.token())
}

func orderToken() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:5]
}

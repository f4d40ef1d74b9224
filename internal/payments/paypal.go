package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/wolfman30/landing-intake/pkg/logging"
)

var paypalTracer = otel.Tracer("landing.internal.payments.paypal")

const (
	LiveBaseURL    = "https://api-m.paypal.com"
	SandboxBaseURL = "https://api-m.sandbox.paypal.com"

	maxErrorBody = 64 << 10
)

// PayPalConfig carries the credentials and URLs the client needs.
type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	// Mode selects the API host: "live" or anything else for sandbox.
	Mode    string
	BaseURL string
	// SiteURL is the public origin used for return and cancel redirects.
	SiteURL string
	Timeout time.Duration
}

// PayPalClient talks to the PayPal OAuth2 and Orders v2 endpoints.
type PayPalClient struct {
	clientID     string
	clientSecret string
	baseURL      string
	returnURL    string
	cancelURL    string
	timeout      time.Duration
	httpClient   *http.Client
	logger       *logging.Logger
}

// OrderParams describes the single purchase unit of a new order.
type OrderParams struct {
	Amount      Amount
	Description string
	CustomID    string
}

// Link is a HATEOAS link returned by the Orders API.
type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method,omitempty"`
}

// Money is a currency amount as PayPal serializes it.
type Money struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

// PurchaseUnit is one purchase unit of an order.
type PurchaseUnit struct {
	Amount      Money  `json:"amount"`
	Description string `json:"description,omitempty"`
	CustomID    string `json:"custom_id,omitempty"`
}

// ProviderOrder is the subset of a PayPal order this service reads.
type ProviderOrder struct {
	ID            string         `json:"id"`
	Status        string         `json:"status"`
	PurchaseUnits []PurchaseUnit `json:"purchase_units"`
	Links         []Link         `json:"links"`
}

type applicationContext struct {
	ReturnURL string `json:"return_url"`
	CancelURL string `json:"cancel_url"`
}

type createOrderBody struct {
	Intent             string             `json:"intent"`
	PurchaseUnits      []PurchaseUnit     `json:"purchase_units"`
	ApplicationContext applicationContext `json:"application_context"`
}

// BaseURLForMode maps a PayPal mode to its API host.
func BaseURLForMode(mode string) string {
	if strings.EqualFold(strings.TrimSpace(mode), "live") {
		return LiveBaseURL
	}
	return SandboxBaseURL
}

func NewPayPalClient(cfg PayPalConfig, logger *logging.Logger) *PayPalClient {
	if logger == nil {
		logger = logging.Default()
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = BaseURLForMode(cfg.Mode)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	site := strings.TrimRight(cfg.SiteURL, "/")
	return &PayPalClient{
		clientID:     strings.TrimSpace(cfg.ClientID),
		clientSecret: strings.TrimSpace(cfg.ClientSecret),
		baseURL:      baseURL,
		returnURL:    site + "/payment/success",
		cancelURL:    site + "/payment/cancel",
		timeout:      timeout,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

// WithHTTPClient overrides the transport used for token and order calls.
func (c *PayPalClient) WithHTTPClient(client *http.Client) *PayPalClient {
	if client != nil {
		c.httpClient = client
	}
	return c
}

// Configured reports whether both client credentials are present.
func (c *PayPalClient) Configured() bool {
	return c != nil && c.clientID != "" && c.clientSecret != ""
}

// AccessToken exchanges the client credentials for a bearer token.
func (c *PayPalClient) AccessToken(ctx context.Context) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	ctx, span := paypalTracer.Start(ctx, "paypal.access_token")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cc := &clientcredentials.Config{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		TokenURL:     c.baseURL + "/v1/oauth2/token",
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	tok, err := cc.Token(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient))
	if err != nil {
		authErr := &AuthError{Err: err}
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			authErr.Status = retrieveErr.Response.StatusCode
		}
		span.RecordError(authErr)
		span.SetStatus(codes.Error, "token exchange failed")
		return "", authErr
	}
	return tok.AccessToken, nil
}

// CreateOrder creates a CAPTURE order for a single USD purchase unit.
func (c *PayPalClient) CreateOrder(ctx context.Context, accessToken string, params OrderParams) (*ProviderOrder, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	ctx, span := paypalTracer.Start(ctx, "paypal.create_order")
	defer span.End()
	span.SetAttributes(attribute.String("landing.amount", params.Amount.String()))

	body := createOrderBody{
		Intent: "CAPTURE",
		PurchaseUnits: []PurchaseUnit{{
			Amount:      Money{CurrencyCode: "USD", Value: params.Amount.String()},
			Description: params.Description,
			CustomID:    params.CustomID,
		}},
		ApplicationContext: applicationContext{
			ReturnURL: c.returnURL,
			CancelURL: c.cancelURL,
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("payments: paypal payload: %w", err)
	}

	var order ProviderOrder
	if err := c.do(ctx, http.MethodPost, "/v2/checkout/orders", "create_order", accessToken, payload, &order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create order failed")
		return nil, err
	}
	span.SetAttributes(attribute.String("landing.paypal_order_id", order.ID))
	return &order, nil
}

// GetOrder fetches an existing order by its PayPal id.
func (c *PayPalClient) GetOrder(ctx context.Context, accessToken, orderID string) (*ProviderOrder, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	ctx, span := paypalTracer.Start(ctx, "paypal.get_order")
	defer span.End()
	span.SetAttributes(attribute.String("landing.paypal_order_id", orderID))

	var order ProviderOrder
	path := "/v2/checkout/orders/" + url.PathEscape(orderID)
	if err := c.do(ctx, http.MethodGet, path, "get_order", accessToken, nil, &order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "get order failed")
		return nil, err
	}
	return &order, nil
}

func (c *PayPalClient) do(ctx context.Context, method, path, operation, accessToken string, payload []byte, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("payments: paypal request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	if method == http.MethodPost {
		req.Header.Set("PayPal-Request-Id", uuid.NewString())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("payments: paypal http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("paypal request rejected", "operation", operation, "status", resp.StatusCode)
		return &ProviderError{Operation: operation, Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("payments: paypal decode: %w", err)
	}
	return nil
}

// ApprovalURL returns the buyer approval link of an order.
func ApprovalURL(links []Link) (string, error) {
	var fallback string
	for _, link := range links {
		switch link.Rel {
		case "approve":
			if link.Href != "" {
				return link.Href, nil
			}
		case "payer-action":
			if fallback == "" {
				fallback = link.Href
			}
		}
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", ErrMissingApprovalLink
}

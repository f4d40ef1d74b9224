package payments

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	tokenErr   error
	createErr  error
	getErr     error
	created    *ProviderOrder
	fetched    *ProviderOrder
	gotParams  OrderParams
	gotToken   string
	tokenCalls int
	createCall int
}

func (s *stubProvider) AccessToken(ctx context.Context) (string, error) {
	s.tokenCalls++
	if s.tokenErr != nil {
		return "", s.tokenErr
	}
	return "tok-1", nil
}

func (s *stubProvider) CreateOrder(ctx context.Context, accessToken string, params OrderParams) (*ProviderOrder, error) {
	s.createCall++
	s.gotToken = accessToken
	s.gotParams = params
	if s.createErr != nil {
		return nil, s.createErr
	}
	if s.created != nil {
		return s.created, nil
	}
	return &ProviderOrder{
		ID:     "ORDER-1",
		Status: "CREATED",
		Links:  []Link{{Rel: "approve", Href: "https://paypal.test/approve"}},
	}, nil
}

func (s *stubProvider) GetOrder(ctx context.Context, accessToken, orderID string) (*ProviderOrder, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.fetched, nil
}

var orderNumberPattern = regexp.MustCompile(`^LP-\d{13}-[A-Z0-9]{5}$`)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw     string
		want    Amount
		wantErr bool
	}{
		{raw: "199", want: 19900},
		{raw: "199.5", want: 19950},
		{raw: " 0.10 ", want: 10},
		{raw: "0.07", want: 7},
		{raw: "199.990", want: 19999},
		{raw: "000123.40", want: 12340},
		{raw: "1000000", want: MaxAmount},
		{raw: "", want: 0},
		{raw: "abc", wantErr: true},
		{raw: "NaN", wantErr: true},
		{raw: "Inf", wantErr: true},
		{raw: "199.999", wantErr: true},
		{raw: "12.345", wantErr: true},
		{raw: "-5", wantErr: true},
		{raw: "+5", wantErr: true},
		{raw: "1e17", wantErr: true},
		{raw: "1e2", wantErr: true},
		{raw: "1000000.01", wantErr: true},
		{raw: "99999999999999999999", wantErr: true},
		{raw: "199.", wantErr: true},
		{raw: ".50", wantErr: true},
		{raw: "1,000", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseAmount(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidAmount)
				assert.Zero(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAmountJSONAndString(t *testing.T) {
	var payload struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
		C Amount `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":199,"b":"49.99","c":null}`), &payload))
	assert.Equal(t, Amount(19900), payload.A)
	assert.Equal(t, Amount(4999), payload.B)
	assert.Equal(t, Amount(0), payload.C)

	assert.Equal(t, "199.00", Amount(19900).String())
	assert.Equal(t, "0.05", Amount(5).String())
	assert.Equal(t, "-1.50", Amount(-150).String())

	assert.Error(t, json.Unmarshal([]byte(`{"a":"free"}`), &payload))
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"a":199.999}`), &payload), ErrInvalidAmount)
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"a":1e17}`), &payload), ErrInvalidAmount)
}

func TestOrderCreator_CreateOrder(t *testing.T) {
	provider := &stubProvider{}
	creator := NewOrderCreator(provider, "", "Single Page Landing Page - 2 Day Turn-around", nil)

	order, err := creator.CreateOrder(context.Background(), OrderRequest{
		Amount: 19900,
		Metadata: Metadata{
			Name:       "Ana",
			Email:      "ana@example.com",
			Phone:      "555-0100",
			Needs:      "landing page",
			References: []string{"uploads/1-a-logo.png"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "ORDER-1", order.ProviderID)
	assert.Equal(t, "https://paypal.test/approve", order.ApprovalURL)
	assert.Regexp(t, orderNumberPattern, order.OrderNumber)
	assert.Equal(t, "tok-1", provider.gotToken)
	assert.Equal(t, "Single Page Landing Page - 2 Day Turn-around", provider.gotParams.Description)
	assert.Equal(t, Amount(19900), provider.gotParams.Amount)

	var meta Metadata
	require.NoError(t, json.Unmarshal([]byte(provider.gotParams.CustomID), &meta))
	assert.Equal(t, "Ana", meta.Name)
	assert.Equal(t, []string{"uploads/1-a-logo.png"}, meta.References)
}

func TestOrderCreator_RequestDescriptionOverridesDefault(t *testing.T) {
	provider := &stubProvider{}
	creator := NewOrderCreator(provider, "LP", "default", nil)

	_, err := creator.CreateOrder(context.Background(), OrderRequest{Amount: 100, Description: "custom"})
	require.NoError(t, err)
	assert.Equal(t, "custom", provider.gotParams.Description)
}

func TestOrderCreator_OrderNumberUsesClockAndToken(t *testing.T) {
	fixed := time.UnixMilli(1700000000123)
	creator := NewOrderCreator(&stubProvider{}, "WEB", "", nil,
		WithOrderClock(func() time.Time { return fixed }),
		WithOrderToken(func() string { return "AB12Z" }),
	)

	order, err := creator.CreateOrder(context.Background(), OrderRequest{Amount: 100})
	require.NoError(t, err)
	assert.Equal(t, "WEB-1700000000123-AB12Z", order.OrderNumber)
}

func TestOrderCreator_DefaultTokensDiffer(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		tok := orderToken()
		require.Regexp(t, `^[A-Z0-9]{5}$`, tok)
		seen[tok] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestOrderCreator_FailuresStopTheFlow(t *testing.T) {
	authErr := &AuthError{Status: 401, Err: errors.New("invalid_client")}
	providerErr := &ProviderError{Operation: "create_order", Status: 422, Body: "{}"}

	tests := []struct {
		name           string
		provider       *stubProvider
		wantErr        error
		wantCreateCall int
	}{
		{name: "not configured", provider: &stubProvider{tokenErr: ErrNotConfigured}, wantErr: ErrNotConfigured},
		{name: "token rejected", provider: &stubProvider{tokenErr: authErr}, wantErr: authErr},
		{name: "create rejected", provider: &stubProvider{createErr: providerErr}, wantErr: providerErr, wantCreateCall: 1},
		{
			name:           "missing approval link",
			provider:       &stubProvider{created: &ProviderOrder{ID: "X", Links: []Link{{Rel: "self", Href: "https://self"}}}},
			wantErr:        ErrMissingApprovalLink,
			wantCreateCall: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator := NewOrderCreator(tt.provider, "LP", "", nil)
			order, err := creator.CreateOrder(context.Background(), OrderRequest{Amount: 19900})
			assert.Nil(t, order)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantCreateCall, tt.provider.createCall)
		})
	}
}

func TestOrderCreator_NilProvider(t *testing.T) {
	creator := NewOrderCreator(nil, "LP", "", nil)
	_, err := creator.CreateOrder(context.Background(), OrderRequest{Amount: 100})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = creator.LookupOrder(context.Background(), "X")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestOrderCreator_LookupOrderDecodesMetadata(t *testing.T) {
	provider := &stubProvider{fetched: &ProviderOrder{
		ID:     "ORDER-1",
		Status: "APPROVED",
		PurchaseUnits: []PurchaseUnit{{
			Amount:   Money{CurrencyCode: "USD", Value: "199.00"},
			CustomID: `{"name":"Ana","email":"ana@example.com","references":["uploads/a.png"]}`,
		}},
	}}
	creator := NewOrderCreator(provider, "LP", "", nil)

	summary, err := creator.LookupOrder(context.Background(), "ORDER-1")
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", summary.Status)
	assert.Equal(t, "199.00", summary.Amount)
	assert.Equal(t, "USD", summary.Currency)
	require.NotNil(t, summary.Metadata)
	assert.Equal(t, "Ana", summary.Metadata.Name)
	assert.Equal(t, []string{"uploads/a.png"}, summary.Metadata.References)
	assert.Empty(t, summary.CustomID)
}

func TestOrderCreator_LookupOrderKeepsOpaqueCustomID(t *testing.T) {
	provider := &stubProvider{fetched: &ProviderOrder{
		ID:            "ORDER-2",
		PurchaseUnits: []PurchaseUnit{{CustomID: "legacy-ref-42"}},
	}}
	creator := NewOrderCreator(provider, "LP", "", nil)

	summary, err := creator.LookupOrder(context.Background(), "ORDER-2")
	require.NoError(t, err)
	assert.Nil(t, summary.Metadata)
	assert.Equal(t, "legacy-ref-42", summary.CustomID)
}

func TestOrderCreator_EndToEndAgainstPayPalServer(t *testing.T) {
	fake := &fakePayPal{}
	client := newTestClient(t, fake)
	creator := NewOrderCreator(client, "LP", "Single Page Landing Page - 2 Day Turn-around", nil)

	order, err := creator.CreateOrder(context.Background(), OrderRequest{
		Amount:   19900,
		Metadata: Metadata{Name: "Ana", Email: "ana@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, "5O190127TN364715T", order.ProviderID)
	assert.Equal(t, "https://www.sandbox.paypal.com/checkoutnow?token=5O190127TN364715T", order.ApprovalURL)
	assert.Regexp(t, orderNumberPattern, order.OrderNumber)
	assert.EqualValues(t, 1, fake.tokenCalls.Load())
	assert.EqualValues(t, 1, fake.orderCalls.Load())
}

func TestOrderCreator_EndToEndTokenRejectedSkipsOrder(t *testing.T) {
	fake := &fakePayPal{tokenStatus: 401}
	client := newTestClient(t, fake)
	creator := NewOrderCreator(client, "LP", "", nil)

	_, err := creator.CreateOrder(context.Background(), OrderRequest{Amount: 19900})
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.EqualValues(t, 0, fake.orderCalls.Load())
}

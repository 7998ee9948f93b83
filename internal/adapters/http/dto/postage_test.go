package dto

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/postage-service/internal/app"
	"github.com/jsamuelsen/postage-service/internal/domain"
)

func validRequest() QuoteRequest {
	return QuoteRequest{
		Module: "flat-rate",
		Cart: CartDTO{
			ID:       "cart-1",
			Currency: "EUR",
			Items: []CartItemDTO{
				{Ref: "SKU-1", Quantity: 2, UnitPrice: "12.50", Weight: 0.4},
			},
		},
		Country: "fr",
	}
}

// TestQuoteRequest_Validation tests tag and cross field validation.
func TestQuoteRequest_Validation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(r *QuoteRequest)
		wantField string
		wantMsg   string
	}{
		{
			name:   "valid",
			mutate: func(*QuoteRequest) {},
		},
		{
			name:      "missing currency",
			mutate:    func(r *QuoteRequest) { r.Cart.Currency = "" },
			wantField: "cart.currency",
			wantMsg:   "this field is required",
		},
		{
			name:      "currency length",
			mutate:    func(r *QuoteRequest) { r.Cart.Currency = "EURO" },
			wantField: "cart.currency",
			wantMsg:   "must be exactly 3 characters",
		},
		{
			name:      "no items",
			mutate:    func(r *QuoteRequest) { r.Cart.Items = []CartItemDTO{} },
			wantField: "cart.items",
			wantMsg:   "must be at least 1 items",
		},
		{
			name:      "zero quantity",
			mutate:    func(r *QuoteRequest) { r.Cart.Items[0].Quantity = 0 },
			wantField: "cart.items[0].quantity",
			wantMsg:   "must be at least 1",
		},
		{
			name:      "blank ref",
			mutate:    func(r *QuoteRequest) { r.Cart.Items[0].Ref = "   " },
			wantField: "cart.items[0].ref",
			wantMsg:   "must not be empty",
		},
		{
			name:      "price is not a decimal",
			mutate:    func(r *QuoteRequest) { r.Cart.Items[0].UnitPrice = "12,50" },
			wantField: "cart.items[0].unit_price",
			wantMsg:   "must be a decimal number",
		},
		{
			name:      "negative price",
			mutate:    func(r *QuoteRequest) { r.Cart.Items[0].UnitPrice = "-12.50" },
			wantField: "cart.items[0].unit_price",
			wantMsg:   "must not be negative",
		},
		{
			name:   "free item",
			mutate: func(r *QuoteRequest) { r.Cart.Items[0].UnitPrice = "0" },
		},
		{
			name:      "negative weight",
			mutate:    func(r *QuoteRequest) { r.Cart.Items[0].Weight = -1 },
			wantField: "cart.items[0].weight",
			wantMsg:   "must be at least 0",
		},
		{
			name:      "country is not iso2",
			mutate:    func(r *QuoteRequest) { r.Country = "FRA" },
			wantField: "country",
			wantMsg:   "must be a two letter ISO 3166-1 country code",
		},
		{
			name:      "country does not exist",
			mutate:    func(r *QuoteRequest) { r.Country = "ZZ" },
			wantField: "country",
			wantMsg:   "must be a two letter ISO 3166-1 country code",
		},
		{
			name:   "lowercase country",
			mutate: func(r *QuoteRequest) { r.Country = "be" },
		},
		{
			name:      "address country does not exist",
			mutate:    func(r *QuoteRequest) { r.Address = &AddressDTO{Country: "xx"} },
			wantField: "address.country",
			wantMsg:   "must be a two letter ISO 3166-1 country code",
		},
		{
			name:      "address without country",
			mutate:    func(r *QuoteRequest) { r.Address = &AddressDTO{City: "Lyon"} },
			wantField: "address.country",
			wantMsg:   "this field is required",
		},
		{
			name: "state without country",
			mutate: func(r *QuoteRequest) {
				r.Country = ""
				r.State = "2A"
			},
			wantField: "country",
			wantMsg:   "is required when state is set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := Validate(&req)

			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, ErrValidation)
			assert.True(t, IsValidationError(err))
			assert.Equal(t, tt.wantMsg, ValidationErrors(err)[tt.wantField])
		})
	}
}

func TestBindAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{
			name: "valid",
			body: `{"module":"pickup","cart":{"currency":"EUR","items":[{"ref":"A","quantity":1,"unit_price":"9.90"}]},"country":"BE"}`,
		},
		{
			name:    "malformed json",
			body:    `{"cart":`,
			wantErr: ErrBinding,
		},
		{
			name:    "invalid cart",
			body:    `{"cart":{"currency":"EUR","items":[]}}`,
			wantErr: ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/postage/quote", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var req QuoteRequest
			err := BindAndValidate(c, &req)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "pickup", req.Module)
		})
	}
}

func TestQuoteRequest_ToInput(t *testing.T) {
	t.Run("country and state", func(t *testing.T) {
		req := validRequest()
		req.State = "2a"

		in := req.ToInput("flat-rate", "fr")

		assert.Equal(t, "flat-rate", in.ModuleCode)
		assert.Equal(t, "fr", in.Locale)
		assert.Nil(t, in.Address)
		require.NotNil(t, in.Country)
		assert.Equal(t, "FR", in.Country.ISOCode)
		require.NotNil(t, in.State)
		assert.Equal(t, "2A", in.State.Code)
		assert.Equal(t, "FR", in.State.CountryISO)

		require.Len(t, in.Cart.Items, 1)
		assert.True(t, decimal.RequireFromString("25").Equal(in.Cart.Total()))
		assert.InDelta(t, 0.8, in.Cart.Weight(), 1e-9)
	})

	t.Run("address wins", func(t *testing.T) {
		req := validRequest()
		req.Address = &AddressDTO{City: "Bruxelles", ZipCode: "1000", Country: "be"}

		in := req.ToInput("carrier", "en")

		require.NotNil(t, in.Address)
		assert.Equal(t, "BE", in.Address.Country.ISOCode)
		assert.Equal(t, "1000", in.Address.ZipCode)
		assert.Nil(t, in.Address.State)
		assert.Nil(t, in.Country)
	})

	t.Run("no destination", func(t *testing.T) {
		req := validRequest()
		req.Country = ""

		in := req.ToInput("flat-rate", "en")

		assert.Nil(t, in.Country)
		assert.Nil(t, in.State)
	})
}

func TestToQuoteResponse(t *testing.T) {
	date := time.Date(2026, 5, 6, 0, 0, 0, 0, time.UTC)
	p := domain.NewPostage(decimal.RequireFromString("4.8"), decimal.RequireFromString("0.8"), "VAT 20%")

	resp := ToQuoteResponse(&domain.PostageQuote{
		ID:             "q-1",
		ModuleCode:     "flat-rate",
		ModuleTitle:    "Flat rate",
		Currency:       "EUR",
		CountryCode:    "FR",
		Valid:          true,
		Postage:        &p,
		DeliveryDate:   &date,
		DeliveryMode:   domain.DeliveryModeDelivery,
		AdditionalData: map[string]any{"weight_kg": 0.8},
		Cached:         true,
	})

	assert.Equal(t, "flat-rate", resp.Module)
	assert.Equal(t, "delivery", resp.DeliveryMode)
	assert.True(t, resp.Cached)
	require.NotNil(t, resp.Postage)
	assert.Equal(t, "4.80", resp.Postage.Amount)
	assert.Equal(t, "0.80", resp.Postage.AmountTax)
	assert.Equal(t, "4.00", resp.Postage.AmountUntaxed)
	assert.Equal(t, "VAT 20%", resp.Postage.TaxRuleTitle)
	assert.False(t, resp.Postage.Free)
	assert.Equal(t, &date, resp.DeliveryDate)
}

func TestToQuoteResponse_Declined(t *testing.T) {
	resp := ToQuoteResponse(&domain.PostageQuote{ModuleCode: "pickup", CountryCode: "US"})

	assert.False(t, resp.Valid)
	assert.Nil(t, resp.Postage)
	assert.Nil(t, resp.DeliveryDate)
	assert.Empty(t, resp.DeliveryMode)
}

func TestToQuoteAllResponse(t *testing.T) {
	free := domain.PostageFromAmount(0)

	resp := ToQuoteAllResponse([]app.ModuleQuote{
		{ModuleCode: "carrier", Err: domain.NewUnavailableError("carrier-rates", "")},
		{ModuleCode: "pickup", Quote: &domain.PostageQuote{ModuleCode: "pickup", Valid: true, Postage: &free}},
		{ModuleCode: "broken", Err: errors.New("boom")},
	})

	require.Len(t, resp.Quotes, 3)

	assert.Nil(t, resp.Quotes[0].Quote)
	require.NotNil(t, resp.Quotes[0].Error)
	assert.Equal(t, ErrorCodeUnavailable, resp.Quotes[0].Error.Code)

	require.NotNil(t, resp.Quotes[1].Quote)
	assert.True(t, resp.Quotes[1].Quote.Postage.Free)
	assert.Nil(t, resp.Quotes[1].Error)

	assert.Equal(t, ErrorCodeInternal, resp.Quotes[2].Error.Code)
	assert.Equal(t, internalErrorMessage, resp.Quotes[2].Error.Message)
}

func TestToModulesResponse(t *testing.T) {
	resp := ToModulesResponse([]app.ModuleInfo{
		{Code: "carrier", Title: "Carrier"},
		{Code: "pickup", Title: "Store pickup"},
	})

	assert.Equal(t, []ModuleResponse{
		{Code: "carrier", Title: "Carrier"},
		{Code: "pickup", Title: "Store pickup"},
	}, resp.Modules)
}

package postage

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/postage-service/internal/domain"
	"github.com/jsamuelsen/postage-service/internal/platform/i18n"
)

type stubModule struct{ code string }

func (m stubModule) Code() string  { return m.code }
func (m stubModule) Title() string { return "Stub " + m.code }

var (
	france  = &domain.Country{ISOCode: "FR", Name: "France"}
	germany = &domain.Country{ISOCode: "DE", Name: "Germany"}
	bavaria = &domain.State{Code: "BY", Name: "Bavaria", CountryISO: "DE"}
	corsica = &domain.State{Code: "2A", Name: "Corse-du-Sud", CountryISO: "FR"}
)

func newCart() *domain.Cart {
	return &domain.Cart{
		ID:       "cart-1",
		Currency: "EUR",
		Items:    []domain.CartItem{{Ref: "BOOK", Quantity: 1, UnitPrice: decimal.NewFromInt(10), Weight: 0.5}},
	}
}

func TestNew_Defaults(t *testing.T) {
	module := stubModule{code: "flat-rate"}
	cart := newCart()

	rc := New(module, cart)

	assert.Equal(t, module, rc.Module())
	assert.Same(t, cart, rc.Cart())
	assert.Nil(t, rc.Address())
	assert.Nil(t, rc.Country())
	assert.Nil(t, rc.State())
	assert.False(t, rc.IsValidModule())
	assert.False(t, rc.HasAdditionalData())
	assert.Empty(t, rc.AdditionalData())

	_, ok := rc.Postage()
	assert.False(t, ok)

	_, ok = rc.DeliveryDate()
	assert.False(t, ok)

	_, ok = rc.DeliveryMode()
	assert.False(t, ok)
}

func TestSetDeliveryMode_Valid(t *testing.T) {
	for _, mode := range domain.DeliveryModes() {
		t.Run(string(mode), func(t *testing.T) {
			rc := New(stubModule{code: "m"}, newCart())

			require.NoError(t, rc.SetDeliveryMode(mode))

			got, ok := rc.DeliveryMode()
			assert.True(t, ok)
			assert.Equal(t, mode, got)
		})
	}
}

func TestSetDeliveryMode_InvalidKeepsPreviousValue(t *testing.T) {
	invalid := []domain.DeliveryMode{"", "drone", "PICKUP", "delivery "}

	for _, mode := range invalid {
		t.Run("unset/"+string(mode), func(t *testing.T) {
			rc := New(stubModule{code: "m"}, newCart())

			err := rc.SetDeliveryMode(mode)

			require.ErrorIs(t, err, domain.ErrInvalidArgument)
			_, ok := rc.DeliveryMode()
			assert.False(t, ok)
		})

		t.Run("set/"+string(mode), func(t *testing.T) {
			rc := New(stubModule{code: "m"}, newCart())
			require.NoError(t, rc.SetDeliveryMode(domain.DeliveryModePickup))

			err := rc.SetDeliveryMode(mode)

			require.ErrorIs(t, err, domain.ErrInvalidArgument)
			got, _ := rc.DeliveryMode()
			assert.Equal(t, domain.DeliveryModePickup, got)
		})
	}
}

func TestSetDeliveryMode_LocalizedMessage(t *testing.T) {
	tests := []struct {
		name     string
		locale   string
		expected string
	}{
		{"english", "en", i18n.MsgInvalidDeliveryMode},
		{"french", "fr", "Un module de livraison ne peut être que de type retrait ou livraison"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := New(stubModule{code: "m"}, newCart(),
				WithTranslator(i18n.New("en")),
				WithLocale(tt.locale),
			)

			err := rc.SetDeliveryMode("teleport")

			var invalid *domain.InvalidArgumentError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.expected, invalid.Message)
			assert.Equal(t, "deliveryMode", invalid.Argument)
			assert.Equal(t, "teleport", invalid.Value)
		})
	}
}

func TestCountryAndState_Precedence(t *testing.T) {
	address := &domain.Address{City: "Munich", Country: germany, State: bavaria}

	tests := []struct {
		name          string
		opts          []Option
		expectCountry *domain.Country
		expectState   *domain.State
	}{
		{
			name:          "fallback only",
			opts:          []Option{WithCountry(france), WithState(corsica)},
			expectCountry: france,
			expectState:   corsica,
		},
		{
			name:          "address wins over fallback",
			opts:          []Option{WithAddress(address), WithCountry(france), WithState(corsica)},
			expectCountry: germany,
			expectState:   bavaria,
		},
		{
			name:          "address without state hides fallback state",
			opts:          []Option{WithAddress(&domain.Address{Country: germany}), WithState(corsica)},
			expectCountry: germany,
			expectState:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := New(stubModule{code: "m"}, newCart(), tt.opts...)

			assert.Equal(t, tt.expectCountry, rc.Country())
			assert.Equal(t, tt.expectState, rc.State())
		})
	}
}

func TestCountry_FollowsAddressChanges(t *testing.T) {
	rc := New(stubModule{code: "m"}, newCart(), WithCountry(france))
	assert.Equal(t, "FR", rc.Country().ISOCode)

	rc.SetAddress(&domain.Address{Country: germany})
	assert.Equal(t, "DE", rc.Country().ISOCode)

	rc.SetAddress(nil)
	assert.Equal(t, "FR", rc.Country().ISOCode)
}

func TestPostage(t *testing.T) {
	t.Run("raw amount is normalized", func(t *testing.T) {
		rc := New(stubModule{code: "m"}, newCart()).SetPostageAmount(42.5)

		p, ok := rc.Postage()
		require.True(t, ok)
		assert.True(t, decimal.NewFromFloat(42.5).Equal(p.Amount))
		assert.True(t, p.AmountTax.IsZero())
	})

	t.Run("non finite amounts are stored as zero", func(t *testing.T) {
		for name, amount := range map[string]float64{
			"NaN":  math.NaN(),
			"+Inf": math.Inf(1),
			"-Inf": math.Inf(-1),
		} {
			t.Run(name, func(t *testing.T) {
				var rc *RequestContext

				require.NotPanics(t, func() {
					rc = New(stubModule{code: "m"}, newCart()).SetPostageAmount(amount)
				})

				p, ok := rc.Postage()
				require.True(t, ok)
				assert.True(t, p.Amount.IsZero())
				assert.True(t, p.AmountTax.IsZero())
			})
		}
	})

	t.Run("typed postage is stored unchanged", func(t *testing.T) {
		want := domain.NewPostage(decimal.RequireFromString("6.00"), decimal.RequireFromString("1.00"), "FR 20%")
		rc := New(stubModule{code: "m"}, newCart()).SetPostage(want)

		got, ok := rc.Postage()
		require.True(t, ok)
		assert.Equal(t, want, got)
	})
}

func TestAdditionalData(t *testing.T) {
	rc := New(stubModule{code: "m"}, newCart())
	assert.False(t, rc.HasAdditionalData())

	rc.AddAdditionalData("x", Int(1))
	assert.True(t, rc.HasAdditionalData())

	rc.AddAdditionalData("x", Int(2))
	require.Len(t, rc.AdditionalData(), 1)

	v, ok := rc.AdditionalData().Get("x")
	require.True(t, ok)
	got, _ := v.AsInt()
	assert.Equal(t, int64(2), got)

	rc.SetAdditionalData(AdditionalData{})
	assert.False(t, rc.HasAdditionalData())

	rc.SetAdditionalData(nil).AddAdditionalData("store", String("Paris 11"))
	assert.True(t, rc.AdditionalData().Has("store"))
}

func TestSetters_Chain(t *testing.T) {
	eta := time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)
	other := stubModule{code: "pickup"}
	cart := newCart()

	rc := New(stubModule{code: "m"}, nil).
		SetModule(other).
		SetCart(cart).
		SetValidModule(true).
		SetDeliveryDate(eta)

	assert.Equal(t, other, rc.Module())
	assert.Same(t, cart, rc.Cart())
	assert.True(t, rc.IsValidModule())

	date, ok := rc.DeliveryDate()
	require.True(t, ok)
	assert.Equal(t, eta, date)
}

func TestLocale(t *testing.T) {
	assert.Equal(t, "fr", New(stubModule{}, nil, WithTranslator(i18n.New("fr"))).Locale())
	assert.Equal(t, "de", New(stubModule{}, nil, WithLocale("de")).Locale())
}

func TestWithContext_RoundTrip(t *testing.T) {
	rc := New(stubModule{code: "m"}, newCart())

	ctx := WithContext(context.Background(), rc)

	assert.Same(t, rc, FromContext(ctx))
	assert.Nil(t, FromContext(context.Background()))
	assert.Nil(t, FromContext(nil)) //nolint:staticcheck // nil context is handled
}

func TestZeroValue(t *testing.T) {
	var rc RequestContext

	assert.False(t, rc.HasAdditionalData())

	require.NotPanics(t, func() { rc.AddAdditionalData("rule", String("europe")) })
	assert.True(t, rc.HasAdditionalData())

	err := rc.SetDeliveryMode("drone")
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.NotEmpty(t, err.Error())

	require.NoError(t, rc.SetDeliveryMode(domain.DeliveryModePickup))

	mode, ok := rc.DeliveryMode()
	assert.True(t, ok)
	assert.Equal(t, domain.DeliveryModePickup, mode)
	assert.NotEmpty(t, rc.Locale())
}

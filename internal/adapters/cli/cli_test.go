package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/postage-service/internal/adapters/http/dto"
)

const configDir = "../../../configs"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config-dir", configDir, "--profile", "local"}, args...))

	err := cmd.Execute()

	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")

	require.NoError(t, err)
	assert.Equal(t, "postagectl dev (none)\n", out)
}

func TestModules(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		out, err := run(t, "modules")

		require.NoError(t, err)
		assert.Contains(t, out, "Delivery modules")
		assert.Contains(t, out, "flat-rate")
		assert.Contains(t, out, "Store pickup")
	})

	t.Run("json", func(t *testing.T) {
		out, err := run(t, "modules", "--json")
		require.NoError(t, err)

		var resp dto.ModulesResponse
		require.NoError(t, json.Unmarshal([]byte(out), &resp))

		codes := make([]string, 0, len(resp.Modules))
		for _, m := range resp.Modules {
			codes = append(codes, m.Code)
		}

		assert.ElementsMatch(t, []string{"flat-rate", "pickup"}, codes)
	})
}

func TestQuote_SingleModule(t *testing.T) {
	out, err := run(t, "quote", "testdata/cart.yaml", "--module", "flat-rate", "--json")
	require.NoError(t, err)

	var resp dto.QuoteResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	assert.Equal(t, "flat-rate", resp.Module)
	assert.Equal(t, "cart-42", resp.CartID)
	assert.Equal(t, "FR", resp.Country)
	assert.True(t, resp.Valid)
	require.NotNil(t, resp.Postage)
	assert.Equal(t, "4.90", resp.Postage.Amount)
}

func TestQuote_Rendered(t *testing.T) {
	out, err := run(t, "quote", "testdata/cart.yaml", "-m", "flat-rate")

	require.NoError(t, err)
	assert.Contains(t, out, "Standard delivery")
	assert.Contains(t, out, "4.90 EUR")
	assert.Contains(t, out, "VAT 20%")
}

func TestQuote_AllModules(t *testing.T) {
	out, err := run(t, "quote", "testdata/cart.yaml", "--json")
	require.NoError(t, err)

	var resp dto.QuoteAllResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Quotes, 2)

	for _, q := range resp.Quotes {
		assert.Nil(t, q.Error, q.Module)
		require.NotNil(t, q.Quote, q.Module)
		assert.True(t, q.Quote.Valid, q.Module)
	}
}

func TestQuote_CountryOverride(t *testing.T) {
	out, err := run(t, "quote", "testdata/cart.yaml", "-m", "pickup", "--country", "de", "--json")
	require.NoError(t, err)

	var resp dto.QuoteResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	assert.Equal(t, "DE", resp.Country)
	assert.False(t, resp.Valid)
}

func TestQuote_CountryAndState(t *testing.T) {
	out, err := run(t, "quote", "testdata/cart.yaml", "-m", "flat-rate", "-c", "fr", "-s", "idf", "--json")
	require.NoError(t, err)

	var resp dto.QuoteResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	assert.Equal(t, "FR", resp.Country)
	assert.Equal(t, "IDF", resp.State)
}

func TestQuote_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains []string
	}{
		{
			name:     "missing file",
			args:     []string{"quote", "testdata/missing.yaml"},
			contains: []string{"reading cart file"},
		},
		{
			name:     "unknown field",
			args:     []string{"quote", "testdata/unknown_field.yaml"},
			contains: []string{"parsing cart file", "coupon"},
		},
		{
			name: "invalid cart",
			args: []string{"quote", "testdata/invalid.yaml"},
			contains: []string{
				"invalid cart file",
				"cart.currency: must be exactly 3 characters",
				"cart.items[0].quantity",
				"cart.items[0].unit_price",
			},
		},
		{
			name:     "unknown module",
			args:     []string{"quote", "testdata/cart.yaml", "-m", "drone"},
			contains: []string{"NOT_FOUND"},
		},
		{
			name:     "no argument",
			args:     []string{"quote"},
			contains: []string{"accepts 1 arg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)

			require.Error(t, err)

			for _, s := range tt.contains {
				assert.Contains(t, err.Error(), s)
			}
		})
	}
}

func TestConfig(t *testing.T) {
	t.Run("validate", func(t *testing.T) {
		out, err := run(t, "config", "validate")

		require.NoError(t, err)
		assert.Contains(t, out, "profile local is valid")
	})

	t.Run("invalid", func(t *testing.T) {
		t.Setenv("APP_SERVER__PORT", "0")

		_, err := run(t, "config", "validate")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "server.port is required")
	})

	t.Run("delivery", func(t *testing.T) {
		out, err := run(t, "config", "delivery")

		require.NoError(t, err)
		assert.Contains(t, out, "flat_rate:")
		assert.Contains(t, out, "name: mainland-france")
		assert.Contains(t, out, "preparation_time: 2h0m0s")
		assert.NotContains(t, out, "carrier:")
	})
}

func TestCartFile_Request(t *testing.T) {
	t.Run("address", func(t *testing.T) {
		f, err := readCartFile("testdata/cart.yaml")
		require.NoError(t, err)

		req := f.request("pickup")

		assert.Equal(t, "pickup", req.Module)
		require.NotNil(t, req.Address)
		assert.Equal(t, "75011", req.Address.ZipCode)
		assert.Empty(t, req.Country)
		require.Len(t, req.Cart.Items, 2)
		assert.Equal(t, "12.50", req.Cart.Items[0].UnitPrice)
	})

	t.Run("country only", func(t *testing.T) {
		f := &cartFile{Destination: destination{Country: "BE", State: "BRU"}}

		req := f.request("")

		assert.Nil(t, req.Address)
		assert.Equal(t, "BE", req.Country)
		assert.Equal(t, "BRU", req.State)
	})
}

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, sortedKeys(map[string]int{"c": 3, "a": 1, "b": 2}))
	assert.Empty(t, sortedKeys[string](nil))
}

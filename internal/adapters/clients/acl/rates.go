package acl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/postage-service/internal/adapters/clients"
	"github.com/jsamuelsen/postage-service/internal/domain"
	"github.com/jsamuelsen/postage-service/internal/platform/logging"
)

const (
	ratesPath  = "/v1/rates"
	healthPath = "/health"
)

// RateRequest describes a parcel to price.
type RateRequest struct {
	CountryCode string
	StateCode   string
	ZipCode     string
	WeightKg    float64
	Items       int
	Value       decimal.Decimal
	Currency    string

	// Service selects a carrier service level. Empty lets the carrier pick.
	Service string
}

// Rate is the carrier price for a parcel.
type Rate struct {
	// Serviceable is false when the carrier does not deliver to the
	// destination. The other fields are then zero.
	Serviceable bool

	Amount      decimal.Decimal
	Tax         decimal.Decimal
	TaxLabel    string
	Currency    string
	Service     string
	Carrier     string
	TransitDays int
}

type rateRequestDTO struct {
	Destination   destinationDTO `json:"destination"`
	Parcel        parcelDTO      `json:"parcel"`
	DeclaredValue moneyDTO       `json:"declared_value"`
	ServiceLevel  string         `json:"service_level,omitempty"`
}

type destinationDTO struct {
	CountryCode string `json:"country_code"`
	Province    string `json:"province,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
}

type parcelDTO struct {
	WeightGrams int64 `json:"weight_grams"`
	Pieces      int   `json:"pieces"`
}

type moneyDTO struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type rateResponseDTO struct {
	Serviceable bool          `json:"serviceable"`
	Quote       *rateQuoteDTO `json:"quote"`
}

type rateQuoteDTO struct {
	Total        string `json:"total"`
	Tax          string `json:"tax"`
	TaxLabel     string `json:"tax_label"`
	Currency     string `json:"currency"`
	ServiceLevel string `json:"service_level"`
	Carrier      string `json:"carrier"`
	TransitDays  int    `json:"transit_days"`
}

// RateClient prices parcels with the carrier rate API.
type RateClient struct {
	client *clients.Client
	logger *slog.Logger
}

// NewRateClient wraps client. It panics if client is nil.
func NewRateClient(client *clients.Client, logger *slog.Logger) *RateClient {
	if client == nil {
		panic("acl: rate client requires an HTTP client")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &RateClient{
		client: client,
		logger: logger.With(slog.String("component", "carrier_rates")),
	}
}

// Rate asks the carrier for the price of req.
func (c *RateClient) Rate(ctx context.Context, req RateRequest) (*Rate, error) {
	c.logger.Log(ctx, logging.LevelTrace, "requesting carrier rate",
		slog.String("country", req.CountryCode),
		slog.Float64("weight_kg", req.WeightKg),
	)

	resp, err := c.client.PostJSON(ctx, ratesPath, toRateRequestDTO(req))
	if err != nil {
		return nil, MapHTTPError(nil, err, c.client.ServiceName(), "rate parcel")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.handleError(ctx, resp)
	}

	var dto rateResponseDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, domain.NewUnavailableError(c.client.ServiceName(), fmt.Sprintf("decoding rate: %v", err))
	}

	rate, err := translateRate(&dto, req.Currency)
	if err != nil {
		return nil, domain.NewUnavailableError(c.client.ServiceName(), err.Error())
	}

	return rate, nil
}

// handleError turns NOT_SERVICEABLE answers into an unserviceable rate and
// everything else into a domain error.
func (c *RateClient) handleError(ctx context.Context, resp *http.Response) (*Rate, error) {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	parsed := parseErrorResponse(bytes.NewReader(body))
	if parsed != nil && parsed.code() == codeNotServiceable {
		return &Rate{}, nil
	}

	c.logger.WarnContext(ctx, "carrier rate API error",
		slog.Int("status_code", resp.StatusCode),
		slog.String("body", string(body)),
	)

	return nil, mapStatus(resp.StatusCode, parsed, c.client.ServiceName(), "rate parcel")
}

// Name implements ports.HealthChecker.
func (c *RateClient) Name() string { return c.client.ServiceName() }

// Check implements ports.HealthChecker.
func (c *RateClient) Check(ctx context.Context) error {
	resp, err := c.client.Get(ctx, healthPath)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("carrier rate API returned status %d", resp.StatusCode)
	}

	return nil
}

func toRateRequestDTO(req RateRequest) rateRequestDTO {
	return rateRequestDTO{
		Destination: destinationDTO{
			CountryCode: strings.ToUpper(req.CountryCode),
			Province:    req.StateCode,
			PostalCode:  req.ZipCode,
		},
		Parcel: parcelDTO{
			WeightGrams: decimal.NewFromFloat(req.WeightKg).Shift(3).Ceil().IntPart(),
			Pieces:      req.Items,
		},
		DeclaredValue: moneyDTO{Amount: req.Value.StringFixed(2), Currency: req.Currency},
		ServiceLevel:  req.Service,
	}
}

// translateRate validates the carrier answer. A rate in another currency
// than the cart is rejected rather than converted.
func translateRate(dto *rateResponseDTO, currency string) (*Rate, error) {
	if !dto.Serviceable {
		return &Rate{}, nil
	}

	if dto.Quote == nil {
		return nil, fmt.Errorf("serviceable rate without quote")
	}

	total, err := decimal.NewFromString(dto.Quote.Total)
	if err != nil {
		return nil, fmt.Errorf("invalid rate total %q", dto.Quote.Total)
	}

	if total.IsNegative() {
		return nil, fmt.Errorf("negative rate total %s", total)
	}

	tax := decimal.Zero
	if dto.Quote.Tax != "" {
		if tax, err = decimal.NewFromString(dto.Quote.Tax); err != nil {
			return nil, fmt.Errorf("invalid rate tax %q", dto.Quote.Tax)
		}
	}

	if tax.GreaterThan(total) {
		return nil, fmt.Errorf("rate tax %s exceeds total %s", tax, total)
	}

	if currency != "" && dto.Quote.Currency != "" && !strings.EqualFold(currency, dto.Quote.Currency) {
		return nil, fmt.Errorf("rate currency %s does not match cart currency %s", dto.Quote.Currency, currency)
	}

	return &Rate{
		Serviceable: true,
		Amount:      total,
		Tax:         tax,
		TaxLabel:    dto.Quote.TaxLabel,
		Currency:    strings.ToUpper(dto.Quote.Currency),
		Service:     dto.Quote.ServiceLevel,
		Carrier:     dto.Quote.Carrier,
		TransitDays: dto.Quote.TransitDays,
	}, nil
}

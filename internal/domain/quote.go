package domain

import "time"

// PostageQuote is the result extracted from a completed postage request.
// It is what gets cached, archived, published and returned to callers.
// The JSON form is the cache and event encoding.
type PostageQuote struct {
	ID          string `json:"id"`
	ModuleCode  string `json:"module_code"`
	ModuleTitle string `json:"module_title"`
	CartID      string `json:"cart_id"`
	Currency    string `json:"currency"`
	CountryCode string `json:"country_code"`
	StateCode   string `json:"state_code,omitempty"`

	// Valid is false when the module declined to serve the destination.
	// Postage, DeliveryDate and DeliveryMode are unset in that case.
	Valid bool `json:"valid"`

	Postage      *Postage     `json:"postage,omitempty"`
	DeliveryDate *time.Time   `json:"delivery_date,omitempty"`
	DeliveryMode DeliveryMode `json:"delivery_mode,omitempty"`

	// AdditionalData holds module specific values as plain Go values.
	// After a JSON round trip numbers decode as float64 and times as strings.
	AdditionalData map[string]any `json:"additional_data,omitempty"`

	// Cached is true when the quote was served from the quote cache.
	Cached bool `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

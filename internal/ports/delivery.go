// Package ports defines the contracts between the quoting use case and the
// outside world. Adapters implement them; the app layer depends only on them.
//
// Every blocking method takes a context first and reports failures with the
// domain error types (domain.ErrNotFound, domain.ErrUnavailable, ...).
package ports

import (
	"context"
	"time"

	"github.com/jsamuelsen/postage-service/internal/app/postage"
	"github.com/jsamuelsen/postage-service/internal/domain"
)

// DeliveryModule computes postage for a request carrier.
//
// The quoting flow first calls IsValidDelivery. Postage is only called when
// the module accepted the request, and is expected to set at least the
// postage on rc; delivery date, delivery mode and additional data are
// optional.
type DeliveryModule interface {
	postage.Module

	// IsValidDelivery reports whether the module can serve the cart and
	// destination held by rc.
	IsValidDelivery(ctx context.Context, rc *postage.RequestContext) (bool, error)

	// Postage fills the computed postage into rc.
	Postage(ctx context.Context, rc *postage.RequestContext) error
}

// QuoteCache stores computed quotes for identical requests.
type QuoteCache interface {
	// Get returns the quote cached under key.
	// Returns domain.ErrNotFound on a miss.
	Get(ctx context.Context, key string) (*domain.PostageQuote, error)

	// Set caches quote under key for ttl. A zero ttl never expires.
	Set(ctx context.Context, key string, quote *domain.PostageQuote, ttl time.Duration) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}

// QuotePublisher announces computed quotes to other systems.
type QuotePublisher interface {
	// PublishQuoted emits a postage.quoted event for quote.
	// Returns domain.ErrUnavailable if the broker cannot be reached.
	PublishQuoted(ctx context.Context, quote *domain.PostageQuote) error
}

// QuoteRepository archives quotes so they can be read back later,
// for instance when the order is placed.
type QuoteRepository interface {
	// Save persists quote. Returns domain.ErrConflict if the ID exists.
	Save(ctx context.Context, quote *domain.PostageQuote) error

	// FindByID returns the archived quote.
	// Returns domain.ErrNotFound if there is none.
	FindByID(ctx context.Context, id string) (*domain.PostageQuote, error)
}

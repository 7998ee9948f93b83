package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/postage-service/internal/domain"
	"github.com/jsamuelsen/postage-service/internal/ports"
)

// archiveAction is one write of the archive step.
type archiveAction interface {
	Execute(ctx context.Context) error

	// Rollback undoes Execute when a later action fails.
	Rollback(ctx context.Context) error

	Description() string
}

// commitActions executes actions in order. When one fails the executed ones
// are rolled back in reverse order and the failure is returned.
func commitActions(ctx context.Context, logger *slog.Logger, actions []archiveAction) error {
	executed := make([]archiveAction, 0, len(actions))

	for _, action := range actions {
		if err := action.Execute(ctx); err != nil {
			for i := len(executed) - 1; i >= 0; i-- {
				if rbErr := executed[i].Rollback(ctx); rbErr != nil {
					logger.WarnContext(ctx, "rollback failed",
						slog.String("action", executed[i].Description()),
						slog.Any("error", rbErr),
					)
				}
			}

			return fmt.Errorf("%s: %w", action.Description(), err)
		}

		executed = append(executed, action)
	}

	return nil
}

// cacheQuoteAction stores the quote in the quote cache. A cache failure
// only degrades performance, so it is logged and swallowed.
type cacheQuoteAction struct {
	cache  ports.QuoteCache
	key    string
	quote  *domain.PostageQuote
	ttl    time.Duration
	logger *slog.Logger
	stored bool
}

func (a *cacheQuoteAction) Execute(ctx context.Context) error {
	if err := a.cache.Set(ctx, a.key, a.quote, a.ttl); err != nil {
		a.logger.WarnContext(ctx, "caching quote failed", slog.String("key", a.key), slog.Any("error", err))
		return nil
	}

	a.stored = true

	return nil
}

func (a *cacheQuoteAction) Rollback(ctx context.Context) error {
	if !a.stored {
		return nil
	}

	return a.cache.Delete(ctx, a.key)
}

func (a *cacheQuoteAction) Description() string { return "cache quote" }

// saveQuoteAction archives the quote. It is the only mandatory write.
type saveQuoteAction struct {
	repo  ports.QuoteRepository
	quote *domain.PostageQuote
}

func (a *saveQuoteAction) Execute(ctx context.Context) error {
	return a.repo.Save(ctx, a.quote)
}

// Rollback is a no-op: a saved quote is the last thing that can fail.
func (a *saveQuoteAction) Rollback(context.Context) error { return nil }

func (a *saveQuoteAction) Description() string { return "save quote" }

// publishQuoteAction emits the postage.quoted event, best effort.
type publishQuoteAction struct {
	publisher ports.QuotePublisher
	quote     *domain.PostageQuote
	logger    *slog.Logger
}

func (a *publishQuoteAction) Execute(ctx context.Context) error {
	if err := a.publisher.PublishQuoted(ctx, a.quote); err != nil {
		a.logger.WarnContext(ctx, "publishing quote failed", slog.String("quote_id", a.quote.ID), slog.Any("error", err))
	}

	return nil
}

func (a *publishQuoteAction) Rollback(context.Context) error { return nil }

func (a *publishQuoteAction) Description() string { return "publish quote" }

package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/postage-service/internal/app/postage"
	"github.com/jsamuelsen/postage-service/internal/domain"
	"github.com/jsamuelsen/postage-service/internal/platform/i18n"
	"github.com/jsamuelsen/postage-service/internal/ports"
)

// Quote outcomes reported to the QuoteRecorder.
const (
	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
	OutcomeCached  = "cached"
)

var tracer = otel.Tracer("github.com/jsamuelsen/postage-service/internal/app")

// QuoteRecorder receives one observation per quote request.
type QuoteRecorder interface {
	ObserveQuote(module, outcome string, duration time.Duration)
}

// QuoteInput describes a postage request for one delivery module.
type QuoteInput struct {
	ModuleCode string
	Cart       *domain.Cart

	// Address takes precedence over Country and State when set.
	Address *domain.Address
	Country *domain.Country
	State   *domain.State

	// Locale selects the language of user facing error messages.
	Locale string
}

// ModuleQuote is the result of one module in QuoteAll.
type ModuleQuote struct {
	ModuleCode string
	Quote      *domain.PostageQuote
	Err        error
}

// ModuleInfo describes a registered delivery module.
type ModuleInfo struct {
	Code  string
	Title string
}

// PostageServiceConfig holds the dependencies of PostageService.
// Registry is required; every other adapter is optional.
type PostageServiceConfig struct {
	Registry   ports.ModuleRegistry
	Cache      ports.QuoteCache
	Publisher  ports.QuotePublisher
	Repository ports.QuoteRepository
	Recorder   QuoteRecorder
	Translator *i18n.Translator
	Logger     *slog.Logger

	CacheTTL      time.Duration
	ModuleTimeout time.Duration

	// Concurrency bounds the modules quoted at once by QuoteAll.
	Concurrency int

	// Now defaults to time.Now.
	Now func() time.Time
}

// PostageService computes postage quotes by handing a request carrier to
// the selected delivery module.
type PostageService struct {
	registry   ports.ModuleRegistry
	cache      ports.QuoteCache
	publisher  ports.QuotePublisher
	repository ports.QuoteRepository
	recorder   QuoteRecorder
	translator *i18n.Translator
	logger     *slog.Logger
	executor   *Executor

	cacheTTL      time.Duration
	moduleTimeout time.Duration
	concurrency   int
	now           func() time.Time
}

// NewPostageService creates the service. It panics without a registry.
func NewPostageService(cfg PostageServiceConfig) *PostageService {
	if cfg.Registry == nil {
		panic("postage service: module registry is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("component", "postage_service"))

	translator := cfg.Translator
	if translator == nil {
		translator = i18n.Default()
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &PostageService{
		registry:      cfg.Registry,
		cache:         cfg.Cache,
		publisher:     cfg.Publisher,
		repository:    cfg.Repository,
		recorder:      cfg.Recorder,
		translator:    translator,
		logger:        logger,
		executor:      NewExecutor(logger),
		cacheTTL:      cfg.CacheTTL,
		moduleTimeout: cfg.ModuleTimeout,
		concurrency:   cfg.Concurrency,
		now:           now,
	}
}

// Modules lists the registered delivery modules ordered by code.
func (s *PostageService) Modules() []ModuleInfo {
	modules := s.registry.All()

	infos := make([]ModuleInfo, 0, len(modules))
	for _, m := range modules {
		infos = append(infos, ModuleInfo{Code: m.Code(), Title: m.Title()})
	}

	return infos
}

// Quote computes the postage of in.Cart with the module in.ModuleCode.
//
// A module that declines the destination is not an error: the quote comes
// back with Valid set to false and no postage. Errors are domain errors
// wrapped in an *ExecutionError.
func (s *PostageService) Quote(ctx context.Context, in QuoteInput) (*domain.PostageQuote, error) {
	start := time.Now()
	key := cacheKey(in)

	if quote, ok := s.cached(ctx, key); ok {
		s.observe(in.ModuleCode, OutcomeCached, start)
		return quote, nil
	}

	op := Operation[QuoteInput, *postage.RequestContext, *domain.PostageQuote, *domain.PostageQuote]{
		Name:     "quote_postage",
		Validate: s.validate,
		Perform:  s.perform,
		Verify:   s.verify,
		Archive: func(ctx context.Context, _ QuoteInput, quote *domain.PostageQuote) error {
			return s.archive(ctx, key, quote)
		},
		Respond: func(_ context.Context, _ QuoteInput, quote *domain.PostageQuote) (*domain.PostageQuote, error) {
			return quote, nil
		},
	}

	quote, err := Execute(ctx, s.executor, op, in)
	if err != nil {
		s.observe(in.ModuleCode, OutcomeError, start)
		return nil, err
	}

	outcome := OutcomeInvalid
	if quote.Valid {
		outcome = OutcomeValid
	}

	s.observe(quote.ModuleCode, outcome, start)

	s.logger.InfoContext(ctx, "postage quoted",
		slog.String("module", quote.ModuleCode),
		slog.String("cart_id", quote.CartID),
		slog.String("country", quote.CountryCode),
		slog.Bool("valid", quote.Valid),
	)

	return quote, nil
}

// QuoteAll quotes in with every registered module. in.ModuleCode is ignored.
// Results are ordered by module code; a failing module does not fail the
// others.
func (s *PostageService) QuoteAll(ctx context.Context, in QuoteInput) ([]ModuleQuote, error) {
	if err := s.validateRequest(in); err != nil {
		return nil, &ExecutionError{Step: StepValidate, Cause: err}
	}

	modules := s.registry.All()

	fns := make([]func(context.Context) (*domain.PostageQuote, error), len(modules))
	for i, m := range modules {
		moduleInput := in
		moduleInput.ModuleCode = m.Code()

		fns[i] = func(ctx context.Context) (*domain.PostageQuote, error) {
			return s.Quote(ctx, moduleInput)
		}
	}

	results := ParallelPartialLimit(ctx, s.concurrency, fns...)

	quotes := make([]ModuleQuote, len(modules))
	for i, r := range results {
		quotes[i] = ModuleQuote{ModuleCode: modules[i].Code(), Quote: r.Value, Err: r.Err}
	}

	return quotes, nil
}

// GetQuote returns an archived quote.
func (s *PostageService) GetQuote(ctx context.Context, id string) (*domain.PostageQuote, error) {
	if s.repository == nil {
		return nil, domain.NewNotFoundError("postage quote", id)
	}

	quote, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding quote: %w", err)
	}

	return quote, nil
}

func (s *PostageService) validate(_ context.Context, in QuoteInput) error {
	if strings.TrimSpace(in.ModuleCode) == "" {
		return domain.NewValidationError("module", s.translator.Trans(in.Locale, i18n.MsgMissingModule))
	}

	return s.validateRequest(in)
}

func (s *PostageService) validateRequest(in QuoteInput) error {
	if in.Cart.IsEmpty() {
		return domain.NewValidationError("cart", s.translator.Trans(in.Locale, i18n.MsgEmptyCart))
	}

	country := in.Country
	if in.Address != nil {
		country = in.Address.Country
	}

	if country.CountryCode() == "" {
		return domain.NewValidationError("country", s.translator.Trans(in.Locale, i18n.MsgMissingDestination))
	}

	return nil
}

func (s *PostageService) perform(ctx context.Context, in QuoteInput) (rc *postage.RequestContext, err error) {
	module, err := s.registry.Get(in.ModuleCode)
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "postage.compute",
		trace.WithAttributes(attribute.String("postage.module", module.Code())))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Bool("postage.valid", rc.IsValidModule()))
		}

		span.End()
	}()

	if s.moduleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.moduleTimeout)

		defer cancel()
	}

	rc = postage.New(module, in.Cart,
		postage.WithAddress(in.Address),
		postage.WithCountry(in.Country),
		postage.WithState(in.State),
		postage.WithTranslator(s.translator),
		postage.WithLocale(in.Locale),
	)
	ctx = postage.WithContext(ctx, rc)

	valid, err := module.IsValidDelivery(ctx, rc)
	if err != nil {
		return nil, fmt.Errorf("module %s: checking delivery: %w", module.Code(), err)
	}

	rc.SetValidModule(valid)

	if !valid {
		return rc, nil
	}

	if err := module.Postage(ctx, rc); err != nil {
		return nil, fmt.Errorf("module %s: computing postage: %w", module.Code(), err)
	}

	return rc, nil
}

func (s *PostageService) verify(_ context.Context, in QuoteInput, rc *postage.RequestContext) (*domain.PostageQuote, error) {
	if rc.IsValidModule() {
		p, ok := rc.Postage()
		if !ok {
			return nil, domain.NewValidationError("postage", s.translator.Trans(in.Locale, i18n.MsgMissingPostage))
		}

		if p.Amount.IsNegative() {
			return nil, domain.NewValidationErrorWithValue("postage",
				s.translator.Trans(in.Locale, i18n.MsgNegativePostage), p.Amount.String())
		}
	}

	return s.extract(rc), nil
}

// extract builds the quote the final consumer reads from the carrier.
func (s *PostageService) extract(rc *postage.RequestContext) *domain.PostageQuote {
	quote := &domain.PostageQuote{
		ID:          uuid.NewString(),
		ModuleCode:  rc.Module().Code(),
		ModuleTitle: rc.Module().Title(),
		CountryCode: rc.Country().CountryCode(),
		StateCode:   rc.State().StateCode(),
		Valid:       rc.IsValidModule(),
		CreatedAt:   s.now().UTC(),
	}

	if cart := rc.Cart(); cart != nil {
		quote.CartID = cart.ID
		quote.Currency = cart.Currency
	}

	if !quote.Valid {
		return quote
	}

	if p, ok := rc.Postage(); ok {
		quote.Postage = &p
	}

	if date, ok := rc.DeliveryDate(); ok {
		quote.DeliveryDate = &date
	}

	if mode, ok := rc.DeliveryMode(); ok {
		quote.DeliveryMode = mode
	}

	quote.AdditionalData = rc.AdditionalData().Plain()

	return quote
}

func (s *PostageService) archive(ctx context.Context, key string, quote *domain.PostageQuote) error {
	var actions []archiveAction

	if s.cache != nil {
		actions = append(actions, &cacheQuoteAction{
			cache: s.cache, key: key, quote: quote, ttl: s.cacheTTL, logger: s.logger,
		})
	}

	// Declined quotes are cached but never archived nor announced.
	if quote.Valid {
		if s.repository != nil {
			actions = append(actions, &saveQuoteAction{repo: s.repository, quote: quote})
		}

		if s.publisher != nil {
			actions = append(actions, &publishQuoteAction{publisher: s.publisher, quote: quote, logger: s.logger})
		}
	}

	return commitActions(ctx, s.logger, actions)
}

func (s *PostageService) cached(ctx context.Context, key string) (*domain.PostageQuote, bool) {
	if s.cache == nil {
		return nil, false
	}

	quote, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "quote cache lookup failed", slog.Any("error", err))
		}

		return nil, false
	}

	quote.Cached = true

	return quote, true
}

func (s *PostageService) observe(module, outcome string, start time.Time) {
	if s.recorder != nil {
		s.recorder.ObserveQuote(module, outcome, time.Since(start))
	}
}

// cacheKey identifies a request by module, cart lines and destination.
func cacheKey(in QuoteInput) string {
	h := sha256.New()

	write := func(parts ...string) {
		for _, p := range parts {
			h.Write([]byte(p))
			h.Write([]byte{0})
		}
	}

	write(in.ModuleCode, in.Locale)

	if in.Cart != nil {
		write(in.Cart.ID, in.Cart.Currency)

		for _, item := range in.Cart.Items {
			write(item.Ref, strconv.Itoa(item.Quantity), item.UnitPrice.String(),
				strconv.FormatFloat(item.Weight, 'f', -1, 64))
		}
	}

	country, state, zip := in.Country, in.State, ""
	if in.Address != nil {
		country, state, zip = in.Address.Country, in.Address.State, in.Address.ZipCode
	}

	write(country.CountryCode(), state.StateCode(), zip)

	return hex.EncodeToString(h.Sum(nil))
}

package postage

import (
	"context"
	"time"

	"github.com/jsamuelsen/postage-service/internal/domain"
	"github.com/jsamuelsen/postage-service/internal/platform/i18n"
)

type ctxKey struct{}

// RequestContext carries the inputs and the outputs of one postage computation.
type RequestContext struct {
	module      Module
	cart        *domain.Cart
	address     *domain.Address
	country     *domain.Country
	state       *domain.State
	validModule bool

	postage      *domain.Postage
	deliveryDate *time.Time
	deliveryMode domain.DeliveryMode

	additionalData AdditionalData

	translator *i18n.Translator
	locale     string
}

// Option configures a RequestContext at construction.
type Option func(*RequestContext)

// WithAddress sets the delivery address.
func WithAddress(address *domain.Address) Option {
	return func(rc *RequestContext) { rc.address = address }
}

// WithCountry sets the country used when no address is set.
func WithCountry(country *domain.Country) Option {
	return func(rc *RequestContext) { rc.country = country }
}

// WithState sets the state used when no address is set.
func WithState(state *domain.State) Option {
	return func(rc *RequestContext) { rc.state = state }
}

// WithTranslator sets the translator used for error messages.
// The package default translator is used otherwise.
func WithTranslator(t *i18n.Translator) Option {
	return func(rc *RequestContext) { rc.translator = t }
}

// WithLocale sets the locale error messages are rendered in.
func WithLocale(locale string) Option {
	return func(rc *RequestContext) { rc.locale = locale }
}

// New creates a RequestContext for module and cart. The module starts as not
// valid and no postage, date or mode is set.
func New(module Module, cart *domain.Cart, opts ...Option) *RequestContext {
	rc := &RequestContext{
		module:         module,
		cart:           cart,
		additionalData: AdditionalData{},
	}

	for _, opt := range opts {
		opt(rc)
	}

	if rc.translator == nil {
		rc.translator = i18n.Default()
	}

	return rc
}

// FromContext extracts the RequestContext, returns nil if not present.
func FromContext(ctx context.Context) *RequestContext {
	if ctx == nil {
		return nil
	}

	rc, _ := ctx.Value(ctxKey{}).(*RequestContext)

	return rc
}

// WithContext stores rc in ctx.
func WithContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, rc)
}

// Module returns the delivery module the request is computed for.
func (rc *RequestContext) Module() Module { return rc.module }

// SetModule replaces the delivery module.
func (rc *RequestContext) SetModule(module Module) *RequestContext {
	rc.module = module
	return rc
}

// Cart returns the cart.
func (rc *RequestContext) Cart() *domain.Cart { return rc.cart }

// SetCart replaces the cart.
func (rc *RequestContext) SetCart(cart *domain.Cart) *RequestContext {
	rc.cart = cart
	return rc
}

// Address returns the delivery address, nil when none was given.
func (rc *RequestContext) Address() *domain.Address { return rc.address }

// SetAddress replaces the delivery address. A nil address makes Country and
// State fall back to the values given at construction.
func (rc *RequestContext) SetAddress(address *domain.Address) *RequestContext {
	rc.address = address
	return rc
}

// Country returns the destination country: the address country when an
// address is set, the fallback country otherwise.
func (rc *RequestContext) Country() *domain.Country {
	if rc.address != nil {
		return rc.address.Country
	}

	return rc.country
}

// State returns the destination state with the same precedence as Country.
func (rc *RequestContext) State() *domain.State {
	if rc.address != nil {
		return rc.address.State
	}

	return rc.state
}

// IsValidModule reports whether the module accepted to serve the request.
func (rc *RequestContext) IsValidModule() bool { return rc.validModule }

// SetValidModule records whether the module can serve the request.
func (rc *RequestContext) SetValidModule(valid bool) *RequestContext {
	rc.validModule = valid
	return rc
}

// Postage returns the computed postage. ok is false until one was set.
func (rc *RequestContext) Postage() (p domain.Postage, ok bool) {
	if rc.postage == nil {
		return domain.Postage{}, false
	}

	return *rc.postage, true
}

// SetPostage stores an already normalized postage as is.
func (rc *RequestContext) SetPostage(p domain.Postage) *RequestContext {
	rc.postage = &p
	return rc
}

// SetPostageAmount normalizes a raw amount into a postage without tax.
// It never fails: NaN and infinite amounts are stored as zero.
func (rc *RequestContext) SetPostageAmount(amount float64) *RequestContext {
	return rc.SetPostage(domain.PostageFromAmount(amount))
}

// DeliveryDate returns the estimated delivery date. ok is false until set.
func (rc *RequestContext) DeliveryDate() (date time.Time, ok bool) {
	if rc.deliveryDate == nil {
		return time.Time{}, false
	}

	return *rc.deliveryDate, true
}

// SetDeliveryDate sets the estimated delivery date.
func (rc *RequestContext) SetDeliveryDate(date time.Time) *RequestContext {
	rc.deliveryDate = &date
	return rc
}

// DeliveryMode returns the delivery mode. ok is false until set.
func (rc *RequestContext) DeliveryMode() (mode domain.DeliveryMode, ok bool) {
	return rc.deliveryMode, rc.deliveryMode != ""
}

// SetDeliveryMode sets the delivery mode. Anything other than pickup or
// delivery is rejected with a localized *domain.InvalidArgumentError and
// the current mode is kept.
func (rc *RequestContext) SetDeliveryMode(mode domain.DeliveryMode) error {
	if !mode.IsValid() {
		return domain.NewInvalidArgumentError(
			"deliveryMode",
			string(mode),
			rc.trans().Trans(rc.locale, i18n.MsgInvalidDeliveryMode),
		)
	}

	rc.deliveryMode = mode

	return nil
}

// Locale returns the locale used for user facing messages.
func (rc *RequestContext) Locale() string {
	if rc.locale == "" {
		return rc.trans().DefaultLocale()
	}

	return rc.locale
}

// trans returns the carrier translator, the package default for a zero
// RequestContext.
func (rc *RequestContext) trans() *i18n.Translator {
	if rc.translator == nil {
		return i18n.Default()
	}

	return rc.translator
}

// HasAdditionalData reports whether any module specific data was added.
func (rc *RequestContext) HasAdditionalData() bool {
	return len(rc.additionalData) > 0
}

// AdditionalData returns the module specific data.
func (rc *RequestContext) AdditionalData() AdditionalData {
	return rc.additionalData
}

// SetAdditionalData replaces the module specific data.
func (rc *RequestContext) SetAdditionalData(data AdditionalData) *RequestContext {
	if data == nil {
		data = AdditionalData{}
	}

	rc.additionalData = data

	return rc
}

// AddAdditionalData sets one entry, replacing any previous value for key.
func (rc *RequestContext) AddAdditionalData(key string, value Value) *RequestContext {
	if rc.additionalData == nil {
		rc.additionalData = AdditionalData{}
	}

	rc.additionalData[key] = value
	return rc
}

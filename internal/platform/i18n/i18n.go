// Package i18n translates user facing messages.
//
// Messages are keyed by their English text. A Translator resolves a locale
// such as "fr" or "fr-CA" to the closest catalog language and falls back to
// English for anything it does not know.
package i18n

import (
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	MsgInvalidDeliveryMode = "A delivery module can only be of type pickup or delivery"
	MsgEmptyCart           = "The cart does not contain any item"
	MsgMissingDestination  = "A delivery address or a destination country is required"
	MsgMissingModule       = "A delivery module code is required"
	MsgNegativePostage     = "The postage amount cannot be negative"
	MsgMissingPostage      = "The delivery module did not compute a postage"
)

var translations = map[language.Tag]map[string]string{
	language.French: {
		MsgInvalidDeliveryMode: "Un module de livraison ne peut être que de type retrait ou livraison",
		MsgEmptyCart:           "Le panier ne contient aucun article",
		MsgMissingDestination:  "Une adresse de livraison ou un pays de destination est requis",
		MsgMissingModule:       "Le code du module de livraison est requis",
		MsgNegativePostage:     "Les frais de port ne peuvent pas être négatifs",
		MsgMissingPostage:      "Le module de livraison n'a pas calculé de frais de port",
	},
}

// Translator renders message keys for a locale.
type Translator struct {
	catalog       catalog.Catalog
	defaultLocale string

	mu       sync.RWMutex
	printers map[string]*message.Printer
}

// New builds a translator over the embedded catalog. defaultLocale is used
// when Trans is called with an empty locale.
func New(defaultLocale string) *Translator {
	b := catalog.NewBuilder(catalog.Fallback(language.English))

	for _, key := range keys() {
		_ = b.SetString(language.English, key, key)
	}

	for tag, messages := range translations {
		for key, msg := range messages {
			_ = b.SetString(tag, key, msg)
		}
	}

	if defaultLocale == "" {
		defaultLocale = language.English.String()
	}

	return &Translator{
		catalog:       b,
		defaultLocale: defaultLocale,
		printers:      make(map[string]*message.Printer),
	}
}

// DefaultLocale returns the locale used when none is given.
func (t *Translator) DefaultLocale() string {
	return t.defaultLocale
}

// Trans renders key for locale, formatting args into the message.
func (t *Translator) Trans(locale, key string, args ...any) string {
	return t.printer(locale).Sprintf(key, args...)
}

func (t *Translator) printer(locale string) *message.Printer {
	if locale == "" {
		locale = t.defaultLocale
	}

	t.mu.RLock()
	p, ok := t.printers[locale]
	t.mu.RUnlock()

	if ok {
		return p
	}

	// Lookups walk the tag parents (fr-CA, fr) before the English fallback.
	p = message.NewPrinter(language.Make(locale), message.Catalog(t.catalog))

	t.mu.Lock()
	t.printers[locale] = p
	t.mu.Unlock()

	return p
}

var (
	supported = supportedTags()
	matcher   = language.NewMatcher(supported)
)

func supportedTags() []language.Tag {
	tags := []language.Tag{language.English}
	for tag := range translations {
		tags = append(tags, tag)
	}

	return tags
}

// Supported returns the catalog languages, English first.
func Supported() []language.Tag {
	return append([]language.Tag(nil), supported...)
}

// Match picks the catalog language closest to an Accept-Language header
// value. fallback is returned when the header is empty or matches nothing.
func Match(acceptLanguage, fallback string) string {
	if acceptLanguage == "" {
		return fallback
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}

	_, idx, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return fallback
	}

	return supported[idx].String()
}

func keys() []string {
	return []string{
		MsgInvalidDeliveryMode,
		MsgEmptyCart,
		MsgMissingDestination,
		MsgMissingModule,
		MsgNegativePostage,
		MsgMissingPostage,
	}
}

var (
	defaultMu         sync.RWMutex
	defaultTranslator = New("en")
)

// Default returns the process wide translator.
func Default() *Translator {
	defaultMu.RLock()
	defer defaultMu.RUnlock()

	return defaultTranslator
}

// SetDefault replaces the process wide translator.
func SetDefault(t *Translator) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultTranslator = t
}

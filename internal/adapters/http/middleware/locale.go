package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/postage-service/internal/platform/i18n"
)

// ContextKeyLocale is the gin.Context key of the negotiated locale.
const ContextKeyLocale = "locale"

// HeaderContentLanguage reports the negotiated locale in responses.
const HeaderContentLanguage = "Content-Language"

const ctxKeyLocale contextKey = "locale"

// Locale negotiates the response language from Accept-Language against the
// message catalogs, using fallback when nothing matches.
func Locale(fallback string) gin.HandlerFunc {
	return func(c *gin.Context) {
		locale := i18n.Match(c.GetHeader("Accept-Language"), fallback)

		c.Set(ContextKeyLocale, locale)
		c.Header(HeaderContentLanguage, locale)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), ctxKeyLocale, locale))

		c.Next()
	}
}

// GetLocale returns the locale negotiated by Locale, or "".
func GetLocale(c *gin.Context) string {
	return c.GetString(ContextKeyLocale)
}

// LocaleFromContext returns the locale stored in ctx, or "".
func LocaleFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxKeyLocale)
}

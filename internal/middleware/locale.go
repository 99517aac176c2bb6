package middleware

import (
	"go-workforce/internal/shared/i18n"

	"github.com/gin-gonic/gin"
)

// Locale stores the Accept-Language base tag on the request context for
// error message translation.
func Locale() gin.HandlerFunc {
	return func(c *gin.Context) {
		if lang := i18n.ParseAcceptLanguage(c.GetHeader("Accept-Language")); lang != "" {
			c.Request = c.Request.WithContext(i18n.WithLocale(c.Request.Context(), lang))
		}
		c.Next()
	}
}

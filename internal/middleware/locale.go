package middleware

import (
	"context"
	"net/http"

	"golang.org/x/text/language"
)

type localeContextKey struct{}

// supported are the script languages the generation backend handles well.
// English is first so it wins as the matcher fallback.
var supported = []language.Tag{
	language.English,
	language.Indonesian,
	language.Spanish,
	language.French,
	language.German,
	language.Portuguese,
	language.Japanese,
	language.Korean,
}

var matcher = language.NewMatcher(supported)

// Locale resolves the request language and stores it in the context. The
// X-Locale header wins over Accept-Language; anything unmatchable falls
// back to defaultLocale.
func Locale(defaultLocale string) func(http.Handler) http.Handler {
	if defaultLocale == "" {
		defaultLocale = "en"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := detectLocale(r, defaultLocale)
			ctx := context.WithValue(r.Context(), localeContextKey{}, locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectLocale(r *http.Request, fallback string) string {
	header := r.Header.Get("X-Locale")
	if header == "" {
		header = r.Header.Get("Accept-Language")
	}
	if header == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// LocaleFromContext returns the locale stored by the Locale middleware,
// defaulting to English.
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(localeContextKey{}).(string); ok {
		return v
	}
	return "en"
}

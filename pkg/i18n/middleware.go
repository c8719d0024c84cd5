package i18n

import (
	"net/http"

	"golang.org/x/text/language"
)

// Middleware stores the negotiated request language in the request context.
// A nil extractor means DefaultLangExtractor. When the extractor yields
// language.Und the context carries DefaultLanguage.
func Middleware(extr LangExtractor) func(http.Handler) http.Handler {
	if extr == nil {
		extr = DefaultLangExtractor()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tag := extr(r)
			if tag == language.Und {
				tag = DefaultLanguage
			}
			w.Header().Set("Content-Language", tag.String())
			next.ServeHTTP(w, r.WithContext(SetLocale(r.Context(), tag)))
		})
	}
}

package i18n

import (
	"net/http"

	"golang.org/x/text/language"
)

// ExtractorConfig holds configuration for the language extractor.
type ExtractorConfig struct {
	CookieName     string
	QueryParamName string
}

// ExtractorOption configures the language extractor.
type ExtractorOption func(*ExtractorConfig)

// WithCookieName sets the cookie name to check for language preference.
func WithCookieName(name string) ExtractorOption {
	return func(c *ExtractorConfig) {
		if name == "" {
			return
		}
		c.CookieName = name
	}
}

// WithQueryParamName sets the query parameter name to check for language.
func WithQueryParamName(name string) ExtractorOption {
	return func(c *ExtractorConfig) {
		if name == "" {
			return
		}
		c.QueryParamName = name
	}
}

// DefaultLangExtractor checks, in order, the "lang" cookie, the "lang" query
// parameter and the Accept-Language header. The first source naming a
// supported language wins.
func DefaultLangExtractor(opts ...ExtractorOption) LangExtractor {
	config := &ExtractorConfig{
		CookieName:     "lang",
		QueryParamName: "lang",
	}
	for _, opt := range opts {
		opt(config)
	}

	return func(r *http.Request) language.Tag {
		if config.CookieName != "" {
			if cookie, err := r.Cookie(config.CookieName); err == nil {
				if tag, ok := match(cookie.Value); ok {
					return tag
				}
			}
		}

		if config.QueryParamName != "" {
			if tag, ok := match(r.URL.Query().Get(config.QueryParamName)); ok {
				return tag
			}
		}

		if tag, ok := match(r.Header.Get("Accept-Language")); ok {
			return tag
		}

		return language.Und
	}
}

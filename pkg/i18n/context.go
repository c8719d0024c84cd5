package i18n

import (
	"context"

	"golang.org/x/text/language"
)

type localeContextKey struct{}

// SetLocale stores the request language in ctx.
func SetLocale(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, localeContextKey{}, tag)
}

// GetLocale returns the language stored in ctx or DefaultLanguage.
func GetLocale(ctx context.Context) language.Tag {
	tag, ok := ctx.Value(localeContextKey{}).(language.Tag)
	if !ok || tag == language.Und {
		return DefaultLanguage
	}
	return tag
}

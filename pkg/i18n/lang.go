package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultLanguage is used when a request states no supported language.
var DefaultLanguage = language.BrazilianPortuguese

// Supported lists the catalog languages. The first entry is the default.
var Supported = []language.Tag{
	language.BrazilianPortuguese,
	language.English,
}

var matcher = language.NewMatcher(Supported)

// maxAcceptLanguageLength caps the header before parsing.
const maxAcceptLanguageLength = 4096

// Match negotiates a supported language from an Accept-Language header or a
// single tag such as "en" or "pt-br". Unparseable or unsupported input
// yields DefaultLanguage.
func Match(value string) language.Tag {
	tag, ok := match(value)
	if !ok {
		return DefaultLanguage
	}
	return tag
}

func match(value string) (language.Tag, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return language.Und, false
	}
	if len(value) > maxAcceptLanguageLength {
		value = value[:maxAcceptLanguageLength]
	}

	tags, _, err := language.ParseAcceptLanguage(value)
	if err != nil || len(tags) == 0 {
		return language.Und, false
	}

	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return language.Und, false
	}
	return Supported[idx], true
}

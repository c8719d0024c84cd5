package i18n

import (
	"net/http"

	"golang.org/x/text/language"
)

// LangExtractor returns the preferred language of a request or language.Und
// when the request states none.
type LangExtractor func(r *http.Request) language.Tag

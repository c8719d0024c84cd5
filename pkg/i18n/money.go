package i18n

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// FormatBRL formats an amount in centavos for tag, e.g. "R$ 1.198,80" in
// pt-BR and "R$ 1,198.80" in English.
func FormatBRL(tag language.Tag, cents int64) string {
	amount := currency.BRL.Amount(float64(cents) / 100)
	return Printer(tag).Sprint(currency.Symbol(amount))
}

package validator

import (
	"time"
)

// ValidCardNumber checks length (13-19 digits) and the Luhn checksum.
// Spaces and dashes are ignored.
func ValidCardNumber(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return luhn(value)
		},
		Error: newError(field, "invalid credit card number", "validation.credit_card", nil),
	}
}

// ValidCVV requires 3 or 4 digits.
func ValidCVV(field, value string) Rule {
	return Rule{
		Check: func() bool {
			d := Digits(value)
			return len(d) == len(value) && (len(d) == 3 || len(d) == 4)
		},
		Error: newError(field, "must be a 3 or 4 digit security code", "validation.cvv", nil),
	}
}

// ValidCardExpiry fails when month is out of range or the card expired
// before the month of now. Two-digit years are read as 20YY.
func ValidCardExpiry(field string, month, year int, now time.Time) Rule {
	return Rule{
		Check: func() bool {
			if month < 1 || month > 12 {
				return false
			}
			if year < 100 {
				year += 2000
			}
			y, m, _ := now.Date()
			return year > y || (year == y && month >= int(m))
		},
		Error: newError(field, "card is expired or expiry date is invalid", "validation.card_expiry",
			map[string]any{"month": month, "year": year}),
	}
}

func luhn(value string) bool {
	for i := 0; i < len(value); i++ {
		c := value[i]
		if (c < '0' || c > '9') && c != ' ' && c != '-' {
			return false
		}
	}
	d := Digits(value)
	if len(d) < 13 || len(d) > 19 {
		return false
	}

	sum := 0
	double := false
	for i := len(d) - 1; i >= 0; i-- {
		digit := int(d[i] - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}
	return sum%10 == 0
}

package validator

import "strings"

// ValidTaxDocument validates a CPF (11 digits) or CNPJ (14 digits) including
// both check digits. Punctuation is ignored.
func ValidTaxDocument(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return IsCPF(value) || IsCNPJ(value)
		},
		Error: newError(field, "must be a valid CPF or CNPJ", "validation.tax_document", nil),
	}
}

// ValidPostalCode validates a CEP (8 digits).
func ValidPostalCode(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return len(Digits(value)) == 8
		},
		Error: newError(field, "must be a valid postal code", "validation.postal_code", nil),
	}
}

func IsCPF(value string) bool {
	d := Digits(value)
	if len(d) != 11 || allSame(d) {
		return false
	}
	return checkDigit(d[:9], 10) == d[9] && checkDigit(d[:10], 11) == d[10]
}

func IsCNPJ(value string) bool {
	d := Digits(value)
	if len(d) != 14 || allSame(d) {
		return false
	}
	w1 := []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	w2 := []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	return weightedDigit(d[:12], w1) == d[12] && weightedDigit(d[:13], w2) == d[13]
}

// checkDigit computes a CPF verifier with descending weights starting at top.
func checkDigit(digits string, top int) byte {
	sum := 0
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * (top - i)
	}
	return mod11(sum)
}

func weightedDigit(digits string, weights []int) byte {
	sum := 0
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * weights[i]
	}
	return mod11(sum)
}

func mod11(sum int) byte {
	r := sum % 11
	if r < 2 {
		return '0'
	}
	return byte('0' + 11 - r)
}

func allSame(d string) bool {
	return strings.Count(d, d[:1]) == len(d)
}

package validator

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// RequiredString fails on empty or whitespace-only values.
func RequiredString(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.TrimSpace(value) != ""
		},
		Error: newError(field, "field is required", "validation.required", nil),
	}
}

func MaxLenString(field, value string, max int) Rule {
	return Rule{
		Check: func() bool {
			return utf8.RuneCountInString(value) <= max
		},
		Error: newError(field,
			fmt.Sprintf("must be at most %d characters long", max),
			"validation.max_length",
			map[string]any{"max": max},
		),
	}
}

// OneOf fails when value is not one of the allowed options.
func OneOf[T comparable](field string, value T, options ...T) Rule {
	return Rule{
		Check: func() bool {
			return slices.Contains(options, value)
		},
		Error: newError(field,
			fmt.Sprintf("must be one of %v", options),
			"validation.one_of",
			map[string]any{"options": options},
		),
	}
}

// NotZero fails when value equals the zero value of its type, e.g. a nil
// uuid or an unset enum.
func NotZero[T comparable](field string, value T) Rule {
	return Rule{
		Check: func() bool {
			var zero T
			return value != zero
		},
		Error: newError(field, "field is required", "validation.required", nil),
	}
}

// NotNil fails when the pointer is nil. Used for payloads that become
// mandatory under a given condition.
func NotNil[T any](field string, value *T) Rule {
	return Rule{
		Check: func() bool {
			return value != nil
		},
		Error: newError(field, "field is required", "validation.required", nil),
	}
}

// Digits strips everything but ASCII digits. Tax documents, phones and postal
// codes are compared in this normalized form.
func Digits(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for i := 0; i < len(value); i++ {
		if c := value[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

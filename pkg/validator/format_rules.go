package validator

import (
	"net/mail"
	"net/url"
	"strings"
)

// ValidEmail validates an address with net/mail and requires a dotted domain.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			if strings.TrimSpace(value) == "" {
				return false
			}
			addr, err := mail.ParseAddress(value)
			if err != nil || addr.Address != strings.TrimSpace(value) {
				return false
			}
			local, domain, ok := strings.Cut(addr.Address, "@")
			if !ok || local == "" {
				return false
			}
			if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
				return false
			}
			for part := range strings.SplitSeq(domain, ".") {
				if part == "" {
					return false
				}
			}
			return true
		},
		Error: newError(field, "must be a valid email address", "validation.email", nil),
	}
}

// ValidPhone accepts Brazilian landline or mobile numbers (10 or 11 digits),
// optionally prefixed by the 55 country code. Empty values pass; combine with
// RequiredString when the phone is mandatory.
func ValidPhone(field, value string) Rule {
	return Rule{
		Check: func() bool {
			if strings.TrimSpace(value) == "" {
				return true
			}
			d := Digits(value)
			if len(d) == 12 || len(d) == 13 {
				d = strings.TrimPrefix(d, "55")
			}
			return len(d) == 10 || len(d) == 11
		},
		Error: newError(field, "must be a valid phone number with area code", "validation.phone", nil),
	}
}

// ValidHTTPURL requires an absolute http or https URL with a host.
func ValidHTTPURL(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return IsHTTPURL(value)
		},
		Error: newError(field, "must be a valid http(s) URL", "validation.url", nil),
	}
}

// IsHTTPURL reports whether value parses as an absolute http(s) URL.
func IsHTTPURL(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

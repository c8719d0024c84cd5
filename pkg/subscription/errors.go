package subscription

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation             = errors.New("invalid billing input")
	ErrInvalidDocument        = errors.New("tax document rejected by payment gateway")
	ErrProvisioning           = errors.New("failed to provision gateway customer")
	ErrPaymentProcessing      = errors.New("payment gateway failed to process the request")
	ErrNoEligibleSubscription = errors.New("no subscription eligible for this operation")

	ErrSubscriptionNotFound      = errors.New("subscription not found")
	ErrSubscriptionAlreadyExists = errors.New("subscription already exists")
	ErrPlanNotFound              = errors.New("subscription plan not found")
	ErrInvalidTransition         = errors.New("invalid subscription status transition")
	ErrVersionConflict           = errors.New("subscription was modified concurrently")
	ErrNoInvoiceURL              = errors.New("no invoice URL in gateway response")

	ErrFailedToLoadPlans        = errors.New("failed to load subscription plans")
	ErrInvalidPlanConfiguration = errors.New("invalid subscription plan configuration")
	ErrCustomerConflict         = errors.New("account is linked to a different gateway customer")
)

// GatewayErrorItem is one entry of the gateway's error list.
type GatewayErrorItem struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// GatewayError is returned for any non-2xx gateway response and for
// transport failures (StatusCode 0).
type GatewayError struct {
	StatusCode int
	Errors     []GatewayErrorItem
	Err        error
}

func (e *GatewayError) Error() string {
	var b strings.Builder
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, "gateway responded %d", e.StatusCode)
	} else {
		b.WriteString("gateway request failed")
	}
	for i, item := range e.Errors {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		if item.Code != "" {
			b.WriteString(item.Code)
			b.WriteString(" ")
		}
		b.WriteString(item.Description)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// IsClientError reports a 4xx response.
func (e *GatewayError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// Descriptions returns the human readable messages of every item.
func (e *GatewayError) Descriptions() []string {
	out := make([]string, 0, len(e.Errors))
	for _, item := range e.Errors {
		if item.Description != "" {
			out = append(out, item.Description)
		}
	}
	return out
}

// isDocumentError reports whether a 4xx response rejected the tax document.
func (e *GatewayError) isDocumentError() bool {
	if !e.IsClientError() {
		return false
	}
	for _, item := range e.Errors {
		if strings.EqualFold(item.Code, "invalid_cpfCnpj") {
			return true
		}
		desc := strings.ToLower(item.Description)
		for _, marker := range []string{"cpfcnpj", "cpf", "cnpj"} {
			if strings.Contains(desc, marker) {
				return true
			}
		}
	}
	return false
}

// GatewayErrorFrom extracts a *GatewayError from err.
func GatewayErrorFrom(err error) (*GatewayError, bool) {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr, true
	}
	return nil, false
}

package asaas

import "errors"

var (
	ErrMissingAPIKey  = errors.New("asaas: api key is required")
	ErrInvalidBaseURL = errors.New("asaas: invalid base url")
)

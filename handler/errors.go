package handler

import (
	"errors"
	"net/http"

	"github.com/imobflow/billing/pkg/i18n"
)

var ErrNilResponse = errors.New("handler returned nil response")

// HTTPError is an error with a fixed status, machine code and catalog key.
type HTTPError struct {
	Status  int
	Code    string
	Message i18n.Key
}

func (e HTTPError) Error() string {
	return e.Code
}

var (
	ErrBadRequest = HTTPError{Status: http.StatusBadRequest, Code: "bad_request", Message: i18n.MsgBadRequest}
	ErrNotFound   = HTTPError{Status: http.StatusNotFound, Code: "not_found", Message: i18n.MsgNotFound}
	ErrInternal   = HTTPError{Status: http.StatusInternalServerError, Code: "internal_error", Message: i18n.MsgInternal}
)

package billing

import (
	"errors"
	"net/http"

	"github.com/imobflow/billing/handler"
	"github.com/imobflow/billing/pkg/i18n"
	"github.com/imobflow/billing/pkg/subscription"
	"github.com/imobflow/billing/pkg/validator"
)

// ClassifyError maps subscription errors to HTTP responses. Errors outside
// the subscription domain are left to the handler's built-in mapping.
//
// Conflicts are checked before not-found because a failed compare-and-swap
// on a deleted row carries both.
func ClassifyError(err error) (handler.ErrorInfo, bool) {
	switch {
	case errors.Is(err, subscription.ErrValidation):
		info := handler.ErrorInfo{
			Status:  http.StatusUnprocessableEntity,
			Code:    "validation_error",
			Message: i18n.MsgValidation,
		}
		if verrs := validator.ExtractValidationErrors(err); len(verrs) > 0 {
			info.Details = verrs.Map()
		}
		return info, true

	case errors.Is(err, subscription.ErrInvalidDocument):
		return handler.ErrorInfo{
			Status:  http.StatusUnprocessableEntity,
			Code:    "invalid_document",
			Message: i18n.MsgInvalidDocument,
			Details: gatewayDetails("tenant.document", err),
		}, true

	case errors.Is(err, subscription.ErrProvisioning):
		return handler.ErrorInfo{
			Status:  http.StatusBadGateway,
			Code:    "provisioning_failed",
			Message: i18n.MsgProvisioning,
			Details: gatewayDetails("gateway", err),
		}, true

	case errors.Is(err, subscription.ErrPaymentProcessing):
		return handler.ErrorInfo{
			Status:  http.StatusBadGateway,
			Code:    "payment_failed",
			Message: i18n.MsgPaymentProcessing,
			Details: gatewayDetails("gateway", err),
		}, true

	case errors.Is(err, subscription.ErrNoInvoiceURL):
		return handler.ErrorInfo{Status: http.StatusBadGateway, Code: "no_invoice_url", Message: i18n.MsgNoInvoiceURL}, true

	case errors.Is(err, subscription.ErrVersionConflict):
		return handler.ErrorInfo{Status: http.StatusConflict, Code: "version_conflict", Message: i18n.MsgVersionConflict}, true

	case errors.Is(err, subscription.ErrNoEligibleSubscription):
		return handler.ErrorInfo{Status: http.StatusConflict, Code: "no_eligible_subscription", Message: i18n.MsgNoEligibleSubscription}, true

	case errors.Is(err, subscription.ErrSubscriptionAlreadyExists):
		return handler.ErrorInfo{Status: http.StatusConflict, Code: "already_exists", Message: i18n.MsgAlreadyExists}, true

	case errors.Is(err, subscription.ErrInvalidTransition):
		return handler.ErrorInfo{Status: http.StatusConflict, Code: "invalid_transition", Message: i18n.MsgInvalidTransition}, true

	case errors.Is(err, subscription.ErrCustomerConflict):
		return handler.ErrorInfo{Status: http.StatusConflict, Code: "customer_conflict", Message: i18n.MsgProvisioning}, true

	case errors.Is(err, subscription.ErrPlanNotFound):
		return handler.ErrorInfo{Status: http.StatusNotFound, Code: "plan_not_found", Message: i18n.MsgPlanNotFound}, true

	case errors.Is(err, subscription.ErrSubscriptionNotFound):
		return handler.ErrorInfo{Status: http.StatusNotFound, Code: "not_found", Message: i18n.MsgNotFound}, true
	}
	return handler.ErrorInfo{}, false
}

// gatewayDetails exposes the gateway's own descriptions under field.
func gatewayDetails(field string, err error) map[string][]string {
	gwErr, ok := subscription.GatewayErrorFrom(err)
	if !ok {
		return nil
	}
	if desc := gwErr.Descriptions(); len(desc) > 0 {
		return map[string][]string{field: desc}
	}
	return nil
}

package billing_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/imobflow/billing/modules/billing"
	"github.com/imobflow/billing/pkg/i18n"
	"github.com/imobflow/billing/pkg/subscription"
)

func TestClassifyError(t *testing.T) {
	t.Parallel()

	gwErr := &subscription.GatewayError{
		StatusCode: http.StatusInternalServerError,
		Errors:     []subscription.GatewayErrorItem{{Code: "internal", Description: "Erro interno."}},
	}

	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message i18n.Key
	}{
		{"provisioning", errors.Join(subscription.ErrProvisioning, gwErr), http.StatusBadGateway, "provisioning_failed", i18n.MsgProvisioning},
		{"customer conflict inside provisioning", errors.Join(subscription.ErrProvisioning, subscription.ErrCustomerConflict), http.StatusBadGateway, "provisioning_failed", i18n.MsgProvisioning},
		{"customer conflict", subscription.ErrCustomerConflict, http.StatusConflict, "customer_conflict", i18n.MsgProvisioning},
		{"invalid transition", subscription.ErrInvalidTransition, http.StatusConflict, "invalid_transition", i18n.MsgInvalidTransition},
		{"no eligible over not found", errors.Join(subscription.ErrNoEligibleSubscription, subscription.ErrSubscriptionNotFound), http.StatusConflict, "no_eligible_subscription", i18n.MsgNoEligibleSubscription},
		{"plan not found", subscription.ErrPlanNotFound, http.StatusNotFound, "plan_not_found", i18n.MsgPlanNotFound},
		{"validation without field details", errors.Join(subscription.ErrValidation, errors.New("unknown status")), http.StatusUnprocessableEntity, "validation_error", i18n.MsgValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			info, ok := billing.ClassifyError(tt.err)
			assert.True(t, ok)
			assert.Equal(t, tt.status, info.Status)
			assert.Equal(t, tt.code, info.Code)
			assert.Equal(t, tt.message, info.Message)
		})
	}

	t.Run("gateway descriptions", func(t *testing.T) {
		t.Parallel()
		info, _ := billing.ClassifyError(errors.Join(subscription.ErrProvisioning, gwErr))
		assert.Equal(t, map[string][]string{"gateway": {"Erro interno."}}, info.Details)
	})

	t.Run("foreign errors are left alone", func(t *testing.T) {
		t.Parallel()
		_, ok := billing.ClassifyError(errors.New("connection reset"))
		assert.False(t, ok)
	})
}

package billing_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/imobflow/billing/handler"
	"github.com/imobflow/billing/modules/billing"
	"github.com/imobflow/billing/pkg/subscription"
	"github.com/imobflow/billing/pkg/validator"
)

type envelope struct {
	Data  json.RawMessage      `json:"data"`
	Error *handler.ErrorDetail `json:"error"`
}

func newServer(t *testing.T) (*mockService, http.Handler) {
	t.Helper()
	svc := &mockService{}
	t.Cleanup(func() { svc.AssertExpectations(t) })
	return svc, billing.Router(billing.RouterOptions{Billing: billing.NewHandler(svc)})
}

func do(t *testing.T, h http.Handler, method, target, body string, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestNewHandler_NilService(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { billing.NewHandler(nil) })
}

func TestRouter_RequestID(t *testing.T) {
	t.Parallel()
	svc, srv := newServer(t)
	svc.On("Plans").Return([]subscription.Plan{})

	rec, _ := do(t, srv, http.MethodGet, "/plans", "", "X-Request-ID", "req-123")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}

func TestPlans(t *testing.T) {
	t.Parallel()

	plans := []subscription.Plan{{
		ID:           "solo",
		Code:         "SOLO",
		Name:         "Corretor Solo",
		MonthlyPrice: subscription.Reais(99, 90),
		MaxAgents:    1,
		Family:       subscription.FamilyIndividual,
		Active:       true,
	}}

	t.Run("localized for pt-BR by default", func(t *testing.T) {
		t.Parallel()
		svc, srv := newServer(t)
		svc.On("Plans").Return(plans)

		rec, env := do(t, srv, http.MethodGet, "/plans", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "pt-BR", rec.Header().Get("Content-Language"))

		var got []billing.PlanView
		require.NoError(t, json.Unmarshal(env.Data, &got))
		require.Len(t, got, 1)
		assert.Equal(t, "solo", got[0].ID)
		assert.Equal(t, subscription.Reais(99, 90), got[0].MonthlyPrice)
		assert.Equal(t, subscription.Reais(1198, 80), got[0].YearlyPrice)
		assert.Equal(t, "R$ 99,90 por mês", got[0].MonthlyDisplay)
		assert.Contains(t, got[0].YearlyDisplay, "por ano")
	})

	t.Run("english on request", func(t *testing.T) {
		t.Parallel()
		svc, srv := newServer(t)
		svc.On("Plans").Return(plans)

		rec, env := do(t, srv, http.MethodGet, "/plans", "", "Accept-Language", "en-US,en;q=0.9")
		require.Equal(t, http.StatusOK, rec.Code)

		var got []billing.PlanView
		require.NoError(t, json.Unmarshal(env.Data, &got))
		require.Len(t, got, 1)
		assert.Equal(t, "R$ 99.90 per month", got[0].MonthlyDisplay)
	})

	t.Run("unknown plan", func(t *testing.T) {
		t.Parallel()
		svc, srv := newServer(t)
		svc.On("Plan", "gold").Return(subscription.Plan{}, subscription.ErrPlanNotFound)

		rec, env := do(t, srv, http.MethodGet, "/plans/gold", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "plan_not_found", env.Error.Code)
		assert.Equal(t, "Plano não encontrado.", env.Error.Message)
	})
}

func TestAccess(t *testing.T) {
	t.Parallel()

	id := uuid.New()

	t.Run("trial with days left", func(t *testing.T) {
		t.Parallel()
		svc, srv := newServer(t)
		svc.On("GetAccessStatus", mock.Anything, id).Return(subscription.AccessStatus{
			HasAccess:       true,
			DaysRemaining:   3,
			TrialExpiring:   true,
			Status:          subscription.StatusTrial,
			EffectiveStatus: subscription.StatusTrial,
		}, nil)

		rec, env := do(t, srv, http.MethodGet, "/subscriptions/"+id.String()+"/access", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var got billing.AccessView
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.True(t, got.HasAccess)
		assert.True(t, got.TrialExpiring)
		assert.Equal(t, 3, got.DaysRemaining)
		assert.Equal(t, "Teste grátis: 3 dias restantes", got.Message)
	})

	t.Run("last trial day in english", func(t *testing.T) {
		t.Parallel()
		svc, srv := newServer(t)
		svc.On("GetAccessStatus", mock.Anything, id).Return(subscription.AccessStatus{
			HasAccess:       true,
			DaysRemaining:   1,
			TrialExpiring:   true,
			Status:          subscription.StatusTrial,
			EffectiveStatus: subscription.StatusTrial,
		}, nil)

		_, env := do(t, srv, http.MethodGet, "/subscriptions/"+id.String()+"/access?lang=en", "")

		var got billing.AccessView
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, "Free trial: 1 day left", got.Message)
	})

	t.Run("expired trial has no message", func(t *testing.T) {
		t.Parallel()
		svc, srv := newServer(t)
		svc.On("GetAccessStatus", mock.Anything, id).Return(subscription.AccessStatus{
			TrialExpired:    true,
			NeedsUpgrade:    true,
			Status:          subscription.StatusTrial,
			EffectiveStatus: subscription.StatusExpired,
		}, nil)

		_, env := do(t, srv, http.MethodGet, "/subscriptions/"+id.String()+"/access", "")

		var got billing.AccessView
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.False(t, got.HasAccess)
		assert.True(t, got.NeedsUpgrade)
		assert.Equal(t, subscription.StatusExpired, got.EffectiveStatus)
		assert.Empty(t, got.Message)
	})

	t.Run("malformed id", func(t *testing.T) {
		t.Parallel()
		_, srv := newServer(t)

		rec, env := do(t, srv, http.MethodGet, "/subscriptions/not-a-uuid/access", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "bad_request", env.Error.Code)
	})

	t.Run("not found carries request id", func(t *testing.T) {
		t.Parallel()
		svc, srv := newServer(t)
		svc.On("GetAccessStatus", mock.Anything, id).Return(subscription.AccessStatus{}, subscription.ErrSubscriptionNotFound)

		rec, env := do(t, srv, http.MethodGet, "/subscriptions/"+id.String()+"/access", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "not_found", env.Error.Code)
		assert.Equal(t, "Assinatura não encontrada.", env.Error.Message)
		assert.Equal(t, rec.Header().Get("X-Request-ID"), env.Error.RequestID)
	})

	t.Run("account without subscription", func(t *testing.T) {
		t.Parallel()
		svc, srv := newServer(t)
		accountID := uuid.New()
		svc.On("GetAccountAccess", mock.Anything, accountID).Return(subscription.AccessStatus{
			TrialExpired: true,
			NeedsUpgrade: true,
		}, nil)

		rec, env := do(t, srv, http.MethodGet, "/accounts/"+accountID.String()+"/access", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var got billing.AccessView
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.False(t, got.HasAccess)
		assert.True(t, got.NeedsUpgrade)
	})
}

func TestStartTrial(t *testing.T) {
	t.Parallel()

	accountID := uuid.New()
	now := time.Date(2025, time.January, 12, 12, 0, 0, 0, time.UTC)

	t.Run("created", func(t *testing.T) {
		t.Parallel()
		svc, srv := newServer(t)
		svc.On("StartTrial", mock.Anything, accountID, "solo", subscription.PayerAccount).Return(&subscription.Subscription{
			ID:          uuid.New(),
			AccountID:   accountID,
			PlanID:      "solo",
			Status:      subscription.StatusTrial,
			StartedAt:   now,
			TrialEndsAt: now.AddDate(0, 0, 7),
			Payer:       subscription.PayerAccount,
			Version:     1,
		}, nil)

		body := `{"account_id":"` + accountID.String() + `","plan_id":"solo","payer":"ACCOUNT"}`
		rec, env := do(t, srv, http.MethodPost, "/subscriptions/trial", body)
		require.Equal(t, http.StatusCreated, rec.Code)

		var got billing.SubscriptionView
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, accountID, got.AccountID)
		assert.Equal(t, subscription.StatusTrial, got.Status)
		assert.True(t, got.TrialEndsAt.Equal(now.AddDate(0, 0, 7)))
		assert.Empty(t, got.ChargeDisplay)
	})

	t.Run("already exists", func(t *testing.T) {
		t.Parallel()
		svc, srv := newServer(t)
		svc.On("StartTrial", mock.Anything, accountID, "solo", subscription.PayerAccount).
			Return(nil, subscription.ErrSubscriptionAlreadyExists)

		body := `{"account_id":"` + accountID.String() + `","plan_id":"solo","payer":"ACCOUNT"}`
		rec, env := do(t, srv, http.MethodPost, "/subscriptions/trial", body)
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "already_exists", env.Error.Code)
	})
}

func TestUpgrade(t *testing.T) {
	t.Parallel()

	accountID := uuid.New()
	body := `{
		"account_id": "` + accountID.String() + `",
		"tenant": {"account_id": "` + accountID.String() + `", "name": "Imobiliária Sol", "email": "contato@sol.com.br", "document": "11222333000181", "payer": "ACCOUNT"},
		"plan_id": "agency",
		"cycle": "MONTHLY",
		"method": "PIX"
	}`

	t.Run("fills remote ip from the connection", func(t *testing.T) {
		t.Parallel()
		svc, srv := newServer(t)
		due := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
		svc.On("ProcessUpgrade", mock.Anything, mock.MatchedBy(func(in subscription.PaymentIntent) bool {
			return in.AccountID == accountID && in.Method == subscription.MethodPix && in.RemoteIP == "192.0.2.1"
		})).Return(&subscription.UpgradeResult{
			SubscriptionID:        uuid.New(),
			CustomerID:            "cus_000005219613",
			GatewaySubscriptionID: "sub_VXJBYgP2u0eO",
			InvoiceURL:            "https://sandbox.asaas.com/i/abc",
			Status:                subscription.StatusActive,
			ChargeAmount:          subscription.Reais(199, 90),
			Cycle:                 subscription.CycleMonthly,
			NextDueAt:             &due,
			RequiresFollowUp:      true,
			Invoice:               &subscription.Invoice{PrimaryURL: "https://sandbox.asaas.com/i/abc"},
		}, nil)

		rec, env := do(t, srv, http.MethodPost, "/subscriptions/upgrade", body)
		require.Equal(t, http.StatusOK, rec.Code)

		var got struct {
			subscription.UpgradeResult
			ChargeDisplay string `json:"charge_display"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, subscription.StatusActive, got.Status)
		assert.True(t, got.RequiresFollowUp)
		assert.Equal(t, "R$ 199,90 por mês", got.ChargeDisplay)
		require.NotNil(t, got.Invoice)
		assert.Equal(t, "https://sandbox.asaas.com/i/abc", got.Invoice.PrimaryURL)
	})

	t.Run("validation errors carry field details", func(t *testing.T) {
		t.Parallel()
		svc, srv := newServer(t)
		verrs := validator.ValidationErrors{{Field: "card.number", Message: "invalid card number"}}
		svc.On("ProcessUpgrade", mock.Anything, mock.Anything).
			Return(nil, errors.Join(subscription.ErrValidation, verrs))

		rec, env := do(t, srv, http.MethodPost, "/subscriptions/upgrade", body)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "validation_error", env.Error.Code)
		assert.Equal(t, []string{"invalid card number"}, env.Error.Details["card.number"])
	})

	t.Run("rejected document", func(t *testing.T) {
		t.Parallel()
		svc, srv := newServer(t)
		gwErr := &subscription.GatewayError{
			StatusCode: http.StatusBadRequest,
			Errors:     []subscription.GatewayErrorItem{{Code: "invalid_cpfCnpj", Description: "O CPF/CNPJ informado é inválido."}},
		}
		svc.On("ProcessUpgrade", mock.Anything, mock.Anything).
			Return(nil, errors.Join(subscription.ErrInvalidDocument, gwErr))

		rec, env := do(t, srv, http.MethodPost, "/subscriptions/upgrade", body, "Accept-Language", "en")
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "invalid_document", env.Error.Code)
		assert.Equal(t, "Invalid CPF or CNPJ. Check the tax document.", env.Error.Message)
		assert.Equal(t, []string{"O CPF/CNPJ informado é inválido."}, env.Error.Details["tenant.document"])
	})

	t.Run("payment failure", func(t *testing.T) {
		t.Parallel()
		svc, srv := newServer(t)
		gwErr := &subscription.GatewayError{
			StatusCode: http.StatusBadRequest,
			Errors:     []subscription.GatewayErrorItem{{Code: "invalid_creditCard", Description: "Transação não autorizada."}},
		}
		svc.On("ProcessUpgrade", mock.Anything, mock.Anything).
			Return(nil, errors.Join(subscription.ErrPaymentProcessing, gwErr))

		rec, env := do(t, srv, http.MethodPost, "/subscriptions/upgrade", body)
		require.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, "payment_failed", env.Error.Code)
		assert.Equal(t, []string{"Transação não autorizada."}, env.Error.Details["gateway"])
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()
		_, srv := newServer(t)

		rec, env := do(t, srv, http.MethodPost, "/subscriptions/upgrade", `{"coupon":"FREE"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "bad_request", env.Error.Code)
	})

	t.Run("wrong content type", func(t *testing.T) {
		t.Parallel()
		_, srv := newServer(t)

		rec, env := do(t, srv, http.MethodPost, "/subscriptions/upgrade", body, "Content-Type", "text/plain")
		require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
		assert.Equal(t, "unsupported_media_type", env.Error.Code)
	})
}

func TestReactivate_NoEligibleSubscription(t *testing.T) {
	t.Parallel()
	svc, srv := newServer(t)
	svc.On("Reactivate", mock.Anything, mock.Anything).
		Return(nil, errors.Join(subscription.ErrNoEligibleSubscription, subscription.ErrSubscriptionNotFound))

	rec, env := do(t, srv, http.MethodPost, "/subscriptions/reactivate", `{"account_id":"`+uuid.NewString()+`","plan_id":"solo","method":"BOLETO"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "no_eligible_subscription", env.Error.Code)
}

func TestCancel(t *testing.T) {
	t.Parallel()

	id := uuid.New()

	t.Run("canceled", func(t *testing.T) {
		t.Parallel()
		svc, srv := newServer(t)
		at := time.Date(2025, time.February, 1, 9, 0, 0, 0, time.UTC)
		svc.On("Cancel", mock.Anything, id).Return(&subscription.Subscription{
			ID:           id,
			Status:       subscription.StatusCanceled,
			CanceledAt:   &at,
			ChargeAmount: subscription.Reais(1990, 0),
			Cycle:        subscription.CycleYearly,
			Version:      4,
		}, nil)

		rec, env := do(t, srv, http.MethodPost, "/subscriptions/"+id.String()+"/cancel", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var got billing.SubscriptionView
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, subscription.StatusCanceled, got.Status)
		require.NotNil(t, got.CanceledAt)
		assert.Contains(t, got.ChargeDisplay, "por ano")
		assert.Equal(t, int64(4), got.Version)
	})

	t.Run("concurrent change wins over not found", func(t *testing.T) {
		t.Parallel()
		svc, srv := newServer(t)
		svc.On("Cancel", mock.Anything, id).
			Return(nil, errors.Join(subscription.ErrVersionConflict, subscription.ErrSubscriptionNotFound))

		rec, env := do(t, srv, http.MethodPost, "/subscriptions/"+id.String()+"/cancel", "")
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "version_conflict", env.Error.Code)
	})
}

func TestResolveInvoice(t *testing.T) {
	t.Parallel()

	t.Run("resolved", func(t *testing.T) {
		t.Parallel()
		svc, srv := newServer(t)
		svc.On("ResolveRaw", map[string]any{"invoiceUrl": "https://sandbox.asaas.com/i/xyz"}).
			Return(&subscription.Invoice{PrimaryURL: "https://sandbox.asaas.com/i/xyz"}, nil)

		rec, env := do(t, srv, http.MethodPost, "/invoices/resolve", `{"invoiceUrl":"https://sandbox.asaas.com/i/xyz"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var got subscription.Invoice
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, "https://sandbox.asaas.com/i/xyz", got.PrimaryURL)
	})

	t.Run("no url", func(t *testing.T) {
		t.Parallel()
		svc, srv := newServer(t)
		svc.On("ResolveRaw", map[string]any{"id": "pay_1"}).Return(nil, subscription.ErrNoInvoiceURL)

		rec, env := do(t, srv, http.MethodPost, "/invoices/resolve", `{"id":"pay_1"}`)
		require.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, "no_invoice_url", env.Error.Code)
		assert.Equal(t, "O link da fatura ainda não está disponível.", env.Error.Message)
	})
}

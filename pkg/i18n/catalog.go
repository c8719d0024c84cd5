package i18n

import (
	"context"
	"fmt"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Key identifies a catalog message.
type Key = string

const (
	MsgBadRequest             Key = "error.bad_request"
	MsgValidation             Key = "error.validation"
	MsgInvalidDocument        Key = "error.invalid_document"
	MsgProvisioning           Key = "error.provisioning"
	MsgPaymentProcessing      Key = "error.payment_processing"
	MsgNoEligibleSubscription Key = "error.no_eligible_subscription"
	MsgAlreadyExists          Key = "error.already_exists"
	MsgNotFound               Key = "error.not_found"
	MsgPlanNotFound           Key = "error.plan_not_found"
	MsgInvalidTransition      Key = "error.invalid_transition"
	MsgVersionConflict        Key = "error.version_conflict"
	MsgNoInvoiceURL           Key = "error.no_invoice_url"
	MsgInternal               Key = "error.internal"

	// MsgTrialDaysLeft takes the number of days.
	MsgTrialDaysLeft Key = "access.trial_days_left"
	// MsgPriceMonthly and MsgPriceYearly take a formatted amount.
	MsgPriceMonthly Key = "price.monthly"
	MsgPriceYearly  Key = "price.yearly"
)

var messages = map[language.Tag]map[Key]string{
	language.BrazilianPortuguese: {
		MsgBadRequest:             "Requisição inválida.",
		MsgValidation:             "Dados inválidos. Verifique os campos informados.",
		MsgInvalidDocument:        "CPF ou CNPJ inválido. Verifique o documento informado.",
		MsgProvisioning:           "Não foi possível cadastrar o cliente no gateway de pagamento. Tente novamente.",
		MsgPaymentProcessing:      "O pagamento não pôde ser processado.",
		MsgNoEligibleSubscription: "Nenhuma assinatura elegível para esta operação.",
		MsgAlreadyExists:          "Esta conta já possui uma assinatura.",
		MsgNotFound:               "Assinatura não encontrada.",
		MsgPlanNotFound:           "Plano não encontrado.",
		MsgInvalidTransition:      "A assinatura não pode passar para este status.",
		MsgVersionConflict:        "A assinatura foi alterada por outra operação. Tente novamente.",
		MsgNoInvoiceURL:           "O link da fatura ainda não está disponível.",
		MsgInternal:               "Erro interno. Tente novamente mais tarde.",
		MsgPriceMonthly:           "%s por mês",
		MsgPriceYearly:            "%s por ano",
	},
	language.English: {
		MsgBadRequest:             "Bad request.",
		MsgValidation:             "Invalid data. Check the submitted fields.",
		MsgInvalidDocument:        "Invalid CPF or CNPJ. Check the tax document.",
		MsgProvisioning:           "Could not register the customer with the payment gateway. Try again.",
		MsgPaymentProcessing:      "The payment could not be processed.",
		MsgNoEligibleSubscription: "No subscription is eligible for this operation.",
		MsgAlreadyExists:          "This account already has a subscription.",
		MsgNotFound:               "Subscription not found.",
		MsgPlanNotFound:           "Plan not found.",
		MsgInvalidTransition:      "The subscription cannot move to this status.",
		MsgVersionConflict:        "The subscription was changed by another operation. Try again.",
		MsgNoInvoiceURL:           "The invoice link is not available yet.",
		MsgInternal:               "Internal error. Try again later.",
		MsgPriceMonthly:           "%s per month",
		MsgPriceYearly:            "%s per year",
	},
}

var plurals = map[language.Tag]catalog.Message{
	language.BrazilianPortuguese: plural.Selectf(1, "%d",
		plural.One, "Teste grátis: %d dia restante",
		plural.Other, "Teste grátis: %d dias restantes",
	),
	language.English: plural.Selectf(1, "%d",
		plural.One, "Free trial: %d day left",
		plural.Other, "Free trial: %d days left",
	),
}

var defaultCatalog = mustBuild()

func mustBuild() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(DefaultLanguage))
	for tag, msgs := range messages {
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(fmt.Sprintf("i18n: %s/%s: %v", tag, key, err))
			}
		}
	}
	for tag, msg := range plurals {
		if err := b.Set(tag, MsgTrialDaysLeft, msg); err != nil {
			panic(fmt.Sprintf("i18n: %s/%s: %v", tag, MsgTrialDaysLeft, err))
		}
	}
	return b
}

// Printer returns a message printer for tag backed by the billing catalog.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(defaultCatalog))
}

// Translate formats key in tag. Unknown keys are printed as is.
func Translate(tag language.Tag, key Key, args ...any) string {
	return Printer(tag).Sprintf(key, args...)
}

// T formats key in the language stored in ctx.
func T(ctx context.Context, key Key, args ...any) string {
	return Translate(GetLocale(ctx), key, args...)
}

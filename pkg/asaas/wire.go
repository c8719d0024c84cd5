package asaas

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/imobflow/billing/pkg/subscription"
	"github.com/imobflow/billing/pkg/validator"
)

// Request and response bodies as the API names them.

type customerBody struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	CpfCnpj           string `json:"cpfCnpj"`
	MobilePhone       string `json:"mobilePhone,omitempty"`
	ExternalReference string `json:"externalReference,omitempty"`
}

type customerResponse struct {
	ID string `json:"id"`
}

type creditCardBody struct {
	HolderName  string `json:"holderName"`
	Number      string `json:"number"`
	ExpiryMonth string `json:"expiryMonth"`
	ExpiryYear  string `json:"expiryYear"`
	CCV         string `json:"ccv"`
}

type holderInfoBody struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	CpfCnpj       string `json:"cpfCnpj"`
	PostalCode    string `json:"postalCode"`
	AddressNumber string `json:"addressNumber"`
	Phone         string `json:"phone"`
}

type subscriptionBody struct {
	Customer             string          `json:"customer,omitempty"`
	BillingType          string          `json:"billingType"`
	NextDueDate          string          `json:"nextDueDate"`
	Value                json.Number     `json:"value"`
	Cycle                string          `json:"cycle"`
	Description          string          `json:"description,omitempty"`
	ExternalReference    string          `json:"externalReference,omitempty"`
	UpdatePendingPayment *bool           `json:"updatePendingPayments,omitempty"`
	CreditCard           *creditCardBody `json:"creditCard,omitempty"`
	CreditCardHolderInfo *holderInfoBody `json:"creditCardHolderInfo,omitempty"`
	RemoteIP             string          `json:"remoteIp,omitempty"`
}

type cardUpdateBody struct {
	CreditCard           *creditCardBody `json:"creditCard"`
	CreditCardHolderInfo *holderInfoBody `json:"creditCardHolderInfo"`
	RemoteIP             string          `json:"remoteIp,omitempty"`
}

type subscriptionResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	subscription.InvoiceLinks
}

type paymentList struct {
	Data []struct {
		ID          string `json:"id"`
		InvoiceURL  string `json:"invoiceUrl"`
		BankSlipURL string `json:"bankSlipUrl"`
	} `json:"data"`
}

type errorResponse struct {
	Errors []subscription.GatewayErrorItem `json:"errors"`
}

func newSubscriptionBody(req subscription.SubscriptionRequest) subscriptionBody {
	body := subscriptionBody{
		Customer:          req.CustomerID,
		BillingType:       string(req.Method),
		NextDueDate:       req.NextDueDate.Format(time.DateOnly),
		Value:             json.Number(req.Value.String()),
		Cycle:             string(req.Cycle),
		Description:       req.Description,
		ExternalReference: req.ExternalReference,
	}
	if req.Method == subscription.MethodCreditCard {
		body.CreditCard = newCreditCardBody(req.Card)
		body.CreditCardHolderInfo = newHolderInfoBody(req.Holder)
		body.RemoteIP = req.RemoteIP
	}
	return body
}

func newCreditCardBody(c *subscription.Card) *creditCardBody {
	if c == nil {
		return nil
	}
	return &creditCardBody{
		HolderName:  c.HolderName,
		Number:      validator.Digits(c.Number),
		ExpiryMonth: fmt.Sprintf("%02d", c.ExpiryMonth),
		ExpiryYear:  strconv.Itoa(c.ExpiryYear),
		CCV:         c.CVV,
	}
}

func newHolderInfoBody(h *subscription.CardHolder) *holderInfoBody {
	if h == nil {
		return nil
	}
	return &holderInfoBody{
		Name:          h.Name,
		Email:         h.Email,
		CpfCnpj:       validator.Digits(h.Document),
		PostalCode:    validator.Digits(h.PostalCode),
		AddressNumber: h.AddressNumber,
		Phone:         validator.Digits(h.Phone),
	}
}

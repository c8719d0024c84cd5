package asaas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/imobflow/billing/pkg/logger"
	"github.com/imobflow/billing/pkg/subscription"
)

const maxResponseSize = 1 << 20

// Client talks to the Asaas API. It is safe for concurrent use.
type Client struct {
	baseURL   string
	apiKey    string
	userAgent string
	http      *http.Client
	log       *slog.Logger
}

var _ subscription.Gateway = (*Client)(nil)

// New validates cfg and returns a client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.Join(ErrInvalidBaseURL, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		baseURL:   u.String(),
		apiKey:    cfg.APIKey,
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: timeout},
		log:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(logger.Component("asaas"))
	return c, nil
}

func (c *Client) CreateCustomer(ctx context.Context, req subscription.CustomerRequest) (*subscription.GatewayCustomer, error) {
	var out customerResponse
	err := c.do(ctx, http.MethodPost, "/customers", customerBody{
		Name:              req.Name,
		Email:             req.Email,
		CpfCnpj:           req.Document,
		MobilePhone:       req.Phone,
		ExternalReference: req.ExternalReference,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &subscription.GatewayCustomer{ID: out.ID}, nil
}

// CreateSubscription creates the subscription. For BOLETO and PIX the
// response carries no payment link, so the first generated payment is
// fetched to surface its invoice.
func (c *Client) CreateSubscription(ctx context.Context, req subscription.SubscriptionRequest) (*subscription.GatewaySubscription, error) {
	var out subscriptionResponse
	if err := c.do(ctx, http.MethodPost, "/subscriptions", newSubscriptionBody(req), &out); err != nil {
		return nil, err
	}

	sub := &subscription.GatewaySubscription{ID: out.ID, Status: out.Status, Links: out.InvoiceLinks}
	if !req.Method.Synchronous() && !hasLinks(sub.Links) {
		c.fillFirstPayment(ctx, sub)
	}
	return sub, nil
}

// UpdateSubscription changes value, cycle, billing type and due date of an
// existing subscription, including pending payments. A card payload is
// sent to the card update endpoint afterwards.
func (c *Client) UpdateSubscription(ctx context.Context, id string, req subscription.SubscriptionRequest) (*subscription.GatewaySubscription, error) {
	body := newSubscriptionBody(req)
	body.Customer = ""
	body.CreditCard = nil
	body.CreditCardHolderInfo = nil
	body.RemoteIP = ""
	updatePending := true
	body.UpdatePendingPayment = &updatePending

	path := "/subscriptions/" + url.PathEscape(id)

	var out subscriptionResponse
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}

	if req.Method == subscription.MethodCreditCard && req.Card != nil {
		if err := c.do(ctx, http.MethodPut, path+"/creditCard", cardUpdateBody{
			CreditCard:           newCreditCardBody(req.Card),
			CreditCardHolderInfo: newHolderInfoBody(req.Holder),
			RemoteIP:             req.RemoteIP,
		}, &out); err != nil {
			return nil, err
		}
	}

	sub := &subscription.GatewaySubscription{ID: out.ID, Status: out.Status, Links: out.InvoiceLinks}
	if sub.ID == "" {
		sub.ID = id
	}
	if !req.Method.Synchronous() && !hasLinks(sub.Links) {
		c.fillFirstPayment(ctx, sub)
	}
	return sub, nil
}

func (c *Client) DeleteSubscription(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/subscriptions/"+url.PathEscape(id), nil, nil)
}

// fillFirstPayment copies the invoice links of the subscription's oldest
// payment. Failures are logged: the subscription exists either way.
func (c *Client) fillFirstPayment(ctx context.Context, sub *subscription.GatewaySubscription) {
	var list paymentList
	path := "/subscriptions/" + url.PathEscape(sub.ID) + "/payments?limit=1"
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		c.log.WarnContext(ctx, "failed to fetch first subscription payment",
			logger.GatewaySubscriptionID(sub.ID),
			logger.Error(err),
		)
		return
	}
	if len(list.Data) == 0 {
		return
	}
	sub.Links.InvoiceURL = list.Data[0].InvoiceURL
	sub.Links.BankSlipURL = list.Data[0].BankSlipURL
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &subscription.GatewayError{Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &subscription.GatewayError{Err: err}
	}
	req.Header.Set("access_token", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.ErrorContext(ctx, "asaas request failed",
			slog.String("method", method),
			slog.String("path", stripQuery(path)),
			logger.Error(err),
		)
		return &subscription.GatewayError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &subscription.GatewayError{StatusCode: resp.StatusCode, Err: err}
	}

	c.log.DebugContext(ctx, "asaas request",
		slog.String("method", method),
		slog.String("path", stripQuery(path)),
		slog.Int("status", resp.StatusCode),
		logger.Duration(time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newGatewayError(resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &subscription.GatewayError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// newGatewayError parses the {"errors": [...]} body. A body that does not
// have that shape is kept as a single description.
func newGatewayError(status int, data []byte) *subscription.GatewayError {
	gwErr := &subscription.GatewayError{StatusCode: status}

	var parsed errorResponse
	if err := json.Unmarshal(data, &parsed); err == nil && len(parsed.Errors) > 0 {
		gwErr.Errors = parsed.Errors
		return gwErr
	}

	desc := strings.TrimSpace(string(data))
	if desc == "" || len(desc) > 512 {
		desc = http.StatusText(status)
	}
	gwErr.Errors = []subscription.GatewayErrorItem{{Description: desc}}
	return gwErr
}

func hasLinks(l subscription.InvoiceLinks) bool {
	return l != subscription.InvoiceLinks{}
}

func stripQuery(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}

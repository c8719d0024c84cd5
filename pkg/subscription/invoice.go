package subscription

import (
	"strings"

	"github.com/imobflow/billing/pkg/validator"
)

// InvoiceLinks holds every URL variant a gateway response may carry.
type InvoiceLinks struct {
	PaymentURL  string `json:"paymentUrl,omitempty"`
	DirectURL   string `json:"directUrl,omitempty"`
	InvoiceURL  string `json:"invoiceUrl,omitempty"`
	BankSlipURL string `json:"bankSlipUrl,omitempty"`
	PaymentLink string `json:"paymentLink,omitempty"`
	Response    string `json:"response,omitempty"`
}

// Invoice is the link the tenant is sent to. FallbackURL, when set, is an
// alternative link to show if the primary one cannot be opened.
type Invoice struct {
	PrimaryURL  string `json:"primary_url"`
	FallbackURL string `json:"fallback_url,omitempty"`
	// QRCode is a PNG data URI of PrimaryURL.
	QRCode string `json:"qr_code,omitempty"`
}

// OpenOptions controls how a link is opened.
type OpenOptions struct {
	NewTab bool
}

// OpenResult never reports both Opened and Blocked. When Blocked, the caller
// must render FallbackURL as a visible link.
type OpenResult struct {
	Opened      bool   `json:"opened"`
	Blocked     bool   `json:"blocked"`
	FallbackURL string `json:"fallback_url,omitempty"`
}

// WindowHandle is whatever the opener's environment returns for a window.
// A nil handle means the environment refused to open it.
type WindowHandle any

// WindowOpener is the capability to navigate to a URL.
type WindowOpener interface {
	OpenWindow(url string, newTab bool) WindowHandle
}

// HeadlessOpener is used where no browser exists. It reports every link as
// blocked so callers always present the link for manual use.
type HeadlessOpener struct{}

func (HeadlessOpener) OpenWindow(string, bool) WindowHandle { return nil }

// WindowOpenerFunc adapts a function to WindowOpener.
type WindowOpenerFunc func(url string, newTab bool) WindowHandle

func (f WindowOpenerFunc) OpenWindow(url string, newTab bool) WindowHandle {
	return f(url, newTab)
}

// QREncoder renders a link as an inline image.
type QREncoder interface {
	DataURI(content string) (string, error)
}

// InvoiceResolver picks the link to show for a gateway response and opens
// it through a WindowOpener.
type InvoiceResolver struct {
	opener WindowOpener
	qr     QREncoder
}

// NewInvoiceResolver returns a resolver. A nil opener means HeadlessOpener;
// a nil encoder disables QR codes.
func NewInvoiceResolver(opener WindowOpener, qr QREncoder) *InvoiceResolver {
	if opener == nil {
		opener = HeadlessOpener{}
	}
	return &InvoiceResolver{opener: opener, qr: qr}
}

// Resolve prefers payment-specific links over the generic response link.
// The fallback is the generic link when it differs from the primary one,
// otherwise the next distinct candidate. Only absolute http(s) URLs count.
func (r *InvoiceResolver) Resolve(links InvoiceLinks) (*Invoice, error) {
	specific := distinctURLs(
		links.PaymentURL,
		links.DirectURL,
		links.InvoiceURL,
		links.BankSlipURL,
		links.PaymentLink,
	)
	generic := cleanURL(links.Response)

	inv := &Invoice{}
	switch {
	case len(specific) > 0:
		inv.PrimaryURL = specific[0]
		if generic != "" && generic != inv.PrimaryURL {
			inv.FallbackURL = generic
		} else if len(specific) > 1 {
			inv.FallbackURL = specific[1]
		}
	case generic != "":
		inv.PrimaryURL = generic
	default:
		return nil, ErrNoInvoiceURL
	}

	if r.qr != nil {
		if uri, err := r.qr.DataURI(inv.PrimaryURL); err == nil {
			inv.QRCode = uri
		}
	}

	return inv, nil
}

// ResolveRaw is Resolve over an untyped gateway response. Non-string
// values are ignored.
func (r *InvoiceResolver) ResolveRaw(raw map[string]any) (*Invoice, error) {
	str := func(key string) string {
		s, _ := raw[key].(string)
		return s
	}
	return r.Resolve(InvoiceLinks{
		PaymentURL:  str("paymentUrl"),
		DirectURL:   str("directUrl"),
		InvoiceURL:  str("invoiceUrl"),
		BankSlipURL: str("bankSlipUrl"),
		PaymentLink: str("paymentLink"),
		Response:    str("response"),
	})
}

// Open tries to open url. A refused window is reported as Blocked with url
// as the fallback; it is not an error.
func (r *InvoiceResolver) Open(url string, opts OpenOptions) (OpenResult, error) {
	url = cleanURL(url)
	if url == "" {
		return OpenResult{}, ErrNoInvoiceURL
	}
	if r.opener.OpenWindow(url, opts.NewTab) == nil {
		return OpenResult{Blocked: true, FallbackURL: url}, nil
	}
	return OpenResult{Opened: true}, nil
}

func cleanURL(s string) string {
	s = strings.TrimSpace(s)
	if !validator.IsHTTPURL(s) {
		return ""
	}
	return s
}

func distinctURLs(candidates ...string) []string {
	out := make([]string, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if c = cleanURL(c); c != "" && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

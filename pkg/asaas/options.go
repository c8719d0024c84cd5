package asaas

import (
	"log/slog"
	"net/http"
)

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its timeout takes precedence
// over Config.Timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

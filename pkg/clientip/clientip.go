package clientip

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type Config struct {
	TrustedHeaders []string `env:"CLIENT_IP_TRUSTED_HEADERS" envSeparator:"," envDefault:"X-Forwarded-For,X-Real-IP"`
}

// Resolve returns the client address of r or "".
func Resolve(r *http.Request, trusted ...string) string {
	for _, name := range trusted {
		value := r.Header.Get(name)
		if value == "" {
			continue
		}
		// X-Forwarded-For style lists put the originating client first.
		for candidate := range strings.SplitSeq(value, ",") {
			if ip := parseIP(candidate); ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

func parseIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return ""
	}
	return ip.String()
}

type contextKey struct{}

func WithContext(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKey{}, ip)
}

func FromContext(ctx context.Context) string {
	ip, _ := ctx.Value(contextKey{}).(string)
	return ip
}

// Middleware stores the resolved address in the request context.
func Middleware(cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := Resolve(r, cfg.TrustedHeaders...)
			next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), ip)))
		})
	}
}

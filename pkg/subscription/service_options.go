package subscription

import (
	"log/slog"
	"time"

	"github.com/imobflow/billing/pkg/locker"
)

// ServiceOption configures a Service instance.
type ServiceOption func(*service)

// WithLogger sets the logger. Card data is never logged.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the time source; used by tests to pin now.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocker sets the per-tenant lock used while provisioning customers.
// Multi-instance deployments need a shared locker such as locker.Redis.
func WithLocker(l locker.Locker) ServiceOption {
	return func(s *service) {
		if l != nil {
			s.locker = l
		}
	}
}

// WithWindowOpener sets the capability used by OpenInvoice.
func WithWindowOpener(o WindowOpener) ServiceOption {
	return func(s *service) {
		if o != nil {
			s.opener = o
		}
	}
}

// WithQREncoder enables QR codes on resolved invoices.
func WithQREncoder(qr QREncoder) ServiceOption {
	return func(s *service) {
		s.qr = qr
	}
}

// WithTrialDays sets the trial length for new accounts.
func WithTrialDays(days int) ServiceOption {
	return func(s *service) {
		if days > 0 {
			s.trialDays = days
		}
	}
}

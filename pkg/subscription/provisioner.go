package subscription

import (
	"context"
	"errors"

	"github.com/imobflow/billing/pkg/logger"
	"github.com/imobflow/billing/pkg/validator"
)

// EnsureCustomer returns the gateway customer of the tenant, creating it on
// first use. A stored id is returned without any network call. Creation
// runs under a per-tenant lock and the id is persisted before returning,
// so concurrent callers never create two customers for one account.
func (s *service) EnsureCustomer(ctx context.Context, tenant Tenant) (string, error) {
	if err := validateTenant(tenant); err != nil {
		s.log.DebugContext(ctx, "tenant rejected before provisioning",
			logger.TenantID(tenant.AccountID),
			logger.Error(err),
		)
		return "", err
	}

	if id, err := s.store.CustomerID(ctx, tenant.AccountID); err != nil {
		return "", errors.Join(ErrProvisioning, err)
	} else if id != "" {
		return id, nil
	}

	release, err := s.locker.Lock(ctx, "customer:"+tenant.AccountID.String())
	if err != nil {
		return "", errors.Join(ErrProvisioning, err)
	}
	defer release()

	// Another request may have finished provisioning while we waited.
	if id, err := s.store.CustomerID(ctx, tenant.AccountID); err != nil {
		return "", errors.Join(ErrProvisioning, err)
	} else if id != "" {
		return id, nil
	}

	customer, err := s.gateway.CreateCustomer(ctx, CustomerRequest{
		Name:              tenant.Name,
		Email:             tenant.Email,
		Document:          validator.Digits(tenant.Document),
		Phone:             validator.Digits(tenant.Phone),
		ExternalReference: tenant.AccountID.String(),
	})
	if err != nil {
		s.log.ErrorContext(ctx, "gateway customer creation failed",
			logger.TenantID(tenant.AccountID),
			logger.Error(err),
		)
		if gwErr, ok := GatewayErrorFrom(err); ok && gwErr.isDocumentError() {
			return "", errors.Join(ErrInvalidDocument, err)
		}
		return "", errors.Join(ErrProvisioning, err)
	}

	stored, err := s.store.SetCustomerID(ctx, tenant.AccountID, customer.ID)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to persist gateway customer",
			logger.TenantID(tenant.AccountID),
			logger.GatewayCustomerID(customer.ID),
			logger.Error(err),
		)
		return "", errors.Join(ErrProvisioning, err)
	}
	if stored != customer.ID {
		s.log.WarnContext(ctx, "account already linked to another gateway customer",
			logger.TenantID(tenant.AccountID),
			logger.GatewayCustomerID(stored),
			logger.Group("discarded", logger.GatewayCustomerID(customer.ID)),
		)
	} else {
		s.log.InfoContext(ctx, "gateway customer provisioned",
			logger.TenantID(tenant.AccountID),
			logger.GatewayCustomerID(customer.ID),
		)
	}

	return stored, nil
}

package subscription

import (
	"errors"
	"fmt"
	"maps"
	"time"
)

// Plan is a read-only catalog entry.
type Plan struct {
	ID           string         `yaml:"id" json:"id"`
	Code         string         `yaml:"code" json:"code"`
	Name         string         `yaml:"name" json:"name"`
	MonthlyPrice Money          `yaml:"monthly_price" json:"monthly_price"`
	AnnualPrice  *Money         `yaml:"annual_price,omitempty" json:"annual_price,omitempty"`
	MaxAgents    int            `yaml:"max_agents" json:"max_agents"`
	Family       PlanFamily     `yaml:"family" json:"family"`
	Features     map[string]any `yaml:"features,omitempty" json:"features,omitempty"`
	Active       bool           `yaml:"active" json:"active"`
}

// ChargeAmount is the amount billed per cycle. Yearly billing uses the annual
// price when the plan has one and twelve monthly payments otherwise.
func (p Plan) ChargeAmount(c Cycle) Money {
	if c == CycleYearly {
		if p.AnnualPrice != nil {
			return *p.AnnualPrice
		}
		return p.MonthlyPrice * 12
	}
	return p.MonthlyPrice
}

// Feature returns the raw value of a feature flag.
func (p Plan) Feature(name string) (any, bool) {
	v, ok := p.Features[name]
	return v, ok
}

// HasFeature reports whether a boolean feature is enabled.
func (p Plan) HasFeature(name string) bool {
	v, ok := p.Features[name].(bool)
	return ok && v
}

func (p Plan) clone() Plan {
	out := p
	if p.AnnualPrice != nil {
		price := *p.AnnualPrice
		out.AnnualPrice = &price
	}
	out.Features = maps.Clone(p.Features)
	return out
}

// NextDueAt is one billing period after now.
func NextDueAt(c Cycle, now time.Time) time.Time {
	if c == CycleYearly {
		return now.AddDate(0, 12, 0)
	}
	return now.AddDate(0, 1, 0)
}

func validatePlans(plans map[string]Plan) error {
	if len(plans) == 0 {
		return errors.Join(ErrInvalidPlanConfiguration, errors.New("catalog is empty"))
	}

	var errs []error
	for key, plan := range plans {
		if plan.ID == "" || key != plan.ID {
			errs = append(errs, fmt.Errorf("plan %q: key does not match id %q", key, plan.ID))
		}
		if plan.MonthlyPrice <= 0 {
			errs = append(errs, fmt.Errorf("plan %q: monthly price must be positive", key))
		}
		if plan.AnnualPrice != nil && *plan.AnnualPrice <= 0 {
			errs = append(errs, fmt.Errorf("plan %q: annual price must be positive", key))
		}
		if !plan.Family.Valid() {
			errs = append(errs, fmt.Errorf("plan %q: unknown family %q", key, plan.Family))
		}
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidPlanConfiguration}, errs...)...)
	}
	return nil
}

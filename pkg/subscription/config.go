package subscription

type Config struct {
	TrialDays int    `env:"BILLING_TRIAL_DAYS" envDefault:"7"`
	PlansFile string `env:"BILLING_PLANS_FILE" envDefault:"plans.yaml"`
}

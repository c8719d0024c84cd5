package asaas

import "time"

// Config holds Asaas API settings. BaseURL defaults to the sandbox.
type Config struct {
	APIKey    string        `env:"ASAAS_API_KEY,required"`
	BaseURL   string        `env:"ASAAS_BASE_URL" envDefault:"https://sandbox.asaas.com/api/v3"`
	Timeout   time.Duration `env:"ASAAS_TIMEOUT" envDefault:"30s"`
	UserAgent string        `env:"ASAAS_USER_AGENT" envDefault:"imobflow-billing"`
}

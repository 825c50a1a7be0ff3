package config

type ServiceConfig struct {
	Name        string         `yaml:"name"`
	Environment string         `yaml:"environment"`
	Version     string         `yaml:"version"`
	ClientURL   string         `yaml:"client_url"`
	Paystack    PaystackConfig `yaml:"paystack"`
	Settlement  SettlementConfig `yaml:"settlement"`
}

// IsProduction gates the staging-only test charge endpoint and the
// live-mode settlement transfer.
func (c *ServiceConfig) IsProduction() bool {
	return c.Environment == "production"
}

type PaystackConfig struct {
	SecretKey     string        `yaml:"secret_key"`
	WebhookSecret string        `yaml:"webhook_secret"`
	CallbackURL   string        `yaml:"callback_url"`
	LiveMode      bool          `yaml:"live_mode"`
	Timeout       Duration      `yaml:"timeout"`
}

// SettlementConfig is the platform bank account that successful live
// payments are swept into.
type SettlementConfig struct {
	AccountName   string `yaml:"account_name"`
	AccountNumber string `yaml:"account_number"`
	BankCode      string `yaml:"bank_code"`
	Currency      string `yaml:"currency"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type RabbitMQConfig struct {
	URL   string `yaml:"url"`
	Queue string `yaml:"queue"`
}

// SweeperConfig controls the background job that re-verifies payments
// stuck in PENDING or PROCESSING.
type SweeperConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Interval Duration `yaml:"interval"`
	MinAge   Duration `yaml:"min_age"`
	Batch    int      `yaml:"batch"`
}

type RateLimitConfig struct {
	Enabled bool     `yaml:"enabled"`
	Limit   int      `yaml:"limit"`
	Window  Duration `yaml:"window"`
	Prefix  string   `yaml:"prefix"`
}

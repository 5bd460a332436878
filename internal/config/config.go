package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"podm.db"`

	Auth    Auth    `envPrefix:"AUTH_"`
	Billing Billing `envPrefix:"BILLING_"`
	Stripe  Stripe  `envPrefix:"STRIPE_"`
}

type Stripe struct {
	BaseApiURL    string `env:"BASE_API_URL" envDefault:"https://api.stripe.com"`
	SecretKey     string `env:"SECRET_KEY"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
}

type Billing struct {
	// Platform commission as a percent of the gross amount, e.g. 12.5
	CommissionPercent float64 `env:"COMMISSION_PERCENT" envDefault:"12.5"`
	// Minimum tip in minor currency units (100 = $1.00)
	MinTipAmount int64  `env:"MIN_TIP_AMOUNT" envDefault:"100"`
	Currency     string `env:"CURRENCY" envDefault:"usd"`
}

type Auth struct {
	JWTSecret string `env:"JWT_SECRET"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	// BaseURL is the public URL of this backend, used to build the
	// webhook notification callback.
	BaseURL string `env:"BASE_URL"`
	// FrontendURL is where the gateway redirects the customer back to
	// after checkout.
	FrontendURL string `env:"FRONTEND_URL"`
	DatabaseURL string `env:"DATABASE_URL"`
	JWTSecret   string `env:"JWT_SECRET"`

	MercadoPago MercadoPago `envPrefix:"MERCADOPAGO_"`
}

type MercadoPago struct {
	BaseApiURL  string `env:"BASE_API_URL" envDefault:"https://api.mercadopago.com"`
	AccessToken string `env:"ACCESS_TOKEN"`
	// WebhookSecret is the shared HMAC key used to verify x-signature
	// headers on inbound notifications.
	WebhookSecret string `env:"WEBHOOK_SECRET"`
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

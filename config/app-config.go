// Package config holds the application's configuration settings.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Redirect modes accepted by GATEWAY_REDIRECT_MODE.
const (
	RedirectModeFixed = "fixed"
	RedirectModeDest  = "dest"
)

// AppConfig defines environment-based configuration for the application.
type AppConfig struct {
	Http    HttpConfig
	Stripe  StripeConfig
	Gateway GatewayConfig
	Redis   RedisConfig
	Log     LogConfig
	Metrics MetricsConfig
}

type HttpConfig struct {
	Addr         string        `env:"PAYMENTS_HTTP_ADDR" env-default:":8080"`
	ReadTimeout  time.Duration `env:"PAYMENTS_HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout time.Duration `env:"PAYMENTS_HTTP_WRITE_TIMEOUT" env-default:"15s"`
	MaxBodyBytes int64         `env:"PAYMENTS_HTTP_MAX_BODY_BYTES" env-default:"65536"`
}

type StripeConfig struct {
	SecretKey      string `env:"STRIPE_SECRET_KEY"`
	WebhookSecret  string `env:"STRIPE_WEBHOOK_SECRET"`
	PublishableKey string `env:"STRIPE_PUBLISHABLE_KEY"`
	Currency       string `env:"STRIPE_CURRENCY" env-default:"usd"`
}

// GatewayConfig configures the relay that serves third-party client sites.
type GatewayConfig struct {
	Secret                 string        `env:"PAYMENT_GATEWAY_SECRET"`
	SiteURL                string        `env:"SITE_URL"`
	CallbackURL            string        `env:"GATEWAY_CALLBACK_URL"`
	CallbackTimeout        time.Duration `env:"GATEWAY_CALLBACK_TIMEOUT" env-default:"10s"`
	RedirectMode           string        `env:"GATEWAY_REDIRECT_MODE" env-default:"fixed"`
	ClientRedirectURL      string        `env:"GATEWAY_CLIENT_REDIRECT_URL"`
	AllowedRedirectDomains []string      `env:"GATEWAY_ALLOWED_REDIRECT_DOMAINS" env-separator:","`
}

type RedisConfig struct {
	URL      string        `env:"REDIS_URL"`
	EventTTL time.Duration `env:"REDIS_EVENT_TTL" env-default:"72h"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"json"`
}

type MetricsConfig struct {
	Namespace string `env:"METRICS_NAMESPACE" env-default:"gateway"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	var cfg AppConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading env: %w", err)
	}
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Normalize trims values that are commonly pasted with stray whitespace.
func (c *AppConfig) Normalize() {
	c.Gateway.RedirectMode = strings.ToLower(strings.TrimSpace(c.Gateway.RedirectMode))
	if c.Gateway.RedirectMode == "" {
		c.Gateway.RedirectMode = RedirectModeFixed
	}
	c.Gateway.SiteURL = strings.TrimRight(strings.TrimSpace(c.Gateway.SiteURL), "/")
	c.Gateway.CallbackURL = strings.TrimSpace(c.Gateway.CallbackURL)
	c.Gateway.ClientRedirectURL = strings.TrimSpace(c.Gateway.ClientRedirectURL)
	c.Gateway.AllowedRedirectDomains = splitHosts(c.Gateway.AllowedRedirectDomains)
	c.Stripe.Currency = strings.ToLower(strings.TrimSpace(c.Stripe.Currency))
}

// Validate rejects structurally invalid settings. Missing secrets are not
// an error here; handlers report them per request.
func (c *AppConfig) Validate() error {
	var errs []error

	switch c.Gateway.RedirectMode {
	case RedirectModeFixed, RedirectModeDest:
	default:
		errs = append(errs, fmt.Errorf("GATEWAY_REDIRECT_MODE must be %q or %q, got %q", RedirectModeFixed, RedirectModeDest, c.Gateway.RedirectMode))
	}

	if c.Gateway.ClientRedirectURL != "" {
		if err := checkAbsoluteURL(c.Gateway.ClientRedirectURL); err != nil {
			errs = append(errs, fmt.Errorf("GATEWAY_CLIENT_REDIRECT_URL: %w", err))
		}
	}
	if c.Gateway.CallbackURL != "" {
		if err := checkAbsoluteURL(c.Gateway.CallbackURL); err != nil {
			errs = append(errs, fmt.Errorf("GATEWAY_CALLBACK_URL: %w", err))
		}
	}
	if c.Gateway.SiteURL != "" {
		if err := checkAbsoluteURL(c.Gateway.SiteURL); err != nil {
			errs = append(errs, fmt.Errorf("SITE_URL: %w", err))
		}
	}
	if c.Http.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("PAYMENTS_HTTP_MAX_BODY_BYTES must be positive"))
	}

	return errors.Join(errs...)
}

// MissingSecrets lists the secret env vars that are empty.
func (c *AppConfig) MissingSecrets() []string {
	var missing []string
	if c.Stripe.SecretKey == "" {
		missing = append(missing, "STRIPE_SECRET_KEY")
	}
	if c.Stripe.WebhookSecret == "" {
		missing = append(missing, "STRIPE_WEBHOOK_SECRET")
	}
	if c.Stripe.PublishableKey == "" {
		missing = append(missing, "STRIPE_PUBLISHABLE_KEY")
	}
	if c.Gateway.Secret == "" {
		missing = append(missing, "PAYMENT_GATEWAY_SECRET")
	}
	return missing
}

func checkAbsoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}

func splitHosts(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			host := strings.ToLower(strings.TrimSpace(part))
			if host != "" {
				out = append(out, host)
			}
		}
	}
	return out
}

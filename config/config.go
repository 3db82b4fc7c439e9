package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const (
	EnvWebServiceID    = "CHARGE_RESELLER_WEB_ID"
	EnvRedirectURL     = "CHARGE_REDIRECT_URL"
	EnvResellerBaseURL = "CHARGE_RESELLER_BASE_URL"
	EnvResellerTimeout = "CHARGE_RESELLER_TIMEOUT"
	EnvHTTPAddr        = "HTTP_ADDR"
	EnvLogLevel        = "LOG_LEVEL"
	EnvJaegerEndpoint  = "JAEGER_ENDPOINT"
)

const (
	DefaultRedirectURL     = "https://domain.com/charge.php"
	DefaultResellerBaseURL = "https://chr724.ir"
	DefaultResellerTimeout = 5 * time.Second
	DefaultHTTPAddr        = ":8080"
)

// Reseller holds everything the reseller adapter needs to talk to the charge API.
type Reseller struct {
	WebServiceID string
	RedirectURL  string
	BaseURL      string
	Timeout      time.Duration
}

// Config is the process-wide configuration. It is built once at startup
// and passed down explicitly; nothing reads the environment after that.
type Config struct {
	Reseller       Reseller
	HTTPAddr       string
	LogLevel       logrus.Level
	JaegerEndpoint string
}

// ConfigurationError is returned when the process cannot start with the
// given settings.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Key, e.Reason)
}

// LoadDotEnv copies .env from the working directory into the process
// environment. Variables that are already set are left alone, and a missing
// file is not an error. Call it before the cli app parses its flags.
func LoadDotEnv() {
	_ = godotenv.Load()
}

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "web-service-id",
			Usage:   "reseller web-service identifier (secret)",
			EnvVars: []string{EnvWebServiceID},
		},
		&cli.StringFlag{
			Name:    "redirect-url",
			Usage:   "where the reseller sends the user after payment",
			Value:   DefaultRedirectURL,
			EnvVars: []string{EnvRedirectURL},
		},
		&cli.StringFlag{
			Name:    "reseller-base-url",
			Usage:   "base URL of the reseller charge API",
			Value:   DefaultResellerBaseURL,
			EnvVars: []string{EnvResellerBaseURL},
		},
		&cli.DurationFlag{
			Name:    "reseller-timeout",
			Usage:   "upper bound for a single reseller call",
			Value:   DefaultResellerTimeout,
			EnvVars: []string{EnvResellerTimeout},
		},
		&cli.StringFlag{
			Name:    "addr",
			Usage:   "HTTP listen address",
			Value:   DefaultHTTPAddr,
			EnvVars: []string{EnvHTTPAddr},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			EnvVars: []string{EnvLogLevel},
		},
		&cli.StringFlag{
			Name:    "jaeger-endpoint",
			Usage:   "collector endpoint for traces, tracing is off when empty",
			EnvVars: []string{EnvJaegerEndpoint},
		},
	}
}

// FromCLI builds a Config from parsed flags (which already fall back to the
// environment) and validates it.
func FromCLI(c *cli.Context) (*Config, error) {
	level, err := logrus.ParseLevel(c.String("log-level"))
	if err != nil {
		return nil, &ConfigurationError{Key: EnvLogLevel, Reason: err.Error()}
	}

	cfg := &Config{
		Reseller: Reseller{
			WebServiceID: strings.TrimSpace(c.String("web-service-id")),
			RedirectURL:  c.String("redirect-url"),
			BaseURL:      strings.TrimRight(c.String("reseller-base-url"), "/"),
			Timeout:      c.Duration("reseller-timeout"),
		},
		HTTPAddr:       c.String("addr"),
		LogLevel:       level,
		JaegerEndpoint: c.String("jaeger-endpoint"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Reseller.WebServiceID == "" {
		return &ConfigurationError{Key: EnvWebServiceID, Reason: "must be set"}
	}
	if c.Reseller.Timeout <= 0 {
		return &ConfigurationError{Key: EnvResellerTimeout, Reason: "must be positive"}
	}
	for key, raw := range map[string]string{
		EnvResellerBaseURL: c.Reseller.BaseURL,
		EnvRedirectURL:     c.Reseller.RedirectURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return &ConfigurationError{Key: key, Reason: fmt.Sprintf("is not an absolute URL: %q", raw)}
		}
	}
	return nil
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/a2n2k3p4/topup-gateway/config"
)

func load(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()

	var (
		cfg     *config.Config
		loadErr error
	)
	app := &cli.App{
		Name:  "test",
		Flags: config.Flags(),
		Action: func(c *cli.Context) error {
			cfg, loadErr = config.FromCLI(c)
			return nil
		},
	}
	require.NoError(t, app.Run(append([]string{"test"}, args...)))
	return cfg, loadErr
}

func TestFromCLI_MissingSecret(t *testing.T) {
	t.Setenv(config.EnvWebServiceID, "")

	cfg, err := load(t)
	require.Nil(t, cfg)

	var cfgErr *config.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.EnvWebServiceID, cfgErr.Key)
}

func TestFromCLI_Defaults(t *testing.T) {
	t.Setenv(config.EnvWebServiceID, "  web-123  ")

	cfg, err := load(t)
	require.NoError(t, err)

	assert.Equal(t, "web-123", cfg.Reseller.WebServiceID)
	assert.Equal(t, config.DefaultRedirectURL, cfg.Reseller.RedirectURL)
	assert.Equal(t, config.DefaultResellerBaseURL, cfg.Reseller.BaseURL)
	assert.Equal(t, config.DefaultResellerTimeout, cfg.Reseller.Timeout)
	assert.Equal(t, config.DefaultHTTPAddr, cfg.HTTPAddr)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	assert.Empty(t, cfg.JaegerEndpoint)
}

func TestFromCLI_FlagsOverrideEnv(t *testing.T) {
	t.Setenv(config.EnvWebServiceID, "from-env")
	t.Setenv(config.EnvResellerTimeout, "2s")

	cfg, err := load(t, "--web-service-id", "from-flag", "--reseller-base-url", "http://127.0.0.1:9000/", "--log-level", "debug")
	require.NoError(t, err)

	assert.Equal(t, "from-flag", cfg.Reseller.WebServiceID)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.Reseller.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Reseller.Timeout)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	valid := func() *config.Config {
		return &config.Config{
			Reseller: config.Reseller{
				WebServiceID: "id",
				RedirectURL:  config.DefaultRedirectURL,
				BaseURL:      config.DefaultResellerBaseURL,
				Timeout:      time.Second,
			},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*config.Config)
		key    string
	}{
		{"zero timeout", func(c *config.Config) { c.Reseller.Timeout = 0 }, config.EnvResellerTimeout},
		{"relative base url", func(c *config.Config) { c.Reseller.BaseURL = "chr724.ir" }, config.EnvResellerBaseURL},
		{"empty redirect", func(c *config.Config) { c.Reseller.RedirectURL = "" }, config.EnvRedirectURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			var cfgErr *config.ConfigurationError
			require.ErrorAs(t, cfg.Validate(), &cfgErr)
			assert.Equal(t, tt.key, cfgErr.Key)
		})
	}
}

func TestFromCLI_BadLogLevel(t *testing.T) {
	t.Setenv(config.EnvWebServiceID, "id")

	_, err := load(t, "--log-level", "loud")

	var cfgErr *config.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.EnvLogLevel, cfgErr.Key)
}

// unsetenv removes key for the rest of the test and restores it afterwards.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func writeDotEnv(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))
	t.Chdir(dir)
}

func TestLoadDotEnv_FillsFlags(t *testing.T) {
	unsetenv(t, config.EnvWebServiceID)
	unsetenv(t, config.EnvResellerTimeout)
	writeDotEnv(t, config.EnvWebServiceID+"=from-dotenv\n"+config.EnvResellerTimeout+"=3s\n")

	config.LoadDotEnv()

	cfg, err := load(t)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Reseller.WebServiceID)
	assert.Equal(t, 3*time.Second, cfg.Reseller.Timeout)
}

func TestLoadDotEnv_EnvironmentWins(t *testing.T) {
	t.Setenv(config.EnvWebServiceID, "from-env")
	writeDotEnv(t, config.EnvWebServiceID+"=from-dotenv\n")

	config.LoadDotEnv()

	cfg, err := load(t)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Reseller.WebServiceID)
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	unsetenv(t, config.EnvWebServiceID)
	t.Chdir(t.TempDir())

	config.LoadDotEnv()

	_, err := load(t)
	var cfgErr *config.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.EnvWebServiceID, cfgErr.Key)
}

// Package config loads the CLI configuration with viper.
//
// Sources, from lowest to highest priority: built-in defaults, the config file, environment variables, flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	errUtils "github.com/cloudposse/hcloud-projects/errors"
	log "github.com/cloudposse/hcloud-projects/pkg/logger"
	"github.com/cloudposse/hcloud-projects/pkg/perf"
	"github.com/cloudposse/hcloud-projects/pkg/schema"
	"github.com/cloudposse/hcloud-projects/pkg/version"
)

// LoadOptions select the config file and the flags that override configuration keys.
type LoadOptions struct {
	// ConfigFile is an explicit config file. When empty, hcloud-projects.yaml is searched for in the working
	// directory and in ~/.config/hcloud-projects.
	ConfigFile string
	// Flags maps configuration keys to the flags that override them.
	Flags map[string]*pflag.Flag
}

// LoadConfig loads and validates the configuration.
func LoadConfig(opts LoadOptions) (*schema.Configuration, error) {
	defer perf.Track(nil, "config.LoadConfig")()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetTypeByDefaultValue(true)
	setDefaultConfiguration(v)

	if err := readConfigFile(v, opts.ConfigFile); err != nil {
		return nil, err
	}

	if err := bindEnv(v); err != nil {
		return nil, err
	}

	for key, flag := range opts.Flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("%w: failed to bind flag %s to %s: %w", errUtils.ErrInvalidConfig, flag.Name, key, err)
		}
	}

	var cfg schema.Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errUtils.Build(fmt.Errorf("%w: %w", errUtils.ErrInvalidConfig, err)).
			WithExitCode(errUtils.ExitCodeUsage).
			Err()
	}

	if flag := opts.Flags[noSandboxKey]; flag == nil || !flag.Changed {
		if noSandbox, ok := noSandboxFromEnv(); ok {
			cfg.Browser.NoSandbox = noSandbox
		}
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaultConfiguration sets the default of every configuration key.
func setDefaultConfiguration(v *viper.Viper) {
	v.SetDefault("console.url", DefaultConsoleURL)

	v.SetDefault("identity.authorize_url", DefaultAuthorizeURL)
	v.SetDefault("identity.login_url", DefaultLoginURL)
	v.SetDefault("identity.login_check_url", DefaultLoginCheckURL)
	v.SetDefault("identity.client_id", DefaultClientID)
	v.SetDefault("identity.scope", "openid")
	v.SetDefault("identity.response_type", "id_token token")
	v.SetDefault("identity.csrf_field", "_csrf_token")
	v.SetDefault("identity.max_redirects", 3)

	v.SetDefault("api.url", DefaultAPIURL)
	v.SetDefault("api.per_page", 25)

	v.SetDefault("login.strategy", schema.LoginStrategyHTTP)

	v.SetDefault("browser.no_sandbox", false)
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.timeout", 30*time.Second)
	v.SetDefault("browser.cookie_name", "tokens")
	v.SetDefault("browser.selectors.username", "#_username")
	v.SetDefault("browser.selectors.password", "#_password")
	v.SetDefault("browser.selectors.submit", "#submit-login")
	v.SetDefault("browser.selectors.ready", ".user-details__robotcn")

	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.user_agent", version.UserAgent())

	v.SetDefault("retry.max_attempts", 1)
	v.SetDefault("retry.backoff_strategy", string(schema.BackoffExponential))
	v.SetDefault("retry.initial_delay", 500*time.Millisecond)
	v.SetDefault("retry.max_delay", 5*time.Second)
	v.SetDefault("retry.random_jitter", true)
	v.SetDefault("retry.multiplier", 2.0)
	v.SetDefault("retry.max_elapsed_time", 2*time.Minute)

	v.SetDefault("logs.file", "/dev/stderr")
	v.SetDefault("logs.level", "Info")

	v.SetDefault("errors.format.verbose", false)
	v.SetDefault("errors.format.color", "auto")
	v.SetDefault("errors.sentry.enabled", false)
	v.SetDefault("errors.sentry.sample_rate", 1.0)

	v.SetDefault("profiler.enabled", false)
}

// readConfigFile merges the config file. A missing explicit file is an error; a missing default one is not.
func readConfigFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(CliConfigFileName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, UserConfigDir))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			log.Debug("No config file found, using defaults", "name", CliConfigFileName+".yaml")
			return nil
		}
		return errUtils.Build(fmt.Errorf("%w: failed to read config file: %w", errUtils.ErrInvalidConfig, err)).
			WithContext("file", lo.CoalesceOrEmpty(configFile, v.ConfigFileUsed())).
			WithExitCode(errUtils.ExitCodeUsage).
			Err()
	}

	log.Debug("Loaded config file", "file", v.ConfigFileUsed())
	return nil
}

// bindEnv maps every key to HCLOUD_<KEY> and binds the unprefixed legacy variables.
func bindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindings := map[string][]string{
		"api.token":               {"HCLOUD_API_TOKEN", UserTokenEnvVar},
		"login.username":          {"HCLOUD_LOGIN_USERNAME", UsernameEnvVar},
		"login.password":          {"HCLOUD_LOGIN_PASSWORD", PasswordEnvVar},
		"browser.executable_path": {"HCLOUD_BROWSER_EXECUTABLE_PATH", HeadlessPathEnvVar},
	}
	for key, envVars := range bindings {
		if err := v.BindEnv(append([]string{key}, envVars...)...); err != nil {
			return fmt.Errorf("%w: failed to bind %s: %w", errUtils.ErrInvalidConfig, key, err)
		}
	}

	return nil
}

const noSandboxKey = "browser.no_sandbox"

// noSandboxFromEnv reads the sandbox switch as a presence flag: any non-empty value other than
// 0, false, no or off disables the sandbox. The prefixed variable takes precedence over the legacy one.
func noSandboxFromEnv() (bool, bool) {
	for _, name := range []string{EnvPrefix + "_BROWSER_NO_SANDBOX", HeadlessNoSandboxEnvVar} {
		value := strings.TrimSpace(os.Getenv(name))
		if value == "" {
			continue
		}
		switch strings.ToLower(value) {
		case "0", "false", "no", "off":
			return false, true
		default:
			return true, true
		}
	}
	return false, false
}

// Validate checks values that would otherwise fail deep inside a login or API call.
func Validate(cfg *schema.Configuration) error {
	defer perf.Track(cfg, "config.Validate")()

	urls := []struct{ key, value string }{
		{"console.url", cfg.Console.URL},
		{"identity.authorize_url", cfg.Identity.AuthorizeURL},
		{"identity.login_url", cfg.Identity.LoginURL},
		{"identity.login_check_url", cfg.Identity.LoginCheckURL},
		{"api.url", cfg.API.URL},
	}
	for _, u := range urls {
		if err := validateURL(u.key, u.value); err != nil {
			return err
		}
	}

	switch {
	case cfg.API.PerPage <= 0:
		return invalid("api.per_page", "must be positive, got %d", cfg.API.PerPage)
	case cfg.Identity.MaxRedirects < 0:
		return invalid("identity.max_redirects", "must not be negative, got %d", cfg.Identity.MaxRedirects)
	case cfg.Retry.MaxAttempts < 0:
		return invalid("retry.max_attempts", "must not be negative, got %d", cfg.Retry.MaxAttempts)
	case cfg.HTTP.Timeout < 0:
		return invalid("http.timeout", "must not be negative, got %s", cfg.HTTP.Timeout)
	}

	switch cfg.Retry.BackoffStrategy {
	case "", schema.BackoffConstant, schema.BackoffLinear, schema.BackoffExponential:
	default:
		return invalid("retry.backoff_strategy", "must be constant, linear or exponential, got %q", cfg.Retry.BackoffStrategy)
	}

	switch cfg.Errors.Format.Color {
	case "", "auto", "always", "never":
	default:
		return invalid("errors.format.color", "must be auto, always or never, got %q", cfg.Errors.Format.Color)
	}

	return nil
}

func validateURL(key, value string) error {
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return invalid(key, "must be an absolute URL, got %q", value)
	}
	return nil
}

func invalid(key, format string, args ...any) error {
	return errUtils.Build(fmt.Errorf("%w: %s %s", errUtils.ErrInvalidConfig, key, fmt.Sprintf(format, args...))).
		WithContext("key", key).
		WithExitCode(errUtils.ExitCodeUsage).
		Err()
}

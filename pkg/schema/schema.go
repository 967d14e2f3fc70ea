package schema

import "time"

// Configuration is the full configuration of the CLI, assembled from defaults, the config file,
// environment variables and flags.
type Configuration struct {
	Console  Console      `yaml:"console" json:"console" mapstructure:"console"`
	Identity Identity     `yaml:"identity" json:"identity" mapstructure:"identity"`
	API      API          `yaml:"api" json:"api" mapstructure:"api"`
	Login    Login        `yaml:"login" json:"login" mapstructure:"login"`
	Browser  Browser      `yaml:"browser" json:"browser" mapstructure:"browser"`
	HTTP     HTTP         `yaml:"http" json:"http" mapstructure:"http"`
	Retry    RetryConfig  `yaml:"retry" json:"retry" mapstructure:"retry"`
	Logs     Logs         `yaml:"logs" json:"logs" mapstructure:"logs"`
	Errors   ErrorsConfig `yaml:"errors" json:"errors" mapstructure:"errors"`
	Profiler Profiler     `yaml:"profiler" json:"profiler" mapstructure:"profiler"`
}

// Console describes the web console the identity provider redirects back to.
type Console struct {
	URL string `yaml:"url" json:"url" mapstructure:"url"`
}

// Identity describes the identity provider's OAuth implicit flow and login form.
type Identity struct {
	AuthorizeURL  string `yaml:"authorize_url" json:"authorize_url" mapstructure:"authorize_url"`
	LoginURL      string `yaml:"login_url" json:"login_url" mapstructure:"login_url"`
	LoginCheckURL string `yaml:"login_check_url" json:"login_check_url" mapstructure:"login_check_url"`
	ClientID      string `yaml:"client_id" json:"client_id" mapstructure:"client_id"`
	Scope         string `yaml:"scope" json:"scope" mapstructure:"scope"`
	ResponseType  string `yaml:"response_type" json:"response_type" mapstructure:"response_type"`
	CSRFField     string `yaml:"csrf_field" json:"csrf_field" mapstructure:"csrf_field"`
	MaxRedirects  int    `yaml:"max_redirects" json:"max_redirects" mapstructure:"max_redirects"`
}

// API describes the cloud REST API.
type API struct {
	URL     string `yaml:"url" json:"url" mapstructure:"url"`
	PerPage int    `yaml:"per_page" json:"per_page" mapstructure:"per_page"`
	Token   string `yaml:"-" json:"-" mapstructure:"token"`
}

// Login strategies.
const (
	LoginStrategyHTTP    = "http"
	LoginStrategyBrowser = "browser"
)

// Login holds the account credentials and the strategy used to exchange them for a user token.
type Login struct {
	Strategy string `yaml:"strategy" json:"strategy" mapstructure:"strategy"`
	Username string `yaml:"-" json:"-" mapstructure:"username"`
	Password string `yaml:"-" json:"-" mapstructure:"password"`
}

// Browser configures the headless browser used by the browser login strategy.
type Browser struct {
	ExecutablePath string           `yaml:"executable_path,omitempty" json:"executable_path,omitempty" mapstructure:"executable_path"`
	NoSandbox      bool             `yaml:"no_sandbox" json:"no_sandbox" mapstructure:"no_sandbox"`
	Headless       bool             `yaml:"headless" json:"headless" mapstructure:"headless"`
	Timeout        time.Duration    `yaml:"timeout" json:"timeout" mapstructure:"timeout"`
	CookieName     string           `yaml:"cookie_name" json:"cookie_name" mapstructure:"cookie_name"`
	Selectors      BrowserSelectors `yaml:"selectors" json:"selectors" mapstructure:"selectors"`
}

// BrowserSelectors are the CSS selectors of the login page and of the post-login marker.
type BrowserSelectors struct {
	Username string `yaml:"username" json:"username" mapstructure:"username"`
	Password string `yaml:"password" json:"password" mapstructure:"password"`
	Submit   string `yaml:"submit" json:"submit" mapstructure:"submit"`
	Ready    string `yaml:"ready" json:"ready" mapstructure:"ready"`
}

// HTTP configures the transport shared by every HTTP client.
type HTTP struct {
	Timeout   time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`
	UserAgent string        `yaml:"user_agent" json:"user_agent" mapstructure:"user_agent"`
}

// BackoffStrategy selects how the delay between retry attempts grows.
type BackoffStrategy string

const (
	BackoffConstant    BackoffStrategy = "constant"
	BackoffLinear      BackoffStrategy = "linear"
	BackoffExponential BackoffStrategy = "exponential"
)

// RetryConfig configures whole-operation retries in the CLI.
type RetryConfig struct {
	MaxAttempts     int             `yaml:"max_attempts" json:"max_attempts" mapstructure:"max_attempts"`
	BackoffStrategy BackoffStrategy `yaml:"backoff_strategy" json:"backoff_strategy" mapstructure:"backoff_strategy"`
	InitialDelay    time.Duration   `yaml:"initial_delay" json:"initial_delay" mapstructure:"initial_delay"`
	MaxDelay        time.Duration   `yaml:"max_delay" json:"max_delay" mapstructure:"max_delay"`
	RandomJitter    bool            `yaml:"random_jitter" json:"random_jitter" mapstructure:"random_jitter"`
	Multiplier      float64         `yaml:"multiplier" json:"multiplier" mapstructure:"multiplier"`
	MaxElapsedTime  time.Duration   `yaml:"max_elapsed_time" json:"max_elapsed_time" mapstructure:"max_elapsed_time"`
}

// Logs configures the logger.
type Logs struct {
	File  string `yaml:"file" json:"file" mapstructure:"file"`
	Level string `yaml:"level" json:"level" mapstructure:"level"`
}

// ErrorsConfig configures error formatting and reporting.
type ErrorsConfig struct {
	Format ErrorFormatConfig `yaml:"format" json:"format" mapstructure:"format"`
	Sentry SentryConfig      `yaml:"sentry" json:"sentry" mapstructure:"sentry"`
}

// ErrorFormatConfig configures how errors are printed.
type ErrorFormatConfig struct {
	Verbose bool   `yaml:"verbose" json:"verbose" mapstructure:"verbose"`
	Color   string `yaml:"color" json:"color" mapstructure:"color"`
}

// SentryConfig configures Sentry error reporting.
type SentryConfig struct {
	Enabled     bool              `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	DSN         string            `yaml:"dsn" json:"dsn" mapstructure:"dsn"`
	Environment string            `yaml:"environment" json:"environment" mapstructure:"environment"`
	Release     string            `yaml:"release" json:"release" mapstructure:"release"`
	Debug       bool              `yaml:"debug" json:"debug" mapstructure:"debug"`
	SampleRate  float64           `yaml:"sample_rate" json:"sample_rate" mapstructure:"sample_rate"`
	Tags        map[string]string `yaml:"tags,omitempty" json:"tags,omitempty" mapstructure:"tags"`
}

// Profiler enables function timing collection.
type Profiler struct {
	Enabled bool `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
}

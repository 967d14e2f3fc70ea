package config

const (
	// CliConfigFileName is the config file name without extension.
	CliConfigFileName = "hcloud-projects"
	// EnvPrefix prefixes the environment variable of every configuration key.
	EnvPrefix = "HCLOUD"

	// UserConfigDir is the config directory under the user's home.
	UserConfigDir = ".config/hcloud-projects"
)

// Default endpoints of the console, its identity provider and the cloud API.
const (
	DefaultConsoleURL    = "https://console.hetzner.cloud"
	DefaultAuthorizeURL  = "https://accounts.hetzner.com/oauth/authorize"
	DefaultLoginURL      = "https://accounts.hetzner.com/login"
	DefaultLoginCheckURL = "https://accounts.hetzner.com/login_check"
	DefaultClientID      = "cloud_console"
	DefaultAPIURL        = "https://api.hetzner.cloud/v1"
)

// Environment variables kept from earlier releases, read in addition to the HCLOUD_ prefixed names.
const (
	UserTokenEnvVar         = "HCLOUD_USER_TOKEN"
	UsernameEnvVar          = "HETZNER_USERNAME"
	PasswordEnvVar          = "HETZNER_PASSWORD"
	HeadlessNoSandboxEnvVar = "HEADLESS_NO_SANDBOX"
	HeadlessPathEnvVar      = "HEADLESS_PATH"
)

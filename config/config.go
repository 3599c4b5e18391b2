// config/config.go
// Loads configuration for the WAF admin tooling from environment variables,
// with optional .env autoload and safe defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIPath               = "/api/waf/v4"
	DefaultRequestTimeout        = 30 * time.Second
	DefaultPatchTimeout          = 60 * time.Second
	DefaultTokenRefreshSkew      = 30 * time.Second
	DefaultMaxRetryAttempts      = 3
	DefaultExportConcurrency     = 4
	DefaultSnapshotsDir          = "exports/snapshots"
	DefaultRulesDir              = "exports/rules"
	DefaultActionsDir            = "exports/actions"
	DefaultSnapshotRetentionDays = 0 // 0 disables retention cleanup
	DefaultListenAddr            = ":8080"
	DefaultLogLevel              = "info"
	DefaultMaxRedirects          = 5
)

// Appliance endpoint paths, relative to BaseURL+APIPath. These are
// appliance-version-dependent and kept in one place on purpose.
const (
	EndpointRefreshTokens = "/auth/refresh_tokens"
	EndpointAccessTokens  = "/auth/access_tokens"
	EndpointTenants       = "/auth/account/tenants"
	EndpointSnapshot      = "/config/snapshot"
	EndpointRules         = "/config/rules"
	EndpointActions       = "/config/actions"
)

// AuthMethod selects how the process authenticates against the appliance.
// Exactly one method is active for the whole process lifetime.
type AuthMethod int

const (
	// AuthMethodToken uses a static, pre-issued API token. The token is
	// treated as always fresh and is never refreshed.
	AuthMethodToken AuthMethod = iota
	// AuthMethodPassword logs in with username/password and manages the
	// resulting JWT access/refresh pairs.
	AuthMethodPassword
)

func (m AuthMethod) String() string {
	if m == AuthMethodToken {
		return "token"
	}
	return "password"
}

// TriState models the three-way LDAP flag contract of the login endpoint:
// Unset omits the field from the wire payload entirely, Enabled sends true,
// Disabled sends false.
type TriState int

const (
	TriStateUnset TriState = iota
	TriStateEnabled
	TriStateDisabled
)

// ParseTriState converts an environment string to a TriState. Empty or
// unrecognized input maps to TriStateUnset so a typo cannot silently flip
// the wire behavior.
func ParseTriState(val string) TriState {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "true", "yes", "on", "y", "t":
		return TriStateEnabled
	case "0", "false", "no", "off", "n", "f":
		return TriStateDisabled
	default:
		return TriStateUnset
	}
}

// Bool returns the boolean value and whether the flag is set at all.
func (t TriState) Bool() (value bool, set bool) {
	switch t {
	case TriStateEnabled:
		return true, true
	case TriStateDisabled:
		return false, true
	default:
		return false, false
	}
}

// Config is the single source of settings for the process.
type Config struct {
	// Appliance connection
	BaseURL   string // AF_URL, no trailing slash
	APIPath   string // API_PATH
	VerifySSL bool
	ReadOnly  bool // READ_ONLY: imports are logged, not sent

	// Transport behavior
	EnableCookieJar bool // sticky LB session support
	FollowRedirects bool
	MaxRedirects    int

	// Timings / retries
	RequestTimeout   time.Duration
	PatchTimeout     time.Duration
	TokenRefreshSkew time.Duration
	MaxRetryAttempts int

	// Authentication
	APIToken    string
	APILogin    string
	APIPassword string
	LDAPAuth    TriState
	Method      AuthMethod

	// Tenant iteration filters (names, case-insensitive)
	OnlyTenants []string
	SkipTenants []string

	// Local export layout
	SnapshotsDir          string
	RulesDir              string
	ActionsDir            string
	SnapshotRetentionDays int
	ExportConcurrency     int

	// Logging
	LogLevel          string
	LogFile           string
	HideSensitiveData bool

	// Web surface
	ListenAddr string
}

// Load reads configuration from the environment, autoloading a .env file
// from the working directory when present. It fails when no authentication
// credentials are configured; presence of a static token takes priority
// over username/password.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		BaseURL:               strings.TrimRight(getEnvAsString("AF_URL", ""), "/"),
		APIPath:               getEnvAsString("API_PATH", DefaultAPIPath),
		VerifySSL:             getEnvAsBool("VERIFY_SSL", true),
		ReadOnly:              getEnvAsBool("READ_ONLY", false),
		EnableCookieJar:       getEnvAsBool("COOKIE_JAR", true),
		FollowRedirects:       getEnvAsBool("FOLLOW_REDIRECTS", true),
		MaxRedirects:          getEnvAsInt("MAX_REDIRECTS", DefaultMaxRedirects),
		RequestTimeout:        getEnvAsDuration("REQUEST_TIMEOUT", DefaultRequestTimeout),
		PatchTimeout:          getEnvAsDuration("PATCH_TIMEOUT", DefaultPatchTimeout),
		TokenRefreshSkew:      getEnvAsDuration("TOKEN_REFRESH_SKEW", DefaultTokenRefreshSkew),
		MaxRetryAttempts:      getEnvAsInt("MAX_RETRIES", DefaultMaxRetryAttempts),
		APIToken:              readAPIToken(),
		APILogin:              strings.TrimSpace(os.Getenv("API_LOGIN")),
		APIPassword:           strings.TrimSpace(os.Getenv("API_PASSWORD")),
		LDAPAuth:              ParseTriState(os.Getenv("LDAP_AUTH")),
		OnlyTenants:           getEnvAsList("ONLY_TENANTS"),
		SkipTenants:           getEnvAsList("SKIP_TENANTS"),
		SnapshotsDir:          getEnvAsString("SNAPSHOTS_DIR", DefaultSnapshotsDir),
		RulesDir:              getEnvAsString("RULES_DIR", DefaultRulesDir),
		ActionsDir:            getEnvAsString("ACTIONS_DIR", DefaultActionsDir),
		SnapshotRetentionDays: getEnvAsInt("SNAPSHOT_RETENTION_DAYS", DefaultSnapshotRetentionDays),
		ExportConcurrency:     getEnvAsInt("EXPORT_CONCURRENCY", DefaultExportConcurrency),
		LogLevel:              getEnvAsString("LOG_LEVEL", DefaultLogLevel),
		LogFile:               getEnvAsString("LOG_FILE", ""),
		HideSensitiveData:     getEnvAsBool("HIDE_SENSITIVE_DATA", true),
		ListenAddr:            getEnvAsString("LISTEN_ADDR", DefaultListenAddr),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// APIBase returns the root of all appliance API endpoints.
func (c *Config) APIBase() string {
	return c.BaseURL + c.APIPath
}

func (c *Config) validate() error {
	if c.BaseURL == "" {
		return errors.New("AF_URL is not set")
	}

	switch {
	case c.APIToken != "":
		c.Method = AuthMethodToken
	case c.APILogin != "" && c.APIPassword != "":
		c.Method = AuthMethodPassword
	default:
		return errors.New("no auth credentials found: set API_TOKEN (or API_TOKEN_FILE) or API_LOGIN/API_PASSWORD")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}

	if c.TokenRefreshSkew < 0 {
		return fmt.Errorf("token refresh skew cannot be negative, got %s", c.TokenRefreshSkew)
	}

	if c.MaxRetryAttempts < 1 {
		c.MaxRetryAttempts = DefaultMaxRetryAttempts
	}

	if c.ExportConcurrency < 1 {
		c.ExportConcurrency = DefaultExportConcurrency
	}

	if c.FollowRedirects && c.MaxRedirects < 1 {
		c.MaxRedirects = DefaultMaxRedirects
	}

	return nil
}

// readAPIToken supports storing the static token in a file (API_TOKEN_FILE,
// e.g. a container secret mount) or directly in API_TOKEN.
func readAPIToken() string {
	if tokenFile := os.Getenv("API_TOKEN_FILE"); tokenFile != "" {
		if content, err := os.ReadFile(tokenFile); err == nil {
			if token := strings.TrimSpace(string(content)); token != "" {
				return token
			}
		}
	}
	return strings.TrimSpace(os.Getenv("API_TOKEN"))
}

func getEnvAsString(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.ParseBool(strings.ToLower(val))
	if err != nil {
		return defaultVal
	}
	return parsed
}

func getEnvAsInt(key string, defaultVal int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// getEnvAsDuration reads a duration expressed in whole seconds, matching the
// appliance tooling convention (REQUEST_TIMEOUT=30 means 30 seconds).
func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return defaultVal
	}
	return time.Duration(parsed) * time.Second
}

// getEnvAsList parses a comma-separated value into a slice, dropping empty
// entries.
func getEnvAsList(key string) []string {
	raw := os.Getenv(key)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// httpclient/client.go
/* The httpclient package provides the HTTP client used against the appliance
management API. It owns the TLS and timeout settings, binds a bearer token to
every outgoing request via the token manager, and implements the single
refresh-and-retry cycle on authorization failures. */
package httpclient

import (
	"crypto/tls"
	"net/http"

	"go.uber.org/zap"

	"github.com/wafops/go-waf-admin/authenticationhandler"
	"github.com/wafops/go-waf-admin/config"
	"github.com/wafops/go-waf-admin/cookiejar"
	"github.com/wafops/go-waf-admin/logger"
	"github.com/wafops/go-waf-admin/redirecthandler"
)

// Client is the authenticated client for the appliance management API.
type Client struct {
	cfg  *config.Config
	http *http.Client
	log  logger.Logger

	Auth *authenticationhandler.TokenManager
}

// NewTransport builds the underlying http.Client carrying the configured
// TLS verification mode, request timeout, cookie jar and redirect policy.
// Every call through it carries that timeout; a timed-out call counts as a
// transient failure for the retry policies above.
func NewTransport(cfg *config.Config, log logger.Logger) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: !cfg.VerifySSL}

	httpClient := &http.Client{
		Timeout:   cfg.RequestTimeout,
		Transport: transport,
	}

	if err := cookiejar.SetupCookieJar(httpClient, cfg.EnableCookieJar, log); err != nil {
		log.Warn("Continuing without cookie jar", zap.Error(err))
	}
	if err := redirecthandler.SetupRedirectHandler(httpClient, cfg.FollowRedirects, cfg.MaxRedirects, log); err != nil {
		log.Warn("Continuing with default redirect handling", zap.Error(err))
	}

	return httpClient
}

// BuildClient creates a new authenticated API client with its own token
// manager.
func BuildClient(cfg *config.Config, log logger.Logger) *Client {
	httpClient := NewTransport(cfg, log)

	client := &Client{
		cfg:  cfg,
		http: httpClient,
		log:  log,
		Auth: authenticationhandler.NewTokenManager(cfg, httpClient, log),
	}

	log.Debug("API client initialized",
		zap.String("base_url", cfg.BaseURL),
		zap.String("api_path", cfg.APIPath),
		zap.String("auth_method", cfg.Method.String()),
		zap.Bool("verify_ssl", cfg.VerifySSL),
		zap.Duration("request_timeout", cfg.RequestTimeout),
		zap.Duration("token_refresh_skew", cfg.TokenRefreshSkew),
		zap.Int("max_retry_attempts", cfg.MaxRetryAttempts))

	return client
}

// Config exposes the client's configuration to the operation packages.
func (c *Client) Config() *config.Config {
	return c.cfg
}

// Logger exposes the client's logger to the operation packages.
func (c *Client) Logger() logger.Logger {
	return c.log
}

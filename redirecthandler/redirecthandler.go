// redirecthandler/redirecthandler.go
// Redirect policy for the appliance client. Reverse proxies in front of the
// appliance occasionally answer with redirects (HTTP to HTTPS upgrades,
// node draining); following them blindly would leak the bearer token to
// whatever host the proxy names.
package redirecthandler

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/wafops/go-waf-admin/logger"
)

// MaxRedirectsError is returned when a redirect chain exceeds the limit.
type MaxRedirectsError struct {
	MaxRedirects int
}

func (e *MaxRedirectsError) Error() string {
	return fmt.Sprintf("maximum redirects reached: %d", e.MaxRedirects)
}

// RedirectHandler enforces the redirect policy on an http.Client.
type RedirectHandler struct {
	log          logger.Logger
	maxRedirects int

	// sensitiveHeaders are stripped when a redirect leaves the original
	// host. Authorization in particular must never cross hosts.
	sensitiveHeaders []string
}

// NewRedirectHandler creates a handler with the default sensitive headers.
func NewRedirectHandler(log logger.Logger, maxRedirects int) *RedirectHandler {
	return &RedirectHandler{
		log:              log,
		maxRedirects:     maxRedirects,
		sensitiveHeaders: []string{"Authorization", "Cookie"},
	}
}

// WithRedirectHandling applies the policy to the client.
func (r *RedirectHandler) WithRedirectHandling(client *http.Client) {
	client.CheckRedirect = r.checkRedirect
}

func (r *RedirectHandler) checkRedirect(req *http.Request, via []*http.Request) error {
	// Imports and token exchanges must not be replayed against a new
	// location. The caller sees the redirect response itself.
	if req.Method == http.MethodPost || req.Method == http.MethodPatch || req.Method == http.MethodPut {
		r.log.Warn("Redirect on non-idempotent method, not following",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()))
		return http.ErrUseLastResponse
	}

	if len(via) >= r.maxRedirects {
		return &MaxRedirectsError{MaxRedirects: r.maxRedirects}
	}

	origin := via[0].URL
	if req.URL.Host != origin.Host {
		r.log.Warn("Cross-host redirect, stripping credentials",
			zap.String("from", origin.Host),
			zap.String("to", req.URL.Host))
		for _, header := range r.sensitiveHeaders {
			req.Header.Del(header)
		}
	}

	r.log.Debug("Following redirect",
		zap.String("url", req.URL.String()),
		zap.Int("hop", len(via)))
	return nil
}

// SetupRedirectHandler configures redirect handling on the client. With
// followRedirects false the client never follows and callers always see the
// redirect response.
func SetupRedirectHandler(client *http.Client, followRedirects bool, maxRedirects int, log logger.Logger) error {
	if !followRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
		return nil
	}

	if maxRedirects < 1 {
		return fmt.Errorf("invalid max redirects value: %d", maxRedirects)
	}

	NewRedirectHandler(log, maxRedirects).WithRedirectHandling(client)
	return nil
}

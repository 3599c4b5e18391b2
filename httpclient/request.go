// httpclient/request.go
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/wafops/go-waf-admin/config"
	"github.com/wafops/go-waf-admin/cookiejar"
	"github.com/wafops/go-waf-admin/redact"
	"github.com/wafops/go-waf-admin/response"
	"github.com/wafops/go-waf-admin/status"
	"github.com/wafops/go-waf-admin/version"
)

// Do executes a single request against the appliance API with bearer
// binding. endpoint is relative to the configured API base; tenantID selects
// the tenant context, empty meaning the base (no-tenant) context.
//
// Before sending, a usable token for the context is obtained from the token
// manager. If the appliance answers 401 or 403 and the process runs in
// password mode, the cached credential for the context is discarded, a fresh
// token is obtained, and the request is resent exactly once; the second
// response is returned as-is whatever its status. In static-token mode
// authorization failures are surfaced unmodified, since the token cannot be
// refreshed.
func (c *Client) Do(ctx context.Context, method, endpoint, tenantID string, body any) (*http.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
	}

	token, err := c.Auth.EnsureToken(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, method, endpoint, token, payload)
	if err != nil {
		return nil, err
	}

	if !status.IsAuthorizationFailure(resp.StatusCode) || c.cfg.Method != config.AuthMethodPassword {
		return resp, nil
	}

	c.log.Warn("Authorization challenge, refreshing token and retrying once",
		zap.Int("status_code", resp.StatusCode),
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.String("tenant_id", tenantID))

	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if tenantID != "" {
		c.Auth.InvalidateTenant(tenantID)
		token, err = c.Auth.EnsureTenantToken(ctx, tenantID, false)
	} else {
		token, err = c.Auth.RefreshBaseToken(ctx)
	}
	if err != nil {
		return nil, err
	}

	return c.send(ctx, method, endpoint, token, payload)
}

func (c *Client) send(ctx context.Context, method, endpoint, token string, payload []byte) (*http.Response, error) {
	url := c.cfg.APIBase() + endpoint

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("Sending request",
		zap.String("method", method),
		zap.String("url", url),
		zap.String("authorization", redact.Sensitive(c.cfg.HideSensitiveData, "Authorization", "Bearer "+token)))

	resp, err := c.clientFor(method).Do(req)
	if err != nil {
		return nil, err
	}

	if cookies := cookiejar.CookiesFromHeader(resp.Header); len(cookies) > 0 {
		c.log.Debug("Response set cookies",
			zap.String("url", url),
			zap.Any("cookies", cookiejar.RedactSensitiveCookies(cookies)))
	}
	return resp, nil
}

// clientFor selects the HTTP client for the request method. Writes get the
// longer patch timeout: the appliance applies imported objects synchronously
// and can take well over the read timeout under load.
func (c *Client) clientFor(method string) *http.Client {
	if method == http.MethodGet || method == http.MethodHead {
		return c.http
	}
	if c.cfg.PatchTimeout <= c.cfg.RequestTimeout {
		return c.http
	}
	slow := *c.http
	slow.Timeout = c.cfg.PatchTimeout
	return &slow
}

// GetJSON performs an authenticated GET and decodes the JSON response body
// into out. Non-2xx responses become a *response.APIError.
func (c *Client) GetJSON(ctx context.Context, endpoint, tenantID string, out any) error {
	resp, err := c.Do(ctx, http.MethodGet, endpoint, tenantID, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !status.IsSuccess(resp.StatusCode) {
		return response.HandleAPIErrorResponse(resp)
	}
	return response.HandleAPISuccessResponse(resp, out)
}

// PostJSON performs an authenticated POST with a JSON payload and decodes
// the JSON response body into out. Non-2xx responses become a
// *response.APIError.
func (c *Client) PostJSON(ctx context.Context, endpoint, tenantID string, payload, out any) error {
	resp, err := c.Do(ctx, http.MethodPost, endpoint, tenantID, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !status.IsSuccess(resp.StatusCode) {
		return response.HandleAPIErrorResponse(resp)
	}
	return response.HandleAPISuccessResponse(resp, out)
}

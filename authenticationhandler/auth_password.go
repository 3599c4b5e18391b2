// authenticationhandler/auth_password.go
package authenticationhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/wafops/go-waf-admin/config"
	"github.com/wafops/go-waf-admin/redact"
	"github.com/wafops/go-waf-admin/status"
)

// loginResponse is the body of a successful login call.
type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// acquireBaseTokens performs the password-mode login and overwrites the base
// credential in place. The caller must hold baseLock.
//
// The LDAP flag is a three-way wire contract: when unconfigured the field is
// omitted from the payload entirely, which the appliance treats differently
// from sending false.
func (m *TokenManager) acquireBaseTokens(ctx context.Context) error {
	endpoint := m.cfg.APIBase() + config.EndpointRefreshTokens

	payload := map[string]any{
		"username":    m.cfg.APILogin,
		"password":    m.cfg.APIPassword,
		"fingerprint": m.Fingerprint,
	}
	if ldap, set := m.cfg.LDAPAuth.Bool(); set {
		payload["ldap"] = ldap
	}

	m.log.Debug("Requesting base tokens by password",
		zap.String("url", endpoint),
		zap.String("username", m.cfg.APILogin),
		zap.Any("ldap", payload["ldap"]))

	body, err := json.Marshal(payload)
	if err != nil {
		return &AuthError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return &AuthError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.http.Do(req)
	if err != nil {
		m.log.Error("Login request failed", zap.String("url", endpoint), zap.Error(err))
		return &AuthError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &AuthError{Status: resp.StatusCode, Err: err}
	}

	if !status.IsSuccess(resp.StatusCode) {
		m.log.Error("Authentication failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(respBody)))
		return &AuthError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var login loginResponse
	if err := json.Unmarshal(respBody, &login); err != nil {
		return &AuthError{Status: resp.StatusCode, Err: err}
	}
	if login.AccessToken == "" {
		return &AuthError{Status: resp.StatusCode, Body: "login response contains no access token"}
	}

	m.base = Credential{
		Access:  login.AccessToken,
		Refresh: login.RefreshToken,
		Expiry:  tokenExpiry(login.AccessToken),
	}

	m.log.Info("Base tokens obtained",
		zap.String("access_token", redact.Token(login.AccessToken)),
		zap.Int64("expiry", m.base.Expiry))

	return nil
}

// authenticationhandler/auth_token_exchange.go
package authenticationhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/wafops/go-waf-admin/config"
	"github.com/wafops/go-waf-admin/status"
)

// maxExchangeBackoff caps the wait between exchange attempts.
const maxExchangeBackoff = 5 * time.Second

// exchangeResponse is the body of a successful token-exchange call. The
// refresh token is optional; when present it rotates whichever refresh token
// was used for the exchange.
type exchangeResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// exchangeTokens trades a refresh token for a tenant-scoped access token.
//
// Transient failures (409, 423, 429, 5xx gateway/server conditions and
// transport timeouts) are retried with exponential backoff up to the
// configured attempt budget. Any other 4xx is surfaced immediately as
// ExchangeRejected; that is what triggers re-authentication in the
// orchestrator above.
//
// The function is pure with respect to manager state: it neither chooses
// the refresh token nor mutates the store.
func (m *TokenManager) exchangeTokens(ctx context.Context, refreshToken, tenantID string) (TokenPair, error) {
	endpoint := m.cfg.APIBase() + config.EndpointAccessTokens

	payload, err := json.Marshal(map[string]string{
		"refresh_token": refreshToken,
		"tenant_id":     tenantID,
		"fingerprint":   m.Fingerprint,
	})
	if err != nil {
		return TokenPair{}, &ExchangeError{Kind: ExchangeRejected, Err: err}
	}

	maxAttempts := m.cfg.MaxRetryAttempts
	var lastStatus int
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		m.log.Debug("Requesting tenant token",
			zap.String("tenant_id", tenantID),
			zap.String("url", endpoint),
			zap.Int("attempt", attempt))

		resp, reqErr := m.postExchange(ctx, endpoint, payload)
		if reqErr != nil {
			if !status.IsTransientError(reqErr) {
				return TokenPair{}, &ExchangeError{Kind: ExchangeRejected, Err: reqErr}
			}
			lastErr = reqErr
			lastStatus = 0
		} else {
			respBody, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				lastErr = readErr
				lastStatus = resp.StatusCode
			} else if status.IsSuccess(resp.StatusCode) {
				return decodeExchange(resp.StatusCode, respBody)
			} else if !status.IsTransientStatusCode(resp.StatusCode) {
				return TokenPair{}, &ExchangeError{
					Kind:   ExchangeRejected,
					Status: resp.StatusCode,
					Body:   string(respBody),
				}
			} else {
				lastErr = nil
				lastStatus = resp.StatusCode
			}
		}

		if attempt == maxAttempts {
			break
		}

		backoff := exchangeBackoff(attempt)
		m.log.Warn("Transient exchange failure, retrying",
			zap.String("tenant_id", tenantID),
			zap.Int("status_code", lastStatus),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(lastErr))

		if waitErr := m.wait(ctx, backoff); waitErr != nil {
			return TokenPair{}, &ExchangeError{Kind: ExchangeExhausted, Attempts: attempt, Err: waitErr}
		}
	}

	return TokenPair{}, &ExchangeError{
		Kind:     ExchangeExhausted,
		Status:   lastStatus,
		Attempts: maxAttempts,
		Err:      lastErr,
	}
}

func (m *TokenManager) postExchange(ctx context.Context, endpoint string, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return m.http.Do(req)
}

func decodeExchange(statusCode int, respBody []byte) (TokenPair, error) {
	var exchange exchangeResponse
	if err := json.Unmarshal(respBody, &exchange); err != nil {
		return TokenPair{}, &ExchangeError{Kind: ExchangeRejected, Status: statusCode, Err: err}
	}
	if exchange.AccessToken == "" {
		return TokenPair{}, &ExchangeError{
			Kind:   ExchangeRejected,
			Status: statusCode,
			Body:   "exchange response contains no access token",
		}
	}
	return TokenPair{Access: exchange.AccessToken, Refresh: exchange.RefreshToken}, nil
}

// exchangeBackoff returns the wait after the n-th failed attempt:
// 1s, 2s, 4s, then capped at 5s.
func exchangeBackoff(attempt int) time.Duration {
	backoff := time.Duration(1<<(attempt-1)) * time.Second
	if backoff > maxExchangeBackoff {
		backoff = maxExchangeBackoff
	}
	return backoff
}

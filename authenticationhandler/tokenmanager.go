// authenticationhandler/tokenmanager.go
package authenticationhandler

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/wafops/go-waf-admin/config"
)

// EnsureToken returns a usable access token for the given tenant, or the
// base token when tenantID is empty.
func (m *TokenManager) EnsureToken(ctx context.Context, tenantID string) (string, error) {
	if tenantID == "" {
		return m.EnsureBaseToken(ctx)
	}
	return m.EnsureTenantToken(ctx, tenantID, false)
}

// EnsureBaseToken returns a usable base (no-tenant) access token, acquiring
// or refreshing it when needed. In static-token mode the configured token is
// returned without any network call.
func (m *TokenManager) EnsureBaseToken(ctx context.Context) (string, error) {
	if m.cfg.Method == config.AuthMethodToken {
		return m.cfg.APIToken, nil
	}

	m.baseLock.Lock()
	defer m.baseLock.Unlock()

	if m.isFresh(m.base) {
		return m.base.Access, nil
	}

	if err := m.acquireBaseTokens(ctx); err != nil {
		return "", err
	}
	return m.base.Access, nil
}

// RefreshBaseToken discards the cached base credential and acquires a new
// one. Used by the request-time retry after an authorization failure in the
// base context. A no-op in static-token mode.
func (m *TokenManager) RefreshBaseToken(ctx context.Context) (string, error) {
	if m.cfg.Method == config.AuthMethodToken {
		return m.cfg.APIToken, nil
	}

	m.baseLock.Lock()
	defer m.baseLock.Unlock()

	m.base = Credential{}
	if err := m.acquireBaseTokens(ctx); err != nil {
		return "", err
	}
	return m.base.Access, nil
}

// EnsureTenantToken returns a usable access token scoped to the given
// tenant.
//
// The tenant's lock is held for the whole refresh so at most one exchange
// per tenant is ever in flight; the freshness re-check after acquiring the
// lock collapses racing callers onto a single network call. When the tenant
// rides on the shared refresh token the exchange additionally runs under
// the base lock, since every successful exchange rotates that shared value.
func (m *TokenManager) EnsureTenantToken(ctx context.Context, tenantID string, force bool) (string, error) {
	if m.cfg.Method == config.AuthMethodToken {
		return m.cfg.APIToken, nil
	}

	entry := m.tenantEntry(tenantID)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if !force && m.isFresh(entry.Credential) {
		return entry.Access, nil
	}

	if entry.Refresh != "" {
		if err := m.refreshWithOwnToken(ctx, tenantID, entry); err != nil {
			return "", err
		}
		return entry.Access, nil
	}

	if err := m.refreshWithSharedToken(ctx, tenantID, entry); err != nil {
		return "", err
	}
	return entry.Access, nil
}

// refreshWithOwnToken exchanges the tenant's own refresh token. A rotated
// refresh token is written back to the tenant's slot, never to the base
// credential.
func (m *TokenManager) refreshWithOwnToken(ctx context.Context, tenantID string, entry *tenantCredential) error {
	pair, err := m.exchangeTokens(ctx, entry.Refresh, tenantID)
	if err != nil {
		return fmt.Errorf("tenant %s: %w", tenantID, err)
	}

	entry.Access = pair.Access
	entry.Expiry = tokenExpiry(pair.Access)
	if pair.Refresh != "" {
		entry.Refresh = pair.Refresh
	}

	m.log.Info("Tenant token refreshed", zap.String("tenant_id", tenantID))
	return nil
}

// refreshWithSharedToken exchanges the shared base refresh token under the
// base lock. The lock covers the read of the shared token, the exchange and
// the rotation write, so two tenants can never consume the same
// soon-to-be-rotated value.
//
// When the appliance rejects the shared refresh token as invalid and the
// process runs in password mode, the base credential is cleared and
// re-acquired, and the exchange is retried exactly once. The retry never
// loops.
func (m *TokenManager) refreshWithSharedToken(ctx context.Context, tenantID string, entry *tenantCredential) error {
	m.baseLock.Lock()
	defer m.baseLock.Unlock()

	reauthenticated := false
	for {
		if m.base.Refresh == "" {
			if err := m.acquireBaseTokens(ctx); err != nil {
				return fmt.Errorf("tenant %s: %w", tenantID, err)
			}
		}

		pair, err := m.exchangeTokens(ctx, m.base.Refresh, tenantID)
		if err == nil {
			// The appliance rotates the shared refresh token as a
			// side effect of every exchange; the new value must land
			// in the base slot before the lock is released.
			if pair.Refresh != "" {
				m.base.Refresh = pair.Refresh
			}
			entry.Access = pair.Access
			entry.Expiry = tokenExpiry(pair.Access)

			m.log.Info("Tenant token obtained", zap.String("tenant_id", tenantID))
			return nil
		}

		if !reauthenticated && m.cfg.Method == config.AuthMethodPassword && m.isInvalidRefresh(err) {
			reauthenticated = true
			m.log.Warn("Shared refresh token rejected, re-authenticating",
				zap.String("tenant_id", tenantID))
			m.base = Credential{}
			continue
		}

		return fmt.Errorf("tenant %s: %w", tenantID, err)
	}
}

// isInvalidRefresh reports whether an exchange failure means the refresh
// token itself was rejected as invalid.
func (m *TokenManager) isInvalidRefresh(err error) bool {
	var exchangeErr *ExchangeError
	if !errors.As(err, &exchangeErr) || exchangeErr.Kind != ExchangeRejected {
		return false
	}
	return m.invalidRefresh(exchangeErr.Status, []byte(exchangeErr.Body))
}

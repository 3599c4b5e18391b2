// authenticationhandler/authenticationhandler.go
/* The authenticationhandler package manages JWT credentials for the appliance
management API. It holds the base (no-tenant) access/refresh pair plus one
credential entry per tenant, and coordinates acquisition, exchange and
refresh across concurrent callers. */

package authenticationhandler

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wafops/go-waf-admin/config"
	"github.com/wafops/go-waf-admin/logger"
)

// Credential is an access/refresh token pair with the access token's expiry
// as a Unix timestamp. Expiry 0 means the expiry claim could not be parsed;
// such tokens are never considered fresh.
type Credential struct {
	Access  string
	Refresh string
	Expiry  int64
}

// TokenPair is the result of a token-exchange call.
type TokenPair struct {
	Access  string
	Refresh string
}

// tenantCredential is a per-tenant credential entry. The mutex serializes
// refresh attempts for this tenant only; different tenants refresh
// independently.
type tenantCredential struct {
	mu sync.Mutex
	Credential
}

// InvalidRefreshPredicate decides whether an exchange rejection means the
// refresh token itself is dead. The exact status code and body wording vary
// between appliance versions, so the match is injectable.
type InvalidRefreshPredicate func(statusCode int, body []byte) bool

// DefaultInvalidRefreshPredicate matches the 422 invalid_token response of
// current appliance releases.
func DefaultInvalidRefreshPredicate(statusCode int, body []byte) bool {
	return statusCode == http.StatusUnprocessableEntity && bytes.Contains(body, []byte("invalid_token"))
}

// TokenManager owns all appliance credentials for the process.
//
// Locking discipline: baseLock guards the base credential and serializes any
// exchange that consumes the shared refresh token, because that token is a
// single mutable value rotated by the appliance on every successful
// exchange. Each tenant entry has its own mutex; lock order is always
// tenant mutex first, then baseLock.
type TokenManager struct {
	cfg  *config.Config
	http *http.Client
	log  logger.Logger

	// Fingerprint identifies this client instance to the appliance auth
	// API. Generated once, immutable for the process lifetime.
	Fingerprint string

	baseLock sync.Mutex
	base     Credential

	tenantsLock sync.Mutex
	tenants     map[string]*tenantCredential

	invalidRefresh InvalidRefreshPredicate

	// test seams
	now  func() time.Time
	wait func(ctx context.Context, d time.Duration) error
}

// NewTokenManager creates a TokenManager using the provided HTTP client for
// all auth calls. The client must already carry the configured TLS and
// timeout settings.
func NewTokenManager(cfg *config.Config, httpClient *http.Client, log logger.Logger) *TokenManager {
	return &TokenManager{
		cfg:            cfg,
		http:           httpClient,
		log:            log,
		Fingerprint:    strings.ReplaceAll(uuid.New().String(), "-", ""),
		tenants:        make(map[string]*tenantCredential),
		invalidRefresh: DefaultInvalidRefreshPredicate,
		now:            time.Now,
		wait:           waitContext,
	}
}

// SetInvalidRefreshPredicate overrides the invalid-refresh-token match for
// appliance versions with a different error contract.
func (m *TokenManager) SetInvalidRefreshPredicate(p InvalidRefreshPredicate) {
	if p != nil {
		m.invalidRefresh = p
	}
}

// tenantEntry returns the credential entry for a tenant, creating it lazily
// on first access. Entries live for the process lifetime.
func (m *TokenManager) tenantEntry(tenantID string) *tenantCredential {
	m.tenantsLock.Lock()
	defer m.tenantsLock.Unlock()

	entry, ok := m.tenants[tenantID]
	if !ok {
		entry = &tenantCredential{}
		m.tenants[tenantID] = entry
	}
	return entry
}

// InvalidateTenant drops a tenant's cached credential so the next request
// for it performs a full refresh. Used after a request-time authorization
// failure.
func (m *TokenManager) InvalidateTenant(tenantID string) {
	m.tenantsLock.Lock()
	defer m.tenantsLock.Unlock()
	delete(m.tenants, tenantID)
}

// isFresh applies the freshness invariant: a token is usable iff its expiry
// is known and more than the configured skew away. The skew guards against
// tokens expiring mid-request.
func (m *TokenManager) isFresh(cred Credential) bool {
	if cred.Access == "" || cred.Expiry == 0 {
		return false
	}
	return cred.Expiry-m.now().Unix() > int64(m.cfg.TokenRefreshSkew.Seconds())
}

// waitContext sleeps for d or until the context is cancelled.
func waitContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

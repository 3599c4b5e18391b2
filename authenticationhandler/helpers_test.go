// authenticationhandler/helpers_test.go
package authenticationhandler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/wafops/go-waf-admin/config"
	"github.com/wafops/go-waf-admin/logger"
)

// testJWT builds a signed token carrying the given exp claim. The manager
// never verifies signatures, so any key works.
func testJWT(t *testing.T, exp int64) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp}).
		SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func testConfig(serverURL string, method config.AuthMethod) *config.Config {
	cfg := &config.Config{
		BaseURL:          serverURL,
		APIPath:          "",
		RequestTimeout:   5 * time.Second,
		TokenRefreshSkew: 30 * time.Second,
		MaxRetryAttempts: 3,
		Method:           method,
	}
	if method == config.AuthMethodToken {
		cfg.APIToken = "static-api-token"
	} else {
		cfg.APILogin = "admin"
		cfg.APIPassword = "secret"
	}
	return cfg
}

// waitRecorder captures backoff waits instead of sleeping.
type waitRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (r *waitRecorder) record(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waits = append(r.waits, d)
	return nil
}

func (r *waitRecorder) list() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.waits...)
}

// newTestManager wires a TokenManager against an httptest server and
// replaces the backoff wait with a recorder so tests never sleep.
func newTestManager(t *testing.T, handler http.Handler, method config.AuthMethod) (*TokenManager, *waitRecorder) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := testConfig(server.URL, method)
	manager := NewTokenManager(cfg, server.Client(), logger.NewNop())

	recorder := &waitRecorder{}
	manager.wait = recorder.record

	return manager, recorder
}

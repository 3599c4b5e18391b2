// redact/redact_test.go
package redact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSensitive(t *testing.T) {
	assert.Equal(t, "REDACTED", Sensitive(true, "Password", "hunter2"))
	assert.Equal(t, "hunter2", Sensitive(false, "Password", "hunter2"))
	assert.Equal(t, "alpha", Sensitive(true, "TenantName", "alpha"))
}

func TestToken(t *testing.T) {
	assert.Equal(t, "eyJhbGci...", Token("eyJhbGciOiJIUzI1NiJ9"))
	assert.Equal(t, "REDACTED", Token("short"))
	assert.Equal(t, "REDACTED", Token(""))
}

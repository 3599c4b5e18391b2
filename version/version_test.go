// version_test.go
package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserAgent(t *testing.T) {
	assert.Equal(t, AppName+"/"+Version, UserAgent())
	assert.NotContains(t, UserAgent(), " ")
}

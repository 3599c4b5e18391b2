// response/error_test.go
package response

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorResponse(t *testing.T, statusCode int, contentType, body string) *http.Response {
	t.Helper()

	recorder := httptest.NewRecorder()
	if contentType != "" {
		recorder.Header().Set("Content-Type", contentType)
	}
	recorder.WriteHeader(statusCode)
	fmt.Fprint(recorder, body)

	resp := recorder.Result()
	resp.Request = httptest.NewRequest(http.MethodGet, "https://waf.example.com/api/waf/v4/config/snapshot", nil)
	return resp
}

func TestHandleAPIErrorResponseJSON(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"message field", `{"message":"tenant not found"}`, "tenant not found"},
		{"error field", `{"error":"invalid_token"}`, "invalid_token"},
		{"detail field", `{"detail":"payload too large"}`, "payload too large"},
		{"errors list", `{"errors":["a is required","b is required"]}`, "a is required; b is required"},
		{"unparseable body keeps status text", `{{{`, http.StatusText(http.StatusBadRequest)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := errorResponse(t, http.StatusBadRequest, "application/json", tc.body)
			apiErr := HandleAPIErrorResponse(resp)

			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.Equal(t, tc.want, apiErr.Message)
			assert.Equal(t, tc.body, apiErr.Raw)
		})
	}
}

func TestHandleAPIErrorResponseXML(t *testing.T) {
	body := `<error><code>503</code><reason>upstream unavailable</reason></error>`
	resp := errorResponse(t, http.StatusServiceUnavailable, "application/xml", body)

	apiErr := HandleAPIErrorResponse(resp)
	assert.Contains(t, apiErr.Message, "upstream unavailable")
	assert.Contains(t, apiErr.Message, "503")
}

func TestHandleAPIErrorResponseHTML(t *testing.T) {
	body := `<html><head><title>502 Bad Gateway</title></head><body><p>The upstream did not respond.</p></body></html>`
	resp := errorResponse(t, http.StatusBadGateway, "text/html", body)

	apiErr := HandleAPIErrorResponse(resp)
	assert.Contains(t, apiErr.Message, "502 Bad Gateway")
	assert.Contains(t, apiErr.Message, "The upstream did not respond.")
}

func TestHandleAPIErrorResponsePlainText(t *testing.T) {
	resp := errorResponse(t, http.StatusTooManyRequests, "text/plain; charset=utf-8", "slow down\n")

	apiErr := HandleAPIErrorResponse(resp)
	assert.Equal(t, "slow down", apiErr.Message)
}

func TestHandleAPIErrorResponseUnknownContentType(t *testing.T) {
	resp := errorResponse(t, http.StatusInternalServerError, "application/octet-stream", "binary junk")

	apiErr := HandleAPIErrorResponse(resp)
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), apiErr.Message)
	assert.Equal(t, "binary junk", apiErr.Raw)
}

func TestAPIErrorCarriesRequestContext(t *testing.T) {
	resp := errorResponse(t, http.StatusNotFound, "application/json", `{"message":"gone"}`)

	apiErr := HandleAPIErrorResponse(resp)
	assert.Equal(t, http.MethodGet, apiErr.Method)
	assert.Contains(t, apiErr.URL, "/config/snapshot")

	require.Implements(t, (*error)(nil), apiErr)
	assert.True(t, strings.Contains(apiErr.Error(), "status=404"))
	assert.True(t, strings.Contains(apiErr.Error(), "gone"))
}

func TestParseHeader(t *testing.T) {
	mime, params := parseHeader("application/json; charset=utf-8")
	assert.Equal(t, "application/json", mime)
	assert.Equal(t, "utf-8", params["charset"])

	mime, _ = parseHeader("")
	assert.Equal(t, "", mime)
}

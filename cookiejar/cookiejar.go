// cookiejar/cookiejar.go

/* The cookiejar package manages session cookies for the appliance client.
Appliances deployed behind load balancers pin a client to one backend node
through a session cookie; without a jar every request may land on a
different node, which breaks the token-exchange flow because refresh token
rotation is node-local until replicated. */

package cookiejar

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"go.uber.org/zap"

	"github.com/wafops/go-waf-admin/logger"
)

// SetupCookieJar installs a cookie jar on the HTTP client when enabled.
func SetupCookieJar(client *http.Client, enableCookieJar bool, log logger.Logger) error {
	if enableCookieJar {
		jar, err := cookiejar.New(nil)
		if err != nil {
			log.Error("Failed to create cookie jar", zap.Error(err))
			return fmt.Errorf("setup cookie jar: %w", err)
		}
		client.Jar = jar
	}
	return nil
}

// sensitiveCookieNames are cookies whose values never go to logs.
var sensitiveCookieNames = map[string]bool{
	"session":    true,
	"sessionid":  true,
	"af_session": true,
	"auth":       true,
}

// RedactSensitiveCookies replaces the values of session and auth cookies so
// the slice can be logged safely. The input slice is modified in place.
func RedactSensitiveCookies(cookies []*http.Cookie) []*http.Cookie {
	for _, cookie := range cookies {
		if sensitiveCookieNames[strings.ToLower(cookie.Name)] {
			cookie.Value = "REDACTED"
		}
	}
	return cookies
}

// CookiesFromHeader extracts the cookies a response set, for logging.
func CookiesFromHeader(header http.Header) []*http.Cookie {
	cookies := []*http.Cookie{}
	for _, cookieHeader := range header["Set-Cookie"] {
		if cookie := ParseCookieHeader(cookieHeader); cookie != nil {
			cookies = append(cookies, cookie)
		}
	}
	return cookies
}

// ParseCookieHeader parses a single Set-Cookie header value.
func ParseCookieHeader(header string) *http.Cookie {
	headerParts := strings.Split(header, ";")
	if len(headerParts) > 0 {
		cookieParts := strings.SplitN(headerParts[0], "=", 2)
		if len(cookieParts) == 2 {
			return &http.Cookie{Name: strings.TrimSpace(cookieParts[0]), Value: cookieParts[1]}
		}
	}
	return nil
}

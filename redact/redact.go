// redact/redact.go
package redact

// sensitiveKeys are field names whose values must never reach log output
// when redaction is enabled.
var sensitiveKeys = map[string]bool{
	"AccessToken":   true,
	"RefreshToken":  true,
	"Authorization": true,
	"Password":      true,
}

// Sensitive redacts the value of a sensitive field based on the
// hideSensitiveData flag. Non-sensitive keys pass through untouched.
func Sensitive(hideSensitiveData bool, key, value string) string {
	if hideSensitiveData && sensitiveKeys[key] {
		return "REDACTED"
	}
	return value
}

// Token shortens a credential to its first few characters for log output,
// keeping enough to correlate log lines without disclosing the credential.
func Token(token string) string {
	const visible = 8
	if len(token) <= visible {
		return "REDACTED"
	}
	return token[:visible] + "..."
}

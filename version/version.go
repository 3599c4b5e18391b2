// version.go
package version

// AppName identifies this tool in User-Agent headers and logs.
var AppName = "go-waf-admin"

// Version is the release version. Overridden at build time via
// -ldflags "-X github.com/wafops/go-waf-admin/version.Version=...".
var Version = "dev"

// UserAgent returns the User-Agent value sent on every appliance request.
func UserAgent() string {
	return AppName + "/" + Version
}

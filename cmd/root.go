package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/wafops/go-waf-admin/config"
	"github.com/wafops/go-waf-admin/httpclient"
	"github.com/wafops/go-waf-admin/logger"
)

// rootCmd is the base command of the WAF admin tooling.
var rootCmd = &cobra.Command{
	Use:   "wafadmin",
	Short: "Multi-tenant administration helper for the WAF management API",
	Long: `wafadmin authenticates against a WAF management-plane API, enumerates
tenants, and mirrors their configuration state into local JSON files
(export) or pushes locally-held JSON back into the appliance (import).`,
	SilenceUsage: true,
}

// SetVersion sets the version for the root command, injected at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute is the CLI entry point, called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildClient loads configuration and wires the logger and the
// authenticated API client. Every subcommand starts here.
func buildClient() (*httpclient.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logger.BuildLogger(
		logger.ParseLogLevelFromString(cfg.LogLevel),
		logger.LogOutputJSON,
		cfg.LogFile,
	)

	return httpclient.BuildClient(cfg, log), nil
}

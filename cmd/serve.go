package cmd

import (
	"github.com/spf13/cobra"

	"github.com/wafops/go-waf-admin/webapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web surface for exports and imports",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := buildClient()
		if err != nil {
			return err
		}

		app := webapi.New(client)
		return app.Serve(cmd.Context(), client.Config().ListenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

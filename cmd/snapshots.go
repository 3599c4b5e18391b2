package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wafops/go-waf-admin/snapshots"
)

// snapshotsCmd is the stand-alone initialization stage: export a full
// configuration snapshot for every tenant.
var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Export full config snapshots for all tenants",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := buildClient()
		if err != nil {
			return err
		}

		paths, err := snapshots.ExportAll(cmd.Context(), client)
		if err != nil {
			return err
		}

		if len(paths) == 0 {
			client.Logger().Warn("No snapshots were exported")
			return nil
		}
		client.Logger().Info("Exported tenant snapshots", zap.Int("count", len(paths)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapshotsCmd)
}

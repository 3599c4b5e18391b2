package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wafops/go-waf-admin/httpclient"
	"github.com/wafops/go-waf-admin/rulesactions"
	"github.com/wafops/go-waf-admin/snapshots"
)

// actionSequenceEnv names the environment variable consulted when --actions
// is not given.
const actionSequenceEnv = "WAF_ACTION_SEQUENCE"

type actionFunc func(ctx context.Context, client *httpclient.Client) error

var actionTitles = map[int]string{
	1: "Export full config snapshots for all tenants",
	2: "Export rules for all tenants",
	3: "Export actions for all tenants",
}

var actions = map[int]actionFunc{
	1: func(ctx context.Context, client *httpclient.Client) error {
		_, err := snapshots.ExportAll(ctx, client)
		return err
	},
	2: func(ctx context.Context, client *httpclient.Client) error {
		_, failures, err := rulesactions.ExportAll(ctx, client, rulesactions.KindRule)
		logFailures(client, failures)
		return err
	},
	3: func(ctx context.Context, client *httpclient.Client) error {
		created, failures, err := rulesactions.ExportAll(ctx, client, rulesactions.KindAction)
		logFailures(client, failures)
		if err == nil {
			client.Logger().Info("Exported action files", zap.Int("count", len(created)))
		}
		return err
	},
}

func logFailures(client *httpclient.Client, failures []string) {
	for _, failure := range failures {
		client.Logger().Error("Export failure", zap.String("detail", failure))
	}
}

var runActions string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a sequence of export actions and exit",
	Long: `Runs a comma-separated sequence of numbered actions, e.g. "1,2,3".
Action codes: 1 snapshots, 2 rules, 3 actions; 0 stops the sequence.
Falls back to the ` + actionSequenceEnv + ` environment variable when
--actions is omitted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sequence := strings.TrimSpace(runActions)
		if sequence == "" {
			sequence = strings.TrimSpace(os.Getenv(actionSequenceEnv))
		}
		if sequence == "" {
			return fmt.Errorf("no action sequence specified: use --actions or %s", actionSequenceEnv)
		}

		codes, err := parseSequence(sequence)
		if err != nil {
			return err
		}

		client, err := buildClient()
		if err != nil {
			return err
		}
		log := client.Logger()

		for _, code := range codes {
			if code == 0 {
				log.Info("Exit code encountered, stopping sequence")
				break
			}
			action, ok := actions[code]
			if !ok {
				log.Error("Unknown action code", zap.Int("code", code))
				continue
			}
			log.Info("Running action", zap.Int("code", code), zap.String("title", actionTitles[code]))
			if err := action(cmd.Context(), client); err != nil {
				return err
			}
		}
		return nil
	},
}

// parseSequence parses "1, 2,3" into [1 2 3]; whitespace is ignored.
func parseSequence(sequence string) ([]int, error) {
	var codes []int
	for _, part := range strings.Split(strings.ReplaceAll(sequence, " ", ""), ",") {
		if part == "" {
			continue
		}
		code, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid action code in sequence: %q", part)
		}
		codes = append(codes, code)
	}
	return codes, nil
}

func init() {
	runCmd.Flags().StringVar(&runActions, "actions", "", `comma-separated action codes, e.g. "1,2,3"`)
	rootCmd.AddCommand(runCmd)
}

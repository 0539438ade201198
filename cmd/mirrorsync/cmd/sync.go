package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/mirrorsync"
	"github.com/agentstation/mirrorsync/internal/config"
	"github.com/agentstation/mirrorsync/pkg/errors"
	"github.com/agentstation/mirrorsync/pkg/reconcile"
)

func newSyncCmd() *cobra.Command {
	var (
		dryRun      bool
		concurrency int
		dataDir     string
		project     string
		workspaceID string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one reconciliation pass",
		Long: `Fetch the workspace schema, enumerate tracker issues and workspace
items, then create or overwrite one workspace item per issue. Individual
record failures are reported at the end and do not stop the pass.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if dataDir != "" {
				cfg.Sync.DataDir = dataDir
			}
			if project != "" {
				cfg.Tracker.Project = project
			}
			if workspaceID != "" {
				cfg.Workspace.ID = workspaceID
			}

			opts := []mirrorsync.Option{
				mirrorsync.WithDryRun(dryRun),
			}
			if concurrency > 0 {
				opts = append(opts, mirrorsync.WithConcurrency(concurrency))
			}

			syncer, err := mirrorsync.New(cfg, opts...)
			if err != nil {
				return err
			}

			result, err := syncer.Sync(cmd.Context())
			if err != nil {
				return err
			}

			printResult(cmd, result)
			if result.HasFailures() {
				return errors.NewSyncError("", "sync",
					fmt.Errorf("%d of %d records failed", result.Failed, len(result.Records)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "plan the pass without writing to the workspace")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "concurrent write operations (default from config)")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "snapshot directory (default from config)")
	cmd.Flags().StringVar(&project, "project", "", "tracker project key (default from config)")
	cmd.Flags().StringVar(&workspaceID, "workspace", "", "workspace id (default from config)")

	return cmd
}

func printResult(cmd *cobra.Command, result *reconcile.Result) {
	cmd.Printf("Sync complete: %s\n", result.Summary())
	for _, rec := range result.Records {
		switch rec.Status {
		case reconcile.StatusFailed:
			cmd.Printf("  FAILED  %-12s %s: %s\n", rec.Key, rec.Action, rec.Reason)
		case reconcile.StatusSkipped:
			cmd.Printf("  skipped %-12s %s\n", rec.Key, rec.Reason)
		}
	}
}

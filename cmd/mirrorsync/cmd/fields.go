package cmd

import (
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/mirrorsync/internal/config"
	workspacesrc "github.com/agentstation/mirrorsync/internal/sources/workspace"
	"github.com/agentstation/mirrorsync/pkg/errors"
)

func newFieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List the workspace's fields and statuses",
		Long: `Fetch the mirror workspace's schema and print its field and status
definitions. Useful for picking the key field name and writing the
status mapping section of the config file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			apiKey := config.GetString(config.EnvWorkspaceAPIKey)
			if apiKey == "" {
				return errors.NewConfigError("credentials",
					"environment variable "+config.EnvWorkspaceAPIKey+" is not set", errors.ErrAPIKeyRequired)
			}

			client := workspacesrc.NewClient(cfg.Workspace, apiKey)
			schema, err := client.FetchSchema(cmd.Context())
			if err != nil {
				return err
			}

			title := cases.Title(language.English)

			cmd.Printf("Fields (%d):\n", len(schema.Fields()))
			for _, f := range schema.Fields() {
				cmd.Printf("  %-24s %-14s %s\n", f.Name, title.String(f.Kind), f.ID)
				for _, opt := range f.Options {
					cmd.Printf("    - %-20s %s\n", opt.Name, opt.ID)
				}
			}

			cmd.Printf("\nStatuses (%d):\n", len(schema.Statuses()))
			for _, st := range schema.Statuses() {
				marker := ""
				if st.Default {
					marker = " (default)"
				}
				cmd.Printf("  %-24s %s%s\n", st.Name, st.ID, marker)
			}
			return nil
		},
	}
}

package cli

import (
	"github.com/spf13/cobra"
)

func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the prayers table and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.db.Close()
			e.log.Info().Str("path", e.cfg.DatabasePath).Msg("schema up to date")
			return nil
		},
	}
}

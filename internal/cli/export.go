package cli

import (
	"fmt"

	"github.com/AndrewAllenDS/prayer-request-app/internal/export"
	"github.com/AndrewAllenDS/prayer-request-app/internal/repository"
	"github.com/AndrewAllenDS/prayer-request-app/internal/service"

	"github.com/spf13/cobra"
)

type exportOptions struct {
	Out string
}

func NewExportCommand() *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every prayer request to a PDF file",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.db.Close()

			// No live clients or webhook posts from the CLI; the hub is never run.
			prayers := e.prayerService(repository.NewPrayerRepository(e.db),
				service.NewWSHub(e.log), service.NewDiscordWebhookService("", e.log))

			n, err := prayers.ExportPDFFile(cmd.Context(), opts.Out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d prayer requests to %s\n", n, opts.Out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", export.Filename, "output file")
	return cmd
}

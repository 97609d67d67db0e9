package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	import_parser "github.com/pstuifzand/subtasks/internal/import"
	"github.com/pstuifzand/subtasks/internal/socket"
)

func newImportCmd(opts *Options) *cobra.Command {
	var formatName string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a markdown or indented text checklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := import_parser.ParseFormat(formatName)
			if err != nil {
				return err
			}
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			sections, err := import_parser.ImportFile(args[0], string(content), format)
			if err != nil {
				return err
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if client, err := socket.NewClient(cfg.SocketPath()); err == nil {
				if _, err := client.SendList(); err == nil {
					return fmt.Errorf("subtasks is running; quit it before importing")
				}
			}

			e, err := openEnv(cfg, discardLogger())
			if err != nil {
				return err
			}
			defer e.Close()

			engine, err := e.engine(nil)
			if err != nil {
				return err
			}
			defer engine.Close()

			n, err := engine.ImportSections(sections)
			if err != nil {
				return fmt.Errorf("failed to import: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tasks\n", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&formatName, "format", "auto", "Input format (auto|markdown|indented)")
	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pstuifzand/subtasks/internal/export"
	"github.com/pstuifzand/subtasks/internal/model"
)

func newListCmd(opts *Options) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print tasks as a markdown checklist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outline, err := loadCommitted(opts)
			if err != nil {
				return err
			}
			filtered := &model.Outline{Sections: outline.Filter(query)}
			if len(filtered.Sections) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to do")
				return nil
			}
			return export.WriteMarkdown(cmd.OutOrStdout(), filtered)
		},
	}

	cmd.Flags().StringVarP(&query, "filter", "f", "", "Only tasks whose title or items fuzzy-match")
	return cmd
}

func newExportCmd(opts *Options) *cobra.Command {
	var (
		formatName string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks as markdown or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}
			outline, err := loadCommitted(opts)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				return export.Write(cmd.OutOrStdout(), outline, format)
			}
			if err := export.ExportToFile(outline, output, format); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d tasks to %s\n", len(outline.Sections), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&formatName, "format", "markdown", "Output format (markdown|yaml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

// loadCommitted reads the committed outline without recovering drafts
func loadCommitted(opts *Options) (*model.Outline, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}
	e, err := openEnv(cfg, discardLogger())
	if err != nil {
		return nil, err
	}
	defer e.Close()
	return e.outlines.Load()
}

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pstuifzand/subtasks/internal/socket"
)

func newAddCmd(opts *Options) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "add [ITEM...]",
		Short: "Add a task",
		Long: strings.TrimSpace(`
Add a task. Each argument becomes one item; with --name the items are
grouped under a title. When subtasks is running the task is sent to it,
otherwise it is written to the data directory directly.`),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, "\n")
			if strings.TrimSpace(text) == "" && strings.TrimSpace(name) == "" {
				return errors.New("nothing to add: give item text or --name")
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			if client, err := socket.NewClient(cfg.SocketPath()); err == nil {
				resp, err := client.SendAddSection(name, text)
				if err == nil {
					if !resp.Success {
						return fmt.Errorf("server error: %s", resp.Message)
					}
					fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
					return nil
				}
				// Stale socket file; nobody is listening
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

			if _, err := engine.AddSectionWithText(name, text); err != nil {
				return fmt.Errorf("failed to add task: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Task added")
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Title grouping the items")
	return cmd
}

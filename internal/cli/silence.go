package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pstuifzand/subtasks/internal/socket"
)

func newSilenceCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "silence",
		Short: "Stop the reminder alarm of the running instance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			client, err := socket.NewClient(cfg.SocketPath())
			if err != nil {
				return fmt.Errorf("no running subtasks instance: %w", err)
			}
			resp, err := client.SendSilence()
			if err != nil {
				return fmt.Errorf("failed to send command: %w", err)
			}
			if !resp.Success {
				return fmt.Errorf("server error: %s", resp.Message)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}
}

package command

import (
	"fmt"
	"strings"

	"github.com/adamavenir/amelie/internal/chat"
	"github.com/spf13/cobra"
)

// NewChatCmd creates the chat command.
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [city]",
		Short: "Interactive guide and chat session",
		Long: "Open an interactive session. Type a city to load its guide, then ask questions about it. " +
			"Click ☆ next to a place to save it, or type /help for commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonMode, _ := cmd.Flags().GetBool("json"); jsonMode {
				return writeCommandError(cmd, fmt.Errorf("--json not supported for interactive chat"))
			}

			ctx, err := GetContext(cmd, true)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			notify := ctx.Settings.Notify
			if cmd.Flags().Changed("no-notify") {
				notify = false
			}

			if err := chat.Run(chat.Options{
				Controller:  ctx.Controller,
				InitialCity: strings.Join(args, " "),
				Notify:      notify,
				Logger:      ctx.Logger,
			}); err != nil {
				return writeCommandError(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().Bool("no-notify", false, "disable desktop notifications for this session")
	return cmd
}

package command

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adamavenir/amelie/internal/session"
	"github.com/adamavenir/amelie/internal/types"
	"github.com/spf13/cobra"
)

// NewAskCmd creates the ask command.
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Ask a one-off question about a city",
		Long:  "Send a single chat turn to the guide service with --city as context. For a conversation, use 'amelie chat'.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			city, _ := cmd.Flags().GetString("city")
			city = strings.TrimSpace(city)
			question := strings.TrimSpace(strings.Join(args, " "))
			if city == "" || question == "" {
				return writeCommandError(cmd, fmt.Errorf("--city and a question are required: %w", session.ErrEmptyInput))
			}

			ctx, err := GetContext(cmd, false)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			transcript := []types.ChatMessage{{Role: types.RoleUser, Content: question}}
			reply, err := ctx.Client.SendChatTurn(cmd.Context(), transcript, city)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"city":     city,
					"question": question,
					"reply":    reply,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		},
	}

	cmd.Flags().String("city", "", "city the question is about")
	return cmd
}

package command

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewGuideCmd creates the guide command.
func NewGuideCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guide <city>",
		Short: "Generate a travel guide for a city",
		Long:  "Ask the guide service for a city guide and print its places. Falls back to the full response when no numbered places are found.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd, true)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			raw, _ := cmd.Flags().GetBool("raw")
			city := strings.Join(args, " ")

			result, err := ctx.Controller.GenerateGuide(cmd.Context(), city)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if !result.Applied || result.Guide == nil {
				return writeCommandError(cmd, fmt.Errorf("guide for %s was superseded", city))
			}

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(result.Guide)
			}
			fmt.Fprint(cmd.OutOrStdout(), FormatGuide(cmd.OutOrStdout(), *result.Guide, raw))
			return nil
		},
	}

	cmd.Flags().Bool("raw", false, "print the full response text instead of the place list")
	return cmd
}

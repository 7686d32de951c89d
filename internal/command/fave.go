package command

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adamavenir/amelie/internal/favorites"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type faveOutcome struct {
	Place   string `json:"place"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewFaveCmd creates the fave command.
func NewFaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fave <place>...",
		Short: "Save one or more favorite places",
		Long:  "Save places to your favorites. Each save is sent separately and the list is reloaded from the service afterwards.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd, false)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			city, _ := cmd.Flags().GetString("city")

			outcomes := make([]faveOutcome, len(args))
			var grp errgroup.Group
			for i, place := range args {
				grp.Go(func() error {
					message, err := ctx.Controller.SaveFavorite(cmd.Context(), city, place)
					outcomes[i] = faveOutcome{Place: strings.TrimSpace(place), Message: message}
					if err != nil {
						outcomes[i].Error = err.Error()
						return fmt.Errorf("save %q: %w", place, err)
					}
					return nil
				})
			}
			saveErr := grp.Wait()

			list := ctx.Store.Favorites()
			if ctx.JSONMode {
				if err := json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"saved":     outcomes,
					"favorites": list,
				}); err != nil {
					return err
				}
				return saveErr
			}

			out := cmd.OutOrStdout()
			for _, outcome := range outcomes {
				if outcome.Error != "" {
					continue
				}
				message := outcome.Message
				if message == "" {
					message = fmt.Sprintf("Saved %s", outcome.Place)
				}
				fmt.Fprintln(out, message)
			}
			fmt.Fprintln(out)
			fmt.Fprint(out, FormatFavorites(out, list))

			if saveErr != nil {
				return writeCommandError(cmd, saveErr)
			}
			return nil
		},
	}

	cmd.Flags().String("city", "", "city the places are in")
	return cmd
}

// NewFavesCmd creates the faves command.
func NewFavesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "faves",
		Short: "List favorite places",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd, false)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			pattern, _ := cmd.Flags().GetString("match")
			matcher, err := favorites.CompileMatch(pattern)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if err := ctx.Controller.RefreshFavorites(cmd.Context()); err != nil {
				return writeCommandError(cmd, err)
			}
			list := matcher.Filter(ctx.Store.Favorites())

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(list)
			}
			fmt.Fprint(cmd.OutOrStdout(), FormatFavorites(cmd.OutOrStdout(), list))
			return nil
		},
	}

	cmd.Flags().String("match", "", "only show favorites whose place or city matches a glob, e.g. '*museum*'")
	cmd.AddCommand(newFavesClearCmd())
	return cmd
}

func newFavesClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all favorites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd, false)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			if err := ctx.Controller.ClearFavorites(cmd.Context()); err != nil {
				return writeCommandError(cmd, err)
			}
			list := ctx.Store.Favorites()

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"cleared":   true,
					"favorites": list,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cleared favorites")
			if len(list) > 0 {
				fmt.Fprint(cmd.OutOrStdout(), FormatFavorites(cmd.OutOrStdout(), list))
			}
			return nil
		},
	}
}

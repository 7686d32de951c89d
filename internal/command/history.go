package command

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/adamavenir/amelie/internal/core"
	"github.com/adamavenir/amelie/internal/db"
	"github.com/adamavenir/amelie/internal/extract"
	"github.com/adamavenir/amelie/internal/types"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List guides generated on this machine",
		Long:  "List guides recorded locally. History is only for browsing; new guides always come from the service.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, jsonMode, err := openHistoryForCommand(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer conn.Close()

			city, _ := cmd.Flags().GetString("city")
			limit, _ := cmd.Flags().GetInt("limit")
			sinceExpr, _ := cmd.Flags().GetString("since")
			placeMatch, _ := cmd.Flags().GetString("place")

			options := db.GuideQueryOptions{City: city, Limit: limit, PlaceMatch: placeMatch}
			now := time.Now()
			if sinceExpr != "" {
				since, err := core.ParseSince(sinceExpr, now)
				if err != nil {
					return writeCommandError(cmd, err)
				}
				options.Since = &since
			}

			records, err := db.GetGuides(conn, options)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if jsonMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(records)
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No guides recorded")
				return nil
			}
			total, err := db.CountGuides(conn)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			prefixLen := core.GetDisplayPrefixLength(total)
			for _, record := range records {
				fmt.Fprint(out, FormatHistoryRow(out, record, prefixLen, now))
			}
			return nil
		},
	}

	cmd.Flags().String("city", "", "only guides for this city")
	cmd.Flags().Int("limit", 20, "maximum number of guides to list (0 for all)")
	cmd.Flags().String("since", "", "only guides since a time: today, yesterday, 2006-01-02, or 2h/3d/1w")
	cmd.Flags().String("place", "", "only guides with a place matching a glob")

	cmd.AddCommand(newHistoryShowCmd(), newHistoryRmCmd())
	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a recorded guide",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, jsonMode, err := openHistoryForCommand(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer conn.Close()

			guid, err := db.ResolveGuideID(conn, args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}
			record, err := db.GetGuide(conn, guid)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if record == nil {
				return writeCommandError(cmd, fmt.Errorf("guide %s not found", args[0]))
			}

			if reparse, _ := cmd.Flags().GetBool("reparse"); reparse {
				record.Places = extract.Extract(record.RawText)
				record.PlaceCount = len(record.Places)
			}
			raw, _ := cmd.Flags().GetBool("raw")

			if jsonMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(record)
			}

			out := cmd.OutOrStdout()
			guide := types.Guide{
				City:        record.City,
				Places:      record.Places,
				GeneratedAt: record.GeneratedAt,
				Timestamp:   record.Timestamp,
				RawText:     record.RawText,
			}
			fmt.Fprint(out, FormatGuide(out, guide, raw))
			dimCode, _, _, resetCode := styler(out)
			fmt.Fprintf(out, "\n%srecorded %s as %s%s\n", dimCode, humanize.Time(record.RecordedAt), record.ID, resetCode)
			return nil
		},
	}

	cmd.Flags().Bool("reparse", false, "re-extract places from the stored response text")
	cmd.Flags().Bool("raw", false, "print the stored response text")
	return cmd
}

func newHistoryRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a recorded guide",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, jsonMode, err := openHistoryForCommand(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer conn.Close()

			guid, err := db.ResolveGuideID(conn, args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}
			deleted, err := db.DeleteGuide(conn, guid)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if jsonMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"id":      guid,
					"deleted": deleted,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", guid)
			return nil
		},
	}
}

func openHistoryForCommand(cmd *cobra.Command) (*sql.DB, bool, error) {
	jsonMode, _ := cmd.Flags().GetBool("json")
	settings, err := resolveSettings(cmd)
	if err != nil {
		return nil, false, err
	}
	conn, err := db.OpenHistory(settings.HistoryPath)
	if err != nil {
		return nil, false, err
	}
	return conn, jsonMode, nil
}

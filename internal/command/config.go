package command

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adamavenir/amelie/internal/core"
	"github.com/adamavenir/amelie/internal/types"
	"github.com/spf13/cobra"
)

// NewConfigCmd creates the config command.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config [key] [value]",
		Short: "Get or set configuration",
		Long: "Without arguments, print the effective settings. With a key, print its stored value. " +
			"With a key and value, store it in ~/.config/amelie/config.json. An empty value unsets the key.",
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonMode, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				settings, err := resolveSettings(cmd)
				if err != nil {
					return writeCommandError(cmd, err)
				}
				entries := settingsEntries(settings)
				if jsonMode {
					return json.NewEncoder(out).Encode(entries)
				}
				fmt.Fprintln(out, "Configuration:")
				for _, entry := range entries {
					fmt.Fprintf(out, "  %s: %s\n", entry.Key, entry.Value)
				}
				return nil
			}

			config, err := core.ReadGlobalConfig()
			if err != nil {
				return writeCommandError(cmd, err)
			}

			key := normalizeConfigKey(args[0])
			if len(args) == 1 {
				value, err := config.Get(key)
				if err != nil {
					return writeCommandError(cmd, err)
				}
				if value == "" {
					return writeCommandError(cmd, fmt.Errorf("config key '%s' not set", args[0]))
				}
				if jsonMode {
					return json.NewEncoder(out).Encode(map[string]string{key: value})
				}
				fmt.Fprintf(out, "%s: %s\n", key, value)
				return nil
			}

			if err := config.Set(key, args[1]); err != nil {
				return writeCommandError(cmd, err)
			}
			if err := core.WriteGlobalConfig(config); err != nil {
				return writeCommandError(cmd, err)
			}
			if jsonMode {
				return json.NewEncoder(out).Encode(map[string]string{key: args[1]})
			}
			if strings.TrimSpace(args[1]) == "" {
				fmt.Fprintf(out, "Unset %s\n", key)
				return nil
			}
			fmt.Fprintf(out, "Set %s = %s\n", key, args[1])
			return nil
		},
	}

	return cmd
}

func settingsEntries(settings core.Settings) []types.ConfigEntry {
	return []types.ConfigEntry{
		{Key: core.KeyAPIBase, Value: settings.APIBase},
		{Key: core.KeyHistoryPath, Value: settings.HistoryPath},
		{Key: core.KeyNotify, Value: fmt.Sprintf("%t", settings.Notify)},
		{Key: core.KeyTimeoutSeconds, Value: fmt.Sprintf("%d", int(settings.Timeout.Seconds()))},
	}
}

func normalizeConfigKey(value string) string {
	return strings.ReplaceAll(value, "-", "_")
}

package command

import (
	"os"

	"github.com/spf13/cobra"
)

const AppName = "amelie"

// Version is overwritten at build time using -ldflags.
var Version = "dev"

func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "Amelie - AI travel guides in your terminal",
		Long:          "Amelie generates a travel guide for a city, answers follow-up questions about it, and keeps a list of favorite places.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().Bool("json", false, "output in JSON format")
	cmd.PersistentFlags().String("api", "", "guide service base URL (overrides config)")
	cmd.PersistentFlags().String("timeout", "", "request timeout, e.g. 45s (overrides config)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "log requests and background failures to stderr")

	cmd.AddCommand(
		NewGuideCmd(),
		NewAskCmd(),
		NewFaveCmd(),
		NewFavesCmd(),
		NewHistoryCmd(),
		NewChatCmd(),
		NewConfigCmd(),
	)

	return cmd
}

func Execute() error {
	return NewRootCmd(Version).Execute()
}

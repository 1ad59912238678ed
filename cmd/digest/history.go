package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/digest/internal/cli"
	"github.com/aretw0/digest/internal/presentation/tui"
)

// openApp builds an App for commands that only read or clear stored state, so
// API keys are not required.
func openApp(cmd *cobra.Command) (*cli.App, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return cli.Build(cmd.Context(), cfg, logger)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the research history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")

		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		entries, err := app.Engine.History(cmd.Context())
		if err != nil {
			return err
		}
		if jsonMode {
			return cli.WriteJSON(cmd.OutOrStdout(), entries)
		}
		tui.NewPrinter(cmd.OutOrStdout(), false).History(entries)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate statistics of the research history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")

		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		stats, err := app.Engine.Stats(cmd.Context())
		if err != nil {
			return err
		}
		if jsonMode {
			return cli.WriteJSON(cmd.OutOrStdout(), stats)
		}
		tui.NewPrinter(cmd.OutOrStdout(), false).Stats(stats)
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the research history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("refusing to clear history without --yes")
		}

		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Engine.ClearHistory(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Research history cleared.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd, statsCmd, clearCmd)

	historyCmd.Flags().Bool("json", false, "Print entries as JSON")
	statsCmd.Flags().Bool("json", false, "Print statistics as JSON")
	clearCmd.Flags().BoolP("yes", "y", false, "Confirm deletion")
}

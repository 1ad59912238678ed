package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/digest/internal/cli"
	"github.com/aretw0/digest/internal/presentation/tui"
	"github.com/aretw0/digest/pkg/domain"
)

var resumeCmd = &cobra.Command{
	Use:   "resume <run-id>",
	Short: "Re-enter a stored run at a step",
	Long: `Loads a stored run and continues it from the given step (edit by default).
Instructions are passed to the editor and take priority over the style.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		step, _ := cmd.Flags().GetString("step")
		instructions, _ := cmd.Flags().GetString("instructions")
		jsonMode, _ := cmd.Flags().GetBool("json")
		verbose, _ := cmd.Flags().GetBool("verbose")
		raw, _ := cmd.Flags().GetBool("raw")

		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Cancel()

		printer := tui.NewPrinter(cmd.OutOrStdout(), verbose)
		var opts []cli.BuildOption
		if !jsonMode {
			opts = append(opts, cli.WithHooks(printer.ProgressHooks()))
		}

		app, err := cli.Build(sc, cfg, logger, opts...)
		if err != nil {
			return err
		}
		defer app.Close()

		rec, err := cli.Resume(sc, app, args[0], step, instructions)
		return report(cmd, printer, rec, err, jsonMode, raw, sc)
	},
}

func init() {
	rootCmd.AddCommand(resumeCmd)

	resumeCmd.Flags().String("step", domain.StepEdit, "Step to resume from")
	resumeCmd.Flags().StringP("instructions", "i", "", "Extra instructions for the editor")
	resumeCmd.Flags().Bool("json", false, "Print the run record as JSON")
	resumeCmd.Flags().BoolP("verbose", "v", false, "Print step durations and changed fields")
	resumeCmd.Flags().Bool("raw", false, "Print Markdown without rendering it")
}

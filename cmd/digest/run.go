package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/digest/internal/cli"
	"github.com/aretw0/digest/internal/presentation/tui"
	"github.com/aretw0/digest/pkg/domain"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <query>...",
	Short: "Research a query and draft an article",
	Long: `Runs the full pipeline: search, summarize, edit in the chosen style,
review, collect feedback and save the result to the research history.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		style, _ := cmd.Flags().GetString("style")
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

		out := cmd.OutOrStdout()
		printer := tui.NewPrinter(out, verbose)
		var opts []cli.BuildOption
		if !jsonMode {
			tui.PrintBanner(out)
			opts = append(opts, cli.WithHooks(printer.ProgressHooks()))
		}

		app, err := cli.Build(sc, cfg, logger, opts...)
		if err != nil {
			return err
		}
		defer app.Close()

		rec, err := cli.Research(sc, app, strings.Join(args, " "), domain.Style(style))
		return report(cmd, printer, rec, err, jsonMode, raw, sc)
	},
}

// report prints the record and turns pipeline outcomes into an exit status.
func report(cmd *cobra.Command, printer *tui.Printer, rec *domain.Record, err error, jsonMode, raw bool, sc *cli.SignalContext) error {
	if rec != nil {
		if jsonMode {
			if werr := cli.WriteJSON(cmd.OutOrStdout(), rec); werr != nil {
				return werr
			}
		} else {
			var render func(string) (string, error)
			if !raw && term.IsTerminal(int(os.Stdout.Fd())) {
				render = tui.NewRenderer(100)
			}
			printer.Record(rec, render)
		}
	}

	if sc.Signal() != nil {
		return &exitError{
			code: sc.ExitCode(),
			err:  fmt.Errorf("interrupted by %v, resume with: digest resume %s", sc.Signal(), runID(rec)),
		}
	}
	if err != nil {
		return err
	}
	if rec.Failed() {
		return errors.New(rec.ErrorMessage)
	}
	return nil
}

func runID(rec *domain.Record) string {
	if rec == nil {
		return "<run-id>"
	}
	return rec.ID
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("style", "s", string(domain.DefaultStyle), "Writing style: academic, journalistic, technical, popularized")
	runCmd.Flags().Bool("json", false, "Print the run record as JSON")
	runCmd.Flags().BoolP("verbose", "v", false, "Print step durations and changed fields")
	runCmd.Flags().Bool("raw", false, "Print Markdown without rendering it")
}

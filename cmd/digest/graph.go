package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/digest/internal/presentation/graph"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the pipeline graph visualization",
	Long: `Outputs a Mermaid diagram (graph TD) of the pipeline. With --run, the
steps a stored run visited are highlighted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, _ := cmd.Flags().GetString("run")

		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		var overlay *graph.GraphOverlay
		if runID != "" {
			rec, err := app.Sessions.Load(cmd.Context(), runID)
			if err != nil {
				return fmt.Errorf("error loading run '%s': %w", runID, err)
			}
			overlay = graph.OverlayFor(rec)
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(app.Engine.Inspect(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("run", "", "Highlight the steps visited by a stored run")
}

package main

import (
	"github.com/spf13/cobra"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score a twin description locally",
	Long: `Evaluate reads an evaluation request (JSON, "-" for stdin) and prints the
final score, classification and sub-scores. With --explain the weighted
breakdown and the request after defaults are printed as well.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		explain, _ := cmd.Flags().GetBool("explain")

		engine, err := newEngine(cmd)
		if err != nil {
			return err
		}
		raw, err := readRequest(file, cmd.InOrStdin())
		if err != nil {
			return err
		}

		exp, err := engine.Explain(raw)
		if err != nil {
			return err
		}
		if explain {
			return printJSON(cmd.OutOrStdout(), exp)
		}
		return printJSON(cmd.OutOrStdout(), exp.Result)
	},
}

func init() {
	evaluateCmd.Flags().StringP("file", "f", "-", "evaluation request file")
	evaluateCmd.Flags().Bool("explain", false, "print the sub-score breakdown")

	rootCmd.AddCommand(evaluateCmd)
}

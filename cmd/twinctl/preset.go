package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/TwinScore/internal/presets"
)

var presetCmd = &cobra.Command{
	Use:   "preset [application]",
	Short: "List reference twins or score one",
	Long: `Without arguments, preset lists the built-in reference twins. With an
application tag it scores that twin locally, or prints its request payload
with --payload so it can be edited and passed to evaluate or submit.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "APPLICATION\tCOMPONENTS\tDESCRIPTION")
			for _, p := range presets.List() {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", p.Application, len(p.Components), p.Description)
			}
			return tw.Flush()
		}

		p, ok := presets.Get(args[0])
		if !ok {
			return fmt.Errorf("unknown preset %q", args[0])
		}
		if payload, _ := cmd.Flags().GetBool("payload"); payload {
			return printJSON(out, p.Request())
		}

		engine, err := newEngine(cmd)
		if err != nil {
			return err
		}
		result, err := engine.Evaluate(p.Request())
		if err != nil {
			return err
		}
		return printJSON(out, result)
	},
}

func init() {
	presetCmd.Flags().Bool("payload", false, "print the request payload instead of scoring it")

	rootCmd.AddCommand(presetCmd)
}

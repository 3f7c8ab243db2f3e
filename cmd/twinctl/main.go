// Package main is the twinctl command line client. It scores digital twin
// descriptions locally with the same engine as the service, submits them to a
// running service and follows evaluation events.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/TwinScore/internal/config"
	"github.com/MikeSquared-Agency/TwinScore/internal/scoring"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "twinctl",
	Short: "Score digital twins for sustainability",
	Long: `twinctl evaluates digital twin descriptions against the sustainability
scoring model. Evaluations run locally with the calibration from the config
file, or are submitted to a running twinscore service.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "twinscore config file (default: built-in calibration)")
}

// newEngine builds a scoring engine from the --config flag.
func newEngine(cmd *cobra.Command) (*scoring.Engine, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return scoring.NewEngine(cfg.Engine(), newCLILogger(cmd))
}

// readRequest decodes an evaluation payload from path, or stdin for "-".
func readRequest(path string, stdin io.Reader) (scoring.RawRequest, error) {
	var raw scoring.RawRequest
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return raw, fmt.Errorf("open request: %w", err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return raw, fmt.Errorf("decode request: %w", err)
	}
	return raw, nil
}

// newCLILogger keeps library logging on stderr so stdout stays parseable.
func newCLILogger(cmd *cobra.Command) *slog.Logger {
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

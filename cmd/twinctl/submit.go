package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/TwinScore/internal/api"
	"github.com/MikeSquared-Agency/TwinScore/internal/scoring"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a twin description to a twinscore service",
	Long: `Submit posts an evaluation request to a running service. The service
resolves the renewable share, records the evaluation and publishes it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		apiURL, _ := cmd.Flags().GetString("api")
		clientID, _ := cmd.Flags().GetString("client-id")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		raw, err := readRequest(file, cmd.InOrStdin())
		if err != nil {
			return err
		}
		resp, err := submit(&http.Client{Timeout: timeout}, apiURL, clientID, raw)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

func init() {
	submitCmd.Flags().StringP("file", "f", "-", "evaluation request file")
	submitCmd.Flags().String("api", "http://localhost:5001", "twinscore API base URL")
	submitCmd.Flags().String("client-id", "twinctl", "value of the client identification header")
	submitCmd.Flags().Duration("timeout", 30*time.Second, "request timeout")

	rootCmd.AddCommand(submitCmd)
}

func submit(client *http.Client, apiURL, clientID string, raw scoring.RawRequest) (*api.EvaluateResponse, error) {
	body, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, strings.TrimRight(apiURL, "/")+"/api/v1/evaluate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if clientID != "" {
		req.Header.Set(api.ClientIDHeader, clientID)
	}

	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("submit: %d %s", res.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out api.EvaluateResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

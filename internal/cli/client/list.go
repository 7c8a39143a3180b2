package client

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

type TranscriptSummary struct {
	ID   string `json:"id"`
	Date string `json:"date"`
}

type ListTranscriptsResponse struct {
	Transcripts []TranscriptSummary `json:"transcripts"`
	Status      string              `json:"status"`
}

func ListCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List uploaded transcripts",
		Long: `List the transcripts uploaded for a user, newest first.

Examples:
  insights list --user alice
  insights list --user alice --output`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, userID)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID whose transcripts to list")
	cmd.MarkFlagRequired("user")

	return cmd
}

func runList(cmd *cobra.Command, userID string) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	var resp ListTranscriptsResponse
	path := "/transcripts?user_id=" + url.QueryEscape(userID)
	if err := api.Get(path, &resp); err != nil {
		return fmt.Errorf("failed to list transcripts: %w", err)
	}

	outputJSON, _ := cmd.Flags().GetBool("output")
	if outputJSON {
		output, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(resp.Transcripts) == 0 {
		fmt.Println("No transcripts found.")
		return nil
	}

	fmt.Printf("%-40s %s\n", "ID", "DATE")
	for _, t := range resp.Transcripts {
		fmt.Printf("%-40s %s\n", t.ID, t.Date)
	}
	return nil
}

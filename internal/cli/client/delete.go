package client

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

type DeleteResponse struct {
	TranscriptID string `json:"transcript_id"`
	Status       string `json:"status"`
}

func DeleteCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "delete <transcript-id>",
		Short: "Delete a transcript and its indexed chunks",
		Long: `Delete a transcript you own. Its chunks are removed from the vector index.

Examples:
  insights delete --user alice alice_1700000000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, userID, args[0])
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID owning the transcript")
	cmd.MarkFlagRequired("user")

	return cmd
}

func runDelete(cmd *cobra.Command, userID, transcriptID string) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	var resp DeleteResponse
	path := fmt.Sprintf("/transcripts/%s?user_id=%s", url.PathEscape(transcriptID), url.QueryEscape(userID))
	if err := api.Delete(path, &resp); err != nil {
		return fmt.Errorf("failed to delete transcript: %w", err)
	}

	outputJSON, _ := cmd.Flags().GetBool("output")
	if outputJSON {
		output, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Deleted transcript %s\n", resp.TranscriptID)
	return nil
}

package client

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

type UploadRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

type UploadResponse struct {
	TranscriptID string `json:"transcript_id"`
	Status       string `json:"status"`
}

func UploadCmd() *cobra.Command {
	var (
		userID string
		file   string
	)

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload an interview transcript",
		Long: `Upload an interview transcript for a user.

Examples:
  # Upload from a file
  insights upload --user alice --file interview.txt

  # Upload from stdin
  cat interview.txt | insights upload --user alice`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readTranscript(file)
			if err != nil {
				return err
			}
			return runUpload(cmd, userID, text)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID owning the transcript")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Transcript file (defaults to stdin)")
	cmd.MarkFlagRequired("user")

	return cmd
}

func readTranscript(file string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read transcript file: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read transcript from stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("no transcript text provided (use --file or pipe to stdin)")
	}
	return string(data), nil
}

func runUpload(cmd *cobra.Command, userID, text string) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	var resp UploadResponse
	if err := api.Post("/upload", UploadRequest{UserID: userID, Text: text}, &resp); err != nil {
		return fmt.Errorf("failed to upload transcript: %w", err)
	}

	outputJSON, _ := cmd.Flags().GetBool("output")
	if outputJSON {
		output, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Uploaded transcript %s\n", resp.TranscriptID)
	return nil
}

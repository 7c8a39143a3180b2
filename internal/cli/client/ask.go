package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type QueryRequest struct {
	UserID   string `json:"user_id"`
	Question string `json:"question"`
	K        int    `json:"k,omitempty"`
}

type QueryResponse struct {
	Answer string `json:"answer"`
	Status string `json:"status"`
}

func AskCmd() *cobra.Command {
	var (
		userID string
		k      int
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question over your uploaded transcripts",
		Long: `Ask a question and get an answer grounded in your uploaded transcripts.

Examples:
  insights ask --user alice "What did users say about pricing?"
  insights ask --user alice --k 10 "What frustrated users during onboarding?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			return runAsk(cmd, userID, question, k)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID whose transcripts to query")
	cmd.Flags().IntVarP(&k, "k", "k", 0, "Number of transcript chunks to retrieve (server default if 0)")
	cmd.MarkFlagRequired("user")

	return cmd
}

func runAsk(cmd *cobra.Command, userID, question string, k int) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	var resp QueryResponse
	if err := api.Post("/query", QueryRequest{UserID: userID, Question: question, K: k}, &resp); err != nil {
		return fmt.Errorf("failed to query transcripts: %w", err)
	}

	outputJSON, _ := cmd.Flags().GetBool("output")
	if outputJSON {
		output, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(resp.Answer)
	return nil
}

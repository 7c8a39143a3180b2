package service

import (
	"fmt"
	"strings"
)

const answerSystemPrompt = "You are a user researcher. You have access to uploaded transcripts of user interviews. " +
	"You are given a question and you need to answer it based on the transcripts. " +
	"Reference specific quotes or data points from the transcripts to support your answer. " +
	"If you don't have enough information, say so."

// buildAnswerPrompt assembles the user-role prompt: the retrieved excerpts
// labelled by transcript, followed by the question. Chunks are numbered in
// retrieval order so the model can reference them.
func buildAnswerPrompt(question string, retrieved []RetrievedChunk) string {
	var b strings.Builder

	if len(retrieved) == 0 {
		b.WriteString("No transcript excerpts were found for this question.\n\n")
	} else {
		b.WriteString("Transcript excerpts:\n\n")
		for i, r := range retrieved {
			fmt.Fprintf(&b, "[%d] (transcript %s)\n%s\n\n", i+1, r.Chunk.TranscriptID, r.Chunk.Content)
		}
	}

	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}

package service

import (
	"context"
	"strings"

	"github.com/n-vangala/interview-insights/internal/domain"
	"github.com/n-vangala/interview-insights/internal/index"
	"github.com/n-vangala/interview-insights/internal/telemetry"
)

const (
	// DefaultRetrieveK is the number of chunks handed to the answer model.
	DefaultRetrieveK = 5

	candidateMultiplier = 4
	minCandidates       = 20
	maxCandidates       = 200
)

// ChatClient defines the interface for answer generation
type ChatClient interface {
	GenerateAnswer(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// RetrievedChunk is a chunk returned from retrieval with its similarity score.
type RetrievedChunk struct {
	Chunk domain.Chunk
	Score float32
}

// QueryService answers questions over a user's indexed transcripts.
type QueryService struct {
	embed EmbeddingClient
	llm   ChatClient
	idx   index.Index
	k     int
}

// NewQueryService creates a new QueryService instance
func NewQueryService(embed EmbeddingClient, llm ChatClient, idx index.Index, k int) *QueryService {
	if k <= 0 {
		k = DefaultRetrieveK
	}
	return &QueryService{
		embed: embed,
		llm:   llm,
		idx:   idx,
		k:     k,
	}
}

// Retrieve embeds the question and returns at most k of the user's chunks,
// ordered by descending similarity. The index is shared across users, so the
// search over-fetches candidates and filters by owner before truncating;
// other users' chunks never appear in the result.
func (s *QueryService) Retrieve(ctx context.Context, userID, question string, k int) ([]RetrievedChunk, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrEmptyUserID
	}
	if strings.TrimSpace(question) == "" {
		return nil, domain.ErrEmptyQuestion
	}
	if k <= 0 {
		k = s.k
	}

	embedding, err := s.embed.GenerateEmbedding(ctx, question)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "embedding generation failed", err)
	}

	candidateLimit := k * candidateMultiplier
	if candidateLimit < minCandidates {
		candidateLimit = minCandidates
	}
	if candidateLimit > maxCandidates {
		candidateLimit = maxCandidates
	}

	results, err := s.idx.Search(ctx, embedding, candidateLimit)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "vector index persistence failed", err)
	}

	retrieved := make([]RetrievedChunk, 0, k)
	for _, r := range results {
		if r.Chunk.UserID != userID {
			continue
		}
		retrieved = append(retrieved, RetrievedChunk{Chunk: r.Chunk, Score: r.Score})
		if len(retrieved) == k {
			break
		}
	}
	return retrieved, nil
}

// Answer retrieves the most relevant chunks for the question and asks the
// chat model for a grounded answer. A user with no matching chunks still gets
// a model response; the prompt tells the model to admit missing context.
func (s *QueryService) Answer(ctx context.Context, userID, question string, k int) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "QueryService.Answer", telemetry.SpanAttributes{
		UserID:    userID,
		Operation: "query",
	})
	defer span.End()

	retrieved, err := s.Retrieve(ctx, userID, question, k)
	if err != nil {
		return "", err
	}

	answer, err := s.llm.GenerateAnswer(ctx, answerSystemPrompt, buildAnswerPrompt(question, retrieved))
	if err != nil {
		wrapped := domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "answer generation failed", err)
		span.SetError(wrapped)
		return "", wrapped
	}
	return answer, nil
}

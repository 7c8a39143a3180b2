//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/n-vangala/interview-insights/internal/api/handlers"
	"github.com/n-vangala/interview-insights/internal/index"
	"github.com/n-vangala/interview-insights/internal/repository"
	"github.com/n-vangala/interview-insights/internal/server"
	"github.com/n-vangala/interview-insights/internal/service"
	"github.com/n-vangala/interview-insights/internal/testutil"
)

const embeddingDimension = 32

// E2ETestEnv holds all resources needed for end-to-end tests
type E2ETestEnv struct {
	T          *testing.T
	Ctx        context.Context
	PostgresC  *testutil.PostgresContainer
	Pool       *pgxpool.Pool
	Index      *index.Memory
	Server     *httptest.Server
	HTTPClient *http.Client
}

// SetupE2EEnv starts a Postgres container and an in-process HTTP server
// backed by the in-memory vector index and deterministic model stubs.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	store := index.NewFileStore(filepath.Join(t.TempDir(), "index.gob"))
	idx, err := index.NewMemory(embeddingDimension, store)
	if err != nil {
		t.Fatalf("failed to create index: %v", err)
	}

	repo := repository.NewTranscriptRepository(pool)
	embed := &stubEmbedder{}
	llm := &stubChat{}

	transcriptSvc := service.NewTranscriptService(repo, embed, idx, service.DefaultChunkConfig())
	querySvc := service.NewQueryService(embed, llm, idx, service.DefaultRetrieveK)

	router := server.NewRouter(server.RouterConfig{
		TranscriptHandler: handlers.NewTranscriptHandler(transcriptSvc),
		QueryHandler:      handlers.NewQueryHandler(querySvc),
	})
	srv := httptest.NewServer(router)

	return &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		PostgresC:  pgC,
		Pool:       pool,
		Index:      idx,
		Server:     srv,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.Server != nil {
		e.Server.Close()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// stubEmbedder maps text to a deterministic unit vector so that texts
// sharing words land near each other in the index.
type stubEmbedder struct{}

func (s *stubEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, embeddingDimension)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		var h uint32
		for _, r := range word {
			h = h*31 + uint32(r)
		}
		vec[h%embeddingDimension]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		vec[0] = 1
		return vec, nil
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec, nil
}

// stubChat echoes the user prompt so tests can assert on which
// transcript excerpts reached the model.
type stubChat struct{}

func (s *stubChat) GenerateAnswer(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return userPrompt, nil
}

// Get performs a GET request and returns the status code and raw body.
func (e *E2ETestEnv) Get(path string) (int, []byte) {
	return e.doRequest("GET", path, nil)
}

// Post performs a POST request with a JSON body.
func (e *E2ETestEnv) Post(path string, body interface{}) (int, []byte) {
	return e.doRequest("POST", path, body)
}

// Delete performs a DELETE request.
func (e *E2ETestEnv) Delete(path string) (int, []byte) {
	return e.doRequest("DELETE", path, nil)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}) (int, []byte) {
	url := e.Server.URL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			e.T.Fatalf("failed to marshal body: %v", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		e.T.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		e.T.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		e.T.Fatalf("failed to read response body: %v", err)
	}
	return resp.StatusCode, respBody
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("failed to parse response %q: %v", string(body), err)
	}
	return out
}

func transcriptPath(id, userID string) string {
	return fmt.Sprintf("/transcripts/%s?user_id=%s", id, userID)
}

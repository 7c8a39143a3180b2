package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/n-vangala/interview-insights/internal/domain"
)

type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) Answer(ctx context.Context, userID, question string, k int) (string, error) {
	args := m.Called(ctx, userID, question, k)
	return args.String(0), args.Error(1)
}

func TestQueryHandler_Query(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := new(MockQueryService)
		handler := NewQueryHandler(svc)

		svc.On("Answer", mock.Anything, "user-1", "what did bob say?", 0).
			Return("Bob found the pricing page confusing.", nil).Once()

		body, _ := json.Marshal(QueryRequest{UserID: "user-1", Question: "what did bob say?"})
		req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.Query(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp QueryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Bob found the pricing page confusing.", resp.Answer)
		assert.Equal(t, "success", resp.Status)
		svc.AssertExpectations(t)
	})

	t.Run("passes per-query k", func(t *testing.T) {
		svc := new(MockQueryService)
		handler := NewQueryHandler(svc)

		svc.On("Answer", mock.Anything, "user-1", "question", 3).Return("answer", nil).Once()

		body, _ := json.Marshal(QueryRequest{UserID: "user-1", Question: "question", K: 3})
		req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.Query(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("invalid body", func(t *testing.T) {
		handler := NewQueryHandler(new(MockQueryService))

		req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewReader([]byte("nope")))
		w := httptest.NewRecorder()

		handler.Query(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("negative k", func(t *testing.T) {
		handler := NewQueryHandler(new(MockQueryService))

		body, _ := json.Marshal(QueryRequest{UserID: "user-1", Question: "question", K: -1})
		req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.Query(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty question", func(t *testing.T) {
		svc := new(MockQueryService)
		handler := NewQueryHandler(svc)

		svc.On("Answer", mock.Anything, "user-1", "  ", 0).Return("", domain.ErrEmptyQuestion).Once()

		body, _ := json.Marshal(QueryRequest{UserID: "user-1", Question: "  "})
		req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.Query(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("model failure", func(t *testing.T) {
		svc := new(MockQueryService)
		handler := NewQueryHandler(svc)

		svc.On("Answer", mock.Anything, "user-1", "question", 0).
			Return("", domain.ErrUpstreamModelFailure).Once()

		body, _ := json.Marshal(QueryRequest{UserID: "user-1", Question: "question"})
		req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.Query(w, req)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/n-vangala/interview-insights/internal/api"
)

type QueryService interface {
	Answer(ctx context.Context, userID, question string, k int) (string, error)
}

type QueryHandler struct {
	svc QueryService
}

func NewQueryHandler(svc QueryService) *QueryHandler {
	return &QueryHandler{svc: svc}
}

type QueryRequest struct {
	UserID   string `json:"user_id"`
	Question string `json:"question"`
	K        int    `json:"k,omitempty"`
}

type QueryResponse struct {
	Answer string `json:"answer"`
	Status string `json:"status"`
}

func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.K < 0 {
		api.Error(w, http.StatusBadRequest, "k must be positive")
		return
	}

	answer, err := h.svc.Answer(r.Context(), req.UserID, req.Question, req.K)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, QueryResponse{
		Answer: answer,
		Status: "success",
	})
}

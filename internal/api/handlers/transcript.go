package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/n-vangala/interview-insights/internal/api"
	"github.com/n-vangala/interview-insights/internal/domain"
)

type TranscriptService interface {
	Ingest(ctx context.Context, userID, text string) (*domain.Transcript, error)
	List(ctx context.Context, userID string) ([]*domain.Transcript, error)
	Delete(ctx context.Context, userID, transcriptID string) error
}

type TranscriptHandler struct {
	svc TranscriptService
}

func NewTranscriptHandler(svc TranscriptService) *TranscriptHandler {
	return &TranscriptHandler{svc: svc}
}

type UploadRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

type UploadResponse struct {
	TranscriptID string `json:"transcript_id"`
	Status       string `json:"status"`
}

type TranscriptListItem struct {
	ID   string `json:"id"`
	Date string `json:"date"`
}

type ListTranscriptsResponse struct {
	Transcripts []TranscriptListItem `json:"transcripts"`
	Status      string               `json:"status"`
}

type DeleteResponse struct {
	TranscriptID string `json:"transcript_id"`
	Status       string `json:"status"`
}

func (h *TranscriptHandler) Upload(w http.ResponseWriter, r *http.Request) {
	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	transcript, err := h.svc.Ingest(r.Context(), req.UserID, req.Text)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, UploadResponse{
		TranscriptID: transcript.ID,
		Status:       "success",
	})
}

func (h *TranscriptHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")

	transcripts, err := h.svc.List(r.Context(), userID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]TranscriptListItem, 0, len(transcripts))
	for _, t := range transcripts {
		items = append(items, TranscriptListItem{
			ID:   t.ID,
			Date: t.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}

	api.JSON(w, http.StatusOK, ListTranscriptsResponse{
		Transcripts: items,
		Status:      "success",
	})
}

func (h *TranscriptHandler) Delete(w http.ResponseWriter, r *http.Request) {
	transcriptID := chi.URLParam(r, "transcriptID")
	userID := r.URL.Query().Get("user_id")

	if err := h.svc.Delete(r.Context(), userID, transcriptID); err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, DeleteResponse{
		TranscriptID: transcriptID,
		Status:       "success",
	})
}

package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/user/lens-lookup-service/internal/delivery/http/request"
	"github.com/user/lens-lookup-service/internal/delivery/http/response"
	"github.com/user/lens-lookup-service/internal/entity"
	"github.com/user/lens-lookup-service/internal/usecase"
)

// maxBodyBytes bounds the search body; base64 images are large.
const maxBodyBytes = 50 << 20

type Handler struct {
	searcher usecase.Searcher
	logger   *zap.Logger
}

func NewHandler(searcher usecase.Searcher, logger *zap.Logger) *Handler {
	return &Handler{
		searcher: searcher,
		logger:   logger,
	}
}

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req request.SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeJSONError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	result, err := h.searcher.Search(r.Context(), entity.SearchRequest{Image: req.Image, UseCache: req.UseCache})
	if err != nil {
		if usecase.IsClientError(err) {
			h.writeJSONError(w, http.StatusBadRequest, err.Error(), "")
			return
		}
		h.logger.Error("image search failed", zap.Error(err))
		h.writeJSONError(w, http.StatusInternalServerError, "image search failed", err.Error())
		return
	}

	if !result.Found() {
		h.writeJSON(w, http.StatusOK, response.SearchResponse{
			Labels:  []string{},
			Found:   false,
			Message: response.NotFoundMessage,
		})
		return
	}
	h.writeJSON(w, http.StatusOK, response.SearchResponse{
		Labels:    result.ExtractedLabels,
		Found:     true,
		ResultURL: result.ResultURL,
	})
}

func (h *Handler) HandleReleaseSession(w http.ResponseWriter, r *http.Request) {
	released, err := h.searcher.ReleaseSession(r.Context())
	if err != nil {
		h.logger.Error("failed to release browser session", zap.Error(err))
		h.writeJSONError(w, http.StatusInternalServerError, "failed to release browser session", err.Error())
		return
	}

	msg := "no browser session was open"
	if released {
		msg = "browser session released"
	}
	h.writeJSON(w, http.StatusOK, response.ReleaseSessionResponse{Released: released, Message: msg})
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, status int, message, detail string) {
	h.writeJSON(w, status, response.ErrorResponse{Error: message, Message: detail})
}

package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/assistant"
	"github.com/hyperjump/kotae/internal/llm"
	"github.com/hyperjump/kotae/internal/models"
)

const multipartMemory = 32 << 20

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"message": "Kotae Knowledge Assistant API",
		"status":  "running",
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		s.respondBodyError(w, err, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		s.respondBodyError(w, err, "failed to read file")
		return
	}
	s.logger.Debug("upload request", zap.String("filename", header.Filename), zap.Int("bytes", len(content)))
	resp, err := s.assistant.Upload(r.Context(), header.Filename, content)
	if err != nil {
		s.respondAssistantError(w, "upload", err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("query request", zap.String("query", req.Query), zap.String("language", req.Language))
	resp, err := s.assistant.Query(r.Context(), &req)
	if err != nil {
		s.respondAssistantError(w, "query", err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req models.SummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("summarize request", zap.String("document_id", req.DocumentID))
	resp, err := s.assistant.Summarize(r.Context(), &req)
	if err != nil {
		s.respondAssistantError(w, "summarize", err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	list, err := s.assistant.Documents(r.Context())
	if err != nil {
		s.respondAssistantError(w, "list documents", err)
		return
	}
	s.respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete document request", zap.String("id", id))
	resp, err := s.assistant.Delete(r.Context(), id)
	if err != nil {
		s.respondAssistantError(w, "delete document", err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.assistant.Analytics())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp, err := s.assistant.Health(r.Context())
	if err != nil {
		s.respondAssistantError(w, "health", err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// statusFor maps an assistant error kind to an HTTP status.
func statusFor(err error) int {
	switch assistant.KindOf(err) {
	case assistant.KindInvalidInput:
		return http.StatusBadRequest
	case assistant.KindNotFound:
		return http.StatusNotFound
	case assistant.KindProviderFailure:
		if errors.Is(err, llm.ErrTimeout) {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondAssistantError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	switch {
	case assistant.KindOf(err) == assistant.KindUnexpected:
		s.logger.Error(op+" failed", zap.Error(err), zap.Stack("stack"))
	case status >= http.StatusInternalServerError:
		s.logger.Error(op+" failed", zap.Error(err))
	default:
		s.logger.Debug(op+" rejected", zap.Error(err))
	}
	s.respondError(w, status, assistant.MessageOf(err))
}

func (s *Server) respondBodyError(w http.ResponseWriter, err error, message string) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		s.respondError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}
	s.respondError(w, http.StatusBadRequest, message)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message, "detail": message})
}

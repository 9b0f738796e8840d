package apiserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/expercise/expercise-interpreter/sandbox"
)

type interpretRequest struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

type interpretResponse struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLanguages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"languages": s.interp.Languages()})
}

func (s *Server) handleInterpret(w http.ResponseWriter, r *http.Request) {
	var req interpretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, interpretResponse{Error: "invalid request body"})
		return
	}
	if req.Language == "" || req.Code == "" {
		writeJSON(w, http.StatusBadRequest, interpretResponse{Error: "language and code are required"})
		return
	}

	submissionID := uuid.NewString()
	s.logger.Info("interpretation requested",
		zap.String("submission_id", submissionID),
		zap.String("language", req.Language),
		zap.Int("code_len", len(req.Code)))

	resp, err := s.interp.Interpret(r.Context(), req.Language, req.Code)
	if err != nil {
		s.writeInterpretError(w, submissionID, resp, err)
		return
	}

	s.logger.Info("interpretation completed",
		zap.String("submission_id", submissionID),
		zap.Int("stdout_len", len(resp.Stdout)),
		zap.Int("stderr_len", len(resp.Stderr)))

	writeJSON(w, http.StatusOK, interpretResponse{Stdout: resp.Stdout, Stderr: resp.Stderr})
}

// writeInterpretError maps the sandbox error taxonomy onto HTTP statuses.
// The captured output is included where the sandbox preserved it; raw
// runtime errors stay server-side.
func (s *Server) writeInterpretError(w http.ResponseWriter, submissionID string, resp sandbox.Response, err error) {
	s.logger.Error("interpretation failed",
		zap.String("submission_id", submissionID),
		zap.Error(err))

	switch {
	case errors.Is(err, sandbox.ErrUnsupportedLanguage):
		writeJSON(w, http.StatusBadRequest, interpretResponse{Error: err.Error()})
	case sandbox.IsMemoryLimit(err):
		writeJSON(w, http.StatusUnprocessableEntity, interpretResponse{
			Stdout: resp.Stdout,
			Stderr: resp.Stderr,
			Error:  "memory limit exceeded",
		})
	case sandbox.IsExec(err):
		writeJSON(w, http.StatusInternalServerError, interpretResponse{Error: "execution failed"})
	default:
		writeJSON(w, http.StatusBadGateway, interpretResponse{Error: "sandbox unavailable"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

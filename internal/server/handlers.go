package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/josephgoksu/smarttask/internal/analyzer"
	"github.com/josephgoksu/smarttask/internal/logger"
	"github.com/josephgoksu/smarttask/internal/policy"
	"github.com/josephgoksu/smarttask/internal/session"
	"github.com/josephgoksu/smarttask/internal/task"
	"github.com/josephgoksu/smarttask/internal/ui"
	"github.com/josephgoksu/smarttask/models"
	"github.com/josephgoksu/smarttask/types"
)

// maxBodyBytes bounds pasted batches.
const maxBodyBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeAPIJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.version,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeAPIJSON(w, http.StatusOK, s.sessionResponse())
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var req AddTaskRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := task.FormInput{
		Title:        req.Title,
		DueDate:      req.DueDate,
		Importance:   req.Importance,
		Dependencies: req.Dependencies,
	}
	if req.EstimatedHours != 0 {
		in.EstimatedHours = strconv.FormatFloat(req.EstimatedHours, 'f', -1, 64)
	}

	t, err := s.validator.NewFromForm(in, s.session.ExistingIDs())
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.session.Add(t); err != nil {
		writeAPIError(w, statusFor(err), err.Error())
		return
	}
	writeAPIJSON(w, http.StatusCreated, t)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tasks, err := s.validator.Parse(data, task.FormatJSON)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.session.Import(tasks); err != nil {
		writeAPIError(w, statusFor(err), err.Error())
		return
	}

	writeAPIJSON(w, http.StatusCreated, ImportResponse{
		Imported: len(tasks),
		Tasks:    tasks,
		Warnings: task.InspectDependencies(s.session.Tasks()).Warnings(),
	})
}

func (s *Server) handleRemoveTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeAPIError(w, http.StatusBadRequest, "missing id")
		return
	}
	if err := s.session.Remove(id); err != nil {
		writeAPIError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearTasks(w http.ResponseWriter, r *http.Request) {
	s.session.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetStrategy(w http.ResponseWriter, r *http.Request) {
	var req StrategyRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	strategy, err := models.ParseStrategy(req.Strategy)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.session.SetStrategy(strategy)
	writeAPIJSON(w, http.StatusOK, s.sessionResponse())
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	run, err := s.session.AnalyzeRun(r.Context(), s.analyzer)
	if err != nil {
		logger.FromContext(r.Context()).Warn("analysis failed", "error", err)
		writeAPIError(w, statusFor(err), err.Error())
		return
	}
	ranked := run.Tasks
	if ranked == nil {
		ranked = []models.AnalyzedTask{}
	}

	writeAPIJSON(w, http.StatusOK, AnalyzeResponse{
		SortedTasks: ranked,
		Summary:     models.CountPriorities(ranked),
		Strategy:    run.Strategy,
		Superseded:  run.Superseded,
	})
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := s.analyzer.Suggest(r.Context())
	if err != nil {
		writeAPIError(w, statusFor(err), err.Error())
		return
	}
	if suggestions == nil {
		suggestions = []models.SuggestedTask{}
	}
	writeAPIJSON(w, http.StatusOK, models.SuggestResponse{Suggestions: suggestions})
}

func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	out := make([]StrategyInfo, 0, len(models.Strategies))
	for _, st := range models.Strategies {
		out = append(out, StrategyInfo{
			Value:       st,
			Label:       ui.StrategyLabel(st),
			Description: st.Description(),
		})
	}
	writeAPIJSON(w, http.StatusOK, out)
}

func (s *Server) sessionResponse() SessionResponse {
	st := s.session.Snapshot()
	resp := SessionResponse{
		Tasks:    st.Tasks,
		Strategy: st.Strategy,
		Stale:    st.Stale,
		InFlight: st.InFlight,
		Results:  st.Results,
		Summary:  st.Summary,
	}
	if report := task.InspectDependencies(st.Tasks); !report.Empty() {
		resp.Dependencies = &report
	}
	return resp
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		dup       *session.DuplicateIDError
		violation *policy.ViolationError
		apiErr    *analyzer.Error
	)
	switch {
	case errors.Is(err, session.ErrAnalysisInFlight):
		return http.StatusConflict
	case errors.As(err, &dup):
		return http.StatusConflict
	case errors.Is(err, session.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrEmptyBatch):
		return http.StatusBadRequest
	case errors.As(err, &violation):
		return http.StatusBadRequest
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeAPIJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeAPIError(w http.ResponseWriter, status int, message string) {
	writeAPIJSON(w, status, types.NewErrorDetail(message))
}

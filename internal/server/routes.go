package server

import "net/http"

// registerRoutes sets up all API endpoints
func (s *Server) registerRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/session", s.handleGetSession)
	mux.HandleFunc("POST /api/session/tasks", s.handleAddTask)
	mux.HandleFunc("DELETE /api/session/tasks", s.handleClearTasks)
	mux.HandleFunc("DELETE /api/session/tasks/{id}", s.handleRemoveTask)
	mux.HandleFunc("POST /api/session/import", s.handleImport)
	mux.HandleFunc("PUT /api/session/strategy", s.handleSetStrategy)
	mux.HandleFunc("POST /api/session/analyze", s.handleAnalyze)

	mux.HandleFunc("GET /api/suggestions", s.handleSuggestions)
	mux.HandleFunc("GET /api/strategies", s.handleStrategies)

	return s.corsMiddleware(requestLogger(mux))
}

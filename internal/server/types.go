package server

import (
	"github.com/josephgoksu/smarttask/internal/task"
	"github.com/josephgoksu/smarttask/models"
)

// AddTaskRequest is the payload for POST /api/session/tasks.
type AddTaskRequest struct {
	Title          string   `json:"title"`
	DueDate        string   `json:"due_date"`
	EstimatedHours float64  `json:"estimated_hours"`
	Importance     int      `json:"importance"`
	Dependencies   []string `json:"dependencies"`
}

// StrategyRequest is the payload for PUT /api/session/strategy.
type StrategyRequest struct {
	Strategy string `json:"strategy"`
}

// SessionResponse is the response for GET /api/session.
type SessionResponse struct {
	Tasks        []models.Task          `json:"tasks"`
	Strategy     models.SortingStrategy `json:"strategy"`
	Stale        bool                   `json:"stale"`
	InFlight     bool                   `json:"in_flight"`
	Results      []models.AnalyzedTask  `json:"results"`
	Summary      *models.PriorityCounts `json:"summary,omitempty"`
	Dependencies *task.DependencyReport `json:"dependencies,omitempty"`
}

// ImportResponse is the response for POST /api/session/import.
type ImportResponse struct {
	Imported int           `json:"imported"`
	Tasks    []models.Task `json:"tasks"`
	Warnings []string      `json:"warnings,omitempty"`
}

// AnalyzeResponse is the response for POST /api/session/analyze.
type AnalyzeResponse struct {
	SortedTasks []models.AnalyzedTask  `json:"sorted_tasks"`
	Summary     models.PriorityCounts  `json:"summary"`
	Strategy    models.SortingStrategy `json:"strategy"`
	// Superseded is true when the session changed after the request was
	// sent, so the result no longer matches the batch.
	Superseded bool `json:"superseded"`
}

// StrategyInfo describes one sorting strategy.
type StrategyInfo struct {
	Value       models.SortingStrategy `json:"value"`
	Label       string                 `json:"label"`
	Description string                 `json:"description"`
}

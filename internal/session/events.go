package session

import (
	"fmt"

	"github.com/josephgoksu/smarttask/models"
)

// EventType names something that happened to a session.
type EventType string

const (
	EventTasksAdded        EventType = "tasks_added"
	EventTasksImported     EventType = "tasks_imported"
	EventTaskRemoved       EventType = "task_removed"
	EventTasksCleared      EventType = "tasks_cleared"
	EventStrategyChanged   EventType = "strategy_changed"
	EventAnalysisStarted   EventType = "analysis_started"
	EventAnalysisCompleted EventType = "analysis_completed"
	EventAnalysisFailed    EventType = "analysis_failed"
)

// Event carries what a listener needs to give feedback to the user.
type Event struct {
	Type     EventType
	Count    int
	TaskID   string
	Strategy models.SortingStrategy
	Err      error
	// Superseded is set on a completed analysis whose result was not
	// cached because the batch changed while it ran.
	Superseded bool
}

// Listener receives session events.
type Listener func(Event)

// Message returns a short human-readable line for e.
func (e Event) Message() string {
	switch e.Type {
	case EventTasksAdded:
		return "Task added successfully"
	case EventTasksImported:
		if e.Count == 1 {
			return "Imported 1 task"
		}
		return fmt.Sprintf("Imported %d tasks", e.Count)
	case EventTaskRemoved:
		return "Task removed"
	case EventTasksCleared:
		return "All tasks cleared"
	case EventStrategyChanged:
		return "Strategy set to " + string(e.Strategy)
	case EventAnalysisStarted:
		return fmt.Sprintf("Analyzing %d tasks...", e.Count)
	case EventAnalysisCompleted:
		if e.Superseded {
			return "Analysis finished, but the batch changed meanwhile; analyze again to refresh"
		}
		return "Tasks analyzed successfully!"
	case EventAnalysisFailed:
		if e.Err != nil {
			return e.Err.Error()
		}
		return "Failed to analyze tasks"
	}
	return string(e.Type)
}

package telemetry

import (
	"errors"
	"time"

	"github.com/josephgoksu/smarttask/internal/analyzer"
	"github.com/josephgoksu/smarttask/internal/policy"
	"github.com/josephgoksu/smarttask/internal/session"
	"github.com/josephgoksu/smarttask/internal/task"
	"github.com/josephgoksu/smarttask/models"
)

// Recorder turns domain outcomes into events. Properties are limited to
// counts, strategy and error categories.
type Recorder struct {
	client  Client
	started time.Time
}

// NewRecorder wraps client. A nil client records nothing.
func NewRecorder(client Client) *Recorder {
	if client == nil {
		client = NoopClient{}
	}
	return &Recorder{client: client}
}

// BatchValidated records a validation attempt. err is nil on success.
func (r *Recorder) BatchValidated(source string, count int, err error) {
	props := Properties{"source": source, "success": err == nil, "task_count": count}
	if err != nil {
		props["error_kind"] = task.KindOf(err).String()
	}
	r.client.Track(EventBatchValidated, props)
}

// AnalysisCompleted records a successful analysis.
func (r *Recorder) AnalysisCompleted(strategy models.SortingStrategy, ranked []models.AnalyzedTask, took time.Duration) {
	counts := models.CountPriorities(ranked)
	r.client.Track(EventAnalysisCompleted, Properties{
		"strategy":    string(strategy.OrDefault()),
		"task_count":  len(ranked),
		"high":        counts.High,
		"medium":      counts.Medium,
		"low":         counts.Low,
		"duration_ms": took.Milliseconds(),
	})
}

// AnalysisFailed records a failed analysis with a coarse error category.
func (r *Recorder) AnalysisFailed(strategy models.SortingStrategy, count int, err error) {
	r.client.Track(EventAnalysisFailed, Properties{
		"strategy":   string(strategy.OrDefault()),
		"task_count": count,
		"reason":     failureReason(err),
	})
}

// Listener adapts the recorder to session events.
func (r *Recorder) Listener() session.Listener {
	return func(e session.Event) {
		switch e.Type {
		case session.EventAnalysisStarted:
			r.started = time.Now()
		case session.EventAnalysisCompleted:
			r.client.Track(EventAnalysisCompleted, Properties{
				"strategy":    string(e.Strategy.OrDefault()),
				"task_count":  e.Count,
				"superseded":  e.Superseded,
				"duration_ms": time.Since(r.started).Milliseconds(),
			})
		case session.EventAnalysisFailed:
			r.AnalysisFailed(e.Strategy, e.Count, e.Err)
		}
	}
}

// Close flushes the underlying client.
func (r *Recorder) Close() error {
	return r.client.Close()
}

func failureReason(err error) string {
	var apiErr *analyzer.Error
	var violation *policy.ViolationError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, analyzer.ErrEmptyBatch):
		return "empty_batch"
	case errors.Is(err, session.ErrAnalysisInFlight):
		return "in_flight"
	case errors.As(err, &violation):
		return "policy_denied"
	case errors.As(err, &apiErr) && apiErr.StatusCode == 0:
		return "unreachable"
	case errors.As(err, &apiErr):
		return "service_error"
	}
	return "other"
}

// Package session owns the in-memory task batch, the chosen strategy and
// the last analysis result.
//
// Any change to the batch drops the cached result and marks the session
// stale. At most one analysis runs at a time.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/josephgoksu/smarttask/internal/analyzer"
	"github.com/josephgoksu/smarttask/models"
)

var (
	// ErrAnalysisInFlight rejects an analysis started while another is outstanding.
	ErrAnalysisInFlight = errors.New("an analysis is already in progress")
	// ErrEmptyBatch rejects an analysis of an empty batch.
	ErrEmptyBatch = analyzer.ErrEmptyBatch
	// ErrTaskNotFound is returned by Remove for an unknown id.
	ErrTaskNotFound = errors.New("task not found")
)

// DuplicateIDError reports a task whose id is already in the batch.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("a task with id %q already exists", e.ID)
}

// Gate inspects a batch right before it is submitted. A non-nil error
// aborts the analysis.
type Gate func(ctx context.Context, tasks []models.Task, strategy models.SortingStrategy) error

// Session is safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	tasks     []models.Task
	strategy  models.SortingStrategy
	results   []models.AnalyzedTask
	stale     bool
	inFlight  bool
	version   uint64
	gate      Gate
	listeners []Listener
}

// Option configures a Session.
type Option func(*Session)

// WithStrategy sets the initial strategy.
func WithStrategy(s models.SortingStrategy) Option {
	return func(sess *Session) { sess.strategy = s.OrDefault() }
}

// WithGate installs a pre-submission check.
func WithGate(g Gate) Option {
	return func(sess *Session) { sess.gate = g }
}

// WithListener registers l before the session is used.
func WithListener(l Listener) Option {
	return func(sess *Session) { sess.listeners = append(sess.listeners, l) }
}

// New creates an empty session.
func New(opts ...Option) *Session {
	s := &Session{strategy: models.DefaultStrategy}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnEvent registers l. Listeners run synchronously on the goroutine that
// caused the event, after the session lock is released.
func (s *Session) OnEvent(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Add appends one task.
func (s *Session) Add(t models.Task) error {
	s.mu.Lock()
	if s.indexOf(t.ID) >= 0 {
		s.mu.Unlock()
		return &DuplicateIDError{ID: t.ID}
	}
	s.tasks = append(s.tasks, cloneTask(t))
	s.invalidate()
	s.mu.Unlock()

	s.emit(Event{Type: EventTasksAdded, Count: 1, TaskID: t.ID})
	return nil
}

// Import appends a validated batch. Nothing is added if any id collides
// with the batch or with another imported task.
func (s *Session) Import(tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	s.mu.Lock()
	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if s.indexOf(t.ID) >= 0 || seen[t.ID] {
			s.mu.Unlock()
			return &DuplicateIDError{ID: t.ID}
		}
		seen[t.ID] = true
	}
	for _, t := range tasks {
		s.tasks = append(s.tasks, cloneTask(t))
	}
	s.invalidate()
	s.mu.Unlock()

	s.emit(Event{Type: EventTasksImported, Count: len(tasks)})
	return nil
}

// Remove deletes the task with the given id.
func (s *Session) Remove(id string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	s.invalidate()
	s.mu.Unlock()

	s.emit(Event{Type: EventTaskRemoved, Count: 1, TaskID: id})
	return nil
}

// Clear empties the batch.
func (s *Session) Clear() {
	s.mu.Lock()
	n := len(s.tasks)
	s.tasks = nil
	s.invalidate()
	s.mu.Unlock()

	s.emit(Event{Type: EventTasksCleared, Count: n})
}

// SetStrategy changes the strategy for the next analysis. A cached result
// is kept but marked stale, since it was ranked with the previous strategy.
func (s *Session) SetStrategy(strategy models.SortingStrategy) {
	strategy = strategy.OrDefault()
	s.mu.Lock()
	if strategy == s.strategy {
		s.mu.Unlock()
		return
	}
	s.strategy = strategy
	if s.results != nil {
		s.stale = true
	}
	s.mu.Unlock()

	s.emit(Event{Type: EventStrategyChanged, Strategy: strategy})
}

// Run is the outcome of one analysis.
type Run struct {
	Tasks []models.AnalyzedTask
	// Strategy is the strategy the batch was ranked with.
	Strategy models.SortingStrategy
	// Superseded is set when the batch or strategy changed while the
	// request was out, so the result was not cached.
	Superseded bool
}

// Analyze submits a snapshot of the batch to svc. The result is cached only
// if the batch did not change while the request was outstanding. On failure
// the session is left as it was.
func (s *Session) Analyze(ctx context.Context, svc analyzer.Service) ([]models.AnalyzedTask, error) {
	run, err := s.AnalyzeRun(ctx, svc)
	return run.Tasks, err
}

// AnalyzeRun is Analyze, also reporting the strategy used and whether the
// result was superseded.
func (s *Session) AnalyzeRun(ctx context.Context, svc analyzer.Service) (Run, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return Run{}, ErrAnalysisInFlight
	}
	if len(s.tasks) == 0 {
		s.mu.Unlock()
		return Run{}, ErrEmptyBatch
	}
	s.inFlight = true
	snapshot := cloneTasks(s.tasks)
	strategy := s.strategy
	version := s.version
	gate := s.gate
	s.mu.Unlock()

	s.emit(Event{Type: EventAnalysisStarted, Count: len(snapshot), Strategy: strategy})

	var (
		ranked []models.AnalyzedTask
		err    error
	)
	if gate != nil {
		err = gate(ctx, snapshot, strategy)
	}
	if err == nil {
		ranked, err = svc.Analyze(ctx, snapshot, strategy)
	}

	s.mu.Lock()
	s.inFlight = false
	if err != nil {
		s.mu.Unlock()
		s.emit(Event{Type: EventAnalysisFailed, Count: len(snapshot), Strategy: strategy, Err: err})
		return Run{}, err
	}
	current := version == s.version && strategy == s.strategy
	if current {
		s.results = ranked
		s.stale = false
	}
	s.mu.Unlock()

	s.emit(Event{Type: EventAnalysisCompleted, Count: len(ranked), Strategy: strategy, Superseded: !current})
	return Run{Tasks: ranked, Strategy: strategy, Superseded: !current}, nil
}

// Tasks returns a copy of the batch in insertion order.
func (s *Session) Tasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTasks(s.tasks)
}

// Len returns the number of tasks in the batch.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// ExistingIDs returns the ids of the batch in insertion order.
func (s *Session) ExistingIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, len(s.tasks))
	for i, t := range s.tasks {
		ids[i] = t.ID
	}
	return ids
}

// Strategy returns the strategy the next analysis will use.
func (s *Session) Strategy() models.SortingStrategy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.strategy
}

// Results returns the cached analysis, or nil when there is none.
func (s *Session) Results() []models.AnalyzedTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.results == nil {
		return nil
	}
	out := make([]models.AnalyzedTask, len(s.results))
	copy(out, s.results)
	return out
}

// Stale reports whether the batch or strategy changed since the last analysis.
func (s *Session) Stale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stale
}

// InFlight reports whether an analysis is outstanding.
func (s *Session) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// State is a point-in-time view of the session.
type State struct {
	Tasks    []models.Task          `json:"tasks"`
	Strategy models.SortingStrategy `json:"strategy"`
	Stale    bool                   `json:"stale"`
	InFlight bool                   `json:"in_flight"`
	Results  []models.AnalyzedTask  `json:"results"`
	Summary  *models.PriorityCounts `json:"summary,omitempty"`
}

// Snapshot returns the whole session state under one lock.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		Tasks:    cloneTasks(s.tasks),
		Strategy: s.strategy,
		Stale:    s.stale,
		InFlight: s.inFlight,
	}
	if st.Tasks == nil {
		st.Tasks = []models.Task{}
	}
	if s.results != nil {
		st.Results = make([]models.AnalyzedTask, len(s.results))
		copy(st.Results, s.results)
		counts := models.CountPriorities(s.results)
		st.Summary = &counts
	}
	return st
}

// invalidate must be called with s.mu held after every batch mutation.
func (s *Session) invalidate() {
	s.version++
	s.results = nil
	s.stale = true
}

func (s *Session) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) emit(e Event) {
	s.mu.Lock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l(e)
	}
}

func cloneTask(t models.Task) models.Task {
	deps := make([]string, len(t.Dependencies))
	copy(deps, t.Dependencies)
	t.Dependencies = deps
	return t
}

func cloneTasks(tasks []models.Task) []models.Task {
	if tasks == nil {
		return nil
	}
	out := make([]models.Task, len(tasks))
	for i, t := range tasks {
		out[i] = cloneTask(t)
	}
	return out
}

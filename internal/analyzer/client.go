// Package analyzer talks to the external prioritization service.
package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/josephgoksu/smarttask/internal/logger"
	"github.com/josephgoksu/smarttask/models"
	"github.com/josephgoksu/smarttask/types"
)

const (
	AnalyzePath = "/api/tasks/analyze/"
	SuggestPath = "/api/tasks/suggest/"

	analyzeFallback = "Failed to analyze tasks"
	suggestFallback = "Failed to get suggestions"
)

// ErrEmptyBatch is returned before any request is made for an empty batch.
var ErrEmptyBatch = errors.New("Please add at least one task first")

// Service is the contract of the analysis service as seen by callers.
type Service interface {
	Analyze(ctx context.Context, tasks []models.Task, strategy models.SortingStrategy) ([]models.AnalyzedTask, error)
	Suggest(ctx context.Context) ([]models.SuggestedTask, error)
}

// Error is a failed call to the analysis service. Message is the service's
// detail when it sent one, otherwise a generic fallback.
type Error struct {
	Op         string
	StatusCode int // 0 when no response arrived
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Client is a Service over HTTP. Every call is a single attempt.
type Client struct {
	http    *resty.Client
	baseURL string
}

// Options configure a Client.
type Options struct {
	BaseURL string
	// Timeout bounds each request. Zero keeps the transport default.
	Timeout time.Duration
	Debug   bool
}

// New creates a Client for the service at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	return NewWithOptions(Options{BaseURL: baseURL, Timeout: timeout})
}

// NewWithOptions creates a Client from opts.
func NewWithOptions(opts Options) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	client := resty.New().
		SetBaseURL(base).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.Debug {
		client.SetDebug(true)
	}
	return &Client{http: client, baseURL: base}
}

// BaseURL returns the service address the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Analyze submits tasks with strategy and returns the ranked result in the
// order the service chose. An empty strategy means the default one.
func (c *Client) Analyze(ctx context.Context, tasks []models.Task, strategy models.SortingStrategy) ([]models.AnalyzedTask, error) {
	if len(tasks) == 0 {
		return nil, ErrEmptyBatch
	}
	log := logger.FromContext(ctx)

	req := models.AnalyzeRequest{Tasks: tasks, Strategy: strategy.OrDefault()}
	logger.SetLastRequest(fmt.Sprintf("POST %s tasks=%d strategy=%s", AnalyzePath, len(tasks), req.Strategy))

	var out models.AnalyzeResponse
	if err := c.do(ctx, "analyze", resty.MethodPost, AnalyzePath, req, &out, analyzeFallback); err != nil {
		log.Debug("analysis request failed", "tasks", len(tasks), "strategy", req.Strategy, "error", err)
		return nil, err
	}
	if out.SortedTasks == nil {
		out.SortedTasks = []models.AnalyzedTask{}
	}
	log.Debug("analysis request completed", "tasks", len(tasks), "strategy", req.Strategy, "ranked", len(out.SortedTasks))
	return out.SortedTasks, nil
}

// Suggest fetches the tasks the service recommends working on next.
func (c *Client) Suggest(ctx context.Context) ([]models.SuggestedTask, error) {
	log := logger.FromContext(ctx)

	var out models.SuggestResponse
	if err := c.do(ctx, "suggest", resty.MethodGet, SuggestPath, nil, &out, suggestFallback); err != nil {
		log.Debug("suggestion request failed", "error", err)
		return nil, err
	}
	if out.Suggestions == nil {
		out.Suggestions = []models.SuggestedTask{}
	}
	log.Debug("suggestion request completed", "suggestions", len(out.Suggestions))
	return out.Suggestions, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, result any, fallback string) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return &Error{Op: op, Message: fallback, Cause: err}
	}
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return &Error{
			Op:         op,
			StatusCode: resp.StatusCode(),
			Message:    detailOr(resp.Body(), fallback),
			Cause:      fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode()),
		}
	}
	if err := json.Unmarshal(resp.Body(), result); err != nil {
		return &Error{
			Op:         op,
			StatusCode: resp.StatusCode(),
			Message:    fallback,
			Cause:      fmt.Errorf("decode %s response: %w", op, err),
		}
	}
	return nil
}

// detailOr returns the "detail" field of body, or fallback when body is not
// a JSON object with a non-empty string detail.
func detailOr(body []byte, fallback string) string {
	var e types.ErrorDetail
	if err := json.Unmarshal(body, &e); err != nil || strings.TrimSpace(e.Detail) == "" {
		return fallback
	}
	return e.Detail
}

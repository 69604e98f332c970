// Package mcp holds the parameter and result types of the MCP tools and the
// handlers behind them. Results carry both structured fields and a Markdown
// rendering for the model.
package mcp

import "github.com/josephgoksu/smarttask/models"

// BatchParams carries a pasted batch. Format is "json" (default) or "yaml".
type BatchParams struct {
	Batch  string `json:"batch"`
	Format string `json:"format,omitempty"`
}

// AnalyzeParams defines the parameters for the analyze_tasks tool.
type AnalyzeParams struct {
	Batch    string `json:"batch"`
	Format   string `json:"format,omitempty"`
	Strategy string `json:"strategy,omitempty"`
}

func (p AnalyzeParams) batch() BatchParams {
	return BatchParams{Batch: p.Batch, Format: p.Format}
}

// SuggestParams defines the parameters for the suggest_tasks tool. It has none.
type SuggestParams struct{}

// ValidateResult is returned by HandleValidate.
type ValidateResult struct {
	Tasks    []models.Task `json:"tasks,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
	Content  string        `json:"content"`
	Error    string        `json:"error,omitempty"`
}

// AnalyzeResult is returned by HandleAnalyze.
type AnalyzeResult struct {
	Strategy    models.SortingStrategy `json:"strategy"`
	SortedTasks []models.AnalyzedTask  `json:"sorted_tasks,omitempty"`
	Summary     models.PriorityCounts  `json:"summary"`
	Warnings    []string               `json:"warnings,omitempty"`
	Content     string                 `json:"content"`
	Error       string                 `json:"error,omitempty"`
}

// SuggestResult is returned by HandleSuggest.
type SuggestResult struct {
	Suggestions []models.SuggestedTask `json:"suggestions,omitempty"`
	Content     string                 `json:"content"`
	Error       string                 `json:"error,omitempty"`
}

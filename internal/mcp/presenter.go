package mcp

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/josephgoksu/smarttask/models"
)

// FormatTasks renders a validated batch as a Markdown table.
func FormatTasks(tasks []models.Task, warnings []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## ✅ %d valid task%s\n\n", len(tasks), plural(len(tasks))))
	sb.WriteString("| id | title | due | hours | importance | depends on |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	for _, t := range tasks {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
			t.ID, escapeCell(t.Title), t.DueDate, num(t.EstimatedHours), num(t.Importance),
			strings.Join(t.Dependencies, ", ")))
	}
	writeWarnings(&sb, warnings)
	return strings.TrimSpace(sb.String())
}

// FormatRanked renders analyzed tasks in the order the service returned.
func FormatRanked(tasks []models.AnalyzedTask, strategy models.SortingStrategy, warnings []string) string {
	var sb strings.Builder
	c := models.CountPriorities(tasks)
	sb.WriteString(fmt.Sprintf("## Prioritized (%s)\n\n", strategyTitle(strategy)))
	sb.WriteString(fmt.Sprintf("**Summary**: %d high, %d medium, %d low\n\n", c.High, c.Medium, c.Low))
	for i, t := range tasks {
		sb.WriteString(fmt.Sprintf("%d. **%s** [%s, score %s] due %s, %sh, importance %s\n",
			i+1, t.Title, t.PriorityLevel, num(t.PriorityScore), t.DueDate, num(t.EstimatedHours), num(t.Importance)))
		if t.Explanation != "" {
			sb.WriteString("   " + truncate(t.Explanation, 200) + "\n")
		}
	}
	writeWarnings(&sb, warnings)
	return strings.TrimSpace(sb.String())
}

// FormatSuggestions renders suggestions with their reasons.
func FormatSuggestions(tasks []models.SuggestedTask) string {
	if len(tasks) == 0 {
		return "No suggestions right now."
	}
	var sb strings.Builder
	sb.WriteString("## Suggested next\n\n")
	for i, t := range tasks {
		sb.WriteString(fmt.Sprintf("%d. **%s** [%s, score %s]\n", i+1, t.Title, t.PriorityLevel, num(t.PriorityScore)))
		if t.SuggestionReason != "" {
			sb.WriteString("   " + truncate(t.SuggestionReason, 200) + "\n")
		}
	}
	return strings.TrimSpace(sb.String())
}

// FormatError returns a standardized Markdown error message.
func FormatError(message string) string {
	return fmt.Sprintf("## ❌ Error\n\n**Details**: %s", message)
}

// FormatValidationError returns a Markdown error for validation failures.
func FormatValidationError(field, message string) string {
	return fmt.Sprintf("## ❌ Validation Error\n\n**Field**: `%s`\n**Details**: %s", field, message)
}

func writeWarnings(sb *strings.Builder, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	sb.WriteString("\n**Warnings**\n")
	for _, w := range warnings {
		sb.WriteString("- " + w + "\n")
	}
}

func strategyTitle(s models.SortingStrategy) string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(s.OrDefault()), "_", " "))
}

// truncate shortens a string to maxLen and adds ellipsis
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

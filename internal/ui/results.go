package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/josephgoksu/smarttask/models"
)

var titleCaser = cases.Title(language.English)

// StrategyLabel turns a strategy value into a display label,
// e.g. "deadline_driven" becomes "Deadline Driven".
func StrategyLabel(s models.SortingStrategy) string {
	return titleCaser.String(strings.ReplaceAll(string(s.OrDefault()), "_", " "))
}

// RenderStrategies lists every strategy with its description, marking current.
func RenderStrategies(current models.SortingStrategy) string {
	var sb strings.Builder
	for _, s := range models.Strategies {
		marker := "  "
		label := StyleText.Render(StrategyLabel(s))
		if s == current.OrDefault() {
			marker = StylePrimary.Render("▸ ")
			label = StyleTitle.Render(StrategyLabel(s))
		}
		fmt.Fprintf(&sb, "%s%s %s\n", marker, label, StyleSubtle.Render("("+string(s)+")"))
		fmt.Fprintf(&sb, "    %s\n", StyleSubtle.Render(s.Description()))
	}
	return sb.String()
}

// RenderTasks renders the batch as a table.
func RenderTasks(tasks []models.Task) string {
	if len(tasks) == 0 {
		return StyleSubtle.Render("No tasks yet. Add one or import a batch.") + "\n"
	}
	table := &Table{
		Headers:  []string{"ID", "Title", "Due", "Hours", "Imp", "Depends On"},
		MaxWidth: 40,
	}
	for _, t := range tasks {
		table.Rows = append(table.Rows, []string{
			TruncateID(t.ID),
			t.Title,
			t.DueDate,
			formatNumber(t.EstimatedHours),
			formatNumber(t.Importance),
			strings.Join(shortIDs(t.Dependencies), ", "),
		})
	}
	return table.Render()
}

// RenderSummary renders the high/medium/low tally.
func RenderSummary(c models.PriorityCounts) string {
	part := func(level models.PriorityLevel, n int) string {
		return lipgloss.NewStyle().Foreground(PriorityColor(level)).Bold(true).Render(strconv.Itoa(n)) +
			" " + StyleSubtle.Render(string(level))
	}
	return fmt.Sprintf("%s  %s  %s",
		part(models.PriorityHigh, c.High),
		part(models.PriorityMedium, c.Medium),
		part(models.PriorityLow, c.Low))
}

// RenderResults renders ranked tasks as cards in service order, preceded
// by a summary line. stale adds a notice that the batch or strategy changed.
func RenderResults(tasks []models.AnalyzedTask, strategy models.SortingStrategy, stale bool) string {
	var sb strings.Builder

	sb.WriteString(StyleSectionTitle.Render("Prioritized Tasks"))
	sb.WriteString(StyleSubtle.Render("  " + StrategyLabel(strategy)))
	sb.WriteString("\n")
	sb.WriteString(RenderSummary(models.CountPriorities(tasks)))
	sb.WriteString("\n\n")

	if stale {
		sb.WriteString(StyleWarning.Render("⚠ Results are out of date. Re-run analyze to refresh."))
		sb.WriteString("\n\n")
	}
	if len(tasks) == 0 {
		sb.WriteString(StyleSubtle.Render("No analyzed tasks."))
		sb.WriteString("\n")
		return sb.String()
	}

	for i, t := range tasks {
		sb.WriteString(renderCard(i+1, t, ""))
		sb.WriteString("\n")
	}
	return sb.String()
}

// RenderSuggestions renders the service's recommendations with their reasons.
func RenderSuggestions(tasks []models.SuggestedTask) string {
	var sb strings.Builder
	sb.WriteString(StyleSectionTitle.Render("Suggested Next"))
	sb.WriteString("\n\n")
	if len(tasks) == 0 {
		sb.WriteString(StyleSubtle.Render("No suggestions right now."))
		sb.WriteString("\n")
		return sb.String()
	}
	for i, t := range tasks {
		sb.WriteString(renderCard(i+1, t.AnalyzedTask, t.SuggestionReason))
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderCard(rank int, t models.AnalyzedTask, reason string) string {
	var lines []string

	head := fmt.Sprintf("%s %s  %s  %s",
		StyleSubtle.Render(fmt.Sprintf("#%d", rank)),
		StyleTitle.Render(t.Title),
		PriorityBadge(t.PriorityLevel),
		StyleSubtle.Render("score "+formatNumber(t.PriorityScore)))
	lines = append(lines, head)

	if t.Explanation != "" {
		lines = append(lines, StyleText.Render(WrapText(t.Explanation, 72)))
	}
	if reason != "" {
		lines = append(lines, StylePrimary.Render("→ ")+StyleText.Render(WrapText(reason, 70)))
	}

	meta := []string{
		"due " + t.DueDate,
		formatNumber(t.EstimatedHours) + "h",
		"importance " + formatNumber(t.Importance),
	}
	if t.ID != "" {
		meta = append(meta, TruncateID(t.ID))
	}
	lines = append(lines, StyleSubtle.Render(strings.Join(meta, " · ")))

	if len(t.Dependencies) > 0 {
		lines = append(lines, StyleSubtle.Render("depends on "+strings.Join(shortIDs(t.Dependencies), ", ")))
	}

	return StyleCard.BorderForeground(PriorityColor(t.PriorityLevel)).Render(strings.Join(lines, "\n"))
}

// RenderWarnings renders advisory messages, one per line.
func RenderWarnings(warnings []string) string {
	var sb strings.Builder
	for _, w := range warnings {
		sb.WriteString(StylePrefixWarn.Render("⚠ ") + StyleWarning.Render(w) + "\n")
	}
	return sb.String()
}

func shortIDs(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = TruncateID(id)
	}
	return out
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

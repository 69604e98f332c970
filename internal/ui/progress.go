package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type workDoneMsg struct {
	err error
}

// progressModel shows a spinner until the work function returns.
type progressModel struct {
	spinner spinner.Model
	title   string
	work    func() error
	err     error
	done    bool
}

func newProgressModel(title string, work func() error) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = StylePrimary
	return progressModel{spinner: s, title: title, work: work}
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return workDoneMsg{err: m.work()}
	})
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s\n", m.spinner.View(), StyleSubtle.Render(m.title))
}

// RunWithSpinner runs work while a spinner shows title. When out is not
// a terminal the work runs without any animation. Cancelling ctx stops
// the spinner; work is expected to observe ctx itself.
func RunWithSpinner(ctx context.Context, out io.Writer, interactive bool, title string, work func() error) error {
	if !interactive {
		return work()
	}

	p := tea.NewProgram(newProgressModel(title, work),
		tea.WithContext(ctx),
		tea.WithOutput(out),
		tea.WithInput(nil),
	)
	final, err := p.Run()
	if m, ok := final.(progressModel); ok && m.done {
		return m.err
	}
	if err != nil {
		return err
	}
	return ctx.Err()
}

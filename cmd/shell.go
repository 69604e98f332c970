/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/josephgoksu/smarttask/internal/analyzer"
	"github.com/josephgoksu/smarttask/internal/logger"
	"github.com/josephgoksu/smarttask/internal/session"
	"github.com/josephgoksu/smarttask/internal/task"
	"github.com/josephgoksu/smarttask/internal/ui"
	"github.com/josephgoksu/smarttask/internal/util"
	"github.com/josephgoksu/smarttask/models"
)

var shellStrategy string

const shellHelp = `Commands:
  add [json]        add a task (opens a form in a terminal, or takes one JSON object)
  import <file>     import a JSON or YAML batch file
  paste             paste a JSON batch, finished by a line with a single "."
  list              show the batch
  remove <id>       remove a task (a unique id prefix is enough)
  clear             remove every task
  strategy [name]   show or change the sorting strategy
  analyze           rank the batch with the analysis service
  results           show the last ranking
  suggest           show the service's suggestions
  help              show this list
  quit              leave the shell`

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Build and analyze a batch interactively",
	Long:  "Start an interactive session holding one task batch.\n\n" + shellHelp,
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
	shellCmd.Flags().StringVarP(&shellStrategy, "strategy", "s", "", "initial sorting strategy")
}

func runShell(cmd *cobra.Command, args []string) error {
	strategy, err := resolveStrategy(shellStrategy)
	if err != nil {
		return err
	}
	rec := newRecorder()
	defer func() { _ = rec.Close() }()

	sh := newShell(newAnalyzer(), cmd.InOrStdin(), cmd.OutOrStdout(), isInteractive())
	sess, err := newSession(strategy, rec, session.WithListener(sh.onEvent))
	if err != nil {
		return err
	}
	sh.sess = sess
	return sh.run(cmd.Context())
}

// shell is a line-oriented loop over one session.
type shell struct {
	sess        *session.Session
	svc         analyzer.Service
	validator   *task.Validator
	in          *bufio.Scanner
	out         io.Writer
	interactive bool
}

var errQuit = errors.New("quit")

func newShell(svc analyzer.Service, in io.Reader, out io.Writer, interactive bool) *shell {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	return &shell{
		svc:         svc,
		validator:   task.NewValidator(nil),
		in:          scanner,
		out:         out,
		interactive: interactive,
	}
}

func (sh *shell) run(ctx context.Context) error {
	fmt.Fprintln(sh.out, ui.RenderPageHeader("smarttask", "Type 'help' for commands, 'quit' to leave."))
	for {
		fmt.Fprint(sh.out, ui.StylePrimary.Render("smarttask> "))
		if !sh.in.Scan() {
			fmt.Fprintln(sh.out)
			return sh.in.Err()
		}
		line := strings.TrimSpace(sh.in.Text())
		if line == "" {
			continue
		}
		logger.SetLastInput(line)

		err := sh.exec(ctx, line)
		switch {
		case errors.Is(err, errQuit):
			return nil
		case errors.Is(err, ui.ErrFormCancelled):
			fmt.Fprintln(sh.out, ui.StyleSubtle.Render("Cancelled."))
		case err != nil:
			fmt.Fprintln(sh.out, ui.StyleError.Render("✗ "+err.Error()))
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (sh *shell) exec(ctx context.Context, line string) error {
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(name) {
	case "add":
		return sh.add(ctx, rest)
	case "import":
		if rest == "" {
			return errors.New("usage: import <file>")
		}
		tasks, err := sh.validator.ParseFile(appFs, rest)
		if err != nil {
			return err
		}
		return sh.importTasks(tasks)
	case "paste":
		return sh.paste()
	case "list", "ls":
		fmt.Fprint(sh.out, ui.RenderTasks(sh.sess.Tasks()))
		return nil
	case "remove", "rm":
		if rest == "" {
			return errors.New("usage: remove <id>")
		}
		id, err := util.ResolveTaskID(rest, sh.sess.ExistingIDs())
		if err != nil {
			if errors.Is(err, util.ErrNotFound) {
				return fmt.Errorf("%w: %s", session.ErrTaskNotFound, rest)
			}
			return err
		}
		return sh.sess.Remove(id)
	case "clear":
		sh.sess.Clear()
		return nil
	case "strategy", "strategies":
		return sh.strategy(ctx, rest)
	case "analyze":
		return sh.analyze(ctx)
	case "results":
		state := sh.sess.Snapshot()
		if state.Results == nil {
			fmt.Fprintln(sh.out, ui.StyleSubtle.Render("No results yet. Run 'analyze' first."))
			return nil
		}
		fmt.Fprint(sh.out, ui.RenderResults(state.Results, state.Strategy, state.Stale))
		return nil
	case "suggest":
		return sh.suggest(ctx)
	case "help", "?":
		fmt.Fprintln(sh.out, shellHelp)
		return nil
	case "quit", "exit", "q":
		return errQuit
	}
	return fmt.Errorf("unknown command %q (type 'help')", name)
}

func (sh *shell) add(ctx context.Context, rest string) error {
	if rest != "" {
		tasks, err := sh.validator.Parse([]byte("["+rest+"]"), task.FormatJSON)
		if err != nil {
			return err
		}
		return sh.sess.Add(tasks[0])
	}
	if !sh.interactive {
		return errors.New("usage: add {\"title\": ..., \"due_date\": ..., \"estimated_hours\": ..., \"importance\": ...}")
	}
	t, err := ui.PromptTask(ctx, sh.sess.Tasks())
	if err != nil {
		return err
	}
	return sh.sess.Add(t)
}

func (sh *shell) paste() error {
	fmt.Fprintln(sh.out, ui.StyleSubtle.Render("Paste a JSON array of tasks. End with a line containing only \".\""))
	var sb strings.Builder
	for sh.in.Scan() {
		line := sh.in.Text()
		if strings.TrimSpace(line) == "." {
			break
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	tasks, err := sh.validator.Parse([]byte(sb.String()), task.FormatJSON)
	if err != nil {
		return err
	}
	return sh.importTasks(tasks)
}

func (sh *shell) importTasks(tasks []models.Task) error {
	if err := sh.sess.Import(tasks); err != nil {
		return err
	}
	if w := task.InspectDependencies(sh.sess.Tasks()).Warnings(); len(w) > 0 {
		fmt.Fprintln(sh.out, ui.RenderWarnings(w))
	}
	return nil
}

func (sh *shell) strategy(ctx context.Context, rest string) error {
	if rest == "" {
		if !sh.interactive {
			fmt.Fprint(sh.out, ui.RenderStrategies(sh.sess.Strategy()))
			return nil
		}
		picked, err := ui.PromptStrategy(ctx, sh.sess.Strategy())
		if err != nil {
			return err
		}
		sh.sess.SetStrategy(picked)
		return nil
	}
	s, err := models.ParseStrategy(rest)
	if err != nil {
		return err
	}
	sh.sess.SetStrategy(s)
	return nil
}

func (sh *shell) analyze(ctx context.Context) error {
	var ranked []models.AnalyzedTask
	title := fmt.Sprintf("Analyzing %d tasks...", sh.sess.Len())
	err := ui.RunWithSpinner(ctx, sh.out, sh.interactive, title, func() error {
		var err error
		ranked, err = sh.sess.Analyze(ctx, sh.svc)
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprint(sh.out, ui.RenderResults(ranked, sh.sess.Strategy(), sh.sess.Stale()))
	return nil
}

func (sh *shell) suggest(ctx context.Context) error {
	var suggestions []models.SuggestedTask
	err := ui.RunWithSpinner(ctx, sh.out, sh.interactive, "Fetching suggestions...", func() error {
		var err error
		suggestions, err = sh.svc.Suggest(ctx)
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprint(sh.out, ui.RenderSuggestions(suggestions))
	return nil
}

// onEvent prints session feedback. Failures are printed by the loop and
// the start of an analysis by the spinner.
func (sh *shell) onEvent(e session.Event) {
	switch e.Type {
	case session.EventAnalysisFailed:
		return
	case session.EventAnalysisStarted:
		if sh.interactive {
			return
		}
		fmt.Fprintln(sh.out, ui.StyleSubtle.Render(e.Message()))
	case session.EventAnalysisCompleted:
		if e.Superseded {
			fmt.Fprintln(sh.out, ui.StyleWarning.Render("⚠ "+e.Message()))
			return
		}
		fmt.Fprintln(sh.out, ui.StyleSuccess.Render("✓ "+e.Message()))
	default:
		fmt.Fprintln(sh.out, ui.StyleSuccess.Render("✓ "+e.Message()))
	}
}

package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/josephgoksu/smarttask/internal/analyzer"
	"github.com/josephgoksu/smarttask/models"
)

// resetFlags puts every flag back to its default so tests don't leak state
// through the package-level command tree.
func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// executeCommand runs the root command with args and stdin, returning
// everything written to stdout and stderr.
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	viper.Reset()
	resetFlags(rootCmd)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SMARTTASK_API_URL", "")
	t.Setenv("API_URL", "")

	origInteractive := isInteractive
	isInteractive = func() bool { return false }
	t.Cleanup(func() { isInteractive = origInteractive })

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return buf.String(), err
}

// analysisStub fakes the analysis service. It ranks tasks in reverse order
// and remembers the last request.
type analysisStub struct {
	mu      sync.Mutex
	last    models.AnalyzeRequest
	calls   int
	status  int
	detail  string
	suggest []models.SuggestedTask
}

func newAnalysisStub(t *testing.T) (*analysisStub, *httptest.Server) {
	t.Helper()
	stub := &analysisStub{}
	mux := http.NewServeMux()
	mux.HandleFunc(analyzer.AnalyzePath, func(w http.ResponseWriter, r *http.Request) {
		stub.mu.Lock()
		defer stub.mu.Unlock()
		stub.calls++
		w.Header().Set("Content-Type", "application/json")
		if stub.status != 0 {
			w.WriteHeader(stub.status)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": stub.detail})
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&stub.last)
		ranked := make([]models.AnalyzedTask, 0, len(stub.last.Tasks))
		for i := len(stub.last.Tasks) - 1; i >= 0; i-- {
			ranked = append(ranked, models.AnalyzedTask{
				Task:          stub.last.Tasks[i],
				PriorityScore: float64(10 * (i + 1)),
				PriorityLevel: models.PriorityHigh,
				Explanation:   "ranked by stub",
			})
		}
		_ = json.NewEncoder(w).Encode(models.AnalyzeResponse{SortedTasks: ranked})
	})
	mux.HandleFunc(analyzer.SuggestPath, func(w http.ResponseWriter, r *http.Request) {
		stub.mu.Lock()
		defer stub.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.SuggestResponse{Suggestions: stub.suggest})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return stub, srv
}

func (s *analysisStub) lastRequest() (models.AnalyzeRequest, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.calls
}

const sampleBatch = `[
  {"id": "a", "title": "Write report", "due_date": "2030-01-10", "estimated_hours": 2, "importance": 8, "dependencies": []},
  {"id": "b", "title": "Review report", "due_date": "2030-01-11", "estimated_hours": 1, "importance": 6, "dependencies": ["a"]}
]`

func writeBatchFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

package policy

import (
	"sync"
	"time"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/open-policy-agent/opa/v1/types"

	"github.com/josephgoksu/smarttask/models"
)

// Custom built-in names available to policies.
const (
	BuiltinDaysUntil      = "smarttask.days_until"
	BuiltinIsCalendarDate = "smarttask.is_calendar_date"
)

var (
	registerOnce sync.Once

	// now is the clock behind smarttask.days_until.
	nowMu sync.RWMutex
	now   = time.Now
)

// SetClock replaces the clock used by date built-ins and returns a function
// restoring the previous one.
func SetClock(clock func() time.Time) (restore func()) {
	nowMu.Lock()
	prev := now
	now = clock
	nowMu.Unlock()
	return func() {
		nowMu.Lock()
		now = prev
		nowMu.Unlock()
	}
}

func today() time.Time {
	nowMu.RLock()
	t := now()
	nowMu.RUnlock()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RegisterBuiltins registers the smarttask built-ins with OPA. Registration
// is global and happens once per process.
//
//	smarttask.days_until("2025-12-01")       -> number of days from today, negative when overdue
//	smarttask.is_calendar_date("2025-02-30") -> false
func RegisterBuiltins() []string {
	registerOnce.Do(func() {
		rego.RegisterBuiltin1(&rego.Function{
			Name: BuiltinDaysUntil,
			Decl: types.NewFunction(types.Args(types.S), types.N),
		}, func(_ rego.BuiltinContext, a *ast.Term) (*ast.Term, error) {
			s, ok := a.Value.(ast.String)
			if !ok {
				return nil, nil
			}
			days, ok := daysUntil(string(s))
			if !ok {
				// undefined for malformed dates
				return nil, nil
			}
			return ast.IntNumberTerm(days), nil
		})

		rego.RegisterBuiltin1(&rego.Function{
			Name: BuiltinIsCalendarDate,
			Decl: types.NewFunction(types.Args(types.S), types.B),
		}, func(_ rego.BuiltinContext, a *ast.Term) (*ast.Term, error) {
			s, ok := a.Value.(ast.String)
			if !ok {
				return ast.BooleanTerm(false), nil
			}
			return ast.BooleanTerm(isCalendarDate(string(s))), nil
		})
	})
	return GetBuiltinNames()
}

// GetBuiltinNames returns the names of the custom built-ins.
func GetBuiltinNames() []string {
	return []string{BuiltinDaysUntil, BuiltinIsCalendarDate}
}

// IsBuiltin reports whether name is a smarttask built-in.
func IsBuiltin(name string) bool {
	for _, n := range GetBuiltinNames() {
		if n == name {
			return true
		}
	}
	return false
}

func isCalendarDate(s string) bool {
	if !models.DueDatePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

func daysUntil(s string) (int, bool) {
	if !isCalendarDate(s) {
		return 0, false
	}
	due, _ := time.Parse(time.DateOnly, s)
	return int(due.Sub(today()).Hours() / 24), true
}

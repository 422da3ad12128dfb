package resolve

import (
	"errors"
	"fmt"
	"slices"

	"go.followtheprocess.codes/typeprobe/internal/diag"
	"go.followtheprocess.codes/typeprobe/internal/program"
)

// ErrDiagnostics is the error returned by [Result.Err] when the snippet has
// error diagnostics.
var ErrDiagnostics = errors.New("snippet has diagnostics")

// Result is the outcome of resolving a snippet: the types of the requested names
// and the diagnostics produced while checking it.
//
// Diagnostics never prevent types from being read, anything the checker could make
// sense of is available regardless. A Result is safe for concurrent use.
type Result struct {
	types       *Types
	diagnostics func() []diag.Diagnostic
	code        string
}

// NewResult returns the [Result] for candidates in prog.
func NewResult(prog *program.Program, candidates []string) *Result {
	return &Result{
		types:       New(prog, candidates),
		diagnostics: Diagnostics(prog),
		code:        prog.Host.Code(),
	}
}

// Type returns the resolved type of name, the bool is false if name was not
// requested or does not name a type in the snippet.
func (r *Result) Type(name string) (string, bool) {
	return r.types.Get(name)
}

// Names returns the resolved names in the order they were requested.
func (r *Result) Names() []string {
	return r.types.Names()
}

// Types returns every resolved name mapped to its type.
func (r *Result) Types() map[string]string {
	return r.types.All()
}

// Diagnostics returns the diagnostics for the snippet, see [Diagnostics] for
// their order.
func (r *Result) Diagnostics() []diag.Diagnostic {
	return slices.Clone(r.diagnostics())
}

// Code returns the normalized snippet text the result was computed from.
func (r *Result) Code() string {
	return r.code
}

// Err returns an error wrapping [ErrDiagnostics] and every error severity
// diagnostic, or nil if there are none.
//
// Diagnostics are always available as data from [Result.Diagnostics], Err is for
// callers that would rather fail on them.
func (r *Result) Err() error {
	var errs []error

	for _, d := range r.diagnostics() {
		if d.Severity == diag.SeverityError {
			errs = append(errs, d)
		}
	}

	if len(errs) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %w", ErrDiagnostics, errors.Join(errs...))
}

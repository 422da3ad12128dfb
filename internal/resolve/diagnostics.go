package resolve

import (
	"go/scanner"
	"go/token"
	"go/types"
	"slices"
	"strings"
	"sync"
	"unicode"

	"go.followtheprocess.codes/typeprobe/internal/diag"
	"go.followtheprocess.codes/typeprobe/internal/host"
	"go.followtheprocess.codes/typeprobe/internal/program"
)

// importPrefix is how the type checker starts every import failure.
const importPrefix = "could not import "

// Diagnostics returns a function that collects the diagnostics for the snippet in
// prog, computing them on the first call only.
//
// Diagnostics are syntactic (parse errors), then semantic (type errors), then
// declaration level (soft type errors e.g. unused variables), each group in source
// order. Only diagnostics positioned in the snippet itself are kept, and declaration
// level diagnostics are dropped entirely unless the program was built in strict mode.
func Diagnostics(prog *program.Program) func() []diag.Diagnostic {
	return sync.OnceValue(func() []diag.Diagnostic {
		return collect(prog)
	})
}

// collect builds the diagnostics for prog.
func collect(prog *program.Program) []diag.Diagnostic {
	var diagnostics []diag.Diagnostic

	for _, err := range prog.Host.ParseErrors(host.VirtualName) {
		diagnostics = append(diagnostics, syntactic(prog, err))
	}

	for _, err := range prog.TypeErrors {
		pos := prog.Fset().Position(err.Pos)
		if pos.Filename != host.VirtualName {
			continue
		}

		if err.Soft && !prog.Config.Strict {
			continue
		}

		diagnostics = append(diagnostics, semantic(prog, err, pos))
	}

	slices.SortStableFunc(diagnostics, diag.Compare)

	return diagnostics
}

// syntactic converts a parse error into a diagnostic.
func syntactic(prog *program.Program, err *scanner.Error) diag.Diagnostic {
	return diag.Diagnostic{
		Msg:      err.Msg,
		Position: position(prog, err.Pos),
		Severity: diag.SeverityError,
		Category: diag.CategorySyntactic,
		Code:     diag.CodeSyntax,
	}
}

// semantic converts a type error into a diagnostic.
func semantic(prog *program.Program, err types.Error, pos token.Position) diag.Diagnostic {
	d := diag.Diagnostic{
		Msg:      err.Msg,
		Position: position(prog, pos),
		Severity: diag.SeverityError,
		Category: diag.CategorySemantic,
		Code:     diag.CodeType,
	}

	switch {
	case err.Soft:
		d.Severity = diag.SeverityWarning
		d.Category = diag.CategoryDeclaration
		d.Code = diag.CodeUnused
	case strings.HasPrefix(err.Msg, importPrefix):
		d.Code = diag.CodeImport
	}

	return d
}

// position converts a position in the virtual file into a position relative to
// the snippet text.
func position(prog *program.Program, pos token.Position) diag.Position {
	if !pos.IsValid() {
		return diag.Position{Name: pos.Filename}
	}

	offset := pos.Offset - prog.Host.HeaderLen()
	if offset < 0 {
		offset = 0
	}

	return diag.Position{
		Name:     pos.Filename,
		Offset:   offset,
		Line:     pos.Line,
		StartCol: pos.Column,
		EndCol:   pos.Column + max(identLen(prog.Host.Code(), offset)-1, 0),
	}
}

// identLen returns the length in bytes of the identifier starting at offset in code,
// or 0 if there isn't one.
func identLen(code string, offset int) int {
	if offset >= len(code) {
		return 0
	}

	end := strings.IndexFunc(code[offset:], func(r rune) bool {
		return r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if end == -1 {
		return len(code) - offset
	}

	return end
}

// Package diag provides the diagnostic model shared by the resolver, the exporters
// and the CLI, along with handlers for presenting diagnostics to a user.
//
// A [Diagnostic] is plain data, the resolver never returns one as an error. Callers
// that want an error decide that for themselves.
package diag

import (
	"cmp"
	"fmt"
)

// Position is a source position inside a snippet including file, line
// and column information. It can also express a range of source via StartCol
// and EndCol.
//
// Positions without filenames are considered invalid, a diagnostic that cannot
// be attributed to a location carries the zero Position.
type Position struct {
	Name     string `json:"name"     toml:"name"     yaml:"name"`     // Filename
	Offset   int    `json:"offset"   toml:"offset"   yaml:"offset"`   // Byte offset of the position from the start of the snippet
	Line     int    `json:"line"     toml:"line"     yaml:"line"`     // Line number (1 indexed)
	StartCol int    `json:"startCol" toml:"startCol" yaml:"startCol"` // Start column (1 indexed)
	EndCol   int    `json:"endCol"   toml:"endCol"   yaml:"endCol"`   // End column (1 indexed), EndCol == StartCol when pointing to a single character
}

// IsValid reports whether the [Position] describes a valid source position.
//
// The rules are:
//
//   - At least Name, Line and StartCol must be set (and non zero)
//   - EndCol cannot be 0, it's only allowed values are StartCol or any number greater than StartCol
func (p Position) IsValid() bool {
	if p.Name == "" || p.Line < 1 || p.StartCol < 1 || p.EndCol < 1 ||
		(p.EndCol >= 1 && p.EndCol < p.StartCol) {
		return false
	}

	return true
}

// String returns a string representation of a [Position].
//
// It is formatted as "file:line:start" like the go toolchain, such that most text
// editors/terminals will be able to support clicking on it and navigating to the
// position. The extent of the range is only used when highlighting.
func (p Position) String() string {
	if !p.IsValid() {
		return fmt.Sprintf(
			"BadPosition: {Name: %q, Line: %d, StartCol: %d, EndCol: %d}",
			p.Name,
			p.Line,
			p.StartCol,
			p.EndCol,
		)
	}

	return fmt.Sprintf("%s:%d:%d", p.Name, p.Line, p.StartCol)
}

// ComparePosition is like [cmp.Compare] for a [Position].
//
// Positions in the same file compare by offset, positions in different
// files compare alphabetically by name.
func ComparePosition(x, y Position) int {
	if x == y {
		return 0
	}

	if x.Name == y.Name {
		return cmp.Compare(x.Offset, y.Offset)
	}

	return cmp.Compare(x.Name, y.Name)
}

// Severity is how serious a [Diagnostic] is.
type Severity int

const (
	SeverityError   Severity = iota // The snippet does not compile
	SeverityWarning                 // The snippet compiles only under a relaxed configuration
)

// String implements [fmt.Stringer] for a [Severity].
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// MarshalText implements [encoding.TextMarshaler] so severities are readable
// in every export format.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler] for a [Severity].
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	default:
		return fmt.Errorf("unknown severity %q", text)
	}

	return nil
}

// Category is the compilation phase that produced a [Diagnostic].
//
// Collected diagnostics are always ordered by category first, in
// declaration order of the constants below.
type Category int

const (
	CategorySyntactic   Category = iota // Reported by the parser
	CategorySemantic                    // Reported by the type checker
	CategoryDeclaration                 // Soft errors about declarations e.g. unused imports
)

// String implements [fmt.Stringer] for a [Category].
func (c Category) String() string {
	switch c {
	case CategorySyntactic:
		return "syntactic"
	case CategorySemantic:
		return "semantic"
	case CategoryDeclaration:
		return "declaration"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// MarshalText implements [encoding.TextMarshaler] for a [Category].
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler] for a [Category].
func (c *Category) UnmarshalText(text []byte) error {
	switch string(text) {
	case "syntactic":
		*c = CategorySyntactic
	case "semantic":
		*c = CategorySemantic
	case "declaration":
		*c = CategoryDeclaration
	default:
		return fmt.Errorf("unknown category %q", text)
	}

	return nil
}

// Code is a stable numeric identifier for a class of diagnostic.
type Code int

const (
	CodeSyntax Code = 1001 // Any parse error
	CodeType   Code = 2001 // Any hard type checking error not covered by a more specific code
	CodeImport Code = 2307 // An import could not be resolved
	CodeUnused Code = 6133 // Declared and not used, imported and not used
)

// String renders the code as it is shown to users e.g. "TP2307".
func (c Code) String() string {
	return fmt.Sprintf("TP%d", int(c))
}

// Diagnostic is a single problem found while compiling a snippet.
type Diagnostic struct {
	Msg      string   `json:"msg"      toml:"msg"      yaml:"msg"`      // A descriptive message explaining the error
	Position Position `json:"position" toml:"position" yaml:"position"` // The source position the diagnostic points to, may be the zero Position
	Severity Severity `json:"severity" toml:"severity" yaml:"severity"` // How serious it is
	Category Category `json:"category" toml:"category" yaml:"category"` // Which phase reported it
	Code     Code     `json:"code"     toml:"code"     yaml:"code"`     // Stable numeric code
}

// String prints a [Diagnostic] on a single line.
func (d Diagnostic) String() string {
	if !d.Position.IsValid() {
		return fmt.Sprintf("%s[%s]: %s", d.Severity, d.Code, d.Msg)
	}

	return fmt.Sprintf("%s: %s[%s]: %s", d.Position, d.Severity, d.Code, d.Msg)
}

// Error implements the error interface so a [Diagnostic] can be joined into
// an error chain by callers that want one.
func (d Diagnostic) Error() string {
	return d.String()
}

// Compare orders diagnostics by category then by position, it is suitable
// for use with [slices.SortStableFunc].
func Compare(x, y Diagnostic) int {
	if c := cmp.Compare(x.Category, y.Category); c != 0 {
		return c
	}

	return ComparePosition(x.Position, y.Position)
}

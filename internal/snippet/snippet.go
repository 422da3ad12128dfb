// Package snippet turns caller supplied snippets into normalized source text and
// extracts the reserved type names declared in it.
//
// A snippet is either plain [Text] or a [Template]: ordered literal fragments with
// interpolated values between them, every interpolation becoming a reserved name.
//
//	snippet.Tmpl([]string{"type ", " = string\n"}, 1).Normalize() // "type __1 = string\n"
package snippet

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Prefix is the private-use prefix that marks a declaration as one the
// caller wants resolved.
const Prefix = "__"

var (
	// identSafe matches values that can be appended to [Prefix] verbatim.
	identSafe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

	// reserved matches a complete reserved name.
	reserved = regexp.MustCompile(`^__[a-zA-Z0-9][_a-zA-Z0-9]*$`)

	// declaration matches a type declaration of a reserved name, the name is
	// the first capture group.
	declaration = regexp.MustCompile(`\btype\s+(__[a-zA-Z0-9][_a-zA-Z0-9]*)[^_a-zA-Z0-9]`)
)

// Source is anything that can be normalized into snippet source text.
type Source interface {
	// Normalize returns the linear source text of the snippet, it is pure and
	// never fails.
	Normalize() string
}

// Text is a plain text snippet, it normalizes to itself.
type Text string

// Normalize implements [Source] for [Text].
func (t Text) Normalize() string {
	return string(t)
}

// Template is a snippet made of literal fragments with values interpolated
// between them, like a tagged template literal.
//
// Interpolation i (0 indexed) sits between Fragments[i] and Fragments[i+1].
type Template struct {
	// Fragments are the literal text fragments, in order.
	Fragments []string

	// Values are the interpolated values, in order. There should be exactly one
	// fewer value than fragments.
	Values []any
}

// Tmpl returns a [Template] from its fragments and interpolated values.
func Tmpl(fragments []string, values ...any) Template {
	return Template{Fragments: fragments, Values: values}
}

// Normalize implements [Source] for [Template].
//
// Fragment 0 is emitted as is, every later fragment is preceded by the reserved
// name for the interpolation before it: [Prefix] followed by the value as
// formatted by [fmt.Sprint]. A value that isn't identifier safe, or a missing
// value, is replaced by the interpolation's index instead.
//
// No escaping is performed, malformed results surface later as diagnostics.
func (t Template) Normalize() string {
	builder := &strings.Builder{}

	for i, fragment := range t.Fragments {
		if i > 0 {
			builder.WriteString(Placeholder(i-1, t.value(i-1)))
		}

		builder.WriteString(fragment)
	}

	return builder.String()
}

// value returns the interpolated value at index i, or nil if there isn't one.
func (t Template) value(i int) any {
	if i < len(t.Values) {
		return t.Values[i]
	}

	return nil
}

// Placeholder returns the reserved name that interpolation index with value
// is replaced by.
func Placeholder(index int, value any) string {
	if value != nil {
		if text := fmt.Sprint(value); identSafe.MatchString(text) {
			return Prefix + text
		}
	}

	return Prefix + strconv.Itoa(index)
}

// IsReserved reports whether name is a reserved name.
func IsReserved(name string) bool {
	return reserved.MatchString(name)
}

// Names extracts the reserved type names declared in code, in source order.
//
// This is a lexical heuristic rather than a parse, it does not skip comments or
// string literals and does not see names declared inside a grouped
// "type ( ... )" declaration. Repeated declarations are returned repeatedly.
func Names(code string) []string {
	matches := declaration.FindAllStringSubmatch(code, -1)

	names := make([]string, 0, len(matches))
	for _, match := range matches {
		names = append(names, match[1])
	}

	return names
}

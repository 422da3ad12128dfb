// Package host implements the virtual compilation host: the source provider that
// serves a snippet as one reserved, in-memory Go file while every other file name
// falls through to a real [Provider], along with the importers used to resolve
// import declarations.
package host

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
)

// VirtualName is the reserved file name the snippet is served under.
const VirtualName = "__typeprobe_inline__.go"

// Mode is the parser mode used for every file.
const Mode = parser.AllErrors | parser.ParseComments | parser.SkipObjectResolution

// Host serves the virtual snippet file and delegates every other name to a
// fallback [Provider].
//
// A Host belongs to exactly one resolution and must not be shared.
type Host struct {
	fset        *token.FileSet               // File set every file is parsed into
	fallback    Provider                     // Provider for non virtual names
	virtual     *ast.File                    // The cached virtual source unit, nil until first requested
	parseErrors map[string]scanner.ErrorList // Syntax errors by file name
	requests    map[string]int               // Number of times each file name was requested
	code        string                       // Normalized snippet text
	header      string                       // Synthesized text placed before code, may be empty
}

// New returns a new [Host] serving code as [VirtualName].
//
// If code has no package clause, one naming pkg is synthesized ahead of it along
// with a line directive, so positions reported against the virtual file still
// line up with code.
func New(code, pkg string, fallback Provider) *Host {
	header := ""
	if !hasPackageClause(code) {
		header = fmt.Sprintf("package %s\n//line %s:1:1\n", pkg, VirtualName)
	}

	return &Host{
		fset:        token.NewFileSet(),
		fallback:    fallback,
		parseErrors: make(map[string]scanner.ErrorList),
		requests:    make(map[string]int),
		code:        code,
		header:      header,
	}
}

// Fset returns the file set every file served by the host is parsed into.
func (h *Host) Fset() *token.FileSet {
	return h.fset
}

// Source returns the complete text of the virtual file, header included.
func (h *Host) Source() string {
	return h.header + h.code
}

// Code returns the normalized snippet text, without any synthesized header.
func (h *Host) Code() string {
	return h.code
}

// HeaderLen returns the length in bytes of the synthesized header, offsets in
// the virtual file minus HeaderLen are offsets into [Host.Code].
func (h *Host) HeaderLen() int {
	return len(h.header)
}

// File returns the parsed file for name.
//
// The virtual file is parsed on first request and the identical *ast.File is
// returned for every request after that. Any other name is read from the fallback
// provider and parsed afresh.
//
// Syntax errors are not returned, a (possibly partial) file is always returned
// and the errors are available from [Host.ParseErrors]. The error is non-nil only
// if the source could not be obtained at all.
func (h *Host) File(name string, mode parser.Mode) (*ast.File, error) {
	h.requests[name]++

	if name == VirtualName {
		if h.virtual == nil {
			h.virtual = h.parse(VirtualName, []byte(h.Source()), mode)
		}

		return h.virtual, nil
	}

	src, err := h.fallback.Source(name)
	if err != nil {
		return nil, err
	}

	return h.parse(name, src, mode), nil
}

// ParseErrors returns the syntax errors found in the named file, if any.
func (h *Host) ParseErrors(name string) scanner.ErrorList {
	return h.parseErrors[name]
}

// Requests returns the number of times name has been requested from the host.
func (h *Host) Requests(name string) int {
	return h.requests[name]
}

// parse parses src, recording any syntax errors against name.
func (h *Host) parse(name string, src []byte, mode parser.Mode) *ast.File {
	file, err := parser.ParseFile(h.fset, name, src, mode)
	if err != nil {
		var list scanner.ErrorList
		if errors.As(err, &list) {
			h.parseErrors[name] = list
		} else {
			h.parseErrors[name] = scanner.ErrorList{{Pos: token.Position{Filename: name}, Msg: err.Error()}}
		}
	}

	return file
}

// hasPackageClause reports whether the first token of code (ignoring comments)
// is the package keyword.
func hasPackageClause(code string) bool {
	src := []byte(code)
	file := token.NewFileSet().AddFile("", -1, len(src))

	var s scanner.Scanner
	s.Init(file, src, nil, 0)

	_, tok, _ := s.Scan()

	return tok == token.PACKAGE
}

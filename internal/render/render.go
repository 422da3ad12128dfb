// Package render prints [types.Type] values as canonical Go type expressions with
// every alias expanded, at every depth.
//
// The output follows the conventions of [types.TypeString] so it reads like
// ordinary Go, the difference being that aliases are never printed by name and
// the empty interface is always printed as "any".
package render

import (
	"go/types"
	"strconv"
	"strings"

	"go.followtheprocess.codes/typeprobe/internal/options"
)

// Declared renders the type declared by obj.
//
// If obj is an alias the aliased type is rendered, otherwise obj is a defined type
// and its underlying type is rendered instead, so the declared name itself is never
// part of the output. In [options.RenderUnderlying] mode a defined type reached at
// the top level after alias expansion is also expanded to its underlying type.
//
// Names declared in pkg are printed unqualified, everything else is qualified by
// its package name.
func Declared(obj *types.TypeName, pkg *types.Package, mode options.RenderMode) string {
	t := obj.Type()

	if obj.IsAlias() {
		t = types.Unalias(t)
		if mode == options.RenderUnderlying {
			if _, ok := t.(*types.Named); ok {
				t = t.Underlying()
			}
		}
	} else {
		t = t.Underlying()
	}

	return Type(t, pkg)
}

// Type renders t, names declared in pkg are printed unqualified.
func Type(t types.Type, pkg *types.Package) string {
	p := printer{
		buf: &strings.Builder{},
		qualifier: func(other *types.Package) string {
			if other == pkg {
				return ""
			}

			return other.Name()
		},
	}

	p.typ(t)

	return p.buf.String()
}

// printer accumulates a rendered type.
type printer struct {
	buf       *strings.Builder
	qualifier types.Qualifier
}

func (p *printer) write(s string) {
	p.buf.WriteString(s)
}

func (p *printer) typ(t types.Type) {
	switch t := t.(type) {
	case nil:
		p.write("<nil>")
	case *types.Alias:
		p.typ(types.Unalias(t))
	case *types.Basic:
		if t.Kind() == types.UnsafePointer {
			p.write("unsafe.Pointer")
			return
		}

		p.write(t.Name())
	case *types.Pointer:
		p.write("*")
		p.typ(t.Elem())
	case *types.Slice:
		p.write("[]")
		p.typ(t.Elem())
	case *types.Array:
		p.write("[")
		p.write(strconv.FormatInt(t.Len(), 10))
		p.write("]")
		p.typ(t.Elem())
	case *types.Map:
		p.write("map[")
		p.typ(t.Key())
		p.write("]")
		p.typ(t.Elem())
	case *types.Chan:
		p.chanType(t)
	case *types.Struct:
		p.structType(t)
	case *types.Tuple:
		p.tuple(t, false)
	case *types.Signature:
		p.write("func")
		p.signature(t)
	case *types.Interface:
		p.interfaceType(t)
	case *types.Union:
		p.union(t)
	case *types.Named:
		p.named(t)
	case *types.TypeParam:
		p.write(t.Obj().Name())
	default:
		p.write(t.String())
	}
}

func (p *printer) chanType(t *types.Chan) {
	parens := false

	switch t.Dir() {
	case types.SendRecv:
		p.write("chan ")
		// chan (<-chan T) needs the parens to not parse as chan<- (chan T)
		if elem, ok := types.Unalias(t.Elem()).(*types.Chan); ok && elem.Dir() == types.RecvOnly {
			parens = true
		}
	case types.SendOnly:
		p.write("chan<- ")
	case types.RecvOnly:
		p.write("<-chan ")
	}

	if parens {
		p.write("(")
	}

	p.typ(t.Elem())

	if parens {
		p.write(")")
	}
}

func (p *printer) structType(t *types.Struct) {
	p.write("struct{")

	for i := range t.NumFields() {
		if i > 0 {
			p.write("; ")
		}

		field := t.Field(i)
		if !field.Embedded() {
			p.write(field.Name())
			p.write(" ")
		}

		p.typ(field.Type())

		if tag := t.Tag(i); tag != "" {
			p.write(" ")
			p.write(strconv.Quote(tag))
		}
	}

	p.write("}")
}

func (p *printer) interfaceType(t *types.Interface) {
	if t.NumExplicitMethods() == 0 && t.NumEmbeddeds() == 0 {
		p.write("any")
		return
	}

	// An implicit interface is a bare constraint like ~int | ~string
	if t.IsImplicit() && t.NumExplicitMethods() == 0 && t.NumEmbeddeds() == 1 {
		p.typ(t.EmbeddedType(0))
		return
	}

	p.write("interface{")

	first := true
	sep := func() {
		if !first {
			p.write("; ")
		}

		first = false
	}

	for i := range t.NumExplicitMethods() {
		sep()

		method := t.ExplicitMethod(i)
		p.write(method.Name())
		p.signature(method.Type().(*types.Signature))
	}

	for i := range t.NumEmbeddeds() {
		sep()
		p.typ(t.EmbeddedType(i))
	}

	p.write("}")
}

func (p *printer) union(t *types.Union) {
	for i := range t.Len() {
		if i > 0 {
			p.write(" | ")
		}

		term := t.Term(i)
		if term.Tilde() {
			p.write("~")
		}

		p.typ(term.Type())
	}
}

func (p *printer) named(t *types.Named) {
	obj := t.Obj()
	if pkg := obj.Pkg(); pkg != nil {
		if qualifier := p.qualifier(pkg); qualifier != "" {
			p.write(qualifier)
			p.write(".")
		}
	}

	p.write(obj.Name())

	if args := t.TypeArgs(); args.Len() > 0 {
		p.write("[")

		for i := range args.Len() {
			if i > 0 {
				p.write(", ")
			}

			p.typ(args.At(i))
		}

		p.write("]")

		return
	}

	if params := t.TypeParams(); params.Len() > 0 {
		p.typeParams(params)
	}
}

func (p *printer) typeParams(params *types.TypeParamList) {
	p.write("[")

	for i := range params.Len() {
		if i > 0 {
			p.write(", ")
		}

		param := params.At(i)
		p.write(param.Obj().Name())
		p.write(" ")
		p.typ(param.Constraint())
	}

	p.write("]")
}

// signature writes the parameters and results of sig, without the func keyword.
func (p *printer) signature(sig *types.Signature) {
	if params := sig.TypeParams(); params.Len() > 0 {
		p.typeParams(params)
	}

	p.tuple(sig.Params(), sig.Variadic())

	results := sig.Results()
	switch {
	case results.Len() == 0:
		return
	case results.Len() == 1 && results.At(0).Name() == "":
		p.write(" ")
		p.typ(results.At(0).Type())
	default:
		p.write(" ")
		p.tuple(results, false)
	}
}

// tuple writes a parenthesised, comma separated list of variables. If variadic is
// true the final variable is written as ...T rather than []T.
func (p *printer) tuple(t *types.Tuple, variadic bool) {
	p.write("(")

	for i := range t.Len() {
		if i > 0 {
			p.write(", ")
		}

		v := t.At(i)
		if v.Name() != "" {
			p.write(v.Name())
			p.write(" ")
		}

		typ := v.Type()
		if variadic && i == t.Len()-1 {
			if slice, ok := types.Unalias(typ).(*types.Slice); ok {
				p.write("...")
				typ = slice.Elem()
			}
		}

		p.typ(typ)
	}

	p.write(")")
}

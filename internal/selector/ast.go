// Package selector parses CSS selector lists into the small structure needed
// to resolve :global and :local scoping.
//
// Only the selector grammar is modelled. Simple selectors keep their literal
// text, so attribute values, pseudo-class arguments and escapes survive a
// parse/print round trip unchanged.
package selector

import "strings"

// Scope is the namespace a compound selector resolves in.
type Scope uint8

const (
	Local Scope = iota
	Global
)

func (s Scope) String() string {
	if s == Global {
		return "global"
	}
	return "local"
}

// List is a comma-separated selector list.
type List []Complex

// Complex is a sequence of compounds joined by combinators. The descendant
// combinator is represented explicitly, so two non-combinator tokens are never
// adjacent.
type Complex []Token

// Token is one of *Compound, *Combinator or *Marker.
type Token interface {
	String() string
	isToken()
}

type CombinatorKind uint8

const (
	Descendant CombinatorKind = iota
	Child
	NextSibling
	SubsequentSibling
)

type Combinator struct {
	Kind CombinatorKind
}

// Compound is a run of simple selectors with no combinator between them,
// e.g. `div.k1.k2[id='baz']:not(#yolo)`.
type Compound struct {
	Parts []Simple
}

// Simple is a single simple selector. Marker is set when the selector is a
// :global(...) or :local(...) pseudo-class chained inside a compound.
type Simple struct {
	Text   string
	Marker *Marker
}

// Marker is a :global or :local pseudo-class. Args is nil for the bare form.
type Marker struct {
	Scope Scope
	Args  List
}

func (*Compound) isToken()   {}
func (*Combinator) isToken() {}
func (*Marker) isToken()     {}

func (c *Combinator) String() string {
	switch c.Kind {
	case Child:
		return ">"
	case NextSibling:
		return "+"
	case SubsequentSibling:
		return "~"
	}
	return " "
}

func (s Simple) String() string {
	if s.Marker != nil {
		return s.Marker.String()
	}
	return s.Text
}

func (c *Compound) String() string {
	var b strings.Builder
	for _, part := range c.Parts {
		b.WriteString(part.String())
	}
	return b.String()
}

// HasMarker reports whether a :global(...) or :local(...) is chained inside c.
func (c *Compound) HasMarker() bool {
	for _, part := range c.Parts {
		if part.Marker != nil {
			return true
		}
	}
	return false
}

// Bare reports whether m has no parenthesized argument.
func (m *Marker) Bare() bool {
	return m.Args == nil
}

func (m *Marker) String() string {
	if m.Bare() {
		return ":" + m.Scope.String()
	}
	return ":" + m.Scope.String() + "(" + m.Args.String() + ")"
}

func (c Complex) String() string {
	var b strings.Builder
	for i, token := range c {
		if comb, ok := token.(*Combinator); ok {
			switch {
			case comb.Kind == Descendant:
				if i > 0 {
					b.WriteByte(' ')
				}
			case i == 0:
				b.WriteString(comb.String())
				b.WriteByte(' ')
			default:
				b.WriteByte(' ')
				b.WriteString(comb.String())
				b.WriteByte(' ')
			}
			continue
		}
		b.WriteString(token.String())
	}
	return b.String()
}

// Strings returns every complex selector of l serialized on its own.
func (l List) Strings() []string {
	out := make([]string, len(l))
	for i, c := range l {
		out[i] = c.String()
	}
	return out
}

func (l List) String() string {
	return strings.Join(l.Strings(), ", ")
}

// HasBareMarker reports whether a bare marker of the given scope appears
// anywhere in l, including inside marker arguments.
func (l List) HasBareMarker(scope Scope) bool {
	for _, c := range l {
		for _, token := range c {
			switch t := token.(type) {
			case *Marker:
				if t.Bare() && t.Scope == scope {
					return true
				}
				if t.Args.HasBareMarker(scope) {
					return true
				}
			case *Compound:
				for _, part := range t.Parts {
					if part.Marker != nil && part.Marker.Args.HasBareMarker(scope) {
						return true
					}
				}
			}
		}
	}
	return false
}

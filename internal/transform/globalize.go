package transform

import (
	"github.com/withastro/preprocess/internal/selector"
)

// Globalize rewrites every complex selector of list, resolving :global and
// :local markers. Compounds that end up in global scope are wrapped one by
// one in :global(...). Complex selectors that consist only of bare markers
// are dropped, so an empty result means the rule should be removed.
func Globalize(list selector.List, initial selector.Scope) selector.List {
	out := make(selector.List, 0, len(list))
	for _, complex := range list {
		if c := globalizeComplex(complex, initial); len(c) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// GlobalizeSelector parses input and returns the globalized selector text.
func GlobalizeSelector(input string, initial selector.Scope) (string, error) {
	list, err := selector.Parse(input)
	if err != nil {
		return "", err
	}
	return Globalize(list, initial).String(), nil
}

type emitter struct {
	tokens  selector.Complex
	pending *selector.Combinator
}

// combinator records c as the combinator preceding the next compound. When
// several combinators meet around a consumed marker an explicit one wins.
func (e *emitter) combinator(c *selector.Combinator) {
	if e.pending == nil || e.pending.Kind == selector.Descendant {
		e.pending = &selector.Combinator{Kind: c.Kind}
	}
}

func (e *emitter) emit(tokens ...selector.Token) {
	for _, token := range tokens {
		if c, ok := token.(*selector.Combinator); ok {
			e.combinator(c)
			continue
		}
		switch {
		case e.pending != nil && (len(e.tokens) > 0 || e.pending.Kind != selector.Descendant):
			e.tokens = append(e.tokens, e.pending)
		case e.pending == nil && len(e.tokens) > 0:
			e.tokens = append(e.tokens, &selector.Combinator{Kind: selector.Descendant})
		}
		e.pending = nil
		e.tokens = append(e.tokens, token)
	}
}

func globalizeComplex(complex selector.Complex, scope selector.Scope) selector.Complex {
	e := &emitter{}
	for _, token := range complex {
		switch t := token.(type) {
		case *selector.Combinator:
			e.combinator(t)
		case *selector.Marker:
			if t.Bare() {
				scope = t.Scope
				continue
			}
			e.emit(resolveMarker(t)...)
		case *selector.Compound:
			e.emit(globalizeCompound(t, scope))
		}
	}
	return e.tokens
}

// resolveMarker replaces :global(X) or :local(X) with X rewritten in the
// marker's scope. A :global argument holding a selector list is kept as
// written; a :local one becomes :is(...) over the rewritten list.
func resolveMarker(m *selector.Marker) []selector.Token {
	switch {
	case len(m.Args) == 1:
		return globalizeComplex(m.Args[0], m.Scope)
	case m.Scope == selector.Local:
		list := Globalize(m.Args, selector.Local)
		if len(list) == 0 {
			return nil
		}
		return []selector.Token{&selector.Compound{Parts: []selector.Simple{{Text: ":is(" + list.String() + ")"}}}}
	}
	return []selector.Token{m}
}

func globalizeCompound(c *selector.Compound, scope selector.Scope) selector.Token {
	if !c.HasMarker() {
		if scope == selector.Global {
			return wrapGlobal(c.Parts)
		}
		return c
	}

	var parts, run []selector.Simple
	flush := func() {
		if len(run) > 0 {
			m := wrapGlobal(run)
			parts = append(parts, selector.Simple{Text: m.String(), Marker: m})
			run = nil
		}
	}
	for _, part := range c.Parts {
		if part.Marker == nil {
			if scope == selector.Global {
				run = append(run, part)
			} else {
				parts = append(parts, part)
			}
			continue
		}
		flush()
		parts = append(parts, resolvePart(part)...)
	}
	flush()
	return &selector.Compound{Parts: parts}
}

// resolvePart inlines a chained :global(X) or :local(X). X must resolve to a
// single compound; anything else is left untouched.
func resolvePart(part selector.Simple) []selector.Simple {
	tokens := resolveMarker(part.Marker)
	if len(tokens) != 1 {
		return []selector.Simple{part}
	}
	switch t := tokens[0].(type) {
	case *selector.Compound:
		return t.Parts
	case *selector.Marker:
		return []selector.Simple{{Text: t.String(), Marker: t}}
	}
	return []selector.Simple{part}
}

func wrapGlobal(parts []selector.Simple) *selector.Marker {
	compound := &selector.Compound{Parts: append([]selector.Simple(nil), parts...)}
	return &selector.Marker{
		Scope: selector.Global,
		Args:  selector.List{selector.Complex{compound}},
	}
}

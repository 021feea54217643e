package stylesheet

import (
	"bytes"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"github.com/withastro/preprocess/internal/loc"
)

type builder struct {
	src   string
	sheet *Stylesheet
	stack []frame
}

type frame struct {
	node Node

	// body is the offset just past the opening brace of an at-rule whose
	// block the css parser passes through as loose tokens, otherwise -1.
	body int
}

// parsedAtRules are the at-rules whose blocks the css parser descends into.
// Vendor prefixes are stripped before the lookup.
var parsedAtRules = map[string]bool{
	"document":  true,
	"font-face": true,
	"keyframes": true,
	"media":     true,
	"page":      true,
	"supports":  true,
}

// ruleListAtRules hold rules but are not descended into by the css parser.
// Their blocks are parsed again as a stylesheet of their own.
var ruleListAtRules = map[string]bool{
	"container":      true,
	"layer":          true,
	"scope":          true,
	"starting-style": true,
}

// Parse reads src into a Stylesheet. Comments are dropped except top-level
// `/*! ... */` comments. Recoverable syntax errors are collected on
// Stylesheet.Problems; only read errors are returned.
func Parse(src string) (*Stylesheet, error) {
	input := parse.NewInputString(src)
	p := css.NewParser(input, false)
	b := &builder{src: src, sheet: &Stylesheet{}}

	var selectors []string
	selectorStart := -1
	lastErrorAt := -1
	for {
		start := input.Offset()
		gt, tt, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			err := p.Err()
			if errors.Is(err, io.EOF) {
				return b.sheet, nil
			}
			var parseErr *parse.Error
			if !errors.As(err, &parseErr) {
				return nil, errors.Wrap(err, "reading stylesheet")
			}
			if start == lastErrorAt && input.Offset() == start {
				return b.sheet, nil
			}
			lastErrorAt = start
			offset := b.skipSpace(start)
			text := strings.TrimSpace(string(data) + tokensText(p.Values()))
			b.sheet.Problems = append(b.sheet.Problems, &loc.ErrorWithRange{
				Code:  loc.WARNING_INVALID_CSS,
				Text:  parseErr.Message,
				Range: loc.Range{Loc: loc.Loc{Start: offset}, Len: len(text)},
			})
			if text != "" {
				b.add(&Raw{Text: text})
			}
		case css.CommentGrammar:
			if bytes.HasPrefix(data, []byte("/*!")) {
				b.add(&Comment{Text: string(data)})
			}
		case css.AtRuleGrammar:
			b.add(&AtRule{
				Name:    atRuleName(data),
				Prelude: tokensText(p.Values()),
				Range:   loc.Range{Loc: loc.Loc{Start: b.skipSpace(start)}, Len: len(data)},
			})
		case css.BeginAtRuleGrammar:
			at := &AtRule{
				Name:    atRuleName(data),
				Prelude: tokensText(p.Values()),
				Block:   true,
				Range:   loc.Range{Loc: loc.Loc{Start: b.skipSpace(start)}, Len: len(data)},
			}
			body := -1
			if !parsedAtRules[unprefixed(at.Name)] {
				body = input.Offset()
			}
			b.push(at, body)
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			end := input.Offset()
			if tt == css.RightBraceToken {
				end--
			}
			if err := b.pop(end); err != nil {
				return nil, err
			}
		case css.QualifiedRuleGrammar:
			if selectorStart < 0 {
				selectorStart = b.skipSpace(start)
			}
			selectors = append(selectors, tokensText(p.Values()))
		case css.BeginRulesetGrammar:
			if selectorStart < 0 {
				selectorStart = b.skipSpace(start)
			}
			rule := &Rule{Selectors: append(selectors, tokensText(p.Values()))}
			rule.Range = loc.Range{Loc: loc.Loc{Start: selectorStart}, Len: len(rule.SelectorText())}
			b.push(rule, -1)
			selectors = nil
			selectorStart = -1
		case css.DeclarationGrammar:
			b.add(&Declaration{Property: string(data), Value: tokensText(p.Values())})
		case css.CustomPropertyGrammar:
			b.add(&Declaration{Property: string(data), Value: tokensText(p.Values()), Custom: true})
		case css.TokenGrammar:
			if b.inBody() {
				continue
			}
			if text := strings.TrimSpace(string(data)); text != "" {
				b.add(&Raw{Text: text})
			}
		}
	}
}

func (b *builder) add(n Node) {
	if len(b.stack) == 0 {
		b.sheet.Nodes = append(b.sheet.Nodes, n)
		return
	}
	switch parent := b.stack[len(b.stack)-1].node.(type) {
	case *Rule:
		parent.Nodes = append(parent.Nodes, n)
	case *AtRule:
		parent.Nodes = append(parent.Nodes, n)
	}
}

func (b *builder) push(n Node, body int) {
	b.add(n)
	b.stack = append(b.stack, frame{node: n, body: body})
}

// pop closes the innermost block, which ends at offset end. Stray closing
// braces are ignored.
func (b *builder) pop(end int) error {
	if len(b.stack) == 0 {
		return nil
	}
	top := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	if top.body < 0 {
		return nil
	}
	return b.parseBody(top.node.(*AtRule), top.body, end)
}

func (b *builder) inBody() bool {
	return len(b.stack) > 0 && b.stack[len(b.stack)-1].body >= 0
}

// parseBody fills at with the block src[start:end]. Blocks of rule-list
// at-rules are parsed as a stylesheet. Other blocks are parsed the same way
// when they hold rules and nothing else, and are kept verbatim otherwise.
func (b *builder) parseBody(at *AtRule, start, end int) error {
	if end < start {
		end = start
	}
	body := b.src[start:end]
	nested, err := Parse(body)
	if err != nil {
		return err
	}
	if !ruleListAtRules[unprefixed(at.Name)] && (len(nested.Problems) > 0 || !hasRule(nested.Nodes)) {
		if text := strings.TrimSpace(body); text != "" {
			at.Nodes = append(at.Nodes, &Raw{Text: text})
		}
		return nil
	}
	nested.shift(start)
	at.Nodes = append(at.Nodes, nested.Nodes...)
	b.sheet.Problems = append(b.sheet.Problems, nested.Problems...)
	return nil
}

func hasRule(nodes []Node) bool {
	found := false
	Walk(nodes, func(n Node) bool {
		if _, ok := n.(*Rule); ok {
			found = true
		}
		return !found
	})
	return found
}

// shift moves every range of s by offset.
func (s *Stylesheet) shift(offset int) {
	Walk(s.Nodes, func(n Node) bool {
		switch n := n.(type) {
		case *Rule:
			n.Range.Loc.Start += offset
		case *AtRule:
			n.Range.Loc.Start += offset
		}
		return true
	})
	for _, problem := range s.Problems {
		problem.Range.Loc.Start += offset
	}
}

func (b *builder) skipSpace(offset int) int {
	for offset < len(b.src) && strings.IndexByte(" \t\n\r\f", b.src[offset]) >= 0 {
		offset++
	}
	return offset
}

func atRuleName(data []byte) string {
	return strings.TrimPrefix(string(data), "@")
}

// unprefixed strips a vendor prefix such as -webkit- from an at-rule name.
func unprefixed(name string) string {
	if strings.HasPrefix(name, "-") {
		if i := strings.IndexByte(name[1:], '-'); i >= 0 {
			return name[i+2:]
		}
	}
	return name
}

// tokensText joins tokens, collapsing every run of whitespace into a single
// space and trimming both ends. Comments are dropped.
func tokensText(tokens []css.Token) string {
	var sb strings.Builder
	space := false
	for _, t := range tokens {
		switch t.TokenType {
		case css.WhitespaceToken:
			space = true
			continue
		case css.CommentToken:
			continue
		}
		if space && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		space = false
		sb.Write(t.Data)
	}
	return strings.TrimSpace(sb.String())
}

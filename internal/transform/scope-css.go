package transform

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/withastro/preprocess/internal/handler"
	"github.com/withastro/preprocess/internal/loc"
	"github.com/withastro/preprocess/internal/printer"
	"github.com/withastro/preprocess/internal/selector"
	"github.com/withastro/preprocess/internal/stylesheet"
)

type Mode uint8

const (
	// GlobalRuleMode rewrites only the rules that use a bare :global.
	GlobalRuleMode Mode = iota
	// GlobalStyleMode makes the whole stylesheet global.
	GlobalStyleMode
)

const keyframesPrefix = "-global-"

var keyframesRE = regexp.MustCompile(`(?i)^(-\w+-)?keyframes$`)

// GlobalRule rewrites every rule whose selector list holds a bare :global
// marker, starting each complex selector in local scope. It reports whether
// any rule was a target.
func GlobalRule(sheet *stylesheet.Stylesheet, h *handler.Handler, opts TransformOptions) bool {
	w := &walker{h: h, opts: opts, initial: selector.Local}
	sheet.Nodes = w.rewrite(sheet.Nodes)
	return w.changed
}

// GlobalStyle makes every rule of sheet global and prefixes @keyframes
// names with -global-. Keyframe selectors are left alone.
func GlobalStyle(sheet *stylesheet.Stylesheet, h *handler.Handler, opts TransformOptions) bool {
	w := &walker{h: h, opts: opts, initial: selector.Global, globalStyle: true}
	sheet.Nodes = w.rewrite(sheet.Nodes)
	return w.changed
}

// TransformCSS runs the stylesheet transform for mode over src. In global
// rule mode a stylesheet without any target rule is returned unchanged.
func TransformCSS(src string, mode Mode, opts TransformOptions, h *handler.Handler) (string, error) {
	if mode == GlobalRuleMode && !mayHaveGlobal(src) {
		return src, nil
	}
	if r, nested := stylesheet.FindNesting(src); nested {
		h.AppendWarning(&loc.ErrorWithRange{
			Code:  loc.WARNING_NESTED_CSS,
			Text:  "Nested CSS rules are not supported",
			Hint:  "The stylesheet is left unchanged. Compile it with a lang that flattens nesting.",
			Range: r,
		})
		return src, nil
	}
	sheet, err := stylesheet.Parse(src)
	if err != nil {
		return src, errors.Wrap(err, "parsing stylesheet")
	}
	for _, problem := range sheet.Problems {
		h.AppendWarning(problem)
	}

	var changed bool
	if mode == GlobalStyleMode {
		changed = GlobalStyle(sheet, h, opts)
	} else {
		changed = GlobalRule(sheet, h, opts)
	}
	if opts.Strict && h.HasErrors() {
		return src, h.Err()
	}
	if !changed {
		return src, nil
	}
	return string(printer.PrintCSS(sheet).Output), nil
}

func mayHaveGlobal(src string) bool {
	return strings.Contains(strings.ToLower(src), ":global")
}

type walker struct {
	h           *handler.Handler
	opts        TransformOptions
	initial     selector.Scope
	globalStyle bool
	changed     bool
}

func (w *walker) rewrite(nodes []stylesheet.Node) []stylesheet.Node {
	out := make([]stylesheet.Node, 0, len(nodes))
	for _, n := range nodes {
		switch n := n.(type) {
		case *stylesheet.AtRule:
			if w.globalStyle && keyframesRE.MatchString(n.Name) {
				if n.Prelude != "" && !strings.HasPrefix(n.Prelude, keyframesPrefix) {
					n.Prelude = keyframesPrefix + n.Prelude
				}
				w.changed = true
				out = append(out, n)
				continue
			}
			n.Nodes = w.rewrite(n.Nodes)
		case *stylesheet.Rule:
			if !w.rewriteRule(n) {
				continue
			}
			n.Nodes = w.rewrite(n.Nodes)
		}
		out = append(out, n)
	}
	return out
}

// rewriteRule rewrites the selectors of rule in place and reports whether
// the rule should be kept.
func (w *walker) rewriteRule(rule *stylesheet.Rule) bool {
	text := rule.SelectorText()
	if !w.globalStyle && !mayHaveGlobal(text) {
		return true
	}
	list, err := selector.Parse(text)
	if err != nil {
		w.reportInvalidSelector(rule, text, err)
		return true
	}
	if !w.globalStyle && !list.HasBareMarker(selector.Global) {
		return true
	}
	w.changed = true
	list = Globalize(list, w.initial)
	if len(list) == 0 {
		w.h.AppendHint(&loc.ErrorWithRange{
			Code:  loc.HINT_EMPTY_RULE_REMOVED,
			Text:  fmt.Sprintf("Removed rule %q: it selects nothing once :global is resolved", text),
			Range: rule.Range,
		})
		return false
	}
	rule.Selectors = list.Strings()
	return true
}

func (w *walker) reportInvalidSelector(rule *stylesheet.Rule, text string, err error) {
	rangedErr := &loc.ErrorWithRange{
		Code:  loc.WARNING_INVALID_SELECTOR,
		Text:  "Could not resolve :global in selector",
		Hint:  "The rule is left unchanged.",
		Range: rule.Range,
		Err:   err,
	}
	if w.opts.Strict {
		rangedErr.Code = loc.ERROR_INVALID_SELECTOR
		rangedErr.Hint = ""
		w.h.AppendError(rangedErr)
		return
	}
	w.h.AppendWarning(rangedErr)
}

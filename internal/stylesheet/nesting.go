package stylesheet

import (
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"github.com/withastro/preprocess/internal/loc"
)

type blockKind uint8

const (
	ruleListBlock blockKind = iota
	declarationBlock
	opaqueBlock
)

// FindNesting reports the first block opened inside the declarations of a
// qualified rule, as in `a { .b { color: red } }`. The css parser does not
// understand nested rules, so such stylesheets cannot be rewritten safely.
func FindNesting(src string) (loc.Range, bool) {
	input := parse.NewInputString(src)
	l := css.NewLexer(input)

	stack := []blockKind{ruleListBlock}
	atRule := ""
	statementStart := -1
	for {
		start := input.Offset()
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			return loc.Range{}, false
		case css.WhitespaceToken, css.CommentToken:
			continue
		case css.LeftBraceToken:
			top := stack[len(stack)-1]
			if top == declarationBlock {
				if statementStart < 0 {
					statementStart = start
				}
				return loc.Range{Loc: loc.Loc{Start: statementStart}, Len: start + 1 - statementStart}, true
			}
			switch {
			case top == opaqueBlock:
				stack = append(stack, opaqueBlock)
			case atRule == "":
				stack = append(stack, declarationBlock)
			case parsedAtRules[atRule] && atRule != "font-face" && atRule != "page", ruleListAtRules[atRule]:
				stack = append(stack, ruleListBlock)
			default:
				stack = append(stack, opaqueBlock)
			}
			atRule, statementStart = "", -1
		case css.RightBraceToken:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
			atRule, statementStart = "", -1
		case css.SemicolonToken:
			atRule, statementStart = "", -1
		default:
			if statementStart < 0 {
				statementStart = start
				if tt == css.AtKeywordToken {
					atRule = unprefixed(strings.ToLower(atRuleName(data)))
				}
			}
		}
	}
}

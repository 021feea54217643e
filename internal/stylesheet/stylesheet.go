// Package stylesheet builds a small rule tree from the grammar events of
// github.com/tdewolff/parse/v2/css. It keeps just enough structure to find
// every qualified rule, wherever it is nested, and to print the sheet back.
package stylesheet

import (
	"strings"

	"github.com/withastro/preprocess/internal/loc"
)

type Node interface {
	isNode()
}

type Stylesheet struct {
	Nodes []Node

	// Problems holds the recoverable syntax errors met while parsing. The
	// offending tokens are kept as *Raw nodes.
	Problems []*loc.ErrorWithRange
}

// Rule is a qualified rule. Selectors holds the comma-separated parts of its
// prelude with whitespace collapsed.
type Rule struct {
	Selectors []string
	Range     loc.Range
	Nodes     []Node
}

// AtRule is an at-rule. Block is false for statement at-rules such as
// `@import "a.css";`.
type AtRule struct {
	Name    string
	Prelude string
	Block   bool
	Range   loc.Range
	Nodes   []Node
}

type Declaration struct {
	Property string
	Value    string
	Custom   bool
}

// Raw is text printed back as-is.
type Raw struct {
	Text string
}

// Comment is a `/*! ... */` comment, kept for license notices.
type Comment struct {
	Text string
}

func (*Rule) isNode()        {}
func (*AtRule) isNode()      {}
func (*Declaration) isNode() {}
func (*Raw) isNode()         {}
func (*Comment) isNode()     {}

// SelectorText joins the selectors of r the way they are printed.
func (r *Rule) SelectorText() string {
	return strings.Join(r.Selectors, ",")
}

// Walk calls fn for every node of nodes in document order, descending into
// rules and at-rules. When fn returns false the children of that node are
// skipped.
func Walk(nodes []Node, fn func(n Node) bool) {
	for _, n := range nodes {
		if !fn(n) {
			continue
		}
		switch n := n.(type) {
		case *Rule:
			Walk(n.Nodes, fn)
		case *AtRule:
			Walk(n.Nodes, fn)
		}
	}
}

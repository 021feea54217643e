package printer

import (
	"github.com/withastro/preprocess/internal/stylesheet"
)

// PrintCSS serializes sheet with whitespace minified:
// `sel,sel{prop:val;prop:val}` and `@name prelude{...}`.
func PrintCSS(sheet *stylesheet.Stylesheet) PrintResult {
	p := &printer{}
	p.printNodes(sheet.Nodes)
	return PrintResult{Output: p.output}
}

func (p *printer) printNodes(nodes []stylesheet.Node) {
	for i, n := range nodes {
		switch n := n.(type) {
		case *stylesheet.Rule:
			p.print(n.SelectorText())
			p.printBlock(n.Nodes)
		case *stylesheet.AtRule:
			p.printByte('@')
			p.print(n.Name)
			if n.Prelude != "" {
				p.printByte(' ')
				p.print(n.Prelude)
			}
			if n.Block {
				p.printBlock(n.Nodes)
			} else {
				p.printByte(';')
			}
		case *stylesheet.Declaration:
			p.print(n.Property)
			p.printByte(':')
			p.print(n.Value)
			if i < len(nodes)-1 {
				p.printByte(';')
			}
		case *stylesheet.Raw:
			p.print(n.Text)
		case *stylesheet.Comment:
			p.print(n.Text)
		}
	}
}

func (p *printer) printBlock(nodes []stylesheet.Node) {
	p.printByte('{')
	p.printNodes(nodes)
	p.printByte('}')
}

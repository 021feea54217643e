package printer

type PrintResult struct {
	Output []byte
}

type printer struct {
	output []byte
}

func (p *printer) print(text string) {
	p.output = append(p.output, text...)
}

func (p *printer) printByte(c byte) {
	p.output = append(p.output, c)
}

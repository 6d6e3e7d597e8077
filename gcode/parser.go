package gcode

import (
	"bufio"
	"io"
	"log"
	"strings"

	"github.com/mastercactapus/gplot/internal/diaglog"
	"github.com/mastercactapus/gplot/toolpath"
)

// Parser reads a G-code document line by line, carrying every attribute
// a line leaves unset forward from the previous line.
type Parser struct {
	br     *bufio.Reader
	interp *Interpreter
	log    *log.Logger

	line int
	last toolpath.State
}

func NewParser(r io.Reader, interp *Interpreter, l *log.Logger) *Parser {
	p := &Parser{
		interp: interp,
		log:    diaglog.Or(l),
		last:   toolpath.Seed(),
	}
	if br, ok := r.(*bufio.Reader); ok {
		p.br = br
	} else {
		p.br = bufio.NewReader(r)
	}
	return p
}

// Read returns the plotter state after the next line.
func (p *Parser) Read() (toolpath.State, error) {
	s, err := p.br.ReadString('\n')
	if err == io.EOF && s != "" {
		err = nil
	}
	if err != nil {
		return toolpath.State{}, err
	}
	p.line++

	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	s = p.stripComments(s)

	st := p.last
	st.Line = p.line
	for _, tok := range strings.Split(s, " ") {
		a, ok := p.interp.Attribute(tok, p.line)
		if !ok {
			continue
		}
		switch a.Kind {
		case AttrPen:
			st.Pen = int(a.Value)
		case AttrX:
			st.X = a.Value
		case AttrY:
			st.Y = a.Value
		}
	}
	p.last = st

	return st, nil
}

// stripComments removes every parenthesized comment from s, reporting each.
// An unterminated comment runs to the end of the line.
func (p *Parser) stripComments(s string) string {
	begin := strings.IndexByte(s, '(')
	if begin == -1 {
		return s
	}
	end := strings.IndexByte(s[begin:], ')')
	if end == -1 {
		p.log.Printf("WARNING line %5d: missing closing parenthesis on comment starting in position %d", p.line, begin+1)
		return s[:begin]
	}
	end += begin
	p.log.Printf("comment line %5d: %s", p.line, s[begin+1:end])
	return s[:begin] + " " + p.stripComments(s[end+1:])
}

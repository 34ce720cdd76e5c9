package jack

import (
	"fmt"
	"io"
	"strings"
)

// ParseListener observes a compilation. EnterRule and ExitRule bracket every
// grammar rule that has a node in the parse tree; Terminal reports each token
// as it is consumed.
type ParseListener interface {
	EnterRule(rule string)
	ExitRule(rule string)
	Terminal(token Token)
}

const treeIndent = "  "

// XMLTreeWriter renders the parse tree in the analyzer's XML format: one
// element per rule, one line per terminal, two spaces per level.
type XMLTreeWriter struct {
	output io.Writer
	depth  int
	err    error
}

func NewXMLTreeWriter(w io.Writer) *XMLTreeWriter {
	return &XMLTreeWriter{output: w}
}

func (x *XMLTreeWriter) line(text string) {
	if x.err != nil {
		return
	}
	_, x.err = io.WriteString(x.output, strings.Repeat(treeIndent, x.depth)+text+"\n")
}

func (x *XMLTreeWriter) EnterRule(rule string) {
	x.line("<" + rule + ">")
	x.depth++
}

func (x *XMLTreeWriter) ExitRule(rule string) {
	x.depth--
	x.line("</" + rule + ">")
}

func (x *XMLTreeWriter) Terminal(token Token) {
	x.line(tokenXML(token))
}

func (x *XMLTreeWriter) Err() error {
	return x.err
}

func tokenXML(token Token) string {
	return fmt.Sprintf("<%s> %s </%s>", token.tokenType, xmlEscaper.Replace(token.terminal), token.tokenType)
}

// Analyze parses the class read from r and writes its parse tree to w. The
// class is fully checked, so undeclared names are reported as they are by
// the compiler.
func Analyze(r io.Reader, w io.Writer, opts ...CompilerOption) error {
	tokenizer, err := NewTokenizer(r)
	if err != nil {
		return err
	}
	tree := NewXMLTreeWriter(w)
	opts = append(opts, WithListener(tree))
	if err := NewJackCompiler(tokenizer, NewVMWriter(io.Discard), opts...).Compile(); err != nil {
		return err
	}
	return tree.Err()
}

package jack

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

type TokenScanner interface {
	Token() Token
	Peek() (Token, error)
	Scan() bool
	Err() error
}

var binaryOperations = map[byte]VMOperation{
	'+': AddVMOperation,
	'-': SubVMOperation,
	'*': MulVMOperation,
	'/': DivVMOperation,
	'&': AndVMOperation,
	'|': OrVMOperation,
	'<': LtVMOperation,
	'>': GtVMOperation,
	'=': EqVMOperation,
}

var unaryOperations = map[byte]VMOperation{
	'-': NegVMOperation,
	'~': NotVMOperation,
}

type classContext struct {
	className      string
	subroutineName string
	subroutineKind KeywordType
}

// JackCompiler parses one class and emits its VM code in the same pass.
// Every compile method starts on the first token of its rule and leaves the
// first token after it current.
type JackCompiler struct {
	tokens  TokenScanner
	writer  *VMWriter
	symbols  *SymbolTable
	logger   *slog.Logger
	listener ParseListener

	context classContext
	token   Token
	atEnd   bool
}

type CompilerOption func(*JackCompiler)

func WithLogger(logger *slog.Logger) CompilerOption {
	return func(c *JackCompiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithListener reports the shape of the parse to l as it happens.
func WithListener(l ParseListener) CompilerOption {
	return func(c *JackCompiler) { c.listener = l }
}

func NewJackCompiler(tokens TokenScanner, writer *VMWriter, opts ...CompilerOption) *JackCompiler {
	c := &JackCompiler{
		tokens:  tokens,
		writer:  writer,
		symbols: NewSymbolTable(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CompileCode compiles the class read from r into writer.
func CompileCode(r io.Reader, writer *VMWriter, opts ...CompilerOption) error {
	tokenizer, err := NewTokenizer(r)
	if err != nil {
		return err
	}
	return NewJackCompiler(tokenizer, writer, opts...).Compile()
}

// CompileString compiles src and returns the VM code.
func CompileString(src string, opts ...CompilerOption) (string, error) {
	tokenizer, err := NewTokenizerString(src)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	writer := NewVMWriter(&out)
	err = NewJackCompiler(tokenizer, writer, opts...).Compile()
	return out.String(), err
}

// Compile compiles a whole class. The input must hold exactly one class.
func (c *JackCompiler) Compile() error {
	if err := c.advance(); err != nil {
		return err
	}
	if err := c.compileClass(); err != nil {
		if c.context.className != "" {
			return fmt.Errorf("class %s: %w", c.context.className, err)
		}
		return err
	}
	return c.writer.Err()
}

// ClassName is the name of the class being compiled, empty before its
// declaration was read.
func (c *JackCompiler) ClassName() string {
	return c.context.className
}

func (c *JackCompiler) trace(rule string) {
	c.logger.Debug("compiling "+rule, "class", c.context.className, "line", c.token.line, "token", c.token.terminal)
}

// enter traces rule and opens it for the listener. The returned function
// closes it.
func (c *JackCompiler) enter(rule string) func() {
	c.trace(rule)
	if c.listener == nil {
		return func() {}
	}
	c.listener.EnterRule(rule)
	return func() { c.listener.ExitRule(rule) }
}

func (c *JackCompiler) advance() error {
	if c.atEnd {
		return ErrStreamExhausted
	}
	if c.listener != nil && c.token.tokenType != InvalidToken {
		c.listener.Terminal(c.token)
	}
	if c.tokens.Scan() {
		c.token = c.tokens.Token()
		return nil
	}
	if err := c.tokens.Err(); err != nil {
		return err
	}
	c.token = Token{}
	c.atEnd = true
	return nil
}

// peek looks one token past the current one. End of input reads as the zero
// token so that callers fall through to a syntax error.
func (c *JackCompiler) peek() (Token, error) {
	if c.atEnd {
		return Token{}, nil
	}
	token, err := c.tokens.Peek()
	if errors.Is(err, ErrStreamExhausted) {
		return Token{}, nil
	}
	return token, err
}

func (c *JackCompiler) expectSymbol(symbol byte) error {
	if !c.token.isSymbol(symbol) {
		return &SyntaxError{Expected: strconv.Quote(string(symbol)), Found: c.token}
	}
	return c.advance()
}

func (c *JackCompiler) expectKeyword(expected ...KeywordType) (KeywordType, error) {
	if !c.token.isKeyword(expected...) {
		names := make([]string, len(expected))
		for i, kw := range expected {
			names[i] = strconv.Quote(string(kw))
		}
		return "", &SyntaxError{Expected: strings.Join(names, " or "), Found: c.token}
	}
	kw, _ := c.token.Keyword()
	return kw, c.advance()
}

func (c *JackCompiler) expectIdentifier(what string) (string, error) {
	name, ok := c.token.Identifier()
	if !ok {
		return "", &SyntaxError{Expected: what, Found: c.token}
	}
	return name, c.advance()
}

// enclosed consumes open, runs body and consumes close. An error from body
// is returned as is without looking for close.
func (c *JackCompiler) enclosed(open, close byte, body func() error) error {
	if err := c.expectSymbol(open); err != nil {
		return err
	}
	if err := body(); err != nil {
		return err
	}
	return c.expectSymbol(close)
}

func (c *JackCompiler) lookup(name string) (Symbol, error) {
	symbol, ok := c.symbols.Lookup(name)
	if !ok {
		return Symbol{}, &UndefinedIdentifierError{Name: name, Line: c.token.line}
	}
	return symbol, nil
}

func (c *JackCompiler) label(id int) string {
	return c.context.className + "_" + strconv.Itoa(id)
}

// class: 'class' className '{' classVarDec* subroutineDec* '}'
func (c *JackCompiler) compileClass() error {
	defer c.enter("class")()
	if _, err := c.expectKeyword(ClassKeyword); err != nil {
		return err
	}
	name, err := c.expectIdentifier("class name")
	if err != nil {
		return err
	}
	c.context.className = name

	err = c.enclosed('{', '}', func() error {
		for c.token.isKeyword(StaticKeyword, FieldKeyword) {
			if err := c.compileClassVarDec(); err != nil {
				return err
			}
		}
		for c.token.isKeyword(ConstructorKeyword, FunctionKeyword, MethodKeyword) {
			if err := c.compileSubroutineDec(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !c.atEnd {
		return &TrailingTokensError{Found: c.token}
	}
	return nil
}

// classVarDec: ('static' | 'field') type varName (',' varName)* ';'
func (c *JackCompiler) compileClassVarDec() error {
	defer c.enter("classVarDec")()
	kw, err := c.expectKeyword(StaticKeyword, FieldKeyword)
	if err != nil {
		return err
	}
	kind := FieldSymbol
	if kw == StaticKeyword {
		kind = StaticSymbol
	}
	return c.compileVarNames(kind)
}

// varDec: 'var' type varName (',' varName)* ';'
func (c *JackCompiler) compileVarDec() error {
	defer c.enter("varDec")()
	if _, err := c.expectKeyword(VarKeyword); err != nil {
		return err
	}
	return c.compileVarNames(VarSymbol)
}

// compileVarNames handles the shared tail of both declaration rules: one
// type followed by a comma separated list of names and a semicolon.
func (c *JackCompiler) compileVarNames(kind SymbolType) error {
	variableType, err := c.compileType()
	if err != nil {
		return err
	}
	for {
		if err := c.compileDefinition(variableType, kind); err != nil {
			return err
		}
		if !c.token.isSymbol(',') {
			break
		}
		if err := c.advance(); err != nil {
			return err
		}
	}
	return c.expectSymbol(';')
}

func (c *JackCompiler) compileDefinition(variableType string, kind SymbolType) error {
	line := c.token.line
	name, err := c.expectIdentifier("variable name")
	if err != nil {
		return err
	}
	if _, err := c.symbols.Define(name, variableType, kind); err != nil {
		return fmt.Errorf("line %d: %w", line, err)
	}
	return nil
}

// type: 'int' | 'char' | 'boolean' | className
func (c *JackCompiler) compileType() (string, error) {
	if c.token.isKeyword(IntKeyword, CharKeyword, BooleanKeyword) {
		kw, _ := c.token.Keyword()
		return string(kw), c.advance()
	}
	if name, ok := c.token.Identifier(); ok {
		return name, c.advance()
	}
	return "", &SyntaxError{Expected: "type", Found: c.token}
}

// subroutineDec: ('constructor' | 'function' | 'method') ('void' | type)
// subroutineName '(' parameterList ')' subroutineBody
func (c *JackCompiler) compileSubroutineDec() error {
	defer c.enter("subroutineDec")()
	c.symbols.StartSubroutine()
	kind, err := c.expectKeyword(ConstructorKeyword, FunctionKeyword, MethodKeyword)
	if err != nil {
		return err
	}
	if c.token.isKeyword(VoidKeyword) {
		err = c.advance()
	} else {
		_, err = c.compileType()
	}
	if err != nil {
		return err
	}
	name, err := c.expectIdentifier("subroutine name")
	if err != nil {
		return err
	}
	c.context.subroutineName = name
	c.context.subroutineKind = kind

	if kind == MethodKeyword {
		if _, err := c.symbols.Define(string(ThisKeyword), c.context.className, ArgumentSymbol); err != nil {
			return err
		}
	}
	if err := c.enclosed('(', ')', c.compileParameterList); err != nil {
		return err
	}
	return c.compileSubroutineBody()
}

// parameterList: ((type varName) (',' type varName)*)?
func (c *JackCompiler) compileParameterList() error {
	defer c.enter("parameterList")()
	if c.token.isSymbol(')') {
		return nil
	}
	for {
		variableType, err := c.compileType()
		if err != nil {
			return err
		}
		if err := c.compileDefinition(variableType, ArgumentSymbol); err != nil {
			return err
		}
		if !c.token.isSymbol(',') {
			return nil
		}
		if err := c.advance(); err != nil {
			return err
		}
	}
}

// subroutineBody: '{' varDec* statements '}'
func (c *JackCompiler) compileSubroutineBody() error {
	defer c.enter("subroutineBody")()
	return c.enclosed('{', '}', func() error {
		for c.token.isKeyword(VarKeyword) {
			if err := c.compileVarDec(); err != nil {
				return err
			}
		}
		c.writer.WriteFunction(c.context.className+"."+c.context.subroutineName, c.symbols.Count(VarSymbol))
		switch c.context.subroutineKind {
		case ConstructorKeyword:
			c.writer.WriteConstructorPrologue(c.symbols.Count(FieldSymbol))
		case MethodKeyword:
			c.writer.WriteMethodPrologue()
		}
		return c.compileStatements()
	})
}

// statements: statement*
func (c *JackCompiler) compileStatements() error {
	defer c.enter("statements")()
	for {
		kw, _ := c.token.Keyword()
		var err error
		switch kw {
		case LetKeyword:
			err = c.compileLet()
		case IfKeyword:
			err = c.compileIf()
		case WhileKeyword:
			err = c.compileWhile()
		case DoKeyword:
			err = c.compileDo()
		case ReturnKeyword:
			err = c.compileReturn()
		default:
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// let: 'let' varName ('[' expression ']')? '=' expression ';'
func (c *JackCompiler) compileLet() error {
	defer c.enter("letStatement")()
	if err := c.advance(); err != nil {
		return err
	}
	name, ok := c.token.Identifier()
	if !ok {
		return &SyntaxError{Expected: "variable name", Found: c.token}
	}
	symbol, err := c.lookup(name)
	if err != nil {
		return err
	}
	if err := c.advance(); err != nil {
		return err
	}

	// The element address is computed before the right hand side so that
	// nothing the expression does can disturb it.
	isArray := c.token.isSymbol('[')
	if isArray {
		c.writer.WritePush(symbol.Segment(), symbol.Index)
		if err := c.enclosed('[', ']', c.compileExpression); err != nil {
			return err
		}
		c.writer.WriteArithmetic(AddVMOperation)
	}
	if err := c.expectSymbol('='); err != nil {
		return err
	}
	if err := c.compileExpression(); err != nil {
		return err
	}
	if isArray {
		c.writer.WriteArrayWrite()
	} else {
		c.writer.WritePop(symbol.Segment(), symbol.Index)
	}
	return c.expectSymbol(';')
}

// if: 'if' '(' expression ')' '{' statements '}' ('else' '{' statements '}')?
func (c *JackCompiler) compileIf() error {
	defer c.enter("ifStatement")()
	if err := c.advance(); err != nil {
		return err
	}
	elseLabel := c.label(c.writer.NextIfLabel())
	endLabel := c.label(c.writer.NextGotoLabel())

	if err := c.enclosed('(', ')', c.compileExpression); err != nil {
		return err
	}
	c.writer.WriteArithmetic(NotVMOperation)
	c.writer.WriteIf(elseLabel)
	if err := c.enclosed('{', '}', c.compileStatements); err != nil {
		return err
	}
	c.writer.WriteGoto(endLabel)
	c.writer.WriteLabel(elseLabel)
	if c.token.isKeyword(ElseKeyword) {
		if err := c.advance(); err != nil {
			return err
		}
		if err := c.enclosed('{', '}', c.compileStatements); err != nil {
			return err
		}
	}
	c.writer.WriteLabel(endLabel)
	return nil
}

// while: 'while' '(' expression ')' '{' statements '}'
func (c *JackCompiler) compileWhile() error {
	defer c.enter("whileStatement")()
	if err := c.advance(); err != nil {
		return err
	}
	loopLabel := c.label(c.writer.NextGotoLabel())
	exitLabel := c.label(c.writer.NextIfLabel())

	c.writer.WriteLabel(loopLabel)
	if err := c.enclosed('(', ')', c.compileExpression); err != nil {
		return err
	}
	c.writer.WriteArithmetic(NotVMOperation)
	c.writer.WriteIf(exitLabel)
	if err := c.enclosed('{', '}', c.compileStatements); err != nil {
		return err
	}
	c.writer.WriteGoto(loopLabel)
	c.writer.WriteLabel(exitLabel)
	return nil
}

// do: 'do' subroutineCall ';'
func (c *JackCompiler) compileDo() error {
	defer c.enter("doStatement")()
	if err := c.advance(); err != nil {
		return err
	}
	if err := c.compileSubroutineCall(); err != nil {
		return err
	}
	c.writer.WriteDiscard()
	return c.expectSymbol(';')
}

// return: 'return' expression? ';'
func (c *JackCompiler) compileReturn() error {
	defer c.enter("returnStatement")()
	if err := c.advance(); err != nil {
		return err
	}
	if c.token.isSymbol(';') {
		c.writer.WritePush(ConstVMSegment, 0)
	} else if err := c.compileExpression(); err != nil {
		return err
	}
	if err := c.expectSymbol(';'); err != nil {
		return err
	}
	c.writer.WriteReturn()
	return nil
}

// expression: term (op term)*
//
// Operators apply strictly left to right, there is no precedence.
func (c *JackCompiler) compileExpression() error {
	defer c.enter("expression")()
	if err := c.compileTerm(); err != nil {
		return err
	}
	for {
		symbol, _ := c.token.Symbol()
		operation, ok := binaryOperations[symbol]
		if !ok {
			return nil
		}
		if err := c.advance(); err != nil {
			return err
		}
		if err := c.compileTerm(); err != nil {
			return err
		}
		c.writer.WriteArithmetic(operation)
	}
}

// term: integerConstant | stringConstant | keywordConstant | varName |
// varName '[' expression ']' | subroutineCall | '(' expression ')' | unaryOp term
func (c *JackCompiler) compileTerm() error {
	defer c.enter("term")()
	switch c.token.tokenType {
	case IntegerConstant:
		value, _ := c.token.IntVal()
		c.writer.WritePush(ConstVMSegment, value)
		return c.advance()

	case StringConstant:
		value, _ := c.token.StringVal()
		if err := checkStringConstant(value); err != nil {
			err.Line = c.token.line
			return err
		}
		c.writer.WriteStringConstant(value)
		return c.advance()

	case Keyword:
		kw, _ := c.token.Keyword()
		switch kw {
		case TrueKeyword:
			c.writer.WritePush(ConstVMSegment, 1)
			c.writer.WriteArithmetic(NegVMOperation)
		case FalseKeyword, NullKeyword:
			c.writer.WritePush(ConstVMSegment, 0)
		case ThisKeyword:
			c.writer.WritePush(PointerVMSegment, 0)
		default:
			return &SyntaxError{Expected: "term", Found: c.token}
		}
		return c.advance()

	case SymbolToken:
		symbol, _ := c.token.Symbol()
		if symbol == '(' {
			return c.enclosed('(', ')', c.compileExpression)
		}
		operation, ok := unaryOperations[symbol]
		if !ok {
			return &SyntaxError{Expected: "term", Found: c.token}
		}
		if err := c.advance(); err != nil {
			return err
		}
		if err := c.compileTerm(); err != nil {
			return err
		}
		c.writer.WriteArithmetic(operation)
		return nil

	case Identifier:
		next, err := c.peek()
		if err != nil {
			return err
		}
		// Whether a name is a variable or the start of a call cannot be
		// told before the token after it exists.
		if next.tokenType == InvalidToken {
			return &SyntaxError{Expected: `"[", "(", "." or an operator`, Found: next}
		}
		if next.isSymbol('(') || next.isSymbol('.') {
			return c.compileSubroutineCall()
		}
		return c.compileVariable()
	}
	return &SyntaxError{Expected: "term", Found: c.token}
}

// compileVariable pushes a variable or, when it is indexed, an array element.
func (c *JackCompiler) compileVariable() error {
	name, _ := c.token.Identifier()
	symbol, err := c.lookup(name)
	if err != nil {
		return err
	}
	if err := c.advance(); err != nil {
		return err
	}
	c.writer.WritePush(symbol.Segment(), symbol.Index)
	if !c.token.isSymbol('[') {
		return nil
	}
	if err := c.enclosed('[', ']', c.compileExpression); err != nil {
		return err
	}
	c.writer.WriteArithmetic(AddVMOperation)
	c.writer.WriteArrayRead()
	return nil
}

// subroutineCall: subroutineName '(' expressionList ')' |
// (className | varName) '.' subroutineName '(' expressionList ')'
//
// A call on a variable passes the variable as hidden argument 0, an
// undotted call passes the current object. A dotted call on a name that is
// not a variable is a function or constructor call on that class.
func (c *JackCompiler) compileSubroutineCall() error {
	c.trace("subroutineCall")
	line := c.token.line
	name, err := c.expectIdentifier("subroutine name")
	if err != nil {
		return err
	}

	var (
		target string
		hidden MachineWord
	)
	if c.token.isSymbol('.') {
		if err := c.advance(); err != nil {
			return err
		}
		subroutine, err := c.expectIdentifier("subroutine name")
		if err != nil {
			return err
		}
		if symbol, ok := c.symbols.Lookup(name); ok {
			if !symbol.IsObject() {
				return &InvalidCallTargetError{Receiver: name, Type: symbol.VariableType, Line: line}
			}
			c.writer.WritePush(symbol.Segment(), symbol.Index)
			target = symbol.VariableType + "." + subroutine
			hidden = 1
		} else {
			target = name + "." + subroutine
		}
	} else {
		c.writer.WritePush(PointerVMSegment, 0)
		target = c.context.className + "." + name
		hidden = 1
	}

	var nargs MachineWord
	err = c.enclosed('(', ')', func() (err error) {
		nargs, err = c.compileExpressionList()
		return err
	})
	if err != nil {
		return err
	}
	c.writer.WriteCall(target, nargs+hidden)
	return nil
}

// expressionList: (expression (',' expression)*)?
func (c *JackCompiler) compileExpressionList() (MachineWord, error) {
	defer c.enter("expressionList")()
	if c.token.isSymbol(')') {
		return 0, nil
	}
	var count MachineWord
	for {
		if err := c.compileExpression(); err != nil {
			return count, err
		}
		count++
		if !c.token.isSymbol(',') {
			return count, nil
		}
		if err := c.advance(); err != nil {
			return count, err
		}
	}
}

package jack

import (
	"fmt"
	"strconv"
)

// MachineWord is the width of every integer the Hack platform can hold.
type MachineWord int16

// MaxIntegerConstant is the largest literal the source language accepts.
const MaxIntegerConstant = 32767

type TokenType string

const (
	InvalidToken    TokenType = ""
	Keyword         TokenType = "keyword"
	SymbolToken     TokenType = "symbol"
	IntegerConstant TokenType = "integerConstant"
	StringConstant  TokenType = "stringConstant"
	Identifier      TokenType = "identifier"
)

type KeywordType string

const (
	ClassKeyword       KeywordType = "class"
	ConstructorKeyword KeywordType = "constructor"
	FunctionKeyword    KeywordType = "function"
	MethodKeyword      KeywordType = "method"
	FieldKeyword       KeywordType = "field"
	StaticKeyword      KeywordType = "static"
	VarKeyword         KeywordType = "var"
	IntKeyword         KeywordType = "int"
	CharKeyword        KeywordType = "char"
	BooleanKeyword     KeywordType = "boolean"
	VoidKeyword        KeywordType = "void"
	TrueKeyword        KeywordType = "true"
	FalseKeyword       KeywordType = "false"
	NullKeyword        KeywordType = "null"
	ThisKeyword        KeywordType = "this"
	LetKeyword         KeywordType = "let"
	DoKeyword          KeywordType = "do"
	IfKeyword          KeywordType = "if"
	ElseKeyword        KeywordType = "else"
	WhileKeyword       KeywordType = "while"
	ReturnKeyword      KeywordType = "return"
)

var keywords = map[string]KeywordType{}

func init() {
	for _, kw := range []KeywordType{
		ClassKeyword, ConstructorKeyword, FunctionKeyword, MethodKeyword,
		FieldKeyword, StaticKeyword, VarKeyword, IntKeyword, CharKeyword,
		BooleanKeyword, VoidKeyword, TrueKeyword, FalseKeyword, NullKeyword,
		ThisKeyword, LetKeyword, DoKeyword, IfKeyword, ElseKeyword,
		WhileKeyword, ReturnKeyword,
	} {
		keywords[string(kw)] = kw
	}
}

// symbols lists every single character punctuation symbol of the language.
const symbols = "{}()[].,;+-*/&|<>=~"

// Token is one classified lexeme. The zero value marks the end of input.
type Token struct {
	tokenType TokenType
	terminal  string
	line      int
}

func (t Token) Type() TokenType { return t.tokenType }

// Line is the 1-based source line the token started on.
func (t Token) Line() int { return t.line }

func (t Token) Keyword() (KeywordType, bool) {
	if t.tokenType != Keyword {
		return "", false
	}
	return KeywordType(t.terminal), true
}

func (t Token) Symbol() (byte, bool) {
	if t.tokenType != SymbolToken {
		return 0, false
	}
	return t.terminal[0], true
}

func (t Token) IntVal() (MachineWord, bool) {
	if t.tokenType != IntegerConstant {
		return 0, false
	}
	return asInt(t.terminal)
}

// StringVal returns the contents of a string constant without its quotes.
func (t Token) StringVal() (string, bool) {
	if t.tokenType != StringConstant {
		return "", false
	}
	return t.terminal, true
}

func (t Token) Identifier() (string, bool) {
	if t.tokenType != Identifier {
		return "", false
	}
	return t.terminal, true
}

func (t Token) isKeyword(kws ...KeywordType) bool {
	kw, ok := t.Keyword()
	if !ok {
		return false
	}
	for _, k := range kws {
		if kw == k {
			return true
		}
	}
	return false
}

func (t Token) isSymbol(s byte) bool {
	sym, ok := t.Symbol()
	return ok && sym == s
}

func (t Token) String() string {
	switch t.tokenType {
	case InvalidToken:
		return "<EOF>"
	case StringConstant:
		return strconv.Quote(t.terminal)
	default:
		return t.terminal
	}
}

func (t Token) GoString() string {
	return fmt.Sprintf("%s(%s)@%d", t.tokenType, t, t.line)
}

// checkStringConstant rejects constants String.new cannot allocate and
// characters outside the printable part of the Hack character set.
func checkStringConstant(constant string) *InvalidConstantError {
	for _, r := range constant {
		if r < ' ' || r > '~' {
			return &InvalidConstantError{Reason: fmt.Sprintf("character %q is outside the Jack character set", r)}
		}
	}
	if len(constant) > MaxIntegerConstant {
		return &InvalidConstantError{Reason: fmt.Sprintf("length %d exceeds %d", len(constant), MaxIntegerConstant)}
	}
	return nil
}

func asInt(terminal string) (MachineWord, bool) {
	word, err := strconv.Atoi(terminal)
	// < 0 as - is an operator
	if err != nil || word > MaxIntegerConstant || word < 0 {
		return 0, false
	}
	return MachineWord(word), true
}

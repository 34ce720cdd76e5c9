package jack

import (
	"errors"
	"fmt"
)

// ErrStreamExhausted is returned when a token is requested past the end of
// input. Reaching it from the compilation engine means a grammar rule asked
// for more than the rule can consume.
var ErrStreamExhausted = errors.New("token stream exhausted")

type UnknownLexemeError struct {
	Lexeme string
	Line   int
}

func (e *UnknownLexemeError) Error() string {
	return fmt.Sprintf("line %d: unknown token %q", e.Line, e.Lexeme)
}

type SyntaxError struct {
	Expected string
	Found    Token
}

func (e *SyntaxError) Error() string {
	if e.Found.tokenType == InvalidToken {
		return fmt.Sprintf("expected %s got end of input", e.Expected)
	}
	return fmt.Sprintf("line %d: expected %s got %s %q", e.Found.line, e.Expected, e.Found.tokenType, e.Found.terminal)
}

type UndefinedIdentifierError struct {
	Name string
	Line int
}

func (e *UndefinedIdentifierError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("no symbol with name %q declared", e.Name)
	}
	return fmt.Sprintf("line %d: no symbol with name %q declared", e.Line, e.Name)
}

type DuplicateDefinitionError struct {
	Name string
	Kind SymbolType
}

func (e *DuplicateDefinitionError) Error() string {
	return fmt.Sprintf("symbol %q already declared in %s scope", e.Name, scopeOf(e.Kind))
}

// InvalidCallTargetError reports a dotted call whose receiver is a variable
// of primitive type.
type InvalidCallTargetError struct {
	Receiver string
	Type     string
	Line     int
}

func (e *InvalidCallTargetError) Error() string {
	return fmt.Sprintf("line %d: cannot call a subroutine on %q of type %s", e.Line, e.Receiver, e.Type)
}

// InvalidConstantError reports a string constant that cannot be built at run
// time.
type InvalidConstantError struct {
	Line   int
	Reason string
}

func (e *InvalidConstantError) Error() string {
	return fmt.Sprintf("line %d: invalid string constant: %s", e.Line, e.Reason)
}

type UnclosedCommentError struct {
	Line int
}

func (e *UnclosedCommentError) Error() string {
	return fmt.Sprintf("line %d: unclosed comment", e.Line)
}

type TrailingTokensError struct {
	Found Token
}

func (e *TrailingTokensError) Error() string {
	return fmt.Sprintf("line %d: unexpected %q after end of class", e.Found.line, e.Found.terminal)
}

// IsIncomplete reports whether err was caused by input ending in the middle
// of a class or a comment, as opposed to input that is wrong.
func IsIncomplete(err error) bool {
	var syntaxErr *SyntaxError
	if errors.As(err, &syntaxErr) {
		return syntaxErr.Found.tokenType == InvalidToken
	}
	var commentErr *UnclosedCommentError
	return errors.As(err, &commentErr)
}

package jack

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

var (
	keywordRegex         = regexp.MustCompile(`^(class|constructor|function|method|field|static|var|int|char|boolean|void|true|false|null|this|let|do|if|else|while|return)$`)
	symbolRegex          = regexp.MustCompile(`^[\{\}\[\]\(\)\.\,\;\+\-\*\/\&\|\<\>\=\~]$`)
	integerConstantRegex = regexp.MustCompile(`^\d{1,5}$`)
	stringConstantRegex  = regexp.MustCompile(`^"[^"\n]*"$`)
	identifierRegex      = regexp.MustCompile(`^[a-zA-Z_]\w*$`)

	// String literals are matched first so that comment markers inside them
	// are kept. A lone "/*" only matches when no "*/" follows it.
	commentRegex = regexp.MustCompile(`"[^"\n]*"|(?s:/\*.*?\*/)|//[^\n]*|/\*`)
	lexemeRegex       = regexp.MustCompile(`"[^"\n]*"|[\{\}\[\]\(\)\.\,\;\+\-\*\/\&\|\<\>\=\~]|[^\s\{\}\[\]\(\)\.\,\;\+\-\*\/\&\|\<\>\=\~]+`)

	// Tried in order, the first match wins. Identifiers come last so that
	// keywords are never read as names.
	classifiers = []struct {
		regex     *regexp.Regexp
		tokenType TokenType
	}{
		{keywordRegex, Keyword},
		{symbolRegex, SymbolToken},
		{integerConstantRegex, IntegerConstant},
		{stringConstantRegex, StringConstant},
		{identifierRegex, Identifier},
	}
)

type lexeme struct {
	text string
	line int
}

// Tokenizer splits source text into lexemes up front and classifies each one
// when it is reached.
type Tokenizer struct {
	lexemes []lexeme
	next    int
	current Token
	err     error
}

func NewTokenizer(r io.Reader) (*Tokenizer, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	return NewTokenizerString(string(src))
}

func NewTokenizerString(src string) (*Tokenizer, error) {
	code, err := stripComments(src)
	if err != nil {
		return nil, err
	}
	return &Tokenizer{lexemes: splitLexemes(code)}, nil
}

// stripComments removes both comment forms. Block comments are replaced by
// the newlines they spanned so that line numbers stay accurate.
func stripComments(src string) (string, error) {
	var (
		b    strings.Builder
		last = 0
	)
	for _, match := range commentRegex.FindAllStringIndex(src, -1) {
		b.WriteString(src[last:match[0]])
		last = match[1]
		text := src[match[0]:match[1]]
		switch {
		case strings.HasPrefix(text, `"`):
			b.WriteString(text)
		case strings.HasPrefix(text, "//"):
		case text == "/*":
			return "", &UnclosedCommentError{Line: 1 + strings.Count(src[:match[0]], "\n")}
		default:
			b.WriteString(strings.Repeat("\n", strings.Count(text, "\n")))
		}
	}
	b.WriteString(src[last:])
	return b.String(), nil
}

func splitLexemes(src string) []lexeme {
	var (
		lexemes []lexeme
		line    = 1
		last    = 0
	)
	for _, match := range lexemeRegex.FindAllStringIndex(src, -1) {
		line += strings.Count(src[last:match[0]], "\n")
		last = match[0]
		lexemes = append(lexemes, lexeme{text: src[match[0]:match[1]], line: line})
	}
	return lexemes
}

func parseToken(l lexeme) (Token, error) {
	for _, c := range classifiers {
		if !c.regex.MatchString(l.text) {
			continue
		}
		token := Token{tokenType: c.tokenType, terminal: l.text, line: l.line}
		switch c.tokenType {
		case IntegerConstant:
			if _, ok := asInt(l.text); !ok {
				continue
			}
		case StringConstant:
			token.terminal = l.text[1 : len(l.text)-1]
		}
		return token, nil
	}
	return Token{}, &UnknownLexemeError{Lexeme: l.text, Line: l.line}
}

func (t *Tokenizer) HasMoreTokens() bool {
	return t.next < len(t.lexemes)
}

// Advance consumes the next lexeme and makes it the current token.
func (t *Tokenizer) Advance() (Token, error) {
	if !t.HasMoreTokens() {
		return Token{}, ErrStreamExhausted
	}
	token, err := parseToken(t.lexemes[t.next])
	if err != nil {
		return Token{}, err
	}
	t.next++
	t.current = token
	return token, nil
}

// Peek classifies the next lexeme without consuming it.
func (t *Tokenizer) Peek() (Token, error) {
	if !t.HasMoreTokens() {
		return Token{}, ErrStreamExhausted
	}
	return parseToken(t.lexemes[t.next])
}

// Scan advances in the style of bufio.Scanner. It returns false at the end of
// input or on the first classification error, which Err then reports.
func (t *Tokenizer) Scan() bool {
	if t.err != nil || !t.HasMoreTokens() {
		return false
	}
	if _, err := t.Advance(); err != nil {
		t.err = err
		return false
	}
	return true
}

func (t *Tokenizer) Token() Token {
	return t.current
}

func (t *Tokenizer) Err() error {
	return t.err
}

// Tokens drains r into a slice of tokens.
func Tokens(r io.Reader) ([]Token, error) {
	tokenizer, err := NewTokenizer(r)
	if err != nil {
		return nil, err
	}
	var tokens []Token
	for tokenizer.Scan() {
		tokens = append(tokens, tokenizer.Token())
	}
	return tokens, tokenizer.Err()
}

var xmlEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;", "&", "&amp;", `"`, "&quot;")

// WriteTokensXML renders tokens in the analyzer's <tokens> listing format.
func WriteTokensXML(w io.Writer, tokens []Token) error {
	var b strings.Builder
	b.WriteString("<tokens>\n")
	for _, token := range tokens {
		b.WriteString(tokenXML(token) + "\n")
	}
	b.WriteString("</tokens>\n")
	_, err := io.WriteString(w, b.String())
	return err
}

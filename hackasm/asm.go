package hackasm

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

const (
	firstVariableAddress = 16
	maxAddress           = 32767
	cInstructionPrefix   = 0b111 << 13
)

var symbolRegex = regexp.MustCompile(`^[A-Za-z_.$:][A-Za-z0-9_.$:]*$`)

type AsmError struct {
	Line int
	Msg  string
}

func (e *AsmError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

type parsedLine struct {
	lineNo int
	text   string
}

// Assembler translates Hack assembly in two passes: the first records label
// addresses, the second encodes instructions and allocates variables.
type Assembler struct {
	symbols      map[string]uint16
	nextVariable uint16
}

func NewAssembler() *Assembler {
	symbols := make(map[string]uint16, len(predefinedSymbols))
	for name, address := range predefinedSymbols {
		symbols[name] = address
	}
	return &Assembler{symbols: symbols, nextVariable: firstVariableAddress}
}

func Assemble(code string) ([]uint16, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) ([]uint16, error) {
	instructions, err := a.pass1(strings.Split(code, "\n"))
	if err != nil {
		return nil, err
	}
	return a.pass2(instructions)
}

// clean strips comments and every whitespace character.
func clean(raw string) string {
	if i := strings.Index(raw, "//"); i >= 0 {
		raw = raw[:i]
	}
	return strings.Join(strings.Fields(raw), "")
}

func (a *Assembler) pass1(lines []string) ([]parsedLine, error) {
	var instructions []parsedLine
	for i, raw := range lines {
		lineNo := i + 1
		text := clean(raw)
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, "(") {
			if !strings.HasSuffix(text, ")") {
				return nil, &AsmError{Line: lineNo, Msg: fmt.Sprintf("malformed label %q", text)}
			}
			label := text[1 : len(text)-1]
			if !symbolRegex.MatchString(label) {
				return nil, &AsmError{Line: lineNo, Msg: fmt.Sprintf("invalid label name %q", label)}
			}
			if _, exists := a.symbols[label]; exists {
				return nil, &AsmError{Line: lineNo, Msg: fmt.Sprintf("duplicate label %q", label)}
			}
			a.symbols[label] = uint16(len(instructions))
			continue
		}
		instructions = append(instructions, parsedLine{lineNo: lineNo, text: text})
	}
	return instructions, nil
}

func (a *Assembler) pass2(instructions []parsedLine) ([]uint16, error) {
	words := make([]uint16, 0, len(instructions))
	for _, p := range instructions {
		var (
			word uint16
			err  error
		)
		if strings.HasPrefix(p.text, "@") {
			word, err = a.encodeA(p.text[1:])
		} else {
			word, err = encodeC(p.text)
		}
		if err != nil {
			return nil, &AsmError{Line: p.lineNo, Msg: err.Error()}
		}
		words = append(words, word)
	}
	return words, nil
}

func (a *Assembler) encodeA(value string) (uint16, error) {
	if value == "" {
		return 0, fmt.Errorf("missing address")
	}
	if value[0] >= '0' && value[0] <= '9' {
		n, err := strconv.Atoi(value)
		if err != nil || n > maxAddress {
			return 0, fmt.Errorf("invalid constant %q", value)
		}
		return uint16(n), nil
	}
	if !symbolRegex.MatchString(value) {
		return 0, fmt.Errorf("invalid symbol %q", value)
	}
	address, ok := a.symbols[value]
	if !ok {
		if a.nextVariable > maxAddress {
			return 0, fmt.Errorf("out of memory for variable %q", value)
		}
		address = a.nextVariable
		a.symbols[value] = address
		a.nextVariable++
	}
	return address, nil
}

// encodeC encodes dest=comp;jump where dest and jump are optional.
func encodeC(text string) (uint16, error) {
	dest, rest := "", text
	if i := strings.Index(text, "="); i >= 0 {
		dest, rest = text[:i], text[i+1:]
	}
	comp, jump := rest, ""
	if i := strings.Index(rest, ";"); i >= 0 {
		comp, jump = rest[:i], rest[i+1:]
	}
	if alias, ok := computationAliases[comp]; ok {
		comp = alias
	}

	compBits, ok := computations[comp]
	if !ok {
		return 0, fmt.Errorf("invalid comp field %q", comp)
	}
	destBits, ok := destinations[dest]
	if !ok {
		return 0, fmt.Errorf("invalid dest field %q", dest)
	}
	jumpBits, ok := jumps[jump]
	if !ok {
		return 0, fmt.Errorf("invalid jump field %q", jump)
	}
	return cInstructionPrefix | compBits<<6 | destBits<<3 | jumpBits, nil
}

// WriteHack writes one 16 character binary word per line.
func WriteHack(w io.Writer, words []uint16) error {
	var b strings.Builder
	for _, word := range words {
		fmt.Fprintf(&b, "%016b\n", word)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

package hackasm

import (
	"errors"
	"strings"
	"testing"
)

func TestAssembleAdd(t *testing.T) {
	src := `// Computes R0 = 2 + 3
@2
D=A
@3
D = D + A   // spaces are ignored
@0
M=D
`
	words, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	var b strings.Builder
	if err := WriteHack(&b, words); err != nil {
		t.Fatalf("WriteHack: %v", err)
	}
	want := `0000000000000010
1110110000010000
0000000000000011
1110000010010000
0000000000000000
1110001100001000
`
	if b.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", b.String(), want)
	}
}

func TestAssembleSymbols(t *testing.T) {
	src := `@i
M=1
(LOOP)
@LOOP
0;JMP
@j
@i
@R15
@SCREEN
@KBD
(END)
@END
`
	words, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := []uint16{16, 0b1110111111001000, 2, 0b1110101010000111, 17, 16, 15, 16384, 24576, 9}
	if len(words) != len(want) {
		t.Fatalf("got %d words; want %d", len(words), len(want))
	}
	for i := range want {
		if words[i] != want[i] {
			t.Errorf("word %d = %016b; want %016b", i, words[i], want[i])
		}
	}
}

func TestEncodeC(t *testing.T) {
	tests := []struct {
		text string
		want uint16
	}{
		{"AM=M-1", 0b1111110010101000},
		{"D;JNE", 0b1110001100000101},
		{"M=D+M", 0b1111000010001000},
		{"M=M+D", 0b1111000010001000},
		{"AMD=!M;JLE", 0b1111110001111110},
	}
	for _, tc := range tests {
		got, err := encodeC(tc.text)
		if err != nil {
			t.Errorf("encodeC(%q): %v", tc.text, err)
			continue
		}
		if got != tc.want {
			t.Errorf("encodeC(%q) = %016b; want %016b", tc.text, got, tc.want)
		}
	}
}

func TestAssembleErrors(t *testing.T) {
	tests := []struct {
		src  string
		line int
	}{
		{"@1\nD=X", 2},
		{"Q=D", 1},
		{"D;JUMP", 1},
		{"@40000", 1},
		{"@1bad", 1},
		{"(A)\n(A)", 2},
		{"(BROKEN", 1},
	}
	for _, tc := range tests {
		_, err := Assemble(tc.src)
		var asmErr *AsmError
		if !errors.As(err, &asmErr) {
			t.Errorf("Assemble(%q): expected AsmError, got %v", tc.src, err)
			continue
		}
		if asmErr.Line != tc.line {
			t.Errorf("Assemble(%q): error on line %d; want %d", tc.src, asmErr.Line, tc.line)
		}
	}
}

package jack

import (
	"errors"
	"strings"
	"testing"
)

func TestVMWriterPrimitives(t *testing.T) {
	var b strings.Builder
	w := NewVMWriter(&b)
	w.WriteFunction("Main.main", 2)
	w.WritePush(LocalVMSegment, 1)
	w.WritePop(ThatVMSegment, 0)
	w.WriteArithmetic(AddVMOperation)
	w.WriteArithmetic(MulVMOperation)
	w.WriteArithmetic(DivVMOperation)
	w.WriteLabel("Main_0")
	w.WriteGoto("Main_0")
	w.WriteIf("Main_1")
	w.WriteCall("Output.printInt", 1)
	w.WriteReturn()

	want := `function Main.main 2
push local 1
pop that 0
add
call Math.multiply 2
call Math.divide 2
label Main_0
goto Main_0
if-goto Main_1
call Output.printInt 1
return
`
	if b.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", b.String(), want)
	}
}

func TestVMWriterIndent(t *testing.T) {
	var b strings.Builder
	w := NewVMWriter(&b, WithIndent("    "))
	w.WriteFunction("A.f", 0)
	w.WriteLabel("A_0")
	w.WriteReturn()
	want := "function A.f 0\nlabel A_0\n    return\n"
	if b.String() != want {
		t.Errorf("got %q; want %q", b.String(), want)
	}
}

func TestVMWriterComposites(t *testing.T) {
	tests := []struct {
		name  string
		write func(w *VMWriter)
		want  []string
	}{
		{"ConstructorPrologue", func(w *VMWriter) { w.WriteConstructorPrologue(3) },
			[]string{"push constant 3", "call Memory.alloc 1", "pop pointer 0"}},
		{"MethodPrologue", func(w *VMWriter) { w.WriteMethodPrologue() },
			[]string{"push argument 0", "pop pointer 0"}},
		{"ArrayRead", func(w *VMWriter) { w.WriteArrayRead() },
			[]string{"pop pointer 1", "push that 0"}},
		{"ArrayWrite", func(w *VMWriter) { w.WriteArrayWrite() },
			[]string{"pop temp 0", "pop pointer 1", "push temp 0", "pop that 0"}},
		{"StringConstant", func(w *VMWriter) { w.WriteStringConstant("Hi") },
			[]string{"push constant 2", "call String.new 1",
				"push constant 72", "call String.appendChar 2",
				"push constant 105", "call String.appendChar 2"}},
		{"EmptyString", func(w *VMWriter) { w.WriteStringConstant("") },
			[]string{"push constant 0", "call String.new 1"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var b strings.Builder
			tc.write(NewVMWriter(&b))
			got := strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n")
			if strings.Join(got, "|") != strings.Join(tc.want, "|") {
				t.Errorf("got %q; want %q", got, tc.want)
			}
		})
	}
}

func TestVMWriterLabelCounters(t *testing.T) {
	w := NewVMWriter(&strings.Builder{})
	seen := map[int]bool{}
	for i := 0; i < 50; i++ {
		for _, id := range []int{w.NextGotoLabel(), w.NextIfLabel()} {
			if seen[id] {
				t.Fatalf("label id %d handed out twice", id)
			}
			seen[id] = true
		}
	}
	if w.NextGotoLabel() != 100 || w.NextIfLabel() != 101 {
		t.Error("counters did not advance independently")
	}
}

type failingWriter struct{ writes int }

func (f *failingWriter) Write(p []byte) (int, error) {
	f.writes++
	return 0, errors.New("disk full")
}

func TestVMWriterStickyError(t *testing.T) {
	out := &failingWriter{}
	w := NewVMWriter(out)
	w.WriteReturn()
	w.WriteReturn()
	if out.writes != 1 {
		t.Errorf("writer kept writing after an error: %d writes", out.writes)
	}
	if err := w.Close(); err == nil || err.Error() != "disk full" {
		t.Errorf("Close() = %v; want disk full", err)
	}
}

package jack

import (
	"fmt"
	"io"
	"strconv"
)

type VMSegmentType string

const (
	InvalidVMSegmentType VMSegmentType = ""
	ConstVMSegment       VMSegmentType = "constant"
	ArgumentVMSegment    VMSegmentType = "argument"
	LocalVMSegment       VMSegmentType = "local"
	StaticVMSegment      VMSegmentType = "static"
	ThisVMSegment        VMSegmentType = "this"
	ThatVMSegment        VMSegmentType = "that"
	PointerVMSegment     VMSegmentType = "pointer"
	TempVMSegment        VMSegmentType = "temp"
)

type VMOperation string

const (
	InvalidVMOperation VMOperation = ""
	AddVMOperation     VMOperation = "add"
	SubVMOperation     VMOperation = "sub"
	NegVMOperation     VMOperation = "neg"
	EqVMOperation      VMOperation = "eq"
	GtVMOperation      VMOperation = "gt"
	LtVMOperation      VMOperation = "lt"
	AndVMOperation     VMOperation = "and"
	OrVMOperation      VMOperation = "or"
	NotVMOperation     VMOperation = "not"
	MulVMOperation     VMOperation = "mul"
	DivVMOperation     VMOperation = "div"
)

// Runtime library entry points the generated code links against.
const (
	allocFunction      = "Memory.alloc"
	stringNewFunction  = "String.new"
	appendCharFunction = "String.appendChar"
	multiplyFunction   = "Math.multiply"
	divideFunction     = "Math.divide"
)

// Label ids: goto labels take the even numbers, if labels the odd ones, so
// the two sequences never collide.
const (
	gotoLabelSeed = 0
	ifLabelSeed   = 1
	labelStep     = 2
)

type VMWriterOption func(*VMWriter)

// WithIndent indents every command except labels and function headers.
func WithIndent(indent string) VMWriterOption {
	return func(w *VMWriter) { w.indent = indent }
}

// VMWriter appends VM commands to an output stream in call order. The first
// write error is kept and every later write becomes a no-op.
type VMWriter struct {
	output    io.Writer
	indent    string
	gotoLabel int
	ifLabel   int
	err       error
}

func NewVMWriter(w io.Writer, opts ...VMWriterOption) *VMWriter {
	writer := &VMWriter{output: w, gotoLabel: gotoLabelSeed, ifLabel: ifLabelSeed}
	for _, opt := range opts {
		opt(writer)
	}
	return writer
}

func (w *VMWriter) NextGotoLabel() int {
	id := w.gotoLabel
	w.gotoLabel += labelStep
	return id
}

func (w *VMWriter) NextIfLabel() int {
	id := w.ifLabel
	w.ifLabel += labelStep
	return id
}

func (w *VMWriter) write(line string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.output, line+"\n")
}

func (w *VMWriter) WriteCommand(command string) {
	w.write(w.indent + command)
}

func (w *VMWriter) WritePush(segment VMSegmentType, index MachineWord) {
	w.WriteCommand(fmt.Sprintf("push %s %d", segment, index))
}

func (w *VMWriter) WritePop(segment VMSegmentType, index MachineWord) {
	w.WriteCommand(fmt.Sprintf("pop %s %d", segment, index))
}

func (w *VMWriter) WriteArithmetic(operation VMOperation) {
	switch operation {
	case DivVMOperation:
		w.WriteCall(divideFunction, 2)
	case MulVMOperation:
		w.WriteCall(multiplyFunction, 2)
	default:
		w.WriteCommand(string(operation))
	}
}

func (w *VMWriter) WriteLabel(label string) {
	w.write("label " + label)
}

func (w *VMWriter) WriteGoto(label string) {
	w.WriteCommand("goto " + label)
}

func (w *VMWriter) WriteIf(label string) {
	w.WriteCommand("if-goto " + label)
}

func (w *VMWriter) WriteCall(name string, nargs MachineWord) {
	w.WriteCommand("call " + name + " " + strconv.Itoa(int(nargs)))
}

func (w *VMWriter) WriteFunction(name string, nlocals MachineWord) {
	w.write("function " + name + " " + strconv.Itoa(int(nlocals)))
}

func (w *VMWriter) WriteReturn() {
	w.WriteCommand("return")
}

// WriteConstructorPrologue allocates nFields words and makes the new block
// the current object.
func (w *VMWriter) WriteConstructorPrologue(nFields MachineWord) {
	w.WritePush(ConstVMSegment, nFields)
	w.WriteCall(allocFunction, 1)
	w.WritePop(PointerVMSegment, 0)
}

// WriteMethodPrologue binds the receiver passed as argument 0.
func (w *VMWriter) WriteMethodPrologue() {
	w.WritePush(ArgumentVMSegment, 0)
	w.WritePop(PointerVMSegment, 0)
}

// WriteArrayRead replaces the element address on top of the stack with the
// element itself.
func (w *VMWriter) WriteArrayRead() {
	w.WritePop(PointerVMSegment, 1)
	w.WritePush(ThatVMSegment, 0)
}

// WriteArrayWrite stores the value on top of the stack at the element address
// beneath it. The value goes through temp 0 while that is repointed.
func (w *VMWriter) WriteArrayWrite() {
	w.WritePop(TempVMSegment, 0)
	w.WritePop(PointerVMSegment, 1)
	w.WritePush(TempVMSegment, 0)
	w.WritePop(ThatVMSegment, 0)
}

// WriteDiscard drops the value on top of the stack.
func (w *VMWriter) WriteDiscard() {
	w.WritePop(TempVMSegment, 0)
}

// WriteStringConstant builds a String object. String.appendChar returns the
// string, so the pointer stays on the stack between calls.
func (w *VMWriter) WriteStringConstant(constant string) {
	w.WritePush(ConstVMSegment, MachineWord(len(constant)))
	w.WriteCall(stringNewFunction, 1)
	for i := 0; i < len(constant); i++ {
		w.WritePush(ConstVMSegment, MachineWord(constant[i]))
		w.WriteCall(appendCharFunction, 2)
	}
}

func (w *VMWriter) Err() error {
	return w.err
}

// Close reports the first write error. It does not close the underlying
// writer, which belongs to the caller.
func (w *VMWriter) Close() error {
	return w.err
}

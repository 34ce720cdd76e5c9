package vmtranslator

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	tempBase      = 5
	tempSize      = 8
	stackBase     = 256
	addressReg    = "R13"
	frameReg      = "R14"
	returnAddrReg = "R15"
	initFunction  = "Sys.init"
)

var segmentRegisters = map[string]string{
	"local":    "LCL",
	"argument": "ARG",
	"this":     "THIS",
	"that":     "THAT",
}

var pointerRegisters = []string{"THIS", "THAT"}

var binaryOperations = map[string]string{
	"add": "M=D+M",
	"sub": "M=M-D",
	"and": "M=D&M",
	"or":  "M=D|M",
}

var unaryOperations = map[string]string{
	"neg": "M=-M",
	"not": "M=!M",
}

var comparisonJumps = map[string]string{
	"eq": "JEQ",
	"gt": "JGT",
	"lt": "JLT",
}

// CodeWriter lowers VM commands to Hack assembly. One writer is shared by
// all files of a program so that generated labels stay unique.
type CodeWriter struct {
	output          io.Writer
	fileName        string
	currentFunction string
	boolCounter     int
	returnCounter   int
	err             error
}

func NewCodeWriter(w io.Writer) *CodeWriter {
	return &CodeWriter{output: w}
}

// SetFileName names the file being translated. Static variables are
// qualified with it.
func (w *CodeWriter) SetFileName(name string) {
	w.fileName = name
	w.emit("// " + name + ".vm")
}

func (w *CodeWriter) emit(lines ...string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.output, strings.Join(lines, "\n")+"\n")
}

func (w *CodeWriter) pushD() {
	w.emit("@SP", "A=M", "M=D", "@SP", "M=M+1")
}

func (w *CodeWriter) popD() {
	w.emit("@SP", "AM=M-1", "D=M")
}

// WriteInit emits the bootstrap code: SP=256 followed by a call to Sys.init.
func (w *CodeWriter) WriteInit() {
	w.emit("// bootstrap", "@"+strconv.Itoa(stackBase), "D=A", "@SP", "M=D")
	w.WriteCall(initFunction, 0)
}

func (w *CodeWriter) WriteArithmetic(operation string) error {
	w.emit("// " + operation)
	if op, ok := binaryOperations[operation]; ok {
		w.popD()
		w.emit("A=A-1", op)
		return w.err
	}
	if op, ok := unaryOperations[operation]; ok {
		w.emit("@SP", "A=M-1", op)
		return w.err
	}
	jump, ok := comparisonJumps[operation]
	if !ok {
		return fmt.Errorf("unknown arithmetic command %q", operation)
	}
	trueLabel := fmt.Sprintf("TRUE.%d", w.boolCounter)
	endLabel := fmt.Sprintf("END.%d", w.boolCounter)
	w.boolCounter++
	w.popD()
	w.emit("A=A-1", "D=M-D",
		"@"+trueLabel, "D;"+jump,
		"@SP", "A=M-1", "M=0",
		"@"+endLabel, "0;JMP",
		"("+trueLabel+")",
		"@SP", "A=M-1", "M=-1",
		"("+endLabel+")")
	return w.err
}

func (w *CodeWriter) WritePush(segment string, index int) error {
	w.emit(fmt.Sprintf("// push %s %d", segment, index))
	switch segment {
	case "constant":
		if index > 32767 {
			return fmt.Errorf("constant %d does not fit in 15 bits", index)
		}
		w.emit("@"+strconv.Itoa(index), "D=A")
	case "local", "argument", "this", "that":
		w.emit("@"+segmentRegisters[segment], "D=M", "@"+strconv.Itoa(index), "A=D+A", "D=M")
	default:
		address, err := w.fixedAddress(segment, index)
		if err != nil {
			return err
		}
		w.emit("@"+address, "D=M")
	}
	w.pushD()
	return w.err
}

func (w *CodeWriter) WritePop(segment string, index int) error {
	w.emit(fmt.Sprintf("// pop %s %d", segment, index))
	switch segment {
	case "constant":
		return fmt.Errorf("cannot pop to the constant segment")
	case "local", "argument", "this", "that":
		w.emit("@"+segmentRegisters[segment], "D=M", "@"+strconv.Itoa(index), "D=D+A", "@"+addressReg, "M=D")
		w.popD()
		w.emit("@"+addressReg, "A=M", "M=D")
	default:
		address, err := w.fixedAddress(segment, index)
		if err != nil {
			return err
		}
		w.popD()
		w.emit("@"+address, "M=D")
	}
	return w.err
}

// fixedAddress resolves the segments whose cells are known at assembly time.
func (w *CodeWriter) fixedAddress(segment string, index int) (string, error) {
	switch segment {
	case "static":
		return w.fileName + "." + strconv.Itoa(index), nil
	case "temp":
		if index >= tempSize {
			return "", fmt.Errorf("temp index %d out of range", index)
		}
		return "R" + strconv.Itoa(tempBase+index), nil
	case "pointer":
		if index >= len(pointerRegisters) {
			return "", fmt.Errorf("pointer index %d out of range", index)
		}
		return pointerRegisters[index], nil
	}
	return "", fmt.Errorf("unknown segment %q", segment)
}

// scoped qualifies a label with the enclosing function.
func (w *CodeWriter) scoped(label string) string {
	if w.currentFunction == "" {
		return label
	}
	return w.currentFunction + "$" + label
}

func (w *CodeWriter) WriteLabel(label string) {
	w.emit("// label "+label, "("+w.scoped(label)+")")
}

func (w *CodeWriter) WriteGoto(label string) {
	w.emit("// goto "+label, "@"+w.scoped(label), "0;JMP")
}

func (w *CodeWriter) WriteIf(label string) {
	w.emit("// if-goto " + label)
	w.popD()
	w.emit("@"+w.scoped(label), "D;JNE")
}

func (w *CodeWriter) WriteFunction(name string, nLocals int) {
	w.currentFunction = name
	w.emit(fmt.Sprintf("// function %s %d", name, nLocals), "("+name+")")
	for i := 0; i < nLocals; i++ {
		w.emit("@SP", "A=M", "M=0", "@SP", "M=M+1")
	}
}

func (w *CodeWriter) WriteCall(name string, nArgs int) {
	returnLabel := fmt.Sprintf("%s$ret.%d", name, w.returnCounter)
	w.returnCounter++

	w.emit(fmt.Sprintf("// call %s %d", name, nArgs), "@"+returnLabel, "D=A")
	w.pushD()
	for _, reg := range []string{"LCL", "ARG", "THIS", "THAT"} {
		w.emit("@"+reg, "D=M")
		w.pushD()
	}
	w.emit("@SP", "D=M", "@5", "D=D-A", "@"+strconv.Itoa(nArgs), "D=D-A", "@ARG", "M=D",
		"@SP", "D=M", "@LCL", "M=D",
		"@"+name, "0;JMP",
		"("+returnLabel+")")
}

func (w *CodeWriter) WriteReturn() {
	w.emit("// return",
		"@LCL", "D=M", "@"+frameReg, "M=D",
		"@5", "A=D-A", "D=M", "@"+returnAddrReg, "M=D")
	w.popD()
	w.emit("@ARG", "A=M", "M=D",
		"@ARG", "D=M+1", "@SP", "M=D")
	for _, reg := range []string{"THAT", "THIS", "ARG", "LCL"} {
		w.emit("@"+frameReg, "AM=M-1", "D=M", "@"+reg, "M=D")
	}
	w.emit("@"+returnAddrReg, "A=M", "0;JMP")
}

// WriteCommand dispatches one parsed command.
func (w *CodeWriter) WriteCommand(c Command) error {
	var err error
	switch c.Type {
	case ArithmeticCommand:
		err = w.WriteArithmetic(c.Arg1)
	case PushCommand:
		err = w.WritePush(c.Arg1, c.Arg2)
	case PopCommand:
		err = w.WritePop(c.Arg1, c.Arg2)
	case LabelCommand:
		w.WriteLabel(c.Arg1)
	case GotoCommand:
		w.WriteGoto(c.Arg1)
	case IfCommand:
		w.WriteIf(c.Arg1)
	case FunctionCommand:
		w.WriteFunction(c.Arg1, c.Arg2)
	case CallCommand:
		w.WriteCall(c.Arg1, c.Arg2)
	case ReturnCommand:
		w.WriteReturn()
	default:
		err = fmt.Errorf("unknown command type %q", c.Type)
	}
	if err != nil {
		return &CommandError{Line: c.Line, Text: c.String(), Msg: err.Error()}
	}
	return w.err
}

func (w *CodeWriter) Err() error {
	return w.err
}

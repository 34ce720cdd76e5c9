package vmtranslator

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type CommandType string

const (
	ArithmeticCommand CommandType = "arithmetic"
	PushCommand       CommandType = "push"
	PopCommand        CommandType = "pop"
	LabelCommand      CommandType = "label"
	GotoCommand       CommandType = "goto"
	IfCommand         CommandType = "if-goto"
	FunctionCommand   CommandType = "function"
	CallCommand       CommandType = "call"
	ReturnCommand     CommandType = "return"
)

var arithmeticOperations = map[string]bool{
	"add": true, "sub": true, "neg": true,
	"eq": true, "gt": true, "lt": true,
	"and": true, "or": true, "not": true,
}

// commandTypes maps every keyword except the arithmetic ones to its command.
var commandTypes = map[string]CommandType{
	"push":     PushCommand,
	"pop":      PopCommand,
	"label":    LabelCommand,
	"goto":     GotoCommand,
	"if-goto":  IfCommand,
	"function": FunctionCommand,
	"call":     CallCommand,
	"return":   ReturnCommand,
}

var operandCount = map[CommandType]int{
	ArithmeticCommand: 0,
	PushCommand:       2,
	PopCommand:        2,
	LabelCommand:      1,
	GotoCommand:       1,
	IfCommand:         1,
	FunctionCommand:   2,
	CallCommand:       2,
	ReturnCommand:     0,
}

// Command is one parsed VM instruction. Arg1 holds the operation for
// arithmetic commands, the segment for push and pop and the name otherwise.
type Command struct {
	Type CommandType
	Arg1 string
	Arg2 int
	Line int
}

func (c Command) String() string {
	switch operandCount[c.Type] {
	case 2:
		return fmt.Sprintf("%s %s %d", c.Type, c.Arg1, c.Arg2)
	case 1:
		return fmt.Sprintf("%s %s", c.Type, c.Arg1)
	}
	if c.Type == ArithmeticCommand {
		return c.Arg1
	}
	return string(c.Type)
}

type CommandError struct {
	Line int
	Text string
	Msg  string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Msg, e.Text)
}

// Parse reads every command from r, skipping comments and blank lines.
func Parse(r io.Reader) ([]Command, error) {
	var commands []Command
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.Index(text, "//"); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		command, err := parseCommand(fields, line)
		if err != nil {
			return nil, err
		}
		commands = append(commands, command)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return commands, nil
}

func parseCommand(fields []string, line int) (Command, error) {
	text := strings.Join(fields, " ")
	keyword := fields[0]

	command := Command{Line: line}
	if arithmeticOperations[keyword] {
		command.Type = ArithmeticCommand
		command.Arg1 = keyword
	} else if commandType, ok := commandTypes[keyword]; ok {
		command.Type = commandType
	} else {
		return Command{}, &CommandError{Line: line, Text: text, Msg: "unknown command"}
	}

	want := operandCount[command.Type]
	if len(fields)-1 != want {
		return Command{}, &CommandError{Line: line, Text: text, Msg: fmt.Sprintf("expected %d operands", want)}
	}
	if want >= 1 && command.Type != ArithmeticCommand {
		command.Arg1 = fields[1]
	}
	if want == 2 {
		n, err := strconv.Atoi(fields[2])
		if err != nil || n < 0 {
			return Command{}, &CommandError{Line: line, Text: text, Msg: "operand must be a non-negative integer"}
		}
		command.Arg2 = n
	}
	return command, nil
}

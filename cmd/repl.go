package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/libklein/nand2tetris/jackc/jack"
)

const (
	historyFile = ".jackc_history"
	promptMain  = "jack> "
	promptCont  = "..... "
)

var vmColor = color.New(color.FgCyan).SprintFunc()

var ReplCmd = &cobra.Command{
	Use:   "repl",
	Short: "Compile classes typed at the prompt and print their VM code",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRepl(cmd.OutOrStdout())
	},
}

func runRepl(out io.Writer) error {
	fmt.Fprintln(out, "Type a Jack class; it is compiled once its closing brace is read. Ctrl-D exits.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		src, vm, ok, err := readClass(ln)
		if !ok {
			fmt.Fprintln(out)
			return err
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		if err != nil {
			printError(err)
			continue
		}
		fmt.Fprint(out, vmColor(vm))
	}
}

// readClass reads lines until the accumulated source compiles or fails for a
// reason other than running out of input. ok is false once input is closed.
func readClass(ln *liner.State) (src, vm string, ok bool, err error) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, promptErr := ln.Prompt(prompt)
		if errors.Is(promptErr, io.EOF) {
			return "", "", false, nil
		}
		if errors.Is(promptErr, liner.ErrPromptAborted) {
			return "", "", true, nil
		}
		if promptErr != nil {
			return "", "", false, promptErr
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src = b.String()
		if strings.TrimSpace(src) == "" {
			return src, "", true, nil
		}
		vm, err = jack.CompileString(src, jack.WithLogger(logger))
		if jack.IsIncomplete(err) {
			continue
		}
		return src, vm, true, err
	}
}

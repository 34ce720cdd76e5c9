package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	redBold = color.New(color.FgRed, color.Bold).SprintFunc()
	green   = color.New(color.FgGreen).SprintFunc()
	blue    = color.New(color.FgBlue).SprintFunc()
)

// printError prints err, one line per joined error.
func printError(err error) {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			printError(e)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "%s %v\n", redBold("error:"), err)
}

func printSaved(w io.Writer, from, to string) {
	fmt.Fprintf(w, "%s %s %s %s\n", green("ok"), from, blue("->"), to)
}

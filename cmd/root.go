package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	noColor bool
	logger  = slog.New(slog.NewTextHandler(io.Discard, nil))
)

var rootCmd = &cobra.Command{
	Use:   "jackc",
	Short: "Jack compiler, VM translator and Hack assembler",
	Long: `jackc lowers Jack programs to the Hack platform.

Commands:
  compile    Compile .jack classes into .vm code
  translate  Translate .vm code into Hack assembly
  assemble   Assemble a .asm file into .hack binary
  build      Run all three stages over a program directory
  tokens     Print the token stream of a .jack file as XML
  analyze    Write the parse tree of .jack files as XML
  repl       Compile classes typed at the prompt
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	},
}

// Execute runs the command tree and reports a failure on stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every compilation step to stderr")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(CompileCmd, TranslateCmd, AssembleCmd, BuildCmd, TokensCmd, AnalyzeCmd, ReplCmd)
}

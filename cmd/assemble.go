package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/libklein/nand2tetris/jackc/hackasm"
)

var assembleOutDir string

var AssembleCmd = &cobra.Command{
	Use:   "assemble [file.asm | dir]",
	Short: "Assemble Hack assembly into .hack binary",
	Long:  "assemble translates one .asm file, or every .asm file of a directory, into a .hack file of the same name.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, _, err := collectFiles(args[0], asmExt)
		if err != nil {
			return err
		}
		var errs []error
		for _, file := range files {
			output, err := assembleFile(file, assembleOutDir)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			printSaved(cmd.OutOrStdout(), file, output)
		}
		return errors.Join(errs...)
	},
}

func init() {
	AssembleCmd.Flags().StringVarP(&assembleOutDir, "out", "o", "", "directory for the generated .hack file")
}

func assembleFile(path, outDir string) (string, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("could not open file %q for reading: %w", path, err)
	}
	words, err := hackasm.Assemble(string(code))
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	outputPath := getOutputPath(path, outDir, hackExt)
	logger.Info("assembled", "file", path, "instructions", len(words), "output", outputPath)
	return outputPath, writeFile(outputPath, func(w io.Writer) error {
		return hackasm.WriteHack(w, words)
	})
}

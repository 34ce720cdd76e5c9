package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/libklein/nand2tetris/jackc/jack"
)

var analyzeOutDir string

var AnalyzeCmd = &cobra.Command{
	Use:   "analyze [file.jack | dir]",
	Short: "Write the parse tree of Jack classes as XML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, _, err := collectFiles(args[0], jackExt)
		if err != nil {
			return err
		}
		var errs []error
		for _, file := range files {
			output, err := analyzeFile(file, analyzeOutDir)
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
	AnalyzeCmd.Flags().StringVarP(&analyzeOutDir, "out", "o", "", "directory for the generated .xml files")
}

func analyzeFile(path, outDir string) (string, error) {
	input, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("could not open file %q for reading: %w", path, err)
	}
	defer input.Close()

	outputPath := getOutputPath(path, outDir, xmlExt)
	err = writeFile(outputPath, func(w io.Writer) error {
		return jack.Analyze(input, w, jack.WithLogger(logger.With("file", path)))
	})
	if err != nil {
		return outputPath, fmt.Errorf("%s: %w", path, err)
	}
	return outputPath, nil
}

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/libklein/nand2tetris/jackc/vmtranslator"
)

var translateOutDir string

var TranslateCmd = &cobra.Command{
	Use:   "translate [file.vm | dir]",
	Short: "Translate VM code into Hack assembly",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, err := translatePath(args[0], translateOutDir)
		if err != nil {
			return err
		}
		printSaved(cmd.OutOrStdout(), args[0], output)
		return nil
	},
}

func init() {
	TranslateCmd.Flags().StringVarP(&translateOutDir, "out", "o", "", "directory for the generated .asm file")
}

// translateOutputPath names the program after the file, or after the
// directory when translating a whole program.
func translateOutputPath(fileOrDir string, isDir bool, outDir string) string {
	if !isDir {
		return getOutputPath(fileOrDir, outDir, asmExt)
	}
	name := filepath.Base(filepath.Clean(fileOrDir)) + asmExt
	if outDir == "" {
		return filepath.Join(fileOrDir, name)
	}
	return filepath.Join(outDir, name)
}

// translatePath translates one .vm file or every .vm file of a directory into
// a single .asm file. The bootstrap is emitted when the program has Sys.vm.
func translatePath(fileOrDir, outDir string) (string, error) {
	files, isDir, err := collectFiles(fileOrDir, vmExt)
	if err != nil {
		return "", err
	}

	sources := make([]vmtranslator.Source, 0, len(files))
	bootstrap := false
	for _, file := range files {
		f, err := os.Open(file)
		if err != nil {
			return "", fmt.Errorf("could not open file %q for reading: %w", file, err)
		}
		defer f.Close()
		name := getClassName(file)
		if name == "Sys" {
			bootstrap = true
		}
		sources = append(sources, vmtranslator.Source{Name: name, Reader: f})
	}

	outputPath := translateOutputPath(fileOrDir, isDir, outDir)
	logger.Info("translating", "files", len(files), "bootstrap", bootstrap, "output", outputPath)
	if err := writeFile(outputPath, func(w io.Writer) error {
		return vmtranslator.Translate(sources, w, bootstrap)
	}); err != nil {
		return outputPath, err
	}
	return outputPath, nil
}

// writeFile creates path and hands it to fill, closing it afterwards.
func writeFile(path string, fill func(w io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	output, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("could not open output file %q for writing: %w", path, err)
	}
	defer func() {
		if closeErr := output.Close(); err == nil && closeErr != nil {
			err = closeErr
		}
	}()
	return fill(output)
}

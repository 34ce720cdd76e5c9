package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/libklein/nand2tetris/jackc/jack"
)

type compileOptions struct {
	outDir string
	jobs   int
	indent bool
}

var compileOpts compileOptions

var CompileCmd = &cobra.Command{
	Use:   "compile [file.jack | dir]",
	Short: "Compile Jack classes into VM code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, _, err := collectFiles(args[0], jackExt)
		if err != nil {
			return err
		}
		_, err = compileFiles(cmd.OutOrStdout(), files, compileOpts)
		return err
	},
}

func init() {
	addCompileFlags(CompileCmd, &compileOpts)
}

func addCompileFlags(cmd *cobra.Command, opts *compileOptions) {
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "", "directory for generated files (default: next to each source)")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", runtime.NumCPU(), "number of files compiled in parallel")
	cmd.Flags().BoolVar(&opts.indent, "indent", false, "indent VM commands below labels and function headers")
}

// compileFile compiles one class. The output file is created before
// compilation starts and is left behind, possibly partial, on failure.
func compileFile(path string, opts compileOptions) (outputPath string, err error) {
	input, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("could not open file %q for reading: %w", path, err)
	}
	defer input.Close()

	outputPath = getOutputPath(path, opts.outDir, vmExt)
	output, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return outputPath, fmt.Errorf("could not open output file %q for writing: %w", outputPath, err)
	}
	defer func() {
		if closeErr := output.Close(); err == nil && closeErr != nil {
			err = closeErr
		}
	}()

	var writerOpts []jack.VMWriterOption
	if opts.indent {
		writerOpts = append(writerOpts, jack.WithIndent("    "))
	}
	writer := jack.NewVMWriter(output, writerOpts...)
	fileLogger := logger.With("file", path)
	if err := jack.CompileCode(input, writer, jack.WithLogger(fileLogger)); err != nil {
		return outputPath, fmt.Errorf("%s: %w", path, err)
	}
	if err := writer.Close(); err != nil {
		return outputPath, fmt.Errorf("%s: %w", outputPath, err)
	}
	fileLogger.Info("compiled", "output", outputPath)
	return outputPath, nil
}

// compileFiles compiles every file independently. A failing file does not
// stop the others; all failures are joined into the returned error.
func compileFiles(out io.Writer, files []string, opts compileOptions) ([]string, error) {
	if opts.outDir != "" {
		if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
			return nil, err
		}
	}

	outputs := make([]string, len(files))
	errs := make([]error, len(files))

	var g errgroup.Group
	if opts.jobs > 0 {
		g.SetLimit(opts.jobs)
	}
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			outputs[i], errs[i] = compileFile(file, opts)
			return nil
		})
	}
	_ = g.Wait()

	for i, file := range files {
		if errs[i] == nil {
			printSaved(out, file, outputs[i])
		}
	}
	return outputs, errors.Join(errs...)
}

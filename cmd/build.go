package cmd

import (
	"github.com/spf13/cobra"
)

var buildOpts compileOptions

var BuildCmd = &cobra.Command{
	Use:   "build dir",
	Short: "Compile, translate and assemble a program directory",
	Long: `build compiles every .jack file of a directory next to its source,
translates the resulting .vm files into dir/<dir>.asm and assembles that
into dir/<dir>.hack.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		dir := args[0]

		files, _, err := collectFiles(dir, jackExt)
		if err != nil {
			return err
		}
		opts := buildOpts
		opts.outDir = ""
		if _, err := compileFiles(out, files, opts); err != nil {
			return err
		}

		asmPath, err := translatePath(dir, "")
		if err != nil {
			return err
		}
		printSaved(out, dir, asmPath)

		hackPath, err := assembleFile(asmPath, "")
		if err != nil {
			return err
		}
		printSaved(out, asmPath, hackPath)
		return nil
	},
}

func init() {
	BuildCmd.Flags().IntVarP(&buildOpts.jobs, "jobs", "j", 0, "number of files compiled in parallel (0: unlimited)")
	BuildCmd.Flags().BoolVar(&buildOpts.indent, "indent", false, "indent VM commands below labels and function headers")
}

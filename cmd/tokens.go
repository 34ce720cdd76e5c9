package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/libklein/nand2tetris/jackc/jack"
)

var TokensCmd = &cobra.Command{
	Use:   "tokens file.jack",
	Short: "Print the token stream of a Jack file as XML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("could not open file %q for reading: %w", args[0], err)
		}
		defer input.Close()

		tokens, err := jack.Tokens(input)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		return jack.WriteTokensXML(cmd.OutOrStdout(), tokens)
	},
}

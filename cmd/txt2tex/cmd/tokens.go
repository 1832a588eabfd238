package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	txt2tex "github.com/jmf-pobox/txt2tex-sub000"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens FILE",
	Short: "Dump the token stream of FILE",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file := args[0]
		src, err := os.ReadFile(file)
		if err != nil {
			printError("read", err)
			return err
		}
		toks, err := txt2tex.Tokenize(string(src))
		if err != nil {
			fmt.Fprintln(os.Stderr, txt2tex.WrapErrorWithName(err, file, string(src)))
			return err
		}
		for _, t := range toks {
			fmt.Println(t)
		}
		return nil
	},
}

func init() {
	tokensCmd.SilenceUsage = true
	tokensCmd.SilenceErrors = true
	rootCmd.AddCommand(tokensCmd)
}

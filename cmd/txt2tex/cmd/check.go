package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	txt2tex "github.com/jmf-pobox/txt2tex-sub000"
)

var checkTypes bool

var checkCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "Parse FILE and report the first error, if any",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			printError("config", err)
			return err
		}

		file := args[0]
		src, err := os.ReadFile(file)
		if err != nil {
			printError("read", err)
			return err
		}

		doc, err := txt2tex.Parse(string(src))
		if err != nil {
			fmt.Fprintln(os.Stderr, txt2tex.WrapErrorWithName(err, file, string(src)))
			return err
		}
		fmt.Printf("%s: ok (%d items)\n", file, len(doc.Items))

		if !checkTypes {
			return nil
		}

		// The external checker reads fuzz-mode LaTeX on stdin.
		tex := txt2tex.Render(doc, txt2tex.ModeFuzz)
		slog.Debug("typecheck", "checker", cfg.Checker, "bytes", len(tex))
		tc := exec.Command(cfg.Checker, "-")
		tc.Stdin = strings.NewReader(tex)
		tc.Stdout = os.Stdout
		tc.Stderr = os.Stderr
		if err := tc.Run(); err != nil {
			printError("typecheck", err)
			return err
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkTypes, "typecheck", false, "run the external type checker on the rendered output")
	checkCmd.SilenceUsage = true
	checkCmd.SilenceErrors = true
	rootCmd.AddCommand(checkCmd)
}

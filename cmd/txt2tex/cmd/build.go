package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	txt2tex "github.com/jmf-pobox/txt2tex-sub000"
)

var buildOut string

var buildCmd = &cobra.Command{
	Use:   "build FILE",
	Short: "Parse FILE and write its LaTeX rendering",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			printError("config", err)
			return err
		}
		mode, err := renderMode(cfg)
		if err != nil {
			printError("mode", err)
			return err
		}

		file := args[0]
		src, err := os.ReadFile(file)
		if err != nil {
			printError("read", err)
			return err
		}

		tex, err := txt2tex.Build(string(src), mode)
		if err != nil {
			fmt.Fprintln(os.Stderr, txt2tex.WrapErrorWithName(err, file, string(src)))
			return err
		}

		out := buildOut
		if out == "" {
			out = strings.TrimSuffix(file, ".txt") + ".tex"
		}
		if err := os.WriteFile(out, []byte(tex), 0o644); err != nil {
			printError("write", err)
			return err
		}
		slog.Debug("built", "input", file, "output", out, "bytes", len(tex))
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVarP(&buildOut, "output", "o", "", "output file (default: FILE with .tex suffix)")
	buildCmd.SilenceUsage = true
	buildCmd.SilenceErrors = true
	rootCmd.AddCommand(buildCmd)
}

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	txt2tex "github.com/jmf-pobox/txt2tex-sub000"
)

var (
	cfgFile  string
	verbose  bool
	modeFlag string
)

var rootCmd = &cobra.Command{
	Use:     "txt2tex",
	Short:   "Transpile informal mathematical notation to LaTeX",
	Version: txt2tex.Version,
	Long: `txt2tex reads discrete-mathematics working documents written in a
plain ASCII/Unicode notation and produces LaTeX.

Commands:
  build    parse a file and write its LaTeX rendering
  check    parse a file, optionally run the external type checker
  tokens   dump the token stream of a file
  repl     interactive expression loop`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./txt2tex.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&modeFlag, "mode", "m", "", "output mode: fuzz or plain")
}

// renderMode resolves the output mode from the flag, falling back to config.
func renderMode(cfg *Config) (txt2tex.Mode, error) {
	name := modeFlag
	if name == "" {
		name = cfg.Mode
	}
	switch name {
	case "", "fuzz":
		return txt2tex.ModeFuzz, nil
	case "plain":
		return txt2tex.ModePlain, nil
	}
	return 0, fmt.Errorf("unknown mode %q (want fuzz or plain)", name)
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
}

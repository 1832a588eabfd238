package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	txt2tex "github.com/jmf-pobox/txt2tex-sub000"
)

const (
	historyFile = ".txt2tex_history"
	promptMain  = "==> "
)

func red(s string) string  { return "\x1b[31m" + s + "\x1b[0m" }
func blue(s string) string { return "\x1b[94m" + s + "\x1b[0m" }

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive expression loop",
	Args:  cobra.NoArgs,
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
		runRepl(mode)
		return nil
	},
}

func init() {
	replCmd.SilenceUsage = true
	rootCmd.AddCommand(replCmd)
}

func runRepl(mode txt2tex.Mode) {
	fmt.Printf("txt2tex %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.\n", txt2tex.Version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	for {
		line, err := ln.Prompt(promptMain)
		if err != nil {
			fmt.Println()
			return
		}
		code := strings.TrimSpace(line)
		if code == "" {
			continue
		}
		if strings.HasPrefix(code, ":") {
			switch strings.ToLower(code) {
			case ":quit":
				return
			default:
				fmt.Println("unknown command. Type :quit to exit.")
			}
			continue
		}
		ln.AppendHistory(line)

		e, perr := txt2tex.ParseExpr(code)
		if perr != nil {
			fmt.Fprintln(os.Stderr, red(txt2tex.WrapErrorWithSource(perr, code).Error()))
			continue
		}
		fmt.Println(blue(txt2tex.RenderExpr(e, mode)))
	}
}

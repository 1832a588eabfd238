package main

import (
	"os"

	"github.com/jmf-pobox/txt2tex-sub000/cmd/txt2tex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

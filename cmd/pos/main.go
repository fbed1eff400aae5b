package main

import (
	"os"

	"github.com/ariefcatur/go-pos-tables/internal/logx"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		logx.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

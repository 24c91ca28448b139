package main

import (
	"os"

	"github.com/fatih/color"
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "❌ %s\n", describeError(err))
		os.Exit(1)
	}
}

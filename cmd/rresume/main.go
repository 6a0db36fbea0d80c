// Package main is the entry point for the rresume CLI.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/jasonyy2018/rresume/cmd/rresume/commands"
)

func main() {
	_ = godotenv.Load()

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"

	"github.com/vineeth3458/Medical-assistance-using-OCR/cmd/medocr/cmd"
)

func main() {
	// A .env file is a convenience for local runs; absence is fine.
	_ = godotenv.Load()

	if err := fang.Execute(context.Background(), cmd.GetRootCommand()); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"nlquery-go/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

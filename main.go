package main

import (
	"os"

	"qcr/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

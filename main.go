package main

import (
	"os"

	"earnings-ledger/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

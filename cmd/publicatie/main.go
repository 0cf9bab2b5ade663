package main

import (
	"os"

	"github.com/provincie-forge/publicatie/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}

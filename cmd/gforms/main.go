package main

import (
	"os"

	"github.com/Al3jandr032/gforms-go/internal/cmd"
)

func main() {
	if err := cmd.Execute(os.Args[1:]); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}

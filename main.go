package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/tensorstat/tensorstat/cmd"
)

func main() {
	if err := cmd.NewCLI().ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, cmd.ErrExitFailure) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

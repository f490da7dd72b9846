package main

import (
	"context"
	"fmt"
	"os"

	"stationers/internal/cli"

	_ "stationers/docs"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

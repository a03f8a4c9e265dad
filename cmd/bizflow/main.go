package main

import (
	"fmt"
	"os"

	"github.com/existflow/bizflow/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cli.ErrorKind(err), err)
		os.Exit(1)
	}
}

// Command dexhub seeds and serves the creature catalog.
package main

import (
	"context"
	"os"

	"github.com/mesh-intelligence/dexhub/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:]))
}

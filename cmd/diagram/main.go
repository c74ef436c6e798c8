// Command diagram prints the investment workflow as mermaid and renders it
// to images/investment_graph.png.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/dyike/hedgehog/config"
	"github.com/dyike/hedgehog/internal/cli"
)

func main() {
	out := flag.String("out", "", "output image path")
	flag.Parse()

	cfg := config.DefaultConfig()
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := cli.RunDiagram(ctx, cfg, *out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package main

import "github.com/dyike/hedgehog/internal/cli"

func main() {
	cli.Run()
}

package main

import "github.com/pfrederiksen/parole-stats/internal/cli"

func main() {
	cli.Execute()
}

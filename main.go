// Package main is the entry point for the nhlmetrics CLI tool, which imports
// per-game NHL statistics and explores their distributions.
package main

import "github.com/pable/go-nhl-metrics/cmd"

func main() {
	cmd.Execute()
}

// Package main is the entry point for the crmetrics CLI tool, which ingests
// Clash Royale battle logs and computes player behavioral features.
package main

import "github.com/royalelab/crmetrics/cmd"

func main() {
	cmd.Execute()
}

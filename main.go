// Package main is the entry point for the csmatchstats CLI tool, which decodes
// CS2 demo files and derives match, team and player statistics from them.
package main

import "github.com/pable/go-cs-matchstats/cmd"

func main() {
	cmd.Execute()
}

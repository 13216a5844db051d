package main

import "github.com/fleetsync/fleetsync/pkg/cliout"

// Color helpers — delegate to pkg/cliout, the way cmd/newtron delegates to
// pkg/cli.
func green(s string) string  { return cliout.Green(s) }
func yellow(s string) string { return cliout.Yellow(s) }
func red(s string) string    { return cliout.Red(s) }
func bold(s string) string   { return cliout.Bold(s) }

package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

// Colour codes are blanked when stdout is not a terminal, e.g. when
// piped into a script or log file.
var (
	reset  = "\033[0m"
	bold   = "\033[1m"
	green  = "\033[32m"
	yellow = "\033[33m"
	red    = "\033[31m"
	cyan   = "\033[36m"
)

func init() {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		reset, bold, green, yellow, red, cyan = "", "", "", "", "", ""
	}
}

func cliInfo(msg string)    { fmt.Printf("%s%s[*]%s %s\n", cyan, bold, reset, msg) }
func cliSuccess(msg string) { fmt.Printf("%s%s[+]%s %s\n", green, bold, reset, msg) }
func cliWarn(msg string)    { fmt.Printf("%s%s[!]%s %s\n", yellow, bold, reset, msg) }
func cliError(msg string)   { fmt.Printf("%s%s[x]%s %s\n", red, bold, reset, msg) }

package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// writeJSON prints v as two-space indented JSON on stdout. Nil slices are
// the caller's concern; encode them as [] before calling when needed.
func writeJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}

func yesNo(ok bool) string {
	if !ok {
		return "no"
	}
	return "yes"
}

// shouldColorize reports whether out is a terminal that accepts ANSI color.
// NO_COLOR disables color regardless of the terminal.
func shouldColorize(out io.Writer) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	f, isFile := out.(*os.File)
	if !isFile {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

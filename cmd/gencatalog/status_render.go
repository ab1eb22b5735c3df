package main

import (
	"fmt"
	"io"
	"strings"

	"gencatalog/internal/preflight"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

var statusStyles = map[statusKind]struct {
	label string
	color string
}{
	statusInfo:  {"INFO", "\x1b[34m"},
	statusOK:    {"OK", "\x1b[32m"},
	statusWarn:  {"WARN", "\x1b[33m"},
	statusError: {"ERROR", "\x1b[31m"},
}

const (
	ansiReset        = "\x1b[0m"
	statusLabelWidth = 20
)

// statusLine is one row of the status report.
type statusLine struct {
	Label   string
	Kind    statusKind
	Message string
}

func checkLine(result preflight.Result) statusLine {
	kind := statusError
	if result.Passed {
		kind = statusOK
	}
	return statusLine{Label: result.Name, Kind: kind, Message: result.Detail}
}

func (l statusLine) render(colorize bool) string {
	style := statusStyles[l.Kind]
	status := "[" + style.label + "]"
	if l.Message != "" {
		status += " " + l.Message
	}
	line := fmt.Sprintf("  %-*s %s", statusLabelWidth, l.Label+":", status)
	if colorize {
		return style.color + line + ansiReset
	}
	return line
}

// writeStatusSection prints a titled block of status lines.
func writeStatusSection(out io.Writer, title string, lines []statusLine, colorize bool) {
	heading := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(heading))
	if colorize {
		blue := statusStyles[statusInfo].color
		heading, rule = blue+heading+ansiReset, blue+rule+ansiReset
	}
	fmt.Fprintln(out, heading)
	fmt.Fprintln(out, rule)
	for _, line := range lines {
		fmt.Fprintln(out, line.render(colorize))
	}
}

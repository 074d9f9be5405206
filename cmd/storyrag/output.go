package main

import (
	"fmt"
	"os"
)

// ANSI escape sequences for terminal status lines. All status output goes
// to stderr so piped stdout stays clean for the MCP transport.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

// printMarked prints a message prefixed with a colored marker glyph.
func printMarked(color, mark, format string, args ...any) {
	fmt.Fprintln(os.Stderr, colorize(color, mark+fmt.Sprintf(format, args...)))
}

func printSuccess(format string, args ...any) {
	printMarked(colorGreen, "✓ ", format, args...)
}

func printError(format string, args ...any) {
	printMarked(colorRed, "✗ ", format, args...)
}

func printWarning(format string, args ...any) {
	printMarked(colorYellow, "⚠ ", format, args...)
}

func printStep(format string, args ...any) {
	printMarked(colorCyan, "→ ", format, args...)
}

// printStatus prints an indented "label: value" line with the label in bold.
func printStatus(label, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "  %s %s\n",
		colorize(colorBold, label+":"), fmt.Sprintf(format, args...))
}

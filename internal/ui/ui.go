package ui

// Basic ANSI color codes used by the package loggers.
// Rendering code should use the lipgloss styles from styles.go instead.
const (
	Reset = "\033[0m"
	// LegacyBold is the raw ANSI code for bold text
	LegacyBold = "\033[1m"
	FgCyan     = "\033[36m"
	FgGreen    = "\033[32m"
	FgMagenta  = "\033[35m"
	FgYellow   = "\033[33m"
	FgRed      = "\033[31m"
)

var noColor bool

// Init configures raw ANSI output. With plain set, Color returns its input
// unchanged (used for non-terminal output and in tests).
func Init(plain bool) { noColor = plain }

// Color wraps a string with the given ANSI code.
func Color(s string, code string) string {
	if noColor || code == "" {
		return s
	}
	return code + s + Reset
}

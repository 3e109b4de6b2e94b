package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/idlab-discover/agropredict-cli/internal/ui"
)

// Logger is a tiny opt-in logger used across internal packages.
// When Writer is nil, logging is disabled.
//
// The output format is:
//
//	<ColoredPrefix> <Key>=<subject> <formattedMessage>\n
//
// where Key defaults to "model" and <subject> is trimmed and defaults to
// "(unknown)".
type Logger struct {
	Writer io.Writer

	PrefixText  string
	PrefixColor string

	// Key names the subject field, e.g. "model" or "crop".
	Key string

	// OmitSubject drops the key=subject field entirely.
	OmitSubject bool
}

func (l *Logger) SetWriter(w io.Writer) { l.Writer = w }

func (l *Logger) Enabled() bool { return l != nil && l.Writer != nil }

func (l *Logger) Logf(subject string, format string, args ...any) {
	if l == nil || l.Writer == nil {
		return
	}
	prefix := l.PrefixText
	if prefix == "" {
		prefix = "Log:"
	}
	if l.PrefixColor != "" {
		prefix = ui.Color(prefix, l.PrefixColor)
	}
	msg := fmt.Sprintf(format, args...)
	if l.OmitSubject {
		fmt.Fprintf(l.Writer, "%s %s\n", prefix, msg)
		return
	}

	key := l.Key
	if key == "" {
		key = "model"
	}
	s := strings.TrimSpace(subject)
	if s == "" {
		s = "(unknown)"
	}
	fmt.Fprintf(l.Writer, "%s %s=%s %s\n", prefix, key, s, msg)
}

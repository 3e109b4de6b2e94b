package advisor

import (
	"io"

	"github.com/idlab-discover/agropredict-cli/internal/logging"
	"github.com/idlab-discover/agropredict-cli/internal/ui"
)

var logger = &logging.Logger{PrefixText: "Advisor:", PrefixColor: ui.FgMagenta}

// SetLogger sets an optional destination for advisor logs.
func SetLogger(w io.Writer) { logger.SetWriter(w) }

func logf(model string, format string, args ...any) {
	logger.Logf(model, format, args...)
}

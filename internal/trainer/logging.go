package trainer

import (
	"io"

	"github.com/idlab-discover/agropredict-cli/internal/logging"
	"github.com/idlab-discover/agropredict-cli/internal/ui"
)

var logger = &logging.Logger{PrefixText: "Trainer:", PrefixColor: ui.FgCyan}

// SetLogger sets an optional destination for training logs.
func SetLogger(w io.Writer) { logger.SetWriter(w) }

func logf(model string, format string, args ...any) {
	logger.Logf(model, format, args...)
}

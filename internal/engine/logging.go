package engine

import (
	"io"

	"github.com/idlab-discover/agropredict-cli/internal/logging"
	"github.com/idlab-discover/agropredict-cli/internal/ui"
)

var logger = &logging.Logger{PrefixText: "Engine:", PrefixColor: ui.FgGreen, Key: "crop"}

// SetLogger sets an optional destination for inference logs.
func SetLogger(w io.Writer) { logger.SetWriter(w) }

func logf(crop string, format string, args ...any) {
	logger.Logf(crop, format, args...)
}

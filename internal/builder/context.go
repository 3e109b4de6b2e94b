package builder

import (
	"github.com/idlab-discover/agropredict-cli/internal/dataset"
	"github.com/idlab-discover/agropredict-cli/internal/trainer"
)

// BuildContext carries the dataset and the benchmark the BOM describes.
type BuildContext struct {
	Dataset *dataset.Dataset
	Result  *trainer.Result
}

type Options struct {
	// Name of the application component in bom.metadata.
	Name string
	// IncludeImportances attaches forest feature importances as properties.
	IncludeImportances bool
	ToolName           string
	ToolVersion        string
}

func DefaultOptions() Options {
	return Options{
		Name:               "agropredict",
		IncludeImportances: true,
	}
}

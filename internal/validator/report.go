package validator

import "fmt"

// PrintReport writes the validation report to the configured logger writer.
// If no logger writer is configured, it produces no output.
func PrintReport(r ValidationResult) {
	if r.Valid {
		logf("validation passed")
	} else {
		logf("validation failed")
	}
	for _, err := range r.Errors {
		logf("  error: %s", err)
	}
	for _, warn := range r.Warnings {
		logf("  warning: %s", warn)
	}
	for _, m := range r.Models {
		logf("%s: %.1f%% (%d errors, %d warnings)", m.Name, m.Score*100, len(m.Errors), len(m.Warnings))
		for _, err := range m.Errors {
			logf("    error: %s", err)
		}
	}
}

// FormatSummary returns a one-line summary of the validation result.
func FormatSummary(r ValidationResult) string {
	status := "PASSED"
	if !r.Valid {
		status = "FAILED"
	}
	errs, warns := len(r.Errors), len(r.Warnings)
	for _, m := range r.Models {
		errs += len(m.Errors)
		warns += len(m.Warnings)
	}
	return fmt.Sprintf("Validation: %s | Models: %d | Datasets: %d | Errors: %d | Warnings: %d",
		status, len(r.Models), len(r.Datasets), errs, warns)
}

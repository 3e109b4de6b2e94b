package ui

import (
	"fmt"
	"io"
	"strings"
)

// ValidationReport mirrors the structure from internal/validator
// to avoid circular imports
type ValidationReport struct {
	Valid    bool
	Errors   []string
	Warnings []string
	Models   []ModelValidation
	Datasets []string
}

// ModelValidation mirrors validator.ModelResult.
type ModelValidation struct {
	Name     string
	Score    float64
	Errors   []string
	Warnings []string
}

// ValidationUI provides a rich UI for the validate command
type ValidationUI struct {
	writer io.Writer
	quiet  bool
}

// NewValidationUI creates a new UI handler for the validate command
func NewValidationUI(w io.Writer, quiet bool) *ValidationUI {
	return &ValidationUI{
		writer: w,
		quiet:  quiet,
	}
}

// PrintReport renders the validation report in a box.
func (v *ValidationUI) PrintReport(report ValidationReport) {
	if v.quiet {
		return
	}

	var output strings.Builder

	if report.Valid {
		output.WriteString(Success.Bold(true).Render("✓ Validation Passed"))
	} else {
		output.WriteString(Error.Bold(true).Render("✗ Validation Failed"))
	}
	output.WriteString("\n\n")

	if len(report.Datasets) > 0 {
		output.WriteString(SectionHeader.Render("Dataset Components"))
		output.WriteString("\n")
		for _, name := range report.Datasets {
			output.WriteString(FormatKeyValue("Name", Highlight.Render(name)))
			output.WriteString("\n")
		}
		output.WriteString("\n")
	}

	output.WriteString(SectionHeader.Render("Model Cards"))
	output.WriteString("\n")
	for _, m := range report.Models {
		output.WriteString(v.renderModel(m))
		output.WriteString("\n")
	}

	if len(report.Errors) > 0 {
		output.WriteString("\n")
		output.WriteString(renderIssues(Error, "Errors", GetCrossMark(), func(s string) string { return s }, report.Errors))
		output.WriteString("\n")
	}
	if len(report.Warnings) > 0 {
		output.WriteString("\n")
		output.WriteString(renderIssues(Warning, "Warnings", GetWarnMark(), Dim.Render, report.Warnings))
	}

	body := strings.TrimRight(output.String(), "\n")
	if report.Valid {
		fmt.Fprintln(v.writer, SuccessBox.Render(body))
	} else {
		fmt.Fprintln(v.writer, ErrorBox.Render(body))
	}
}

func (v *ValidationUI) renderModel(m ModelValidation) string {
	var sb strings.Builder

	sb.WriteString(FormatKeyValue(m.Name, renderCardScore(m.Score, 30)))
	for _, err := range m.Errors {
		sb.WriteString("\n  ")
		sb.WriteString(GetCrossMark())
		sb.WriteString(" ")
		sb.WriteString(err)
	}
	for _, warn := range m.Warnings {
		sb.WriteString("\n  ")
		sb.WriteString(GetWarnMark())
		sb.WriteString(" ")
		sb.WriteString(Dim.Render(warn))
	}
	return sb.String()
}

// renderIssues lists BOM-level errors or warnings under a counted header.
func renderIssues(header styleWrapper, title, mark string, text func(string) string, items []string) string {
	lines := []string{header.Render(fmt.Sprintf("▼ %s (%d)", title, len(items)))}
	for _, item := range items {
		lines = append(lines, "  "+mark+" "+text(item))
	}
	return strings.Join(lines, "\n")
}

// scoreStyle colours a model card score: green from 80%, amber from 50%.
func scoreStyle(score float64) styleWrapper {
	switch {
	case score >= 0.8:
		return Success
	case score >= 0.5:
		return Warning
	}
	return Error
}

func renderCardScore(score float64, width int) string {
	filled := max(0, min(width, int(score*float64(width))))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return scoreStyle(score).Render(bar) + " " + scoreStyle(score).Render(fmt.Sprintf("%.1f%%", score*100))
}

// PrintSimpleReport prints a minimal text report
func (v *ValidationUI) PrintSimpleReport(report ValidationReport) {
	if report.Valid {
		fmt.Fprintf(v.writer, "%s Validation passed\n", GetCheckMark())
	} else {
		fmt.Fprintf(v.writer, "%s Validation failed\n", GetCrossMark())
	}

	errs, warns := len(report.Errors), len(report.Warnings)
	for _, m := range report.Models {
		fmt.Fprintf(v.writer, "%s: %.1f%%\n", m.Name, m.Score*100)
		errs += len(m.Errors)
		warns += len(m.Warnings)
	}
	fmt.Fprintf(v.writer, "Errors: %d, Warnings: %d\n", errs, warns)
	if len(report.Datasets) > 0 {
		fmt.Fprintf(v.writer, "Datasets: %d\n", len(report.Datasets))
	}
}

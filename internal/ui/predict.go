package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/idlab-discover/agropredict-cli/internal/dataset"
)

// PredictionUI renders a single prediction and the advice that follows it
type PredictionUI struct {
	writer    io.Writer
	quiet     bool
	wrapWidth int
}

// NewPredictionUI creates a new prediction renderer
func NewPredictionUI(w io.Writer, quiet bool) *PredictionUI {
	return &PredictionUI{writer: w, quiet: quiet, wrapWidth: 80}
}

// PrintPrediction shows the predicted yield together with its inputs
func (p *PredictionUI) PrintPrediction(model string, yield float64, in dataset.Record) {
	if p.quiet {
		fmt.Fprintf(p.writer, "%.2f\n", yield)
		return
	}

	var sb strings.Builder
	sb.WriteString(Dim.Render("PREDICTED OUTCOME"))
	sb.WriteString("\n")
	sb.WriteString(Success.Bold(true).Render(fmt.Sprintf("%.2f", yield)))
	sb.WriteString(" ")
	sb.WriteString(Dim.Render("tonnes per hectare"))
	sb.WriteString("\n\n")
	sb.WriteString(FormatKeyValue("Model", Highlight.Render(model)))
	sb.WriteString("\n")
	sb.WriteString(FormatKeyValue("Crop", fmt.Sprintf("%s · %s · %s", in.Crop, in.Season, in.State)))
	sb.WriteString("\n")
	sb.WriteString(FormatKeyValue("Area", fmt.Sprintf("%g ha", in.Area)))
	sb.WriteString("\n")
	sb.WriteString(FormatKeyValue("Climate", fmt.Sprintf("%g mm · %g °C", in.Rainfall, in.Temperature)))
	sb.WriteString("\n")
	sb.WriteString(FormatKeyValue("Soil", fmt.Sprintf("pH %g · NPK %g:%g:%g", in.PH, in.N, in.P, in.K)))

	fmt.Fprintln(p.writer, SuccessBox.Render(sb.String()))
}

// PrintAdvice renders advisor markdown under a section header
func (p *PredictionUI) PrintAdvice(markdown string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.writer, SectionHeader.Render("AI Expert Analysis"))
	out, err := RenderMarkdown(markdown, p.wrapWidth)
	if err != nil {
		out = markdown + "\n"
	}
	fmt.Fprint(p.writer, out)
}

// PrintNotice prints a non-fatal advisory notice
func (p *PredictionUI) PrintNotice(msg string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.writer, FormatStatus("warning", Warning.Render(msg)))
}

// RenderMarkdown renders markdown for the terminal, wrapped at width
func RenderMarkdown(markdown string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(markdown)
}

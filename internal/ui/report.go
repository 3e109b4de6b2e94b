package ui

import (
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/idlab-discover/agropredict-cli/internal/dataset"
	"github.com/idlab-discover/agropredict-cli/internal/ml"
)

// Benchmark mirrors a training result without importing the trainer
type Benchmark struct {
	Metrics     []ml.Metric
	Importances []ml.Importance
	Fingerprint string
	TrainRows   int
	TestRows    int
	// TreeDepth and ForestTrees describe the fitted tree models; zero
	// when unknown.
	TreeDepth   int
	ForestTrees int
}

// ReportUI renders benchmark and dataset reports
type ReportUI struct {
	writer io.Writer
	quiet  bool
}

// NewReportUI creates a new report renderer
func NewReportUI(w io.Writer, quiet bool) *ReportUI {
	return &ReportUI{writer: w, quiet: quiet}
}

// PrintBenchmark renders the model comparison inside a box
func (r *ReportUI) PrintBenchmark(b Benchmark) {
	if r.quiet {
		return
	}

	var output strings.Builder
	output.WriteString(Success.Bold(true).Render("Model Benchmark"))
	output.WriteString("\n")
	output.WriteString(Dim.Render(fmt.Sprintf("%d train / %d test rows · dataset %s", b.TrainRows, b.TestRows, b.Fingerprint)))
	output.WriteString("\n\n")

	output.WriteString(MetricsTable(b.Metrics))
	output.WriteString("\n\n")

	output.WriteString(SectionHeader.Render("R² Score"))
	output.WriteString("\n")
	for _, m := range b.Metrics {
		output.WriteString(FormatKeyValue(padRight(m.Model, 17), renderScoreBar(m.R2, 30)+" "+renderScore(m.R2)))
		output.WriteString("\n")
	}

	if len(b.Importances) > 0 {
		output.WriteString("\n")
		output.WriteString(SectionHeader.Render("Feature Importance (Random Forest)"))
		output.WriteString("\n")
		output.WriteString(ImportanceBars(b.Importances, 30))
	}

	fmt.Fprintln(r.writer, SuccessBox.Render(strings.TrimRight(output.String(), "\n")))
}

// PrintSimpleBenchmark prints a minimal text report
func (r *ReportUI) PrintSimpleBenchmark(b Benchmark) {
	for _, m := range b.Metrics {
		fmt.Fprintf(r.writer, "%s: R2=%.4f RMSE=%.4f MAE=%.4f\n", m.Model, m.R2, m.RMSE, m.MAE)
	}
}

// PrintSummary renders the dataset overview
func (r *ReportUI) PrintSummary(s dataset.Summary) {
	if r.quiet {
		return
	}

	var output strings.Builder
	output.WriteString(Success.Bold(true).Render("Dataset Summary"))
	output.WriteString("\n\n")
	output.WriteString(FormatKeyValue("Rows", fmt.Sprintf("%d", s.Rows)))
	output.WriteString("\n")
	output.WriteString(FormatKeyValue("Seed", fmt.Sprintf("%d", s.Seed)))
	output.WriteString("\n")
	output.WriteString(FormatKeyValue("Fingerprint", Highlight.Render(s.Fingerprint)))
	output.WriteString("\n")
	output.WriteString(FormatKeyValue("Yield (T/Ha)", fmt.Sprintf("mean %.2f · std %.2f · min %.2f · max %.2f",
		s.Yield.Mean, s.Yield.Std, s.Yield.Min, s.Yield.Max)))
	output.WriteString("\n\n")

	output.WriteString(SectionHeader.Render("Mean Yield by State"))
	output.WriteString("\n")
	output.WriteString(HorizontalBars(s.MeanYieldByState, 30, "%.2f"))
	output.WriteString("\n\n")

	output.WriteString(SectionHeader.Render("Crop Distribution"))
	output.WriteString("\n")
	output.WriteString(HorizontalBars(s.CropCounts, 30, "%.0f"))

	fmt.Fprintln(r.writer, SuccessBox.Render(output.String()))
}

// MetricsTable renders the metric rows as a bordered table
func MetricsTable(metrics []ml.Metric) string {
	best := -1
	for i, m := range metrics {
		if best < 0 || m.R2 > metrics[best].R2 {
			best = i
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorMuted)).
		Headers("Model", "R²", "RMSE", "MAE").
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return s.Foreground(ColorSecondary).Bold(true)
			case row == best:
				return s.Foreground(ColorSuccess)
			}
			return s
		})
	for _, m := range metrics {
		t.Row(m.Model, fmt.Sprintf("%.4f", m.R2), fmt.Sprintf("%.4f", m.RMSE), fmt.Sprintf("%.4f", m.MAE))
	}
	return t.String()
}

// ImportanceBars renders feature importances as percentages
func ImportanceBars(imps []ml.Importance, width int) string {
	bars := make([]dataset.Bar, len(imps))
	for i, im := range imps {
		bars[i] = dataset.Bar{Label: im.Feature, Value: im.Value * 100}
	}
	return HorizontalBars(bars, width, "%.1f%%")
}

// renderScoreBar creates a visual bar for an R² score
func renderScoreBar(score float64, width int) string {
	clamped := max(0, min(score, 1))
	filled := int(clamped * float64(width))
	empty := width - filled

	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)

	var style lipgloss.Style
	if score >= 0.8 {
		style = lipgloss.NewStyle().Foreground(ColorSuccess)
	} else if score >= 0.5 {
		style = lipgloss.NewStyle().Foreground(ColorWarning)
	} else {
		style = lipgloss.NewStyle().Foreground(ColorError)
	}

	return style.Render(bar)
}

// renderScore formats an R² score with a color reflecting its quality
func renderScore(score float64) string {
	formatted := fmt.Sprintf("%.3f", score)

	if score >= 0.8 {
		return Success.Render(formatted)
	} else if score >= 0.5 {
		return Warning.Render(formatted)
	}
	return Error.Render(formatted)
}

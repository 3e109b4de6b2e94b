package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/idlab-discover/agropredict-cli/internal/dataset"
)

// RoadmapPhase is one milestone on the roadmap tab
type RoadmapPhase struct {
	Title       string
	Description string
}

// RoadmapStatus is shown under the roadmap phases
const RoadmapStatus = "v2.4 Release - STABLE"

// DefaultRoadmap lists the project milestones
var DefaultRoadmap = []RoadmapPhase{
	{"Phase 1: Foundation", "Data synthesized using historical averages and heuristic agricultural rules (1,500 rows)."},
	{"Phase 2: Preprocessing", "Automated label encoding for mixed numeric and categorical input."},
	{"Phase 3: Model Zoo", "Benchmarked Linear Regression vs. Decision Tree vs. Random Forest ensemble."},
	{"Phase 4: Optimization", "Tuning of forest size and tree depth for minimal RMSE."},
	{"Phase 5: Intelligence Layer", "Generative agronomic analysis through the Gemini API."},
	{"Phase 6: Deployment", "Terminal dashboard, JSON API and CycloneDX model cards."},
}

// Dashboard tabs, in display order
const (
	TabOverview = iota
	TabDataset
	TabAnalytics
	TabModels
	TabRoadmap
)

var tabNames = []string{"Dashboard", "Dataset", "Analytics", "ML Lab", "Roadmap"}

// DashboardConfig feeds the dashboard
type DashboardConfig struct {
	Summary dataset.Summary
	// Head holds the rows shown on the dataset tab
	Head []dataset.Record
	// Load trains the models; it runs in the background once the
	// dashboard starts
	Load    func(context.Context) (Benchmark, error)
	Roadmap []RoadmapPhase

	Input  io.Reader
	Output io.Writer
}

type dashboardKeys struct {
	Next key.Binding
	Prev key.Binding
	Jump key.Binding
	Help key.Binding
	Quit key.Binding
}

func (k dashboardKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Help, k.Quit}
}

func (k dashboardKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Prev, k.Jump}, {k.Help, k.Quit}}
}

var defaultDashboardKeys = dashboardKeys{
	Next: key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("→/tab", "next tab")),
	Prev: key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("←", "previous tab")),
	Jump: key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "jump to tab")),
	Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
	Quit: key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

type benchmarkMsg struct {
	bench Benchmark
	err   error
}

// dashboardModel is the Bubble Tea model behind the dashboard
type dashboardModel struct {
	cfg     DashboardConfig
	ctx     context.Context
	keys    dashboardKeys
	help    help.Model
	spinner spinner.Model

	active  int
	bench   *Benchmark
	loadErr error
	loading bool
	width   int
	height  int
}

// NewDashboard creates the dashboard model
func NewDashboard(ctx context.Context, cfg DashboardConfig) *dashboardModel {
	if cfg.Roadmap == nil {
		cfg.Roadmap = DefaultRoadmap
	}
	return &dashboardModel{
		cfg:     cfg,
		ctx:     ctx,
		keys:    defaultDashboardKeys,
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(ColorSecondary))),
		loading: cfg.Load != nil,
		width:   100,
		height:  30,
	}
}

// Init starts model training and the spinner
func (m *dashboardModel) Init() tea.Cmd {
	if !m.loading {
		return nil
	}
	load, ctx := m.cfg.Load, m.ctx
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		b, err := load(ctx)
		return benchmarkMsg{bench: b, err: err}
	})
}

// Update handles messages
func (m *dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.active = (m.active + 1) % len(tabNames)
		case key.Matches(msg, m.keys.Prev):
			m.active = (m.active + len(tabNames) - 1) % len(tabNames)
		case key.Matches(msg, m.keys.Jump):
			m.active = int(msg.String()[0] - '1')
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.SetWidth(msg.Width)
		return m, nil

	case benchmarkMsg:
		m.loading = false
		if msg.err != nil {
			m.loadErr = msg.err
			return m, nil
		}
		m.bench = &msg.bench
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the model
func (m *dashboardModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m *dashboardModel) render() string {
	var b strings.Builder
	b.WriteString(Title.Render("🌾 AgroPredict"))
	b.WriteString("  ")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch m.active {
	case TabOverview:
		b.WriteString(m.renderOverview())
	case TabDataset:
		b.WriteString(m.renderDataset())
	case TabAnalytics:
		b.WriteString(m.renderAnalytics())
	case TabModels:
		b.WriteString(m.renderModels())
	case TabRoadmap:
		b.WriteString(m.renderRoadmap())
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *dashboardModel) renderTabs() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		if i == m.active {
			tabs[i] = TabActive.Render(name)
		} else {
			tabs[i] = TabInactive.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *dashboardModel) chartWidth() int {
	return max(10, min(40, m.width/3))
}

func (m *dashboardModel) renderOverview() string {
	s := m.cfg.Summary
	precision := Dim.Render("training…")
	if m.bench != nil {
		for _, mt := range m.bench.Metrics {
			if mt.Model == "Random Forest" {
				precision = renderScore(mt.R2)
			}
		}
	}

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		statCard("Telemetry Samples", fmt.Sprintf("%d", s.Rows)),
		statCard("Average Yield", fmt.Sprintf("%.2f T/Ha", s.Yield.Mean)),
		statCard("Forest R²", precision),
		statCard("Dataset", s.Fingerprint),
	)

	left := SectionHeader.Render("Regional Productivity") + "\n" + HorizontalBars(s.MeanYieldByState, m.chartWidth(), "%.2f")
	right := SectionHeader.Render("Crop Distribution") + "\n" + HorizontalBars(s.CropCounts, m.chartWidth()/2, "%.0f")
	return cards + "\n\n" + lipgloss.JoinHorizontal(lipgloss.Top, left, "    ", right)
}

func statCard(label, value string) string {
	return Box.Render(Dim.Render(label) + "\n" + Bold.Render(value))
}

func (m *dashboardModel) renderDataset() string {
	rows := m.cfg.Head
	if limit := m.height - 12; limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorMuted)).
		Headers(dataset.Header()...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Foreground(ColorSecondary).Bold(true)
			}
			if col == len(dataset.FeatureColumns) {
				return s.Foreground(ColorSuccess)
			}
			return s
		})
	for _, r := range rows {
		t.Row(r.Crop, r.Season, r.State,
			fmt.Sprintf("%.1f", r.Area), fmt.Sprintf("%.2f", r.Rainfall), fmt.Sprintf("%.2f", r.Temperature),
			fmt.Sprintf("%.2f", r.PH), fmt.Sprintf("%.0f", r.N), fmt.Sprintf("%.0f", r.P), fmt.Sprintf("%.0f", r.K),
			fmt.Sprintf("%.2f", r.Yield))
	}
	header := Dim.Render(fmt.Sprintf("showing %d of %d rows · export with `agropredict dataset export`", len(rows), m.cfg.Summary.Rows))
	return header + "\n" + t.String()
}

func (m *dashboardModel) renderAnalytics() string {
	s := m.cfg.Summary
	var b strings.Builder
	b.WriteString(SectionHeader.Render("🌦  Rainfall Impact (mean yield per band, mm)"))
	b.WriteString("\n")
	b.WriteString(HorizontalBars(s.YieldByRainfall, m.chartWidth(), "%.2f"))
	b.WriteString("\n\n")
	b.WriteString(SectionHeader.Render("🧪 Soil Dynamics (pH min / mean / max by crop)"))
	b.WriteString("\n")
	b.WriteString(SpreadChart(s.PHByCrop, dataset.PHRange.Min, dataset.PHRange.Max, m.chartWidth()))
	b.WriteString("\n\n")
	b.WriteString(SectionHeader.Render("🌡  Thermal Analysis (mean yield per band, °C)"))
	b.WriteString("\n")
	temps := make([]float64, len(s.YieldByTemperature))
	for i, bar := range s.YieldByTemperature {
		temps[i] = bar.Value
	}
	b.WriteString(Sparkline(temps))
	b.WriteString("\n")
	b.WriteString(HorizontalBars(s.YieldByTemperature, m.chartWidth(), "%.2f"))
	return b.String()
}

func (m *dashboardModel) renderModels() string {
	switch {
	case m.loading:
		return m.spinner.View() + " " + Dim.Render("Calibrating regression engines...")
	case m.loadErr != nil:
		if errors.Is(m.loadErr, context.Canceled) {
			return FormatStatus("warning", "training cancelled")
		}
		return FormatStatus("error", Error.Render(m.loadErr.Error()))
	case m.bench == nil:
		return Dim.Render("(no models trained)")
	}

	var b strings.Builder
	b.WriteString(SectionHeader.Render("Algorithm Performance Benchmark"))
	b.WriteString("\n")
	b.WriteString(MetricsTable(m.bench.Metrics))
	if m.bench.TreeDepth > 0 || m.bench.ForestTrees > 0 {
		b.WriteString("\n")
		b.WriteString(Dim.Render(fmt.Sprintf("Decision Tree depth %d · Random Forest %d trees", m.bench.TreeDepth, m.bench.ForestTrees)))
	}
	if len(m.bench.Importances) > 0 {
		b.WriteString("\n\n")
		b.WriteString(SectionHeader.Render("Feature Weights (Random Forest Ensemble)"))
		b.WriteString("\n")
		b.WriteString(ImportanceBars(m.bench.Importances, m.chartWidth()))
	}
	return b.String()
}

func (m *dashboardModel) renderRoadmap() string {
	var b strings.Builder
	for _, p := range m.cfg.Roadmap {
		b.WriteString(Highlight.Render(p.Title))
		b.WriteString("\n")
		b.WriteString(Dim.Render("  " + p.Description))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(FormatStatus("success", "Current Status: "+RoadmapStatus))
	return b.String()
}

// RunDashboard runs the dashboard until the user quits
func RunDashboard(ctx context.Context, cfg DashboardConfig) error {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.Input != nil {
		opts = append(opts, tea.WithInput(cfg.Input))
	}
	if cfg.Output != nil {
		opts = append(opts, tea.WithOutput(cfg.Output))
	}
	p := tea.NewProgram(NewDashboard(ctx, cfg), opts...)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrInterrupted) || (errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
			return nil
		}
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

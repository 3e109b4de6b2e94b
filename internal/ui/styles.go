package ui

import (
	"image/color"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
)

// Field-and-harvest palette shared by every renderer and the fang help
// screen.
var (
	ColorPrimary   = lipgloss.Color("#065F46") // forest green
	ColorSecondary = lipgloss.Color("#34D399") // mint
	ColorSuccess   = lipgloss.Color("#10B981") // emerald
	ColorWarning   = lipgloss.Color("#F59E0B") // amber
	ColorError     = lipgloss.Color("#EF4444") // red
	ColorMuted     = lipgloss.Color("#6B7280")
	ColorHighlight = lipgloss.Color("#FACC15") // wheat
	ColorSoil      = lipgloss.Color("#374151")

	ColorText    = lipgloss.Color("#F9FAFB")
	ColorTextDim = lipgloss.Color("#9CA3AF")
)

// styleWrapper keeps the exported styles immutable for callers.
type styleWrapper struct {
	style lipgloss.Style
}

func (s styleWrapper) Render(str string) string { return s.style.Render(str) }

// Bold returns a copy with bold set to v.
func (s styleWrapper) Bold(v bool) styleWrapper { return styleWrapper{s.style.Bold(v)} }

func fg(c color.Color) styleWrapper {
	return styleWrapper{lipgloss.NewStyle().Foreground(c)}
}

var (
	Bold      = styleWrapper{lipgloss.NewStyle().Bold(true)}
	Dim       = fg(ColorTextDim)
	Muted     = fg(ColorMuted)
	Success   = fg(ColorSuccess)
	Warning   = fg(ColorWarning)
	Error     = fg(ColorError)
	Secondary = fg(ColorSecondary)
	Highlight = fg(ColorHighlight).Bold(true)

	Title         = fg(ColorPrimary).Bold(true)
	SectionHeader = fg(ColorSecondary).Bold(true)
)

func GetCheckMark() string { return Success.Render("✓") }
func GetCrossMark() string { return Error.Render("✗") }
func GetWarnMark() string { return Warning.Render("⚠") }
func GetInfoMark() string { return Secondary.Render("ℹ") }

type boxWrapper struct {
	style lipgloss.Style
}

func (b boxWrapper) Render(str string) string { return b.style.Render(str) }

func box(border color.Color) boxWrapper {
	return boxWrapper{lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)}
}

var (
	// Box frames dashboard stat cards.
	Box        = box(ColorMuted)
	SuccessBox = box(ColorSuccess)
	ErrorBox   = box(ColorError)
)

// Chart and dashboard styles
var (
	BarFilled = fg(ColorSuccess)
	BarEmpty  = fg(ColorSoil)
	BarLabel  = fg(ColorTextDim)

	TabActive = styleWrapper{lipgloss.NewStyle().
			Foreground(ColorText).
			Background(ColorPrimary).
			Bold(true).
			Padding(0, 1)}
	TabInactive = styleWrapper{fg(ColorTextDim).style.Padding(0, 1)}
)

// Workflow step styles
var (
	StepPending  = fg(ColorMuted)
	StepRunning  = fg(ColorSecondary)
	StepComplete = fg(ColorSuccess)
	StepFailed   = fg(ColorError)
	StepSkipped  = fg(ColorWarning)
)

// FormatKeyValue formats a key-value pair with styling
func FormatKeyValue(key, value string) string {
	return Dim.Render(key+": ") + value
}

// FormatStatus formats a status message with an appropriate icon
func FormatStatus(status, message string) string {
	var icon string
	switch status {
	case "success":
		icon = GetCheckMark()
	case "error":
		icon = GetCrossMark()
	case "warning":
		icon = GetWarnMark()
	case "info":
		icon = GetInfoMark()
	default:
		icon = Muted.Render("•")
	}
	return icon + " " + message
}

// FangColorScheme returns a Fang color scheme based on the application's color palette
func FangColorScheme(c lipgloss.LightDarkFunc) fang.ColorScheme {
	return fang.ColorScheme{
		Base:           ColorText,
		Title:          ColorPrimary,
		Description:    ColorTextDim,
		Codeblock:      c(lipgloss.Color("#1F2937"), lipgloss.Color("#2F2E36")),
		Program:        ColorSecondary,
		DimmedArgument: ColorMuted,
		Comment:        ColorMuted,
		Flag:           ColorSuccess,
		FlagDefault:    ColorTextDim,
		Command:        ColorHighlight,
		QuotedString:   ColorSecondary,
		Argument:       ColorText,
		Help:           ColorTextDim,
		Dash:           ColorMuted,
		ErrorHeader:    [2]color.Color{ColorText, ColorError},
		ErrorDetails:   ColorError,
	}
}

// BannerASCII is the ASCII art banner for the application
const BannerASCII = `
    _                    ____               _ _      _
   / \   __ _ _ __ ___ |  _ \ _ __ ___  __| (_) ___| |_
  / _ \ / _` + "`" + ` | '__/ _ \| |_) | '__/ _ \/ _` + "`" + ` | |/ __| __|
 / ___ \ (_| | | | (_) |  __/| | |  __/ (_| | | (__| |_
/_/   \_\__, |_|  \___/|_|   |_|  \___|\__,_|_|\___|\__|
        |___/
`

// RenderGradientBanner renders the banner in the secondary color
func RenderGradientBanner(banner string) string {
	return Secondary.Render(banner)
}

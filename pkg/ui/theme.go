package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeBg returns the given hex color for TrueColor terminals and
// lipgloss.NoColor{} otherwise, so 16/256-color terminals use the
// terminal's own background instead of a down-converted approximation.
func ThemeBg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Theme carries the color palette and the pre-computed styles the panes
// render with. Styles are created once at startup instead of per-frame.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor

	// Row kinds
	Assembly lipgloss.AdaptiveColor
	Part     lipgloss.AdaptiveColor
	Fallback lipgloss.AdaptiveColor
	Selected lipgloss.AdaptiveColor

	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Warning   lipgloss.AdaptiveColor
	Error     lipgloss.AdaptiveColor

	Base        lipgloss.Style
	CursorRow   lipgloss.Style
	SelectedRow lipgloss.Style
	Header      lipgloss.Style
	PaneBorder  lipgloss.Style
	FocusBorder lipgloss.Style

	MutedText     lipgloss.Style
	SecondaryText lipgloss.Style
	PrimaryBold   lipgloss.Style
	WarningText   lipgloss.Style
	ErrorText     lipgloss.Style
	FallbackText  lipgloss.Style
}

// DefaultTheme returns the standard adaptive theme.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},

		Assembly: lipgloss.AdaptiveColor{Light: "#0066CC", Dark: "#6699FF"},
		Part:     lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"},
		Fallback: lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"},
		Selected: lipgloss.AdaptiveColor{Light: "#CC4400", Dark: "#FF6600"},

		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
		Muted:     lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Warning:   lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"},
		Error:     lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})

	t.CursorRow = r.NewStyle().
		Background(t.Highlight).
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(t.Primary).
		PaddingLeft(1).
		Bold(true)

	t.SelectedRow = r.NewStyle().Foreground(t.Selected).Bold(true)

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.PaneBorder = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border)
	t.FocusBorder = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary)

	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.SecondaryText = r.NewStyle().Foreground(t.Secondary)
	t.PrimaryBold = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.WarningText = r.NewStyle().Foreground(t.Warning)
	t.ErrorText = r.NewStyle().Foreground(t.Error).Bold(true)
	t.FallbackText = r.NewStyle().Foreground(t.Fallback).Italic(true)

	return t
}

// RowColor returns the foreground color for a tree row kind.
func (t Theme) RowColor(isAssembly, isFallback bool) lipgloss.AdaptiveColor {
	switch {
	case isFallback:
		return t.Fallback
	case isAssembly:
		return t.Assembly
	default:
		return t.Part
	}
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}

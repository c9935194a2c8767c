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

type Theme struct {
	Renderer *lipgloss.Renderer

	// Colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor

	// Node states
	Node       lipgloss.AdaptiveColor
	NodeMerged lipgloss.AdaptiveColor
	NodeCommit lipgloss.AdaptiveColor
	Selected   lipgloss.AdaptiveColor
	Hovered    lipgloss.AdaptiveColor
	EdgeLine   lipgloss.AdaptiveColor
	EdgeDraft  lipgloss.AdaptiveColor

	// UI Elements
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Danger    lipgloss.AdaptiveColor

	// Styles (created once at startup instead of per-frame)
	Base          lipgloss.Style
	NodeBox       lipgloss.Style
	NodeBoxMerged lipgloss.Style
	NodeBoxCommit lipgloss.Style
	NodeSelected  lipgloss.Style
	NodeHovered   lipgloss.Style
	Header        lipgloss.Style
	StatusBar     lipgloss.Style
	MenuItem      lipgloss.Style
	MenuSelected  lipgloss.Style
	Edge          lipgloss.Style
	EdgeRubber    lipgloss.Style
	DropZone      lipgloss.Style
	DropZoneHot   lipgloss.Style
	PreviewPane   lipgloss.Style
	MutedText     lipgloss.Style
	DangerText    lipgloss.Style
}

// DefaultTheme returns the standard Dracula-inspired theme (adaptive).
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}, // Purple
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}, // Gray
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"}, // Dim

		Node:       lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}, // Green
		NodeMerged: lipgloss.AdaptiveColor{Light: "#0066CC", Dark: "#6699FF"}, // Blue
		NodeCommit: lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}, // Cyan
		Selected:   lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}, // Orange
		Hovered:    lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}, // Purple
		EdgeLine:   lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}, // Gray
		EdgeDraft:  lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}, // Orange

		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
		Muted:     lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Danger:    lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})
	t.NodeBox = r.NewStyle().Foreground(t.Node)
	t.NodeBoxMerged = r.NewStyle().Foreground(t.NodeMerged)
	t.NodeBoxCommit = r.NewStyle().Foreground(t.NodeCommit)
	t.NodeSelected = r.NewStyle().Foreground(t.Selected).Bold(true)
	t.NodeHovered = r.NewStyle().Foreground(t.Hovered).Bold(true)
	t.Header = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.StatusBar = r.NewStyle().Foreground(t.Subtext)
	t.MenuItem = r.NewStyle().Foreground(t.Subtext)
	t.MenuSelected = r.NewStyle().Foreground(t.Primary).Bold(true).Background(t.Highlight)
	t.Edge = r.NewStyle().Foreground(t.EdgeLine)
	t.EdgeRubber = r.NewStyle().Foreground(t.EdgeDraft).Bold(true)
	t.DropZone = r.NewStyle().Foreground(t.Muted)
	t.DropZoneHot = r.NewStyle().Foreground(t.Selected).Bold(true)
	t.PreviewPane = r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Border).Padding(0, 1)
	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.DangerText = r.NewStyle().Foreground(t.Danger).Bold(true)

	return t
}

package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// typePalette cycles through these for node type badges.
var typePalette = []lipgloss.Style{StyleBlue, StylePurple, StyleGreen, StyleYellow}

// TypeBadge renders a node type in a color derived from its text, so the
// same type always gets the same color.
func TypeBadge(typ string) string {
	var h uint32
	for _, r := range typ {
		h = h*31 + uint32(r)
	}
	return typePalette[h%uint32(len(typePalette))].Render(typ)
}

// VersionBadge renders an optimistic-lock version as "v3".
func VersionBadge(v int) string {
	return StyleDim.Render(fmt.Sprintf("v%d", v))
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}

// Success renders a confirmation line.
func Success(text string) string {
	return StyleGreen.Render("✓ ") + text
}

// Failure renders an error line with its code, e.g. "✗ DUPLICATE_KEY name taken".
func Failure(code, text string) string {
	return StyleRed.Render("✗ "+code) + " " + text
}

// Package tui implements the interactive session browser.
package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the color roles used by the browser.
type Theme struct {
	Name        string
	Border      lipgloss.Color
	TextDim     lipgloss.Color
	TextMuted   lipgloss.Color
	TextPrimary lipgloss.Color
	Accent      lipgloss.Color
	Green       lipgloss.Color
	Orange      lipgloss.Color
	Red         lipgloss.Color
	Blue        lipgloss.Color
}

// FlexokiDark is the default theme, warm and paper-inspired.
var FlexokiDark = Theme{
	Name:        "flexoki-dark",
	Border:      lipgloss.Color("#403E3C"),
	TextDim:     lipgloss.Color("#575653"),
	TextMuted:   lipgloss.Color("#878580"),
	TextPrimary: lipgloss.Color("#FFFCF0"),
	Accent:      lipgloss.Color("#3AA99F"),
	Green:       lipgloss.Color("#879A39"),
	Orange:      lipgloss.Color("#DA702C"),
	Red:         lipgloss.Color("#D14D41"),
	Blue:        lipgloss.Color("#4385BE"),
}

// Terminal uses ANSI 16 colors only.
var Terminal = Theme{
	Name:        "terminal",
	Border:      lipgloss.Color("8"),
	TextDim:     lipgloss.Color("8"),
	TextMuted:   lipgloss.Color("7"),
	TextPrimary: lipgloss.Color("15"),
	Accent:      lipgloss.Color("6"),
	Green:       lipgloss.Color("2"),
	Orange:      lipgloss.Color("3"),
	Red:         lipgloss.Color("1"),
	Blue:        lipgloss.Color("4"),
}

// All available themes.
var All = []Theme{FlexokiDark, Terminal}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

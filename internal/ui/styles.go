// Package ui provides consistent styling for the tabmap CLI listings
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/xtablet/tabmap/internal/mapping"
	"github.com/xtablet/tabmap/internal/tablet"
)

// Color palette - consistent across the application
var (
	ColorPrimary = lipgloss.Color("39")  // Bright blue
	ColorSuccess = lipgloss.Color("82")  // Green
	ColorWarning = lipgloss.Color("214") // Orange
	ColorError   = lipgloss.Color("196") // Red

	ColorText   = lipgloss.Color("252") // Light gray
	ColorSubtle = lipgloss.Color("241") // Medium gray
)

// Base styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	TextStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	SubtleStyle = lipgloss.NewStyle().
			Foreground(ColorSubtle)

	ActiveStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	InactiveStyle = lipgloss.NewStyle().
			Foreground(ColorSubtle)

	TargetStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)
)

// RenderOutputs renders the output listing, marking the configured target.
func RenderOutputs(vs mapping.VirtualScreen, outputs []mapping.Output, target string) string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("Outputs (virtual screen %dx%d)", vs.Width, vs.Height)))
	b.WriteString("\n")
	for _, out := range outputs {
		marker := "  "
		name := out.Name
		if out.Name == target {
			marker = TargetStyle.Render("* ")
			name = TargetStyle.Render(out.Name)
		}
		if out.Enabled {
			b.WriteString(fmt.Sprintf("%s%s  %s  %s\n",
				marker,
				name,
				TextStyle.Render(fmt.Sprintf("%dx%d+%d+%d", out.Width, out.Height, out.X, out.Y)),
				ActiveStyle.Render("active")))
		} else {
			b.WriteString(fmt.Sprintf("%s%s  %s\n",
				marker,
				name,
				InactiveStyle.Render("off")))
		}
	}
	return b.String()
}

// RenderDevices renders the tablet device listing.
func RenderDevices(devices []tablet.Device) string {
	if len(devices) == 0 {
		return SubtleStyle.Render("No tablet devices detected") + "\n"
	}
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("Tablet devices (%d)", len(devices))))
	b.WriteString("\n")
	for _, dev := range devices {
		b.WriteString(fmt.Sprintf("  %s  %s  %s\n",
			TextStyle.Render(dev.Name),
			SubtleStyle.Render(fmt.Sprintf("id=%d", dev.ID)),
			ActiveStyle.Render(string(dev.Kind))))
		if dev.X.Max > dev.X.Min || dev.Y.Max > dev.Y.Min {
			b.WriteString(SubtleStyle.Render(fmt.Sprintf("      axes x: %g..%g  y: %g..%g",
				dev.X.Min, dev.X.Max, dev.Y.Min, dev.Y.Max)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

package cli

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/statgrapher/pkg/chart"
	"github.com/matzehuels/statgrapher/pkg/pipeline"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan  = lipgloss.Color("36")  // Teal - primary actions
	colorGreen = lipgloss.Color("35")  // Green - success
	colorRed   = lipgloss.Color("167") // Soft red - errors
	colorWhite = lipgloss.Color("255") // Bright white - values
	colorGray  = lipgloss.Color("245") // Gray - secondary text
	colorDim   = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconInfo    = "›"
	iconCached  = "cached"
	iconFresh   = "fresh"
	swatch      = "██"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	fprintSuccess(os.Stdout, format, args...)
}

// fprintSuccess is printSuccess writing to w.
func fprintSuccess(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// =============================================================================
// Key-Value Output
// =============================================================================

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	fprintKeyValue(os.Stdout, key, value)
}

// fprintKeyValue is printKeyValue writing to w.
func fprintKeyValue(w io.Writer, key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(w, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// =============================================================================
// Chart Display
// =============================================================================

// printChart prints the caption, palette and a one-line summary of a render.
func printChart(res *pipeline.Result) {
	fmt.Println("  " + StyleValue.Render(res.Caption))
	fmt.Println("  " + paletteLine(res.Scheme))
	fmt.Println(statsLine(res))
}

// paletteLine renders each scheme color as a swatch.
func paletteLine(cs chart.ColorScheme) string {
	named := []struct {
		name string
		c    color.RGBA
	}{
		{"bg", cs.Background},
		{"axis", cs.Axis},
		{"grid", cs.Grid},
		{"text", cs.Text},
		{"curve", cs.Curve},
	}
	parts := make([]string, len(named))
	for i, n := range named {
		sw := lipgloss.NewStyle().Foreground(lipgloss.Color(chart.Hex(n.c))).Render(swatch)
		parts[i] = sw + " " + StyleDim.Render(n.name)
	}
	return strings.Join(parts, "  ")
}

// statsLine summarizes a render on a single line.
func statsLine(res *pipeline.Result) string {
	parts := []string{
		fmt.Sprintf("seed %d", res.Seed),
		fmt.Sprintf("%dx%d", res.Width, res.Height),
		fmt.Sprintf("%d shapes", res.Shapes.Total()),
		fmt.Sprintf("%gpt", res.FontSize),
	}

	status := iconFresh
	statusStyle := styleComputed
	if res.CacheHit {
		status = iconCached
		statusStyle = styleCached
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	return line + StyleDim.Render(" · ") + statusStyle.Render(status)
}

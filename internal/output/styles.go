package output

import "github.com/charmbracelet/lipgloss"

// Color palette: one lime accent, red for ignored paths.
const (
	ColorLime     = "154"
	ColorLimeDim  = "106"
	ColorGray     = "245"
	ColorDarkGray = "238"
	ColorRed      = "196"
	ColorYellow   = "220"
)

// Styles holds the CLI text styles.
type Styles struct {
	Header   lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Dim      lipgloss.Style
	Label    lipgloss.Style
	Ignored  lipgloss.Style
	Included lipgloss.Style
	Pattern  lipgloss.Style
}

// DefaultStyles returns the colored styles.
func DefaultStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime)),
		Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Dim:      lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Label:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Ignored:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Included: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLimeDim)),
		Pattern:  lipgloss.NewStyle().Bold(true),
	}
}

// NoColorStyles returns unstyled components for plain output.
func NoColorStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Header:   plain,
		Success:  plain,
		Warning:  plain,
		Error:    plain,
		Dim:      plain,
		Label:    plain,
		Ignored:  plain,
		Included: plain,
		Pattern:  plain,
	}
}

// GetStyles returns the appropriate styles based on color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}

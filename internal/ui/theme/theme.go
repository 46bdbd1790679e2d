package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/appmonitor/internal/record"
)

// Theme holds all colors used by the viewer.
type Theme struct {
	Name string

	// Base colors
	Base    lipgloss.Color
	Surface lipgloss.Color
	Overlay lipgloss.Color

	// Text
	Text    lipgloss.Color
	Subtext lipgloss.Color
	Muted   lipgloss.Color

	// Accents
	Accent   lipgloss.Color
	Red      lipgloss.Color
	Peach    lipgloss.Color
	Yellow   lipgloss.Color
	Green    lipgloss.Color
	Teal     lipgloss.Color
	Blue     lipgloss.Color
	Lavender lipgloss.Color
}

// MethodColor returns the color for an HTTP method.
func (t Theme) MethodColor(method string) lipgloss.Color {
	switch method {
	case "GET":
		return t.Green
	case "POST":
		return t.Yellow
	case "PUT":
		return t.Blue
	case "PATCH":
		return t.Peach
	case "DELETE":
		return t.Red
	case "HEAD":
		return t.Teal
	case "OPTIONS":
		return t.Lavender
	default:
		return t.Text
	}
}

// StatusColor returns the color for a record's status code. Pending
// transactions (code 0) are highlighted as in flight.
func (t Theme) StatusColor(code int) lipgloss.Color {
	return t.CategoryColor(record.CategoryOf(code))
}

// CategoryColor returns the color for a status category.
func (t Theme) CategoryColor(c record.StatusCategory) lipgloss.Color {
	switch c {
	case record.CategoryPending:
		return t.Yellow
	case record.CategorySuccess:
		return t.Green
	case record.CategoryRedirect:
		return t.Blue
	case record.CategoryClientError:
		return t.Peach
	case record.CategoryServerError:
		return t.Red
	default:
		return t.Text
	}
}

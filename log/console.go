package log

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Console renders styled text for a terminal. Styling is dropped when the
// destination is not a terminal.
type Console struct {
	w io.Writer
	r *lipgloss.Renderer
}

// NewConsole returns a Console that writes to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w, r: lipgloss.NewRenderer(w)}
}

// consoleColors maps color names to ANSI color indices.
var consoleColors = map[string]int{
	"black":  0,
	"red":    1,
	"green":  2,
	"yellow": 3,
	"blue":   4,
	"purple": 5,
	"cyan":   6,
	"white":  7,

	"light_black":   8,
	"light_red":     9,
	"light_green":   10,
	"light_yellow":  11,
	"light_blue":    12,
	"light_magenta": 13,
	"light_cyan":    14,
	"light_white":   15,
}

// Colors returns the accepted color names in lexical order.
func Colors() []string {
	names := make([]string, 0, len(consoleColors))
	for name := range consoleColors {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Effects returns the accepted effect names.
func Effects() []string {
	return []string{"bold", "italic", "underline", "reverse"}
}

// Sprint styles msg with the foreground color and effects. Each effect is
// one of [Effects], or "on_" followed by a color name to set the background.
// Names are case-insensitive.
func (c *Console) Sprint(msg, color string, effects ...string) (string, error) {
	fg, err := consoleColor(color)
	if err != nil {
		return "", err
	}

	style := c.r.NewStyle().Foreground(fg)

	for _, effect := range effects {
		name := strings.ToLower(strings.TrimSpace(effect))

		switch {
		case name == "bold":
			style = style.Bold(true)
		case name == "italic":
			style = style.Italic(true)
		case name == "underline":
			style = style.Underline(true)
		case name == "reverse":
			style = style.Reverse(true)
		case strings.HasPrefix(name, "on_"):
			bg, err := consoleColor(strings.TrimPrefix(name, "on_"))
			if err != nil {
				return "", err
			}

			style = style.Background(bg)
		default:
			return "", fmt.Errorf("unknown effect %q", effect)
		}
	}

	return style.Render(msg), nil
}

// Print writes msg styled by [Console.Sprint] followed by a newline.
func (c *Console) Print(msg, color string, effects ...string) error {
	s, err := c.Sprint(msg, color, effects...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(c.w, s)

	return err
}

func consoleColor(name string) (lipgloss.Color, error) {
	index, ok := consoleColors[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("unknown color %q", name)
	}

	return lipgloss.Color(strconv.Itoa(index)), nil
}

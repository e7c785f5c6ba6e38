package views

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// PopupRenderer draws modal prompts below a greyed out screen
type PopupRenderer struct {
	styles *Styles
}

// NewPopupRenderer creates a new popup renderer
func NewPopupRenderer(styles *Styles) *PopupRenderer {
	return &PopupRenderer{
		styles: styles,
	}
}

// RenderConfirm greys out body except the lines containing keep and places
// the boxed prompt centred underneath
func (pr *PopupRenderer) RenderConfirm(body, prompt, hint, keep string, width int) string {
	content := pr.styles.Confirm.Render(prompt)
	if hint != "" {
		content += "\n" + pr.styles.Dim.Render(hint)
	}
	box := pr.styles.Popup.Render(content)
	if width > lipgloss.Width(box) {
		box = lipgloss.PlaceHorizontal(width, lipgloss.Center, box)
	}
	return desaturateKeeping(strings.TrimRight(body, "\n"), keep) + "\n" + box + "\n"
}

// ANSI escape sequence regex to strip styles/colors
var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// desaturateKeeping turns everything grey except lines containing keepSubstr (plain text match)
func desaturateKeeping(s, keepSubstr string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, len(lines))
	grey := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	for i, line := range lines {
		plain := ansiRE.ReplaceAllString(line, "")
		if keepSubstr != "" && strings.Contains(plain, keepSubstr) {
			out[i] = line
		} else {
			out[i] = grey.Render(plain)
		}
	}
	return strings.Join(out, "\n")
}

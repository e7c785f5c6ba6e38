package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"svnbatch/internal/batch"
	"svnbatch/internal/domain"
)

// Renderer draws the path list and the batch progress line
type Renderer struct {
	styles *Styles
}

// NewRenderer creates a renderer with the default styles
func NewRenderer() *Renderer {
	return &Renderer{styles: NewStyles()}
}

// Styles exposes the renderer's styles
func (r *Renderer) Styles() *Styles { return r.styles }

// RenderPathRow renders one registry entry as "Path N  [x] /some/path"
func (r *Renderer) RenderPathRow(index int, entry domain.PathEntry, selected, missing bool, width int) string {
	cursor := "  "
	if selected {
		cursor = r.styles.Highlight.Render("▶ ")
	}

	label := fmt.Sprintf("Path %-3d", index+1)

	check := "[ ]"
	if entry.IncludeInOperations {
		check = "[x]"
	}

	// Truncate before styling so escape sequences are never cut
	raw := entry.Path
	if room := width - len(label) - len(check) - 16; width > 0 && room > 0 && lipgloss.Width(raw) > room {
		raw = truncate(raw, room)
	}

	var path string
	switch {
	case entry.Path == "":
		path = r.styles.Dim.Render("(empty)")
	case missing:
		path = raw + " " + r.styles.StatusWarning.Render("(missing)")
	default:
		path = raw
	}
	if !entry.IncludeInOperations && entry.Path != "" {
		path = r.styles.Dim.Render(path)
	}

	line := label + " " + check + " " + path
	if selected {
		line = r.styles.SelectionBg.Render(line)
	}
	return cursor + line
}

// RenderProgress renders "Update (2/5)" followed by a progress bar
func (r *Renderer) RenderProgress(st batch.Status, width int) string {
	if st.State != batch.Running {
		return ""
	}
	percent := 0.0
	if st.Total > 0 {
		percent = float64(st.Current) / float64(st.Total)
	}

	barWidth := width - 30
	if barWidth < 10 {
		barWidth = 10
	}
	if barWidth > 60 {
		barWidth = 60
	}
	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(barWidth),
	)

	text := fmt.Sprintf("%s (%d/%d)", st.Operation.Title(), st.Current, st.Total)
	if st.CancelRequested {
		text += " cancelling..."
	}
	return r.styles.StatusProgress.Render(text) + "  " + bar.ViewAs(percent)
}

// truncate shortens s to at most n visible cells, adding an ellipsis
func truncate(s string, n int) string {
	if n <= 1 {
		return "…"
	}
	var b strings.Builder
	w := 0
	for _, ch := range s {
		cw := lipgloss.Width(string(ch))
		if w+cw > n-1 {
			break
		}
		b.WriteRune(ch)
		w += cw
	}
	return b.String() + "…"
}

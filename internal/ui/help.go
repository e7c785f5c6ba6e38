package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"
)

// helpSection groups key bindings under a heading
type helpSection struct {
	title string
	keys  [][2]string
}

// renderHelpContent renders the full key reference
func renderHelpContent(k keyMap) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220"))

	sections := []helpSection{
		{"Paths", pairs(k.Up, k.Down, k.Add, k.Delete, k.Edit, k.Pick, k.Toggle)},
		{"Operations", pairs(k.Cleanup, k.Update, k.CleanupAll, k.UpdateAll, k.Cancel)},
		{"Results and settings", pairs(k.Save, k.Reload, k.ClearLog, k.ViewLog, k.ScrollUp, k.ScrollDown, k.Help, k.Quit)},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("svnbatch help"))
	b.WriteString("\n")
	for _, s := range sections {
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		for _, kv := range s.keys {
			fmt.Fprintf(&b, "  %s  %s\n", keyStyle.Render(fmt.Sprintf("%-8s", kv[0])), kv[1])
		}
	}

	b.WriteString(sectionStyle.Render("Notes"))
	b.WriteString("\n")
	for _, note := range []string{
		"1. Press a to add a path, then e to type it or o to choose a folder",
		"2. Unchecked paths are skipped by cleanup all / update all",
		"3. c and u act on the path under the cursor only",
		"4. Batch operations run one path at a time; esc stops after the current path",
		"5. Press s to save the path list, it is not saved automatically",
	} {
		b.WriteString("  " + note + "\n")
	}
	return b.String()
}

func pairs(bindings ...key.Binding) [][2]string {
	out := make([][2]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		out = append(out, [2]string{h.Key, h.Desc})
	}
	return out
}

// pagerCommand shows text in the ov pager. It implements tea.ExecCommand so
// Bubble Tea releases the terminal while ov runs.
type pagerCommand struct {
	content string
}

func (c *pagerCommand) Run() error {
	root, err := oviewer.NewRoot(strings.NewReader(c.content))
	if err != nil {
		return err
	}

	// Configure ov to not write on exit (to avoid messing with our screen)
	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}

// ov opens the terminal itself
func (c *pagerCommand) SetStdin(io.Reader)  {}
func (c *pagerCommand) SetStdout(io.Writer) {}
func (c *pagerCommand) SetStderr(io.Writer) {}

// showInPager returns a command that opens content in ov
func showInPager(content string) tea.Cmd {
	return tea.Exec(&pagerCommand{content: content}, func(err error) tea.Msg {
		return pagerDoneMsg{err: err}
	})
}

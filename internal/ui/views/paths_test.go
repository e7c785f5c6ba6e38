package views

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"svnbatch/internal/batch"
	"svnbatch/internal/domain"
)

func TestRenderPathRow(t *testing.T) {
	r := NewRenderer()

	row := r.RenderPathRow(0, domain.PathEntry{Path: "/wc/game", IncludeInOperations: true}, false, false, 80)
	assert.Contains(t, row, "Path 1")
	assert.Contains(t, row, "[x]")
	assert.Contains(t, row, "/wc/game")

	row = r.RenderPathRow(2, domain.PathEntry{Path: "/wc/tools"}, false, false, 80)
	assert.Contains(t, row, "Path 3")
	assert.Contains(t, row, "[ ]")

	row = r.RenderPathRow(1, domain.PathEntry{IncludeInOperations: true}, false, false, 80)
	assert.Contains(t, row, "(empty)")

	row = r.RenderPathRow(1, domain.PathEntry{Path: "/gone", IncludeInOperations: true}, true, true, 80)
	assert.Contains(t, row, "(missing)")
	assert.Contains(t, row, "▶")
}

func TestRenderPathRowTruncatesLongPaths(t *testing.T) {
	r := NewRenderer()
	long := "/" + strings.Repeat("very-long-directory/", 10) + "leaf"

	row := r.RenderPathRow(0, domain.PathEntry{Path: long, IncludeInOperations: true}, false, false, 60)
	assert.Contains(t, row, "…")
	assert.NotContains(t, row, "leaf")
	assert.LessOrEqual(t, lipgloss.Width(row), 60)
}

func TestRenderProgress(t *testing.T) {
	r := NewRenderer()

	assert.Empty(t, r.RenderProgress(batch.Status{State: batch.Idle}, 80))

	out := r.RenderProgress(batch.Status{State: batch.Running, Operation: domain.OpUpdate, Current: 2, Total: 5}, 80)
	assert.Contains(t, out, "Update (2/5)")
	assert.NotContains(t, out, "cancelling")

	out = r.RenderProgress(batch.Status{State: batch.Running, Operation: domain.OpCleanup, Current: 1, Total: 3, CancelRequested: true}, 80)
	assert.Contains(t, out, "Cleanup (1/3) cancelling...")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc…", truncate("abcdefgh", 4))
	assert.Equal(t, "…", truncate("abcdefgh", 1))
}

func TestRenderConfirmKeepsSelectedRows(t *testing.T) {
	pr := NewPopupRenderer(NewStyles())
	body := "Path 1   [x] /wc/a\nPath 2   [ ] /wc/b\n"

	out := pr.RenderConfirm(body, "Update all 1 selected paths? (y/n)", "y confirm, n cancel", "[x]", 80)
	plain := ansiRE.ReplaceAllString(out, "")
	assert.Contains(t, plain, "Path 1   [x] /wc/a")
	assert.Contains(t, plain, "Path 2   [ ] /wc/b")
	assert.Contains(t, plain, "Update all 1 selected paths? (y/n)")
	assert.Contains(t, plain, "y confirm, n cancel")
}

func TestDesaturateKeeping(t *testing.T) {
	in := "\x1b[1mkeep [x] me\x1b[0m\nother"
	out := desaturateKeeping(in, "[x]")
	lines := strings.Split(out, "\n")
	assert.Equal(t, "\x1b[1mkeep [x] me\x1b[0m", lines[0], "kept lines keep their styling")
	assert.Contains(t, lines[1], "other")
}

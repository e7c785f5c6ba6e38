package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"svnbatch/internal/batch"
	"svnbatch/internal/config"
	"svnbatch/internal/domain"
	"svnbatch/internal/registry"
	"svnbatch/internal/resultlog"
	"svnbatch/internal/svn"
	"svnbatch/internal/ui/views"
)

// inputMode is what the keyboard currently drives
type inputMode int

const (
	modeNormal inputMode = iota
	modeEdit
	modePick
	modeConfirm
)

// Model represents the UI state
type Model struct {
	ctx      context.Context // for svn commands, never cancelled
	config   *config.Config
	store    registry.Store
	registry *registry.Registry
	driver   *batch.Driver
	results  *resultlog.Log

	keys     keyMap
	help     help.Model
	input    textinput.Model
	picker   filepicker.Model
	viewport viewport.Model
	renderer *views.Renderer
	popup    *views.PopupRenderer

	mode         inputMode
	cursor       int
	editIndex    int
	pending      domain.Operation // batch waiting for confirmation
	singleActive bool
	quitting     bool

	status    string
	statusErr bool

	statDir func(path string) error
	missing map[string]bool // paths known not to be directories

	width  int
	height int
}

// NewModel creates a new UI model. Values of ctx reach the svn commands but
// its cancellation does not: a command that has started always runs to the
// end, even when the program is force-quit.
func NewModel(ctx context.Context, cfg *config.Config, store registry.Store, reg *registry.Registry, driver *batch.Driver, results *resultlog.Log) *Model {
	ti := textinput.New()
	ti.Placeholder = "/path/to/working/copy"
	ti.Prompt = ""
	ti.CharLimit = 4096

	vp := viewport.New(76, cfg.UISettings.LogHeight)
	renderer := views.NewRenderer()

	m := &Model{
		ctx:      context.WithoutCancel(ctx),
		config:   cfg,
		store:    store,
		registry: reg,
		driver:   driver,
		results:  results,
		keys:     defaultKeyMap(),
		help:     help.New(),
		input:    ti,
		viewport: vp,
		renderer: renderer,
		popup:    views.NewPopupRenderer(renderer.Styles()),
		width:    80,
		height:   24,
		statDir:  svn.CheckWorkingCopy,
		missing:  make(map[string]bool),
	}
	m.refreshLog()
	return m
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.viewport.Width = max(msg.Width-8, 20)
		m.viewport.Height = m.config.UISettings.LogHeight
		m.refreshLog()
		if m.mode == modePick {
			m.picker.Height = m.pickerHeight()
		}
		return m, nil

	case batchStepMsg:
		m.refreshLog()
		if msg.more {
			return m, m.stepCmd()
		}
		m.forgetDirs()
		m.reportSummary(m.driver.LastSummary())
		if m.quitting {
			return m, tea.Quit
		}
		return m, nil

	case singleDoneMsg:
		m.singleActive = false
		m.forgetDirs()
		m.refreshLog()
		switch {
		case errors.Is(msg.err, svn.ErrPathNotFound):
			m.setError("Path does not exist: %s", msg.path)
		case msg.err != nil:
			m.setError("%s failed: %v", msg.op.Title(), msg.err)
		case msg.outcome.OK():
			m.setStatus("%s finished: %s", msg.op.Title(), msg.path)
		default:
			m.setError("%s %s: %s", msg.op.Title(), msg.path, msg.outcome.Kind)
		}
		if m.quitting {
			return m, tea.Quit
		}
		return m, nil

	case pagerDoneMsg:
		if msg.err != nil {
			log.Printf("Pager error: %v", msg.err)
			m.setError("Pager failed: %v", msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeEdit:
			return m.updateEdit(msg)
		case modePick:
			return m.updatePick(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateNormal(msg)
		}
	}

	// The file picker reads directories asynchronously
	if m.mode == modePick {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	return m, nil
}

// updateNormal handles keys on the main screen
func (m *Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.busy() && !m.quitting {
			// Let the running svn command finish so the working copy is not left locked
			m.quitting = true
			m.driver.Cancel()
			m.setStatus("Waiting for the current path to finish before quitting (press q again to force)")
			return m, nil
		}
		m.driver.Cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		if m.driver.Status().State == batch.Running {
			m.driver.Cancel()
			m.setStatus("Cancelling after the current path...")
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < m.registry.Len()-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case key.Matches(msg, m.keys.ClearLog):
		m.results.Clear()
		m.refreshLog()
		return m, nil

	case key.Matches(msg, m.keys.ViewLog):
		if m.results.Len() == 0 {
			m.setStatus("No results yet")
			return m, nil
		}
		return m, showInPager(m.results.Render())

	case key.Matches(msg, m.keys.Help):
		return m, showInPager(renderHelpContent(m.keys))
	}

	// Everything below changes the path list or starts svn
	if m.busy() {
		if m.isActionKey(msg) {
			m.setError("An operation is running, press esc to cancel it")
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Add):
		m.cursor = m.registry.Add()
		m.setStatus("Added Path %d", m.cursor+1)

	case key.Matches(msg, m.keys.Delete):
		if err := m.registry.Remove(m.cursor); err != nil {
			m.setError("Nothing to delete")
			return m, nil
		}
		m.setStatus("Deleted Path %d", m.cursor+1)
		m.clampCursor()

	case key.Matches(msg, m.keys.Edit):
		entry, err := m.registry.Entry(m.cursor)
		if err != nil {
			return m, nil
		}
		m.mode = modeEdit
		m.editIndex = m.cursor
		m.input.SetValue(entry.Path)
		m.input.CursorEnd()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Pick):
		if m.registry.Len() == 0 {
			return m, nil
		}
		return m, m.openPicker()

	case key.Matches(msg, m.keys.Toggle):
		entry, err := m.registry.Entry(m.cursor)
		if err != nil {
			return m, nil
		}
		_ = m.registry.SetIncluded(m.cursor, !entry.IncludeInOperations)

	case key.Matches(msg, m.keys.Cleanup):
		return m, m.runSingle(domain.OpCleanup)

	case key.Matches(msg, m.keys.Update):
		return m, m.runSingle(domain.OpUpdate)

	case key.Matches(msg, m.keys.CleanupAll):
		return m, m.requestBatch(domain.OpCleanup)

	case key.Matches(msg, m.keys.UpdateAll):
		return m, m.requestBatch(domain.OpUpdate)

	case key.Matches(msg, m.keys.Save):
		if err := m.store.Save(m.registry); err != nil {
			log.Printf("Failed to save paths: %v", err)
			m.setError("Save failed: %v", err)
			return m, nil
		}
		m.results.Append("configuration saved")
		m.refreshLog()
		m.setStatus("Saved %d paths to %s", m.registry.Len(), m.store.Path())

	case key.Matches(msg, m.keys.Reload):
		if err := registry.LoadInto(m.store, m.registry); err != nil {
			log.Printf("Failed to reload paths: %v", err)
			m.setError("Reload failed: %v", err)
			return m, nil
		}
		if m.registry.Len() == 0 {
			m.registry.Add()
		}
		m.forgetDirs()
		m.clampCursor()
		m.setStatus("Reloaded %d paths from %s", m.registry.Len(), m.store.Path())
	}
	return m, nil
}

// updateEdit handles keys while a path is being typed
func (m *Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		path := strings.TrimSpace(m.input.Value())
		if err := m.registry.SetPath(m.editIndex, path); err != nil {
			m.setError("Edit failed: %v", err)
		} else {
			m.setStatus("Path %d set", m.editIndex+1)
		}
		m.input.Blur()
		m.mode = modeNormal
		return m, nil
	case tea.KeyEsc:
		m.input.Blur()
		m.mode = modeNormal
		return m, nil
	case tea.KeyCtrlC:
		m.driver.Cancel()
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// updateConfirm handles the y/n prompt before a batch
func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.mode = modeNormal
		return m, m.startBatch(m.pending)
	case "n", "N", "esc", "q":
		m.mode = modeNormal
		m.setStatus("%s cancelled", m.pending.Title())
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

// updatePick handles keys while the folder picker is open
func (m *Model) updatePick(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.mode = modeNormal
		m.setStatus("Folder selection cancelled")
		return m, nil
	case "ctrl+c":
		m.driver.Cancel()
		return m, tea.Quit
	case ".":
		m.choosePath(m.picker.CurrentDirectory)
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if selected, path := m.picker.DidSelectFile(msg); selected {
		m.choosePath(path)
		return m, nil
	}
	if disabled, path := m.picker.DidSelectDisabledFile(msg); disabled {
		m.setError("Only folders can be chosen: %s", path)
	}
	return m, cmd
}

// openPicker shows the folder picker for the entry under the cursor
func (m *Model) openPicker() tea.Cmd {
	fp := filepicker.New()
	fp.DirAllowed = true
	fp.FileAllowed = false
	fp.ShowHidden = false
	fp.AutoHeight = false
	fp.Height = m.pickerHeight()
	fp.CurrentDirectory = m.pickerStart()

	m.picker = fp
	m.editIndex = m.cursor
	m.mode = modePick
	return m.picker.Init()
}

func (m *Model) pickerStart() string {
	if entry, err := m.registry.Entry(m.cursor); err == nil && entry.Path != "" {
		if info, err := os.Stat(entry.Path); err == nil && info.IsDir() {
			return entry.Path
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

func (m *Model) pickerHeight() int {
	return max(m.height-10, 8)
}

func (m *Model) choosePath(path string) {
	m.mode = modeNormal
	if path == "" {
		return
	}
	if err := m.registry.SetPath(m.editIndex, path); err != nil {
		m.setError("Edit failed: %v", err)
		return
	}
	m.setStatus("Path %d set to %s", m.editIndex+1, path)
}

// requestBatch asks for confirmation (when configured) before a batch
func (m *Model) requestBatch(op domain.Operation) tea.Cmd {
	if len(m.registry.Selected()) == 0 {
		m.setError("No paths to %s", op)
		return nil
	}
	if m.config.UISettings.ConfirmBatch {
		m.pending = op
		m.mode = modeConfirm
		return nil
	}
	return m.startBatch(op)
}

// startBatch snapshots the selected paths and schedules the first step
func (m *Model) startBatch(op domain.Operation) tea.Cmd {
	paths := m.registry.Selected()
	if err := m.driver.Start(op, paths); err != nil {
		m.setError("%s: %v", op.Title(), err)
		return nil
	}
	m.refreshLog()
	m.setStatus("%s started for %d paths", op.Title(), len(paths))
	return m.stepCmd()
}

// stepCmd runs one batch step off the UI goroutine
func (m *Model) stepCmd() tea.Cmd {
	ctx, driver := m.ctx, m.driver
	return func() tea.Msg {
		return batchStepMsg{more: driver.Step(ctx)}
	}
}

// runSingle runs op against the entry under the cursor
func (m *Model) runSingle(op domain.Operation) tea.Cmd {
	entry, err := m.registry.Entry(m.cursor)
	if err != nil {
		return nil
	}
	if entry.Path == "" {
		m.setError("Path %d is empty", m.cursor+1)
		return nil
	}
	// Reported right away, svn is never started for a missing directory
	if m.checkDir(entry.Path) != nil {
		m.setError("Path does not exist: %s", entry.Path)
		return nil
	}

	m.singleActive = true
	m.setStatus("%s %s...", op.Title(), entry.Path)
	ctx, driver, path := m.ctx, m.driver, entry.Path
	return func() tea.Msg {
		outcome, err := driver.RunSingle(ctx, op, path)
		return singleDoneMsg{op: op, path: path, outcome: outcome, err: err}
	}
}

func (m *Model) reportSummary(s batch.Summary) {
	switch {
	case s.Cancelled:
		m.setError("%s cancelled after %d/%d paths", s.Operation.Title(), s.Processed, s.Total)
	case s.Failed > 0:
		m.setError("%s finished: %d paths processed, %d failed", s.Operation.Title(), s.Processed, s.Failed)
	default:
		m.setStatus("%s finished: %d paths processed", s.Operation.Title(), s.Processed)
	}
}

func (m *Model) busy() bool {
	return m.singleActive || m.driver.Busy()
}

func (m *Model) isActionKey(msg tea.KeyMsg) bool {
	return key.Matches(msg, m.keys.Add, m.keys.Delete, m.keys.Edit, m.keys.Pick, m.keys.Toggle,
		m.keys.Cleanup, m.keys.Update, m.keys.CleanupAll, m.keys.UpdateAll, m.keys.Save, m.keys.Reload)
}

func (m *Model) clampCursor() {
	if m.cursor >= m.registry.Len() {
		m.cursor = m.registry.Len() - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) refreshLog() {
	m.viewport.SetContent(m.results.Render())
	m.viewport.GotoBottom()
}

func (m *Model) setStatus(format string, a ...any) {
	m.status = fmt.Sprintf(format, a...)
	m.statusErr = false
}

func (m *Model) setError(format string, a ...any) {
	m.status = fmt.Sprintf(format, a...)
	m.statusErr = true
}

// View implements tea.Model
func (m *Model) View() string {
	styles := m.renderer.Styles()
	var b strings.Builder

	b.WriteString(styles.Title.Render("svnbatch"))
	b.WriteString("\n")
	b.WriteString(styles.Dim.Render(m.store.Path()))
	b.WriteString("\n\n")

	if m.mode == modePick {
		fmt.Fprintf(&b, "Choose a folder for Path %d (enter select, . current folder, esc cancel)\n", m.editIndex+1)
		b.WriteString(styles.Dim.Render(m.picker.CurrentDirectory))
		b.WriteString("\n")
		b.WriteString(m.picker.View())
		return styles.Main.Render(b.String())
	}

	if m.mode == modeConfirm {
		prompt := fmt.Sprintf("%s all %d selected paths? (y/n)", m.pending.Title(), len(m.registry.Selected()))
		b.WriteString(m.popup.RenderConfirm(m.renderRows(), prompt, "y/enter confirm, n/esc cancel", "[x]", m.width-4))
	} else {
		b.WriteString(m.renderRows())
	}

	if st := m.driver.Status(); st.State == batch.Running {
		b.WriteString("\n")
		b.WriteString(m.renderer.RenderProgress(st, m.width))
		b.WriteString("\n")
	}

	b.WriteString(styles.Label.Render("Results:"))
	b.WriteString("\n")
	b.WriteString(styles.LogBox.Render(m.viewport.View()))
	b.WriteString("\n")

	if m.status != "" {
		style := styles.StatusSuccess
		if m.statusErr {
			style = styles.StatusError
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(styles.Help.Render(m.help.View(m.keys)))
	return styles.Main.Render(b.String())
}

// renderRows renders the visible window of the path list around the cursor
func (m *Model) renderRows() string {
	entries := m.registry.Entries()
	visible := max(m.height-m.config.UISettings.LogHeight-14, 3)

	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(entries))

	var b strings.Builder
	for i := start; i < end; i++ {
		e := entries[i]
		if m.mode == modeEdit && i == m.editIndex {
			fmt.Fprintf(&b, "%s Path %-3d %s\n", m.renderer.Styles().Highlight.Render("✎"), i+1, m.input.View())
			continue
		}
		missing := m.dirMissing(e.Path)
		b.WriteString(m.renderer.RenderPathRow(i, e, i == m.cursor, missing, m.width))
		b.WriteString("\n")
	}
	if len(entries) > end || start > 0 {
		b.WriteString(m.renderer.Styles().Dim.Render(fmt.Sprintf("  %d-%d of %d", start+1, end, len(entries))))
		b.WriteString("\n")
	}
	return b.String()
}

// checkDir stats path and records the answer for rendering
func (m *Model) checkDir(path string) error {
	err := m.statDir(path)
	m.missing[path] = err != nil
	return err
}

// dirMissing reports whether a non-empty path is not an existing directory.
// Answers are cached until forgetDirs.
func (m *Model) dirMissing(path string) bool {
	if path == "" {
		return false
	}
	if missing, ok := m.missing[path]; ok {
		return missing
	}
	return m.checkDir(path) != nil
}

// forgetDirs drops cached directory checks after svn ran or the list was reloaded
func (m *Model) forgetDirs() {
	clear(m.missing)
}

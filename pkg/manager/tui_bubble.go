package manager

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// UIOptions configures the interactive shell.
type UIOptions struct {
	// Launcher spawns ssh/telnet. Defaults to an ExecLauncher.
	Launcher Launcher
	// Logger receives UI events. It must not write to the terminal.
	Logger *log.Logger
	// CopyToClipboard defaults to the system clipboard.
	CopyToClipboard func(string) error
}

// RunTUI loads the document behind store, runs the shell until the user quits
// and saves on the way out.
func RunTUI(store *Store, opts UIOptions) error {
	if store == nil {
		return fmt.Errorf("nil store")
	}
	m := newModel(store, opts)
	if missing := MissingPrograms(); len(missing) > 0 {
		m.logger.Warn("connection programs missing from PATH", "programs", missing)
		m.setError(fmt.Sprintf("not found in PATH: %s", strings.Join(missing, ", ")), 6000)
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// launchDoneMsg is delivered when the foreground ssh/telnet process exits.
type launchDoneMsg struct {
	name string
	err  error
}

type model struct {
	store    *Store
	doc      *Document
	nav      Navigator
	wizard   *Wizard
	launcher Launcher
	logger   *log.Logger
	copyFn   func(string) error

	theme Theme
	keys  shellKeyMap
	help  help.Model

	status      string
	statusErr   bool
	statusUntil time.Time

	// saveFailed is set when the last save on quit failed; ctrl+c then
	// quits without saving.
	saveFailed bool
	quitting   bool

	width  int
	height int
}

func newModel(store *Store, opts UIOptions) model {
	logger := opts.Logger
	if logger == nil {
		logger = NewDiscardLogger()
	}
	launcher := opts.Launcher
	if launcher == nil {
		launcher = NewExecLauncher(logger)
	}
	copyFn := opts.CopyToClipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}
	doc := store.Load()
	return model{
		store:    store,
		doc:      doc,
		wizard:   NewWizard(),
		launcher: launcher,
		logger:   logger,
		copyFn:   copyFn,
		theme:    LoadTheme(doc.Colors),
		keys:     newShellKeyMap(),
		help:     help.New(),
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case launchDoneMsg:
		if msg.err != nil {
			m.logger.Warn("connection ended with error", "profile", msg.name, "err", msg.err)
			m.setError(fmt.Sprintf("%s: %v", msg.name, msg.err), 4000)
		} else {
			m.setStatus(fmt.Sprintf("%s: session closed", msg.name), 2500)
		}
		return m, nil

	case tea.KeyMsg:
		if m.wizard.IsOpen() {
			return m.updateWizard(msg)
		}
		return m.updateShell(msg)
	}
	return m, nil
}

func (m model) updateWizard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	res, cmd := m.wizard.HandleKey(msg)
	switch res {
	case WizardCancelled:
		m.logger.Debug("wizard cancelled")
		m.setStatus("Cancelled", 1500)
	case WizardCompleted:
		if g, ok := m.wizard.TakeGroup(); ok {
			m.doc.AppendGroup(g)
			m.logger.Info("group created", "group", g.Name, "profiles", len(g.Profiles))
			m.setStatus(StepDone.Prompt().Title, 2500)
		} else {
			m.logger.Debug("wizard finished without a group")
			m.setStatus("Session group discarded", 1500)
		}
	}
	return m, cmd
}

func (m model) updateShell(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Abandon):
		if m.saveFailed {
			m.logger.Warn("quitting without saving")
			m.quitting = true
			return m, tea.Quit
		}
		return m.saveAndQuit()

	case key.Matches(msg, m.keys.Quit):
		return m.saveAndQuit()

	case key.Matches(msg, m.keys.Add):
		return m, m.wizard.Open()

	case key.Matches(msg, m.keys.Down):
		m.nav.Next(m.doc)
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.nav.Previous(m.doc)
		return m, nil

	case key.Matches(msg, m.keys.Remove):
		m.removeSelected()
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		m.doc = m.store.Load()
		m.theme = LoadTheme(m.doc.Colors)
		m.nav.Clamp(m.doc)
		m.logger.Info("reloaded", "path", m.store.Path())
		m.setStatus("Reloaded "+m.store.Path(), 2000)
		return m, nil

	case key.Matches(msg, m.keys.Connect):
		return m.connectSelected()

	case key.Matches(msg, m.keys.Copy):
		p, ok := m.nav.SelectedProfile(m.doc)
		if !ok {
			m.setError("select a session to copy", 1500)
			return m, nil
		}
		line := p.Target().CommandLine()
		if err := m.copyFn(line); err != nil {
			m.setError(fmt.Sprintf("clipboard: %v", err), 2500)
			return m, nil
		}
		m.setStatus("Copied: "+line, 2000)
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	return m, nil
}

func (m *model) removeSelected() {
	row, ok := m.nav.SelectedRow(m.doc)
	if !ok {
		return
	}
	label := m.doc.Groups[row.Group].Name
	if row.Kind == RowProfile {
		label = m.doc.Groups[row.Group].Profiles[row.Profile].Name
	}
	if _, ok := m.nav.RemoveSelected(m.doc); !ok {
		return
	}
	if row.Kind == RowGroup {
		m.logger.Info("group removed", "group", label)
		m.setStatus("Removed group "+label, 2000)
	} else {
		m.logger.Info("session removed", "profile", label)
		m.setStatus("Removed session "+label, 2000)
	}
}

func (m model) connectSelected() (tea.Model, tea.Cmd) {
	p, ok := m.nav.SelectedProfile(m.doc)
	if !ok {
		m.setError("select a session to connect", 1500)
		return m, nil
	}
	cmd, err := m.launcher.Command(p.Target())
	if err != nil {
		m.logger.Error("launch failed", "profile", p.Name, "err", err)
		m.setError(fmt.Sprintf("launch %s: %v", p.Name, err), 4000)
		return m, nil
	}
	name := p.Name
	return m, tea.Exec(cmd, func(err error) tea.Msg {
		return launchDoneMsg{name: name, err: err}
	})
}

func (m model) saveAndQuit() (tea.Model, tea.Cmd) {
	if err := m.store.Save(m.doc); err != nil {
		m.saveFailed = true
		m.setError(fmt.Sprintf("save failed: %v (q: retry, ctrl+c: quit without saving)", err), 60000)
		return m, nil
	}
	m.saveFailed = false
	m.quitting = true
	return m, tea.Quit
}

func (m *model) setStatus(s string, ms int) {
	m.status = s
	m.statusErr = false
	m.statusUntil = time.Now().Add(time.Duration(ms) * time.Millisecond)
}

func (m *model) setError(s string, ms int) {
	m.setStatus(s, ms)
	m.statusErr = true
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	width := m.width
	if width <= 0 {
		width = 80
	}

	if m.wizard.IsOpen() {
		popup := m.wizard.View(m.theme)
		if m.width > 0 && m.height > 0 {
			return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, popup)
		}
		return popup
	}

	var b strings.Builder
	b.WriteString(m.theme.Title.Render("sessman: Sessions"))
	b.WriteString("\n\n")
	b.WriteString(m.renderTable(width))
	b.WriteString("\n")

	if m.status != "" && time.Now().Before(m.statusUntil) {
		if m.statusErr {
			b.WriteString(m.theme.Error.Render(m.status))
		} else {
			b.WriteString(m.theme.Success.Render(m.status))
		}
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

var tableColumns = []struct {
	title   string
	percent int
}{
	{"Group Name", 20},
	{"Session Name", 20},
	{"Username", 20},
	{"IP", 30},
	{"Port", 10},
}

const selectionMarker = ">> "

func (m model) renderTable(width int) string {
	inner := width - len(selectionMarker)
	if inner < len(tableColumns) {
		inner = len(tableColumns)
	}
	widths := make([]int, len(tableColumns))
	for i, c := range tableColumns {
		widths[i] = inner * c.percent / 100
	}

	row := func(cells ...string) string {
		var b strings.Builder
		for i, c := range cells {
			b.WriteString(lipgloss.NewStyle().Width(widths[i]).MaxWidth(widths[i]).Render(c))
		}
		return b.String()
	}

	lines := make([]string, 0, MaxRowIndex(m.doc)+1)
	selected, hasSel := m.nav.Selected()
	i := 0
	for _, g := range m.doc.Groups {
		lines = append(lines, m.decorate(i, selected, hasSel, row(g.Name, "", "", "", ""), m.theme.Group))
		i++
		for _, p := range g.Profiles {
			lines = append(lines, m.decorate(i, selected, hasSel, row("", p.Name, p.Username(), p.Host(), p.Port()), m.theme.Profile))
			i++
		}
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", len(selectionMarker)))
	b.WriteString(m.theme.Header.Render(row(tableColumns[0].title, tableColumns[1].title, tableColumns[2].title, tableColumns[3].title, tableColumns[4].title)))
	b.WriteString("\n")
	if len(lines) == 0 {
		b.WriteString(m.theme.Dim.Render("   no session groups yet, press a to add one"))
		b.WriteString("\n")
		return b.String()
	}

	start, end := visibleWindow(len(lines), selected, hasSel, m.tableHeight())
	for _, l := range lines[start:end] {
		b.WriteString(l)
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) decorate(i, selected int, hasSel bool, line string, style lipgloss.Style) string {
	if hasSel && i == selected {
		return m.theme.Selected.Render(selectionMarker + line)
	}
	return strings.Repeat(" ", len(selectionMarker)) + style.Render(line)
}

// tableHeight is the number of body rows that fit; 0 means unlimited.
func (m model) tableHeight() int {
	if m.height <= 0 {
		return 0
	}
	// title, blank, header, status, help
	h := m.height - 6
	if m.help.ShowAll {
		h -= 3
	}
	if h < 1 {
		h = 1
	}
	return h
}

// visibleWindow returns [start,end) of n rows such that the selection stays in
// view within height rows.
func visibleWindow(n, selected int, hasSel bool, height int) (int, int) {
	if height <= 0 || n <= height {
		return 0, n
	}
	if !hasSel || selected < height {
		return 0, height
	}
	start := selected - height + 1
	if start+height > n {
		start = n - height
	}
	return start, start + height
}

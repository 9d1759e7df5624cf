package manager

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// WizardStep is a state of the group builder popup.
type WizardStep int

const (
	StepGroupName WizardStep = iota
	StepProfileName
	StepProfileProtocol
	StepProfileEndpoint
	StepProfileAddConfirm
	StepProfileAddMore
	StepGroupAddConfirm
	StepDone
)

func (s WizardStep) String() string {
	switch s {
	case StepGroupName:
		return "group-name"
	case StepProfileName:
		return "profile-name"
	case StepProfileProtocol:
		return "profile-protocol"
	case StepProfileEndpoint:
		return "profile-endpoint"
	case StepProfileAddConfirm:
		return "profile-add-confirm"
	case StepProfileAddMore:
		return "profile-add-more"
	case StepGroupAddConfirm:
		return "group-add-confirm"
	case StepDone:
		return "done"
	}
	return fmt.Sprintf("WizardStep(%d)", int(s))
}

// IsConfirm reports whether the step takes a y/n answer instead of text.
func (s WizardStep) IsConfirm() bool {
	switch s {
	case StepProfileAddConfirm, StepProfileAddMore, StepGroupAddConfirm:
		return true
	}
	return false
}

type stepPrompt struct {
	Title       string
	Placeholder string
}

// Prompt returns the popup title and input placeholder for s.
func (s WizardStep) Prompt() stepPrompt {
	switch s {
	case StepGroupName:
		return stepPrompt{Title: "Session Group Name:", Placeholder: "group name"}
	case StepProfileName:
		return stepPrompt{Title: "Session Name:", Placeholder: "session name"}
	case StepProfileProtocol:
		return stepPrompt{Title: "Session Type (TELNET/SSH):", Placeholder: "ssh"}
	case StepProfileEndpoint:
		return stepPrompt{Title: "Connection data:", Placeholder: "username@ip:port"}
	case StepProfileAddConfirm:
		return stepPrompt{Title: "Add session? (y/n)", Placeholder: "y/n"}
	case StepProfileAddMore:
		return stepPrompt{Title: "Add another session? (y/n)", Placeholder: "y/n"}
	case StepGroupAddConfirm:
		return stepPrompt{Title: "Add session group? (y/n)", Placeholder: "y/n"}
	case StepDone:
		return stepPrompt{Title: "Session group has been created", Placeholder: ""}
	}
	panic(fmt.Sprintf("no prompt for wizard step %d", int(s)))
}

// WizardResult tells the caller what a key did to the wizard.
type WizardResult int

const (
	// WizardContinue: still collecting input.
	WizardContinue WizardResult = iota
	// WizardCancelled: escape pressed, pending data discarded, popup closed.
	WizardCancelled
	// WizardCompleted: Done reached, popup closed. TakeGroup returns the
	// group if the final confirmation was accepted.
	WizardCompleted
)

type inputKind int

const (
	inputSubmit inputKind = iota
	inputYes
	inputNo
	inputCancel
)

// profileDraft accumulates one profile. Unset fields are nil.
type profileDraft struct {
	name     *string
	protocol *Protocol
	endpoint *string
}

func (d *profileDraft) build() (Profile, bool) {
	if d == nil || d.name == nil || d.protocol == nil || d.endpoint == nil {
		return Profile{}, false
	}
	return Profile{Name: *d.name, Protocol: *d.protocol, Endpoint: *d.endpoint}, true
}

// groupDraft accumulates the group being built.
type groupDraft struct {
	name     *string
	profiles []Profile
}

func (d *groupDraft) build() (Group, bool) {
	if d == nil || d.name == nil {
		return Group{}, false
	}
	profiles := make([]Profile, len(d.profiles))
	copy(profiles, d.profiles)
	return Group{Name: *d.name, Profiles: profiles}, true
}

// Wizard collects a new Group one field at a time.
type Wizard struct {
	step  WizardStep
	open  bool
	input textinput.Model

	group   *groupDraft
	profile *profileDraft

	// accepted is set when GroupAddConfirm is answered with y.
	accepted *Group
	finished *Group
}

// NewWizard returns a closed wizard positioned at StepGroupName.
func NewWizard() *Wizard {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.Width = 40
	w := &Wizard{input: ti}
	w.reset()
	return w
}

func (w *Wizard) reset() {
	w.step = StepGroupName
	w.group = nil
	w.profile = nil
	w.accepted = nil
	w.clearInput()
}

func (w *Wizard) clearInput() {
	w.input.Reset()
	w.input.Placeholder = w.step.Prompt().Placeholder
}

// Open starts a fresh build and focuses the text field.
func (w *Wizard) Open() tea.Cmd {
	w.reset()
	w.finished = nil
	w.open = true
	return w.input.Focus()
}

// IsOpen reports whether the popup is showing.
func (w *Wizard) IsOpen() bool { return w.open }

// Step returns the current step.
func (w *Wizard) Step() WizardStep { return w.step }

// Value returns the current contents of the text field.
func (w *Wizard) Value() string { return w.input.Value() }

// TakeGroup hands over the group produced by the last completed build.
func (w *Wizard) TakeGroup() (Group, bool) {
	if w.finished == nil {
		return Group{}, false
	}
	g := *w.finished
	w.finished = nil
	return g, true
}

func (w *Wizard) close() {
	w.open = false
	w.input.Blur()
	w.reset()
}

// HandleKey routes one key press into the wizard. Enter submits text steps,
// y/n answer confirm steps, esc cancels from any step. On text steps every
// other key edits the field; on confirm steps other keys are ignored.
func (w *Wizard) HandleKey(msg tea.KeyMsg) (WizardResult, tea.Cmd) {
	if !w.open {
		return WizardContinue, nil
	}
	if msg.Type == tea.KeyEsc {
		return w.apply(inputCancel, ""), nil
	}

	if w.step.IsConfirm() {
		switch msg.String() {
		case "y", "Y":
			return w.apply(inputYes, ""), nil
		case "n", "N":
			return w.apply(inputNo, ""), nil
		}
		return WizardContinue, nil
	}

	if msg.Type == tea.KeyEnter {
		return w.apply(inputSubmit, w.input.Value()), nil
	}
	var cmd tea.Cmd
	w.input, cmd = w.input.Update(msg)
	return WizardContinue, cmd
}

// apply runs one transition and converts the resulting step into a result.
func (w *Wizard) apply(kind inputKind, text string) WizardResult {
	if kind == inputCancel {
		w.close()
		return WizardCancelled
	}
	before := w.step
	next := w.transition(kind, text)
	if next == before {
		return WizardContinue
	}
	w.step = next
	w.clearInput()
	if next == StepDone {
		w.finished = w.accepted
		w.close()
		return WizardCompleted
	}
	return WizardContinue
}

// transition computes the step that follows w.step for the given input and
// performs the storage action tied to it. Returning w.step means "ignored".
func (w *Wizard) transition(kind inputKind, text string) WizardStep {
	text = strings.TrimSpace(text)

	switch w.step {
	case StepGroupName:
		if kind != inputSubmit || text == "" {
			return w.step
		}
		w.group = &groupDraft{name: &text, profiles: []Profile{}}
		return StepProfileName

	case StepProfileName:
		if kind != inputSubmit || text == "" {
			return w.step
		}
		w.profile = &profileDraft{name: &text}
		return StepProfileProtocol

	case StepProfileProtocol:
		if kind != inputSubmit || text == "" {
			return w.step
		}
		proto := ParseProtocol(text)
		w.profile.protocol = &proto
		return StepProfileEndpoint

	case StepProfileEndpoint:
		if kind != inputSubmit || text == "" {
			return w.step
		}
		w.profile.endpoint = &text
		return StepProfileAddConfirm

	case StepProfileAddConfirm:
		switch kind {
		case inputYes:
			if p, ok := w.profile.build(); ok {
				w.group.profiles = append(w.group.profiles, p)
			}
			w.profile = nil
			return StepProfileAddMore
		case inputNo:
			w.profile = nil
			return StepProfileAddMore
		}
		return w.step

	case StepProfileAddMore:
		switch kind {
		case inputYes:
			return StepProfileName
		case inputNo:
			return StepGroupAddConfirm
		}
		return w.step

	case StepGroupAddConfirm:
		switch kind {
		case inputYes:
			if g, ok := w.group.build(); ok {
				w.accepted = &g
			}
			w.group = nil
			return StepDone
		case inputNo:
			w.group = nil
			w.accepted = nil
			return StepDone
		}
		return w.step

	case StepDone:
		return w.step
	}
	panic(fmt.Sprintf("unhandled wizard step %d", int(w.step)))
}

// View renders the popup body.
func (w *Wizard) View(th Theme) string {
	if !w.open {
		return ""
	}
	p := w.step.Prompt()
	var b strings.Builder
	b.WriteString(th.PopupTitle.Render(p.Title))
	b.WriteString("\n\n")
	if w.step.IsConfirm() {
		b.WriteString(th.Dim.Render("press y or n, esc to cancel"))
	} else {
		b.WriteString(w.input.View())
		b.WriteString("\n\n")
		b.WriteString(th.Dim.Render("enter to submit, esc to cancel"))
	}
	return th.Popup.Render(b.String())
}

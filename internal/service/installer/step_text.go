package installer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// TextStep collects a single value. An empty answer keeps the current one.
type TextStep struct {
	input  textinput.Model
	title  string
	hint   string
	masked bool
	ready  bool

	get  func(state *InstallState) string
	set  func(state *InstallState, value string)
	skip func(state *InstallState) bool
}

func (s *TextStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *TextStep) prepare(state *InstallState) {
	s.input = textinput.New()
	s.input.Focus()
	s.input.CharLimit = 255
	s.input.Width = 48
	s.input.Placeholder = s.get(state)
	if s.masked {
		s.input.Placeholder = ""
		s.input.EchoMode = textinput.EchoPassword
		s.input.EchoCharacter = '•'
	}
	s.ready = true
}

func (s *TextStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.skip != nil && s.skip(state) {
		return nil, nil
	}
	if !s.ready {
		s.prepare(state)
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if value := strings.TrimSpace(s.input.Value()); value != "" {
			s.set(state, value)
		}
		return nil, nil
	}
	return s, cmd
}

func (s *TextStep) View(state *InstallState) string {
	if !s.ready {
		s.prepare(state)
	}
	hint := s.hint
	if hint == "" && !s.masked {
		hint = "press enter to keep the placeholder value"
	}
	return fmt.Sprintf("%s:\n\n%s\n\n(%s)\n", s.title, s.input.View(), hint)
}

func NewEndpointStep() Step {
	return &TextStep{
		title: "NX-API endpoint URL",
		get:   func(st *InstallState) string { return st.Endpoint },
		set:   func(st *InstallState, v string) { st.Endpoint = v },
	}
}

func NewUsernameStep() Step {
	return &TextStep{
		title: "NX-API username",
		get:   func(st *InstallState) string { return st.Username },
		set:   func(st *InstallState, v string) { st.Username = v },
	}
}

func NewPasswordStep() Step {
	return &TextStep{
		title:  "NX-API password",
		hint:   "press enter to confirm",
		masked: true,
		get:    func(st *InstallState) string { return st.Password },
		set:    func(st *InstallState, v string) { st.Password = v },
	}
}

func NewReservedDeviceStep() Step {
	return &TextStep{
		title: "Device identifier routed to the real switch",
		get:   func(st *InstallState) string { return st.ReservedDeviceID },
		set:   func(st *InstallState, v string) { st.ReservedDeviceID = v },
	}
}

func NewSSHPasswordStep() Step {
	return &TextStep{
		title:  "SSH login password",
		hint:   "optional, press enter to allow logins without a password",
		masked: true,
		get:    func(st *InstallState) string { return st.SSHPassword },
		set:    func(st *InstallState, v string) { st.SSHPassword = v },
		skip:   func(st *InstallState) bool { return !st.EnableSSH },
	}
}

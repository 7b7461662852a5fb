package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/objref/dispatch"
	objerrors "github.com/wippyai/objref/errors"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1E1E2E")).
			Background(lipgloss.Color("#F9E2AF")).
			Padding(0, 1)

	keywordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6E3A1"))

	aliasStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086")).
			Italic(true)

	witStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#89DCEB"))

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F9E2AF"))

	outputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6E3A1")).
			Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F38BA8"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086"))
)

type pickerState int

const (
	pickCommand pickerState = iota
	fillArgs
	showOutcome
)

// picker is the terminal UI behind `objref repl`: choose a command, fill in
// its arguments, see the outputs, repeat.
type picker struct {
	session *dispatch.Session
	cmds    []*dispatch.Command

	// params are the fields of the command being filled in, handle first
	// for instance commands.
	params []dispatch.Param
	fields []textinput.Model
	focus  int

	outcome string
	err     error
	cursor  int
	state   pickerState
}

var handleParam = dispatch.Param{Name: "handle", Type: wit.U32{}}

func newPicker(s *dispatch.Session) *picker {
	return &picker{session: s, cmds: s.Commands().Commands()}
}

type outcomeMsg struct {
	err     error
	outcome string
}

func (p *picker) Init() tea.Cmd {
	return nil
}

func (p *picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case outcomeMsg:
		p.outcome, p.err = msg.outcome, msg.err
		p.state = showOutcome
		return p, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return p, tea.Quit
		}
		switch p.state {
		case pickCommand:
			return p.updatePick(msg)
		case fillArgs:
			return p.updateFill(msg)
		case showOutcome:
			return p.updateOutcome(msg)
		}
	}
	return p, nil
}

func (p *picker) updatePick(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.cmds)-1 {
			p.cursor++
		}
	case "enter":
		p.openFields()
		if len(p.fields) == 0 {
			return p, p.invoke()
		}
		p.state = fillArgs
	}
	return p, nil
}

func (p *picker) updateFill(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		p.fields = nil
		p.state = pickCommand
		return p, nil
	case "enter":
		return p, p.invoke()
	case "tab", "shift+tab":
		step := 1
		if msg.String() == "shift+tab" {
			step = len(p.fields) - 1
		}
		p.fields[p.focus].Blur()
		p.focus = (p.focus + step) % len(p.fields)
		return p, p.fields[p.focus].Focus()
	}

	var cmd tea.Cmd
	p.fields[p.focus], cmd = p.fields[p.focus].Update(msg)
	return p, cmd
}

func (p *picker) updateOutcome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return p, tea.Quit
	case "enter", "esc":
		p.outcome, p.err = "", nil
		p.state = pickCommand
	}
	return p, nil
}

func (p *picker) openFields() {
	c := p.cmds[p.cursor]
	p.params = p.params[:0]
	if c.Scope == dispatch.Instance {
		p.params = append(p.params, handleParam)
	}
	p.params = append(p.params, c.Params...)

	p.fields = make([]textinput.Model, len(p.params))
	for i, param := range p.params {
		f := textinput.New()
		f.Prompt = fmt.Sprintf("%-8s ", param.Name)
		f.Placeholder = dispatch.TypeName(param.Type)
		f.CharLimit = 64
		f.Width = 32
		p.fields[i] = f
	}
	p.focus = 0
	if len(p.fields) > 0 {
		p.fields[0].Focus()
	}
}

// invoke reads the selected command and its fields and returns a tea.Cmd
// that dispatches them. The command runs off the update loop, so it sees
// only the values captured here.
func (p *picker) invoke() tea.Cmd {
	c := p.cmds[p.cursor]
	name, nout, s := c.Name, c.Outputs(), p.session

	args := make([]dispatch.Value, len(p.fields))
	for i, f := range p.fields {
		v, err := convertArg(f.Value(), p.params[i].Type)
		if err != nil {
			err = fmt.Errorf("%s: %w", p.params[i].Name, err)
			return func() tea.Msg { return outcomeMsg{err: err} }
		}
		args[i] = v
	}

	return func() tea.Msg {
		out, err := s.Call(context.Background(), name, nout, args...)
		switch {
		case err != nil:
			return outcomeMsg{err: err}
		case len(out) == 0:
			return outcomeMsg{outcome: "ok"}
		default:
			return outcomeMsg{outcome: formatValues(out)}
		}
	}
}

// convertArg reads a field as a value of the parameter's type. A field
// that does not parse as that type goes through the generic token rules,
// so the dispatcher reports the mismatch.
func convertArg(text string, t wit.Type) (dispatch.Value, error) {
	text = strings.TrimSpace(text)
	switch t.(type) {
	case wit.String:
		return dispatch.Text(text), nil
	case wit.U8, wit.U16, wit.U32, wit.U64:
		if u, err := strconv.ParseUint(text, 10, 64); err == nil {
			return dispatch.Uint(u), nil
		}
	case wit.S8, wit.S16, wit.S32, wit.S64:
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return dispatch.Int(i), nil
		}
	case wit.F32, wit.F64:
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return dispatch.Number(f), nil
		}
	}
	return parseToken(text)
}

func (p *picker) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s layout, %d live\n\n",
		headerStyle.Render("objref"), p.session.Layout(), p.session.Count())

	switch p.state {
	case pickCommand:
		for i, c := range p.cmds {
			marker := "  "
			if i == p.cursor {
				marker = cursorStyle.Render("▸ ")
			}
			b.WriteString(marker + describe(c) + "\n")
		}
		b.WriteString("\n" + hintStyle.Render("↑/↓ move • enter choose • q quit"))

	case fillArgs:
		c := p.cmds[p.cursor]
		fmt.Fprintf(&b, "%s %s\n\n", keywordStyle.Render(c.Name), witStyle.Render(c.Signature()))
		for _, f := range p.fields {
			b.WriteString(f.View() + "\n")
		}
		b.WriteString("\n" + hintStyle.Render("tab next • enter dispatch • esc back"))

	case showOutcome:
		c := p.cmds[p.cursor]
		b.WriteString(keywordStyle.Render(c.Name) + " → ")
		if p.err != nil {
			msg := p.err.Error()
			if kind := objerrors.KindOf(p.err); kind != "" {
				msg = "[" + string(kind) + "] " + msg
			}
			b.WriteString(failStyle.Render(msg))
		} else {
			b.WriteString(outputStyle.Render(p.outcome))
		}
		b.WriteString("\n\n" + hintStyle.Render("enter continue • q quit"))
	}
	return b.String()
}

func describe(c *dispatch.Command) string {
	s := keywordStyle.Render(c.Name) + " " + witStyle.Render(c.Signature())
	if len(c.Aliases) > 0 {
		s += " " + aliasStyle.Render("("+strings.Join(c.Aliases, ", ")+")")
	}
	return s
}

func runInteractive(s *dispatch.Session) error {
	_, err := tea.NewProgram(newPicker(s), tea.WithAltScreen()).Run()
	return err
}

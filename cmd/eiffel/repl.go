package main

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mgomes/eiffel/eiffel"
)

var (
	accentColor    = lipgloss.Color("#2563EB")
	successColor   = lipgloss.Color("#10B981")
	errorColor     = lipgloss.Color("#EF4444")
	mutedColor     = lipgloss.Color("#6B7280")
	highlightColor = lipgloss.Color("#F59E0B")

	promptStyle   = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	resultStyle   = lipgloss.NewStyle().Foreground(successColor)
	printedStyle  = lipgloss.NewStyle()
	errorStyle    = lipgloss.NewStyle().Foreground(errorColor)
	mutedStyle    = lipgloss.NewStyle().Foreground(mutedColor)
	headerStyle   = lipgloss.NewStyle().Foreground(accentColor).Bold(true).Padding(0, 1)
	helpKeyStyle  = lipgloss.NewStyle().Foreground(highlightColor)
	helpDescStyle = lipgloss.NewStyle().Foreground(mutedColor)
	panelStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)
)

type historyEntry struct {
	input   string
	printed string
	output  string
	isErr   bool
}

type replModel struct {
	textInput   textinput.Model
	session     *eiffel.Session
	history     []historyEntry
	cmdHistory  []string
	historyIdx  int
	width       int
	height      int
	showHelp    bool
	showVars    bool
	quitting    bool
	initialized bool
}

type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	Quit  key.Binding
	Clear key.Binding
	Tab   key.Binding
	Vars  key.Binding
	Help  key.Binding
}

var keys = keyMap{
	Up:    key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "previous input")),
	Down:  key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next input")),
	Enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "evaluate")),
	Quit:  key.NewBinding(key.WithKeys("ctrl+c", "ctrl+d"), key.WithHelp("ctrl+c", "quit")),
	Clear: key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
	Tab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "complete")),
	Vars:  key.NewBinding(key.WithKeys("ctrl+v"), key.WithHelp("ctrl+v", "variables")),
	Help:  key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "help")),
}

var replKeywords = []string{
	"class", "feature", "do", "end", "if", "then", "else", "elseif",
	"from", "until", "loop", "local", "create", "Current", "Void", "print",
}

// replStepQuota keeps a runaway loop from freezing the terminal.
const replStepQuota = 1_000_000

func newREPLModel() replModel {
	return newREPLModelWithEngine(eiffel.MustNewEngine(eiffel.Config{StepQuota: replStepQuota}))
}

func newREPLModelWithEngine(engine *eiffel.Engine) replModel {
	ti := textinput.New()
	ti.Placeholder = "statement, expression or class..."
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = 60
	ti.PromptStyle = promptStyle
	ti.Prompt = "eiffel> "

	return replModel{
		textInput:  ti,
		session:    engine.NewSession(),
		history:    make([]historyEntry, 0),
		cmdHistory: make([]string, 0),
		historyIdx: -1,
	}
}

func (m replModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 12
		m.initialized = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Clear):
			m.history = make([]historyEntry, 0)
			return m, nil
		case key.Matches(msg, keys.Vars):
			m.showVars = !m.showVars
			return m, nil
		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		case key.Matches(msg, keys.Up):
			m = m.recall(-1)
			return m, nil
		case key.Matches(msg, keys.Down):
			m = m.recall(1)
			return m, nil
		case key.Matches(msg, keys.Tab):
			m = m.handleAutocomplete()
			return m, nil
		case key.Matches(msg, keys.Enter):
			input := strings.TrimSpace(m.textInput.Value())
			if input == "" {
				return m, nil
			}
			m.textInput.SetValue("")
			m.historyIdx = -1
			if strings.HasPrefix(input, ":") {
				return m.handleCommand(input)
			}
			m.history = append(m.history, m.evaluate(input))
			m.cmdHistory = append(m.cmdHistory, input)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// recall moves through previous inputs; dir is -1 for older and 1 for newer.
func (m replModel) recall(dir int) replModel {
	if len(m.cmdHistory) == 0 {
		return m
	}
	switch {
	case dir < 0 && m.historyIdx == -1:
		m.historyIdx = len(m.cmdHistory) - 1
	case dir < 0 && m.historyIdx > 0:
		m.historyIdx--
	case dir > 0 && m.historyIdx == -1:
		return m
	case dir > 0 && m.historyIdx < len(m.cmdHistory)-1:
		m.historyIdx++
	case dir > 0:
		m.historyIdx = -1
		m.textInput.SetValue("")
		return m
	}
	m.textInput.SetValue(m.cmdHistory[m.historyIdx])
	m.textInput.CursorEnd()
	return m
}

func (m replModel) handleCommand(input string) (replModel, tea.Cmd) {
	name := strings.Fields(input)[0]
	switch name {
	case ":help", ":h":
		m.showHelp = !m.showHelp
	case ":clear", ":c":
		m.history = make([]historyEntry, 0)
	case ":vars", ":v":
		m.showVars = !m.showVars
	case ":classes":
		classes := m.session.Classes()
		output := "No classes defined"
		if len(classes) > 0 {
			output = strings.Join(classes, ", ")
		}
		m.history = append(m.history, historyEntry{input: input, output: output})
	case ":reset", ":r":
		m.session.Reset()
		m.history = append(m.history, historyEntry{input: input, output: "Session reset"})
	case ":quit", ":q":
		m.quitting = true
		return m, tea.Quit
	default:
		m.history = append(m.history, historyEntry{
			input:  input,
			output: fmt.Sprintf("Unknown command: %s", name),
			isErr:  true,
		})
	}
	return m, nil
}

func (m replModel) handleAutocomplete() replModel {
	input := m.textInput.Value()
	start := len(input)
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isWordRune(r) {
			break
		}
		start -= size
	}
	lastWord := input[start:]
	if lastWord == "" {
		return m
	}

	candidates := append([]string{}, replKeywords...)
	candidates = append(candidates, m.session.Classes()...)
	for _, binding := range m.session.Bindings() {
		candidates = append(candidates, binding.Name)
	}

	var completions []string
	for _, candidate := range candidates {
		if strings.HasPrefix(candidate, lastWord) && candidate != lastWord {
			completions = append(completions, candidate)
		}
	}

	switch len(completions) {
	case 0:
	case 1:
		m.textInput.SetValue(strings.TrimSuffix(input, lastWord) + completions[0])
		m.textInput.CursorEnd()
	default:
		m.history = append(m.history, historyEntry{output: "Completions: " + strings.Join(completions, ", ")})
	}
	return m
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (m replModel) evaluate(input string) historyEntry {
	entry := historyEntry{input: input}
	var out strings.Builder
	val, err := m.session.Eval(context.Background(), input, &out)
	entry.printed = strings.TrimSuffix(out.String(), "\n")
	switch {
	case err != nil:
		entry.output = err.Error()
		entry.isErr = true
	case !val.IsVoid():
		entry.output = val.String()
	}
	return entry
}

func (m replModel) View() string {
	if !m.initialized {
		return "Loading..."
	}
	if m.quitting {
		return mutedStyle.Render("Goodbye!\n")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Eiffel REPL") + "\n")
	b.WriteString(mutedStyle.Render(strings.Repeat("─", min(max(m.width-2, 0), 60))) + "\n\n")

	reserved := 8
	if m.showHelp {
		reserved += 11
	}
	if m.showVars {
		reserved += len(m.session.Bindings()) + 3
	}
	start := 0
	if available := m.height - reserved; len(m.history) > available && available > 0 {
		start = len(m.history) - available
	}

	for _, entry := range m.history[start:] {
		if entry.input != "" {
			b.WriteString(mutedStyle.Render("  › ") + entry.input + "\n")
		}
		if entry.printed != "" {
			for _, line := range strings.Split(entry.printed, "\n") {
				b.WriteString("    " + printedStyle.Render(line) + "\n")
			}
		}
		switch {
		case entry.isErr:
			b.WriteString("  " + errorStyle.Render("✗ "+entry.output) + "\n")
		case entry.output != "":
			b.WriteString("  " + resultStyle.Render("→ "+entry.output) + "\n")
		}
		b.WriteString("\n")
	}

	if m.showVars {
		b.WriteString(renderVarsPanel(m.session.Bindings()) + "\n")
	}
	if m.showHelp {
		b.WriteString(renderHelpPanel() + "\n")
	}

	b.WriteString(m.textInput.View() + "\n\n")
	for i, binding := range []key.Binding{keys.Help, keys.Vars, keys.Clear, keys.Quit} {
		if i > 0 {
			b.WriteString("  ")
		}
		help := binding.Help()
		b.WriteString(helpKeyStyle.Render(help.Key) + " " + helpDescStyle.Render(help.Desc))
	}
	return b.String()
}

func renderVarsPanel(bindings []eiffel.Binding) string {
	if len(bindings) == 0 {
		return panelStyle.Render(mutedStyle.Render("No variables defined"))
	}
	nameStyle := lipgloss.NewStyle().Foreground(highlightColor)
	lines := []string{lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Variables")}
	for _, binding := range bindings {
		typeName := binding.Type
		if typeName == "" {
			typeName = binding.Value.TypeName()
		}
		lines = append(lines, fmt.Sprintf("  %s: %s = %s", nameStyle.Render(binding.Name), typeName, binding.Value.String()))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func renderHelpPanel() string {
	help := []struct {
		key  string
		desc string
	}{
		{"↑/↓", "Navigate input history"},
		{"Tab", "Complete keywords, classes and variables"},
		{"Enter", "Evaluate the input"},
		{":help", "Toggle this help"},
		{":vars", "Toggle variables panel"},
		{":classes", "List defined classes"},
		{":clear", "Clear history"},
		{":reset", "Drop all variables and classes"},
		{":quit", "Exit"},
	}
	lines := []string{lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Help")}
	for _, h := range help {
		lines = append(lines, fmt.Sprintf("  %s  %s", helpKeyStyle.Render(fmt.Sprintf("%-9s", h.key)), helpDescStyle.Render(h.desc)))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func runREPL() error {
	p := tea.NewProgram(newREPLModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

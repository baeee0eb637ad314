// Package tui is an interactive terminal previewer: type Cyrillic and watch
// the romanization update as you go.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jusunglee/kyrlat/internal/transliteration"
	"github.com/samber/lo"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	activeLangStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	langStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	outputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

type model struct {
	lang      transliteration.Language
	ascii     bool
	textInput textinput.Model
	output    string
	width     int
}

func newModel(lang transliteration.Language, ascii bool) model {
	ti := textinput.New()
	ti.Placeholder = "Пишите здесь…"
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = 60

	return model{
		lang:      lang,
		ascii:     ascii,
		textInput: ti,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyTab:
			m.lang = m.shiftLanguage(1)
			return m.refresh(), nil
		case tea.KeyShiftTab:
			m.lang = m.shiftLanguage(-1)
			return m.refresh(), nil
		case tea.KeyCtrlA:
			m.ascii = !m.ascii
			return m.refresh(), nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.textInput.Width = max(msg.Width-8, 20)
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m.refresh(), cmd
}

func (m model) shiftLanguage(delta int) transliteration.Language {
	langs := transliteration.Languages()
	i := lo.IndexOf(langs, m.lang)
	return langs[(i+delta+len(langs))%len(langs)]
}

func (m model) refresh() model {
	var opts []transliteration.Option
	if m.ascii {
		opts = append(opts, transliteration.WithASCII())
	}
	m.output = transliteration.RomanizeWith(m.lang, m.textInput.Value(), opts...)
	return m
}

func (m model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("kyrlat - SFS 4900 previewer"))
	s.WriteString("\n\n")

	tabs := lo.Map(transliteration.Languages(), func(l transliteration.Language, _ int) string {
		if l == m.lang {
			return activeLangStyle.Render("[" + l.String() + "]")
		}
		return langStyle.Render(" " + l.String() + " ")
	})
	s.WriteString(strings.Join(tabs, " "))
	if m.ascii {
		s.WriteString("  " + activeLangStyle.Render("ASCII"))
	}
	s.WriteString("\n\n")

	s.WriteString(m.textInput.View())
	s.WriteString("\n\n")

	s.WriteString(boxStyle.Render(outputStyle.Render(m.output)))
	s.WriteString("\n\n")

	s.WriteString(subtleStyle.Render("tab/shift+tab: language • ctrl+a: ascii • esc: quit"))
	s.WriteString("\n")
	return s.String()
}

// Output is the romanization currently shown.
func (m model) Output() string {
	return m.output
}

// Run starts the previewer and returns the last romanization on exit.
func Run(lang transliteration.Language, ascii bool) (string, error) {
	p := tea.NewProgram(newModel(lang, ascii))
	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}
	return finalModel.(model).Output(), nil
}

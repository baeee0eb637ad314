// envsetup provides a lightweight .env configuration wizard.
// It runs automatically on first bot startup when no .env file exists,
// collecting the Discord token and where romanization history should live.
package envsetup

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const defaultDatabaseURL = "./kyrlat.db"

type step int

const (
	stepWelcome step = iota
	stepDiscord
	stepGuild
	stepDatabase
	stepConfirm
	stepDone
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Underline(true)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

type model struct {
	step         step
	discordToken string
	guildID      string
	databaseURL  string
	input        string
	path         string
	err          error
	width        int
	height       int
}

func newModel(path string) model {
	return model{
		step: stepWelcome,
		path: path,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit

		case tea.KeyEnter:
			return m.handleEnter()

		case tea.KeyBackspace:
			if r := []rune(m.input); len(r) > 0 {
				m.input = string(r[:len(r)-1])
			}
			return m, nil

		case tea.KeyRunes:
			m.input += string(msg.Runes)
			return m, nil

		case tea.KeySpace:
			m.input += " "
			return m, nil
		}
	}

	return m, nil
}

func (m model) handleEnter() (tea.Model, tea.Cmd) {
	m.err = nil
	value := strings.TrimSpace(m.input)

	switch m.step {
	case stepWelcome:
		m.step = stepDiscord

	case stepDiscord:
		if value == "" {
			m.err = errors.New("Discord token is required")
			return m, nil
		}
		m.discordToken = value
		m.step = stepGuild

	case stepGuild:
		m.guildID = value
		m.step = stepDatabase

	case stepDatabase:
		switch strings.ToLower(value) {
		case "":
			m.databaseURL = defaultDatabaseURL
		case "none", "-":
			m.databaseURL = ""
		default:
			m.databaseURL = value
		}
		m.step = stepConfirm

	case stepConfirm:
		switch strings.ToLower(value) {
		case "y", "yes", "":
			if err := m.writeEnvFile(); err != nil {
				m.err = err
				return m, nil
			}
			m.step = stepDone
			return m, tea.Quit
		case "n", "no":
			return newModel(m.path), nil
		}
	}

	m.input = ""
	return m, nil
}

func (m model) envContent() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "DISCORD_TOKEN=%s\n", m.discordToken)
	if m.guildID != "" {
		fmt.Fprintf(&sb, "DISCORD_GUILD_ID=%s\n", m.guildID)
	}
	if m.databaseURL != "" {
		fmt.Fprintf(&sb, "DATABASE_URL=%s\n", m.databaseURL)
	}
	return sb.String()
}

func (m model) writeEnvFile() error {
	return os.WriteFile(m.path, []byte(m.envContent()), 0600)
}

func (m model) View() string {
	var s strings.Builder

	switch m.step {
	case stepWelcome:
		s.WriteString(titleStyle.Render("kyrlat - Bot Setup"))
		s.WriteString("\n\n")
		s.WriteString("This wizard will help you configure the romanization bot.\n")
		s.WriteString("You'll need:\n\n")
		s.WriteString("  - A Discord bot token\n")
		s.WriteString("  - Optionally, a guild ID for instant command updates\n")
		s.WriteString("\n")
		s.WriteString(dimStyle.Render("Press Enter to continue, Ctrl+C to exit"))

	case stepDiscord:
		s.WriteString(titleStyle.Render("Step 1: Discord Bot Token"))
		s.WriteString("\n\n")
		s.WriteString("To get your Discord bot token:\n\n")
		s.WriteString("  1. Go to " + linkStyle.Render("https://discord.com/developers/applications") + "\n")
		s.WriteString("  2. Create a new application (or select existing)\n")
		s.WriteString("  3. Go to the Bot section\n")
		s.WriteString("  4. Click 'Reset Token' to get your bot token\n")
		s.WriteString("\n")
		s.WriteString(labelStyle.Render("Paste your Discord token here:"))
		s.WriteString("\n")
		s.WriteString("> " + inputStyle.Render(maskToken(m.input)))

	case stepGuild:
		s.WriteString(titleStyle.Render("Step 2: Discord Guild ID (optional)"))
		s.WriteString("\n\n")
		s.WriteString("Commands registered to one guild show up instantly.\n")
		s.WriteString("Leave empty to register globally.\n")
		s.WriteString("\n")
		s.WriteString(labelStyle.Render("Guild ID:"))
		s.WriteString("\n")
		s.WriteString("> " + inputStyle.Render(m.input))

	case stepDatabase:
		s.WriteString(titleStyle.Render("Step 3: History Store"))
		s.WriteString("\n\n")
		s.WriteString("Where should romanizations be remembered?\n\n")
		s.WriteString("  - a SQLite file path (default " + defaultDatabaseURL + ")\n")
		s.WriteString("  - a postgres:// URL\n")
		s.WriteString("  - none, to keep no history\n")
		s.WriteString("\n")
		s.WriteString(labelStyle.Render("Database URL:"))
		s.WriteString("\n")
		s.WriteString("> " + inputStyle.Render(m.input))

	case stepConfirm:
		s.WriteString(titleStyle.Render("Configuration Complete"))
		s.WriteString("\n\n")
		s.WriteString("Your configuration:\n\n")
		s.WriteString("  Discord:  " + successStyle.Render(maskToken(m.discordToken)) + "\n")
		s.WriteString("  Guild:    " + successStyle.Render(orNone(m.guildID)) + "\n")
		s.WriteString("  History:  " + successStyle.Render(orNone(m.databaseURL)) + "\n")
		s.WriteString("\n")
		s.WriteString(labelStyle.Render("Save this configuration? [Y/n]:"))
		s.WriteString("\n")
		s.WriteString("> " + inputStyle.Render(m.input))

	case stepDone:
		s.WriteString(successStyle.Render("Saved " + m.path))
	}

	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render(m.err.Error()))
	}
	s.WriteString("\n")
	return s.String()
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}

// Run starts the setup wizard and returns true if setup was completed successfully
func Run() (bool, error) {
	p := tea.NewProgram(newModel(".env"))
	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	m := finalModel.(model)
	return m.step == stepDone, nil
}

// NeedsSetup checks if .env file exists
func NeedsSetup() bool {
	_, err := os.Stat(".env")
	return os.IsNotExist(err)
}

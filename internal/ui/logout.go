package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type logoutChoice int

const (
	logoutClearAll logoutChoice = iota
	logoutTokensOnly
	logoutCancel
)

var logoutButtons = []string{"Clear everything", "Only log out", "Cancel"}

// logoutDialog asks whether to drop the client registration along with the tokens.
type logoutDialog struct {
	choice logoutChoice
}

func newLogoutDialog() logoutDialog {
	return logoutDialog{choice: logoutClearAll}
}

func (d *logoutDialog) move(delta int) {
	n := len(logoutButtons)
	d.choice = logoutChoice((int(d.choice) + delta + n) % n)
}

func (d *logoutDialog) render() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Are you sure?"))
	b.WriteString("\n")
	b.WriteString("Do you also want to clear your application credentials or only log out?\n\n")

	buttons := make([]string, len(logoutButtons))
	for i, label := range logoutButtons {
		if logoutChoice(i) == d.choice {
			buttons[i] = styles.focused.Render(label)
		} else {
			buttons[i] = styles.button.Render(label)
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, buttons...))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) handleLogoutKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.backToMenu()
	case key.Matches(msg, m.keys.left), key.Matches(msg, m.keys.prev):
		m.logout.move(-1)
	case key.Matches(msg, m.keys.right), key.Matches(msg, m.keys.next):
		m.logout.move(1)
	case key.Matches(msg, m.keys.enter):
		return m, m.confirmLogout(m.logout.choice)
	}
	return m, nil
}

// confirmLogout removes the stored credentials for choice and persists the config.
func (m *Model) confirmLogout(choice logoutChoice) tea.Cmd {
	switch choice {
	case logoutClearAll:
		m.config.RemoveClient()
		m.config.RemoveTokens()
	case logoutTokensOnly:
		m.config.RemoveTokens()
	default:
		m.backToMenu()
		return nil
	}

	m.loggedOut = true
	m.logger.Info("logged out", "cleared_client", choice == logoutClearAll)
	return m.saveConfig(loggedOutMsg)
}

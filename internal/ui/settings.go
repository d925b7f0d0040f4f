package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spt/internal/shared"
)

const (
	fieldClientID = iota
	fieldClientSecret
	fieldRedirectURI
	fieldCheckUpdates
	fieldDeveloperMode
	fieldSave
	fieldCount
)

// settingsForm edits the client registration and app preferences.
type settingsForm struct {
	inputs        []textinput.Model
	checkUpdates  bool
	developerMode bool
	focus         int
}

func newSettingsForm(c *shared.Config) settingsForm {
	newInput := func(placeholder, value string) textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		in.SetValue(value)
		in.CharLimit = 256
		in.Width = 48
		return in
	}

	secret := newInput("client secret", c.Spotify.ClientSecret)
	secret.EchoMode = textinput.EchoPassword

	f := settingsForm{
		inputs: []textinput.Model{
			newInput("client id", c.Spotify.ClientID),
			secret,
			newInput(shared.DefaultConfig().Spotify.RedirectURI, c.Spotify.RedirectURI),
		},
		checkUpdates:  c.App.CheckUpdates,
		developerMode: c.App.DeveloperMode,
	}
	f.setFocus(fieldClientID)
	return f
}

func (f *settingsForm) setFocus(i int) {
	f.focus = (i + fieldCount) % fieldCount
	for j := range f.inputs {
		if j == f.focus {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

func (f *settingsForm) focusCmd() tea.Cmd {
	return textinput.Blink
}

// apply copies the form values into c.
func (f *settingsForm) apply(c *shared.Config) {
	c.Spotify.ClientID = strings.TrimSpace(f.inputs[fieldClientID].Value())
	c.Spotify.ClientSecret = strings.TrimSpace(f.inputs[fieldClientSecret].Value())
	c.Spotify.RedirectURI = strings.TrimSpace(f.inputs[fieldRedirectURI].Value())
	c.App.CheckUpdates = f.checkUpdates
	c.App.DeveloperMode = f.developerMode
}

func (f *settingsForm) toggle() {
	switch f.focus {
	case fieldCheckUpdates:
		f.checkUpdates = !f.checkUpdates
	case fieldDeveloperMode:
		f.developerMode = !f.developerMode
	}
}

func (f *settingsForm) render() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Settings"))
	b.WriteString("\n")

	labels := []string{"Client ID", "Client secret", "Redirect URI"}
	for i, in := range f.inputs {
		label := fmt.Sprintf("%-14s", labels[i])
		if f.focus == i {
			label = styles.selected.Render(label)
		}
		fmt.Fprintf(&b, "%s %s\n", label, in.View())
	}
	b.WriteString("\n")

	check := func(field int, label string, on bool) {
		box := "[ ]"
		if on {
			box = "[x]"
		}
		line := box + " " + label
		if f.focus == field {
			line = styles.selected.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	check(fieldCheckUpdates, "Check for updates", f.checkUpdates)
	check(fieldDeveloperMode, "Developer mode", f.developerMode)
	b.WriteString("\n")

	if f.focus == fieldSave {
		b.WriteString(styles.focused.Render("Save"))
	} else {
		b.WriteString(styles.button.Render("Save"))
	}
	b.WriteString("\n")
	return b.String()
}

func (m *Model) handleSettingsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &m.settings

	switch {
	case key.Matches(msg, m.keys.back):
		m.backToMenu()
		return m, nil
	case key.Matches(msg, m.keys.save):
		return m, m.saveSettings()
	case msg.String() == "tab" || msg.String() == "down":
		f.setFocus(f.focus + 1)
		return m, nil
	case msg.String() == "shift+tab" || msg.String() == "up":
		f.setFocus(f.focus - 1)
		return m, nil
	case key.Matches(msg, m.keys.enter):
		switch f.focus {
		case fieldSave:
			return m, m.saveSettings()
		case fieldCheckUpdates, fieldDeveloperMode:
			f.toggle()
		default:
			f.setFocus(f.focus + 1)
		}
		return m, nil
	}

	if f.focus == fieldCheckUpdates || f.focus == fieldDeveloperMode {
		if key.Matches(msg, m.keys.toggle) {
			f.toggle()
		}
		return m, nil
	}

	if f.focus < len(f.inputs) {
		var cmd tea.Cmd
		f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

// saveSettings applies the form to the config and writes it.
func (m *Model) saveSettings() tea.Cmd {
	m.settings.apply(m.config)
	m.buildMainMenu()
	return m.saveConfig(settingsSavedMsg)
}

func (m *Model) handleSettingsSaved(err error) {
	if err != nil {
		m.setStatus(fmt.Sprintf("Failed to save settings: %v", err), true)
		return
	}
	m.backToMenu()
	m.setStatus("Settings saved", false)
}

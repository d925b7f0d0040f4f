package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// openDeveloper shows diagnostics about the session. Only reachable with developer mode enabled.
func (m *Model) openDeveloper() {
	expiry := "none"
	if t := m.config.Spotify.Token.Expiry; !t.IsZero() {
		expiry = t.Local().Format(time.DateTime)
	}
	path := m.configPath
	if path == "" {
		path = "(not saved)"
	}
	version := m.version
	if version == "" {
		version = "dev"
	}

	m.devMenu.set([]entry{
		{label: "Config: " + path, disabled: true},
		{label: "Token expires: " + expiry, disabled: true},
		{label: "Version: " + version, disabled: true},
		{separator: true},
		{id: entryRefreshDevices, label: "Dump devices to log"},
		{id: entryBack, label: "Back"},
	})
	m.view = DeveloperView
}

func (m *Model) handleDeveloperKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.backToMenu()
	case key.Matches(msg, m.keys.up):
		m.devMenu.move(-1)
	case key.Matches(msg, m.keys.down):
		m.devMenu.move(1)
	case key.Matches(msg, m.keys.enter):
		e, ok := m.devMenu.selected()
		if !ok {
			return m, nil
		}
		switch e.id {
		case entryRefreshDevices:
			m.setStatus("Fetching devices...", false)
			ctx, svc := m.ctx, m.spotify
			return m, func() tea.Msg {
				devices, err := svc.Devices(ctx)
				return devicesDumpedMsg(devices, err)
			}
		case entryBack:
			m.backToMenu()
		}
	}
	return m, nil
}

func (m *Model) handleDevicesDumped(data devicesData) {
	if data.err != nil {
		m.logger.Error("device dump failed", "error", data.err)
		m.setStatus(fmt.Sprintf("Failed to get devices: %v", data.err), true)
		return
	}

	for _, d := range data.devices {
		m.logger.Info("device", "id", d.ID, "name", d.Name, "type", d.Type, "active", d.Active, "volume", d.VolumePercent)
	}
	m.setStatus(fmt.Sprintf("Logged %d devices", len(data.devices)), false)
}

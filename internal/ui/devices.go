package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/shared"
)

// openDevices shows the device submenu and requests a fresh device list.
//
// Every open and close bumps the generation so a list requested by an earlier opening is ignored.
func (m *Model) openDevices() tea.Cmd {
	m.deviceGen++
	m.view = DeviceView
	if len(m.deviceMenu.entries) == 0 {
		m.deviceMenu.set([]entry{{label: "Refreshing devices...", disabled: true}})
	}
	return m.fetchDevices(m.deviceGen)
}

func (m *Model) closeDevices() {
	m.deviceGen++
	m.backToMenu()
}

func (m *Model) fetchDevices(generation int) tea.Cmd {
	ctx, svc := m.ctx, m.spotify
	return func() tea.Msg {
		devices, err := svc.Devices(ctx)
		return devicesFetchedMsg(generation, devices, err)
	}
}

// handleDevicesFetched clears and repopulates the submenu, unless the response is stale.
func (m *Model) handleDevicesFetched(data devicesData) {
	if data.generation != m.deviceGen || m.view != DeviceView {
		m.logger.Debug("dropping stale device list", "generation", data.generation, "current", m.deviceGen)
		return
	}

	if data.err != nil {
		m.deviceMenu.set([]entry{{label: "No devices found", disabled: true}})
		m.setStatus(fmt.Sprintf("Failed to get devices: %v", data.err), true)
		return
	}

	m.deviceMenu.set(deviceEntries(data.devices))
}

// deviceEntries renders devices as checkable entries; the active one is checked and disabled.
func deviceEntries(devices []models.Device) []entry {
	if len(devices) == 0 {
		return []entry{{label: "No devices found", disabled: true}}
	}

	entries := make([]entry, 0, len(devices))
	for _, d := range devices {
		entries = append(entries, entry{
			id:        entryDevice,
			label:     d.Name,
			value:     d.ID,
			checkable: true,
			checked:   d.Active,
			disabled:  d.Active || d.ID == "",
		})
	}
	return entries
}

func (m *Model) handleDeviceKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.closeDevices()
	case key.Matches(msg, m.keys.up):
		m.deviceMenu.move(-1)
	case key.Matches(msg, m.keys.down):
		m.deviceMenu.move(1)
	case key.Matches(msg, m.keys.enter):
		e, ok := m.deviceMenu.selected()
		if !ok || e.id != entryDevice {
			return m, nil
		}
		return m, m.selectDevice(e)
	}
	return m, nil
}

// selectDevice checks the entry right away and transfers playback; a failure reverts the check.
//
// The entry stays disabled while the transfer is in flight.
func (m *Model) selectDevice(e *entry) tea.Cmd {
	e.checked = true
	e.disabled = true
	m.clearStatus()

	ctx, svc, id := m.ctx, m.spotify, e.value
	return func() tea.Msg {
		return deviceSetMsg(id, svc.SetDevice(ctx, id))
	}
}

func (m *Model) handleDeviceSet(data deviceSetData) tea.Cmd {
	e := m.deviceMenu.find(entryDevice, data.deviceID)

	if data.err != nil {
		if e != nil {
			e.checked = false
			e.disabled = false
		}
		m.setStatus(fmt.Sprintf("Failed to set device: %v", data.err), true)
		return nil
	}

	for i := range m.deviceMenu.entries {
		other := &m.deviceMenu.entries[i]
		if other.id == entryDevice && other.value != data.deviceID && other.value != "" {
			other.checked = false
			other.disabled = false
		}
	}
	if e != nil {
		e.checked = true
		e.disabled = true
		m.deviceMenu.clamp()
	}

	m.config.Playback.DeviceID = data.deviceID
	return m.saveConfig(func(err error) Msg {
		if err != nil {
			return statusMsg(fmt.Sprintf("Device set, but settings could not be saved: %v", err), true)
		}
		return statusMsg("Device set", false)
	})
}

// saveConfig writes the settings in a command and reports the outcome through done.
//
// Only the update loop touches m.config; the command encodes a copy taken here.
func (m *Model) saveConfig(done func(error) Msg) tea.Cmd {
	path, snapshot := m.configPath, *m.config
	return func() tea.Msg {
		if path == "" {
			return done(fmt.Errorf("%w: no config path", shared.ErrMissingConfig))
		}
		return done(shared.SaveConfig(path, &snapshot))
	}
}

package ui

import (
	"strings"
)

// entryID identifies what selecting a menu entry does.
type entryID int

const (
	entryNone entryID = iota
	entryUpdate
	entryDevices
	entryPlaylists
	entrySettings
	entryDeveloper
	entryLogout
	entryQuit
	entryDevice
	entryRefreshDevices
	entryBack
)

// entry is one line of a [menu].
type entry struct {
	id        entryID
	label     string
	value     string
	disabled  bool
	checkable bool
	checked   bool
	separator bool
}

func (e entry) selectable() bool {
	return !e.separator && !e.disabled
}

// menu is a vertical list of entries whose cursor skips separators and disabled entries.
type menu struct {
	title   string
	entries []entry
	cursor  int
}

// set replaces the entries, keeping the cursor on the entry with the same id and value when it survives.
func (m *menu) set(entries []entry) {
	var current *entry
	if e, ok := m.selected(); ok {
		c := *e
		current = &c
	}

	m.entries = entries
	m.cursor = 0
	if current != nil {
		for i, e := range entries {
			if e.id == current.id && e.value == current.value && e.selectable() {
				m.cursor = i
				return
			}
		}
	}
	m.clamp()
}

// clamp moves the cursor to the nearest selectable entry.
func (m *menu) clamp() {
	if m.cursor >= 0 && m.cursor < len(m.entries) && m.entries[m.cursor].selectable() {
		return
	}
	for i, e := range m.entries {
		if e.selectable() {
			m.cursor = i
			return
		}
	}
	m.cursor = 0
}

// move steps the cursor by delta over selectable entries, stopping at the ends.
func (m *menu) move(delta int) {
	for i := m.cursor + delta; i >= 0 && i < len(m.entries); i += delta {
		if m.entries[i].selectable() {
			m.cursor = i
			return
		}
	}
}

// selected returns the entry under the cursor if it can be activated.
func (m *menu) selected() (*entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return nil, false
	}
	e := &m.entries[m.cursor]
	return e, e.selectable()
}

// find returns the first entry with id and value.
func (m *menu) find(id entryID, value string) *entry {
	for i := range m.entries {
		if m.entries[i].id == id && m.entries[i].value == value {
			return &m.entries[i]
		}
	}
	return nil
}

// labels lists the visible labels, separators excluded.
func (m *menu) labels() []string {
	labels := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		if !e.separator {
			labels = append(labels, e.label)
		}
	}
	return labels
}

func (m *menu) render() string {
	var b strings.Builder
	if m.title != "" {
		b.WriteString(styles.title.Render(m.title))
		b.WriteString("\n")
	}

	for i, e := range m.entries {
		if e.separator {
			b.WriteString(styles.disabled.Render("  ──────────"))
			b.WriteString("\n")
			continue
		}

		label := e.label
		if e.checkable {
			if e.checked {
				label = "[x] " + label
			} else {
				label = "[ ] " + label
			}
		}

		switch {
		case i == m.cursor && e.selectable():
			b.WriteString(styles.selected.Render("> " + label))
		case e.disabled:
			b.WriteString(styles.disabled.Render("  " + label))
		default:
			b.WriteString("  " + label)
		}
		b.WriteString("\n")
	}
	return b.String()
}

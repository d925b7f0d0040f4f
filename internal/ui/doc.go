// Package ui implements the interactive menu using bubbletea's Elm architecture.
//
// The main menu mirrors a tray menu:
//  1. an update notifier entry, shown while checking and when a newer release exists
//  2. [DeviceView] : a device submenu re-populated every time it opens
//  3. [PlaylistListView] and [TrackListView] : browse playlists and page through their tracks
//  4. [SettingsView] : edit the client registration and preferences
//  5. [DeveloperView] : diagnostics, only with developer mode enabled
//  6. [LogoutView] : log out, optionally clearing the client registration
//
// The [Model] receives results from services through the Msg union type. Every service call runs in a [tea.Cmd],
// so the view never blocks on the network. Responses for a device list requested by an earlier opening of the
// submenu are dropped by generation, and track pages from a closed playlist are dropped by cursor identity.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui

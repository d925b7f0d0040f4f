package ui

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/services"
)

// openPlaylists shows the playlist browser, fetching the listing the first time.
func (m *Model) openPlaylists() tea.Cmd {
	m.view = PlaylistListView
	if m.playlistsLoaded {
		return nil
	}
	m.setStatus("Loading playlists...", false)
	return m.fetchPlaylists()
}

// fetchPlaylists loads every playlist, refreshing the cache on success and falling back to it on failure.
func (m *Model) fetchPlaylists() tea.Cmd {
	ctx, svc, cache, logger := m.ctx, m.spotify, m.cache, m.logger
	return func() tea.Msg {
		playlists, err := svc.Playlists(ctx)
		if err == nil {
			if cache != nil {
				if _, cerr := cache.Sync(playlists); cerr != nil {
					logger.Warn("failed to cache playlists", "error", cerr)
				}
			}
			return playlistsFetchedMsg(playlists, false, nil)
		}

		if cache != nil {
			cached, cerr := cache.Playlists()
			if cerr == nil && len(cached) > 0 {
				return playlistsFetchedMsg(cached, true, err)
			}
		}
		return playlistsFetchedMsg(nil, false, err)
	}
}

func (m *Model) handlePlaylistsFetched(data playlistsData) tea.Cmd {
	if data.err != nil && !data.cached {
		m.setStatus(fmt.Sprintf("Failed to load playlists: %v", data.err), true)
		return nil
	}

	items := make([]list.Item, len(data.playlists))
	for i, p := range data.playlists {
		items[i] = playlistItem{playlist: p}
	}

	w, h := m.listSize()
	m.playlistList = newList("Playlists", items, w, h)
	m.playlistsLoaded = true

	if data.cached {
		m.setStatus(fmt.Sprintf("Showing cached playlists: %v", data.err), true)
	} else {
		m.clearStatus()
	}
	return nil
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.playlistsLoaded {
		if key.Matches(msg, m.keys.back) || key.Matches(msg, m.keys.quit) {
			m.backToMenu()
		}
		return m, nil
	}

	if m.playlistList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.playlistList, cmd = m.playlistList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.back) && m.playlistList.FilterState() == list.Unfiltered,
		key.Matches(msg, m.keys.quit):
		m.backToMenu()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.playlistList.SelectedItem().(playlistItem); ok {
			return m, m.openTracks(item.playlist)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

// openTracks shows the tracks of p, starting a new cursor at the first page.
func (m *Model) openTracks(p models.Playlist) tea.Cmd {
	m.openPlaylist = p
	m.tracks = nil
	m.tracksLoading = false
	m.pager = m.spotify.PlaylistTracksPager(p.ID)

	w, h := m.listSize()
	m.trackList = newList(p.Name, nil, w, h)
	m.view = TrackListView
	return m.fetchTracks()
}

// fetchTracks requests the next page unless one is already in flight or the cursor is exhausted.
func (m *Model) fetchTracks() tea.Cmd {
	if m.tracksLoading || m.pager == nil || m.pager.Done() {
		return nil
	}
	m.tracksLoading = true

	ctx, pager := m.ctx, m.pager
	return func() tea.Msg {
		tracks, err := pager.Next(ctx)
		return tracksFetchedMsg(pager, tracks, err)
	}
}

func (m *Model) handleTracksFetched(data tracksData) tea.Cmd {
	if data.pager != m.pager {
		return nil
	}
	m.tracksLoading = false

	if data.err != nil && !errors.Is(data.err, io.EOF) {
		m.setStatus(fmt.Sprintf("Failed to load tracks: %v", data.err), true)
	}
	if len(data.tracks) == 0 {
		return nil
	}

	start := len(m.tracks)
	m.tracks = append(m.tracks, data.tracks...)

	items := m.trackList.Items()
	for i, t := range data.tracks {
		items = append(items, trackItem{position: start + i, track: t})
	}
	cmd := m.trackList.SetItems(items)
	m.trackList.Title = fmt.Sprintf("%s (%d/%d)", m.openPlaylist.Name, len(m.tracks), max(m.pager.Total(), len(m.tracks)))

	return tea.Batch(cmd, m.prefetchTracks())
}

// prefetchTracks loads the next page once the cursor is near the end of what is loaded.
func (m *Model) prefetchTracks() tea.Cmd {
	if m.trackList.Index() >= len(m.trackList.Items())-trackPrefetch {
		return m.fetchTracks()
	}
	return nil
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.trackList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.trackList, cmd = m.trackList.Update(msg)
		return m, cmd
	}

	if (key.Matches(msg, m.keys.back) && m.trackList.FilterState() == list.Unfiltered) || key.Matches(msg, m.keys.quit) {
		m.pager = nil
		m.tracksLoading = false
		m.view = PlaylistListView
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, tea.Batch(cmd, m.prefetchTracks())
}

// Tracks returns the tracks loaded so far for the open playlist.
func (m *Model) Tracks() []models.Track {
	return m.tracks
}

// Pager returns the cursor of the open playlist, nil when none is open.
func (m *Model) Pager() *services.Paginator[models.Track] {
	return m.pager
}

func (m *Model) renderPlaylists() string {
	if !m.playlistsLoaded {
		return styles.title.Render("Playlists")
	}
	return m.playlistList.View()
}

func (m *Model) renderTracks() string {
	if m.pager == nil {
		return ""
	}
	return m.trackList.View()
}

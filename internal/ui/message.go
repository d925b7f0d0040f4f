package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/services"
	"golang.org/x/oauth2"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgUserFetched MsgKind = iota
	MsgUpdateChecked
	MsgPlaylistsFetched
	MsgTracksFetched
	MsgDevicesFetched
	MsgDeviceSet
	MsgDevicesDumped
	MsgSettingsSaved
	MsgLoggedOut
	MsgStatus
	MsgTokenRefreshed
	MsgTokenSaved
)

type userData struct {
	user *models.User
	err  error
}

type updateData struct {
	result *services.UpdateResult
	err    error
}

type playlistsData struct {
	playlists []models.Playlist
	cached    bool
	err       error
}

// tracksData is one page of the open playlist; pager ties it to the request that produced it.
type tracksData struct {
	pager  *services.Paginator[models.Track]
	tracks []models.Track
	err    error
}

// devicesData carries the generation of the device submenu that requested it.
type devicesData struct {
	generation int
	devices    []models.Device
	err        error
}

type deviceSetData struct {
	deviceID string
	err      error
}

type statusData struct {
	text  string
	isErr bool
}

// userFetchedMsg is the constructor for [MsgUserFetched]
func userFetchedMsg(user *models.User, err error) Msg {
	return Msg{kind: MsgUserFetched, data: userData{user, err}}
}

// updateCheckedMsg is the constructor for [MsgUpdateChecked]
func updateCheckedMsg(result *services.UpdateResult, err error) Msg {
	return Msg{kind: MsgUpdateChecked, data: updateData{result, err}}
}

// playlistsFetchedMsg is the constructor for [MsgPlaylistsFetched]
func playlistsFetchedMsg(playlists []models.Playlist, cached bool, err error) Msg {
	return Msg{kind: MsgPlaylistsFetched, data: playlistsData{playlists, cached, err}}
}

// tracksFetchedMsg is the constructor for [MsgTracksFetched]
func tracksFetchedMsg(pager *services.Paginator[models.Track], tracks []models.Track, err error) Msg {
	return Msg{kind: MsgTracksFetched, data: tracksData{pager, tracks, err}}
}

// devicesFetchedMsg is the constructor for [MsgDevicesFetched]
func devicesFetchedMsg(generation int, devices []models.Device, err error) Msg {
	return Msg{kind: MsgDevicesFetched, data: devicesData{generation, devices, err}}
}

// deviceSetMsg is the constructor for [MsgDeviceSet]
func deviceSetMsg(deviceID string, err error) Msg {
	return Msg{kind: MsgDeviceSet, data: deviceSetData{deviceID, err}}
}

// devicesDumpedMsg is the constructor for [MsgDevicesDumped]
func devicesDumpedMsg(devices []models.Device, err error) Msg {
	return Msg{kind: MsgDevicesDumped, data: devicesData{devices: devices, err: err}}
}

// settingsSavedMsg is the constructor for [MsgSettingsSaved]
func settingsSavedMsg(err error) Msg {
	return Msg{kind: MsgSettingsSaved, data: err}
}

// loggedOutMsg is the constructor for [MsgLoggedOut]
func loggedOutMsg(err error) Msg {
	return Msg{kind: MsgLoggedOut, data: err}
}

// statusMsg is the constructor for [MsgStatus]
func statusMsg(text string, isErr bool) Msg {
	return Msg{kind: MsgStatus, data: statusData{text, isErr}}
}

// tokenRefreshedMsg is the constructor for [MsgTokenRefreshed]
func tokenRefreshedMsg(token *oauth2.Token) Msg {
	return Msg{kind: MsgTokenRefreshed, data: token}
}

// tokenSavedMsg is the constructor for [MsgTokenSaved]
func tokenSavedMsg(err error) Msg {
	return Msg{kind: MsgTokenSaved, data: err}
}

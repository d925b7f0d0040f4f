package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/services"
	"github.com/desertthunder/spt/internal/shared"
	"golang.org/x/oauth2"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	MenuView ViewState = iota
	DeviceView
	PlaylistListView
	TrackListView
	SettingsView
	LogoutView
	LoggedOutView
	DeveloperView
)

// UpdateChecker looks up the latest release. Satisfied by [services.UpdateChecker].
type UpdateChecker interface {
	Check(ctx context.Context) (*services.UpdateResult, error)
}

// PlaylistCache stores the last playlist listing. Satisfied by repositories.PlaylistRepository.
type PlaylistCache interface {
	Sync(playlists []models.Playlist) ([]*models.PersistedPlaylist, error)
	Playlists() ([]models.Playlist, error)
}

// Options holds the dependencies of [Model]. Service and Config are required.
type Options struct {
	Context    context.Context
	Service    services.Service
	Config     *shared.Config
	ConfigPath string
	Updates    UpdateChecker
	Cache      PlaylistCache
	Logger     *log.Logger
	Version    string

	// OpenURL opens release pages. Defaults to [shared.OpenBrowser].
	OpenURL func(string) error

	// Tokens delivers access tokens refreshed by the service. Each one is stored
	// and saved from the update loop, unless the user has logged out.
	Tokens <-chan *oauth2.Token
}

// updateState tracks the update notifier entry.
type updateState int

const (
	updateHidden updateState = iota
	updateChecking
	updateFound
)

// trackPrefetch is how close to the end of the loaded tracks the cursor gets before the next page is requested.
const trackPrefetch = 5

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	view       ViewState
	spotify    services.Service
	config     *shared.Config
	configPath string
	updates    UpdateChecker
	cache      PlaylistCache
	logger     *log.Logger
	openURL    func(string) error
	version    string
	tokens     <-chan *oauth2.Token
	loggedOut  bool

	width  int
	height int

	user    *models.User
	status  string
	errored bool

	mainMenu   menu
	update     updateState
	release    models.Release
	deviceMenu menu
	deviceGen  int
	devMenu    menu

	playlistList    list.Model
	playlistsLoaded bool
	trackList       list.Model
	tracks          []models.Track
	pager           *services.Paginator[models.Track]
	tracksLoading   bool
	openPlaylist    models.Playlist

	settings settingsForm
	logout   logoutDialog
	saveErr  error

	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(opts Options) *Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}

	m := &Model{
		ctx:        opts.Context,
		view:       MenuView,
		spotify:    opts.Service,
		config:     opts.Config,
		configPath: opts.ConfigPath,
		updates:    opts.Updates,
		cache:      opts.Cache,
		logger:     opts.Logger,
		openURL:    opts.OpenURL,
		version:    opts.Version,
		tokens:     opts.Tokens,
		mainMenu:   menu{title: "spt"},
		deviceMenu: menu{title: "Device"},
		devMenu:    menu{title: "Developer"},
		help:       help.New(),
		keys:       newKeyMap(),
	}

	if m.updates != nil && m.config.App.CheckUpdates {
		m.update = updateChecking
	}
	m.buildMainMenu()
	return m
}

// Init fetches the user profile, starts the update check and listens for refreshed tokens.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.fetchUser()}
	if m.update == updateChecking {
		cmds = append(cmds, m.checkUpdates())
	}
	if m.tokens != nil {
		cmds = append(cmds, m.waitForToken())
	}
	return tea.Batch(cmds...)
}

// Current returns the current view state.
func (m *Model) Current() ViewState {
	return m.view
}

// Status returns the status line text and whether it reports an error.
func (m *Model) Status() (string, bool) {
	return m.status, m.errored
}

// buildMainMenu lays out the main menu from the update state and developer mode.
func (m *Model) buildMainMenu() {
	var entries []entry

	switch m.update {
	case updateChecking:
		entries = append(entries, entry{id: entryUpdate, label: "Checking for updates...", disabled: true})
	case updateFound:
		entries = append(entries, entry{id: entryUpdate, label: "Update found: " + m.release.TagName})
	}

	entries = append(entries,
		entry{id: entryDevices, label: "Device"},
		entry{id: entryPlaylists, label: "Playlists"},
		entry{id: entrySettings, label: "Settings..."},
	)
	if m.config.App.DeveloperMode {
		entries = append(entries, entry{id: entryDeveloper, label: "Developer"})
	}
	entries = append(entries,
		entry{separator: true},
		entry{id: entryLogout, label: "Log out"},
		entry{id: entryQuit, label: "Quit"},
	)

	m.mainMenu.set(entries)
}

// listSize is the space left for a list below the status and help lines.
func (m *Model) listSize() (int, int) {
	if m.width == 0 || m.height == 0 {
		return 80, 20
	}
	return m.width - 4, m.height - 6
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.errored = isErr
}

func (m *Model) clearStatus() {
	m.status = ""
	m.errored = false
}

var _ tea.Model = (*Model)(nil)

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.playlistsLoaded {
			m.playlistList.SetSize(m.listSize())
		}
		if m.pager != nil {
			m.trackList.SetSize(m.listSize())
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.handleKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.view {
	case MenuView:
		return m.handleMenuKeys(msg)
	case DeviceView:
		return m.handleDeviceKeys(msg)
	case PlaylistListView:
		return m.handlePlaylistListKeys(msg)
	case TrackListView:
		return m.handleTrackListKeys(msg)
	case SettingsView:
		return m.handleSettingsKeys(msg)
	case LogoutView:
		return m.handleLogoutKeys(msg)
	case LoggedOutView:
		return m, tea.Quit
	case DeveloperView:
		return m.handleDeveloperKeys(msg)
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgUserFetched:
		data := msg.data.(userData)
		if data.err != nil {
			m.logger.Warn("failed to fetch user", "error", data.err)
			return m, nil
		}
		m.user = data.user
	case MsgUpdateChecked:
		m.handleUpdateChecked(msg.data.(updateData))
	case MsgPlaylistsFetched:
		return m, m.handlePlaylistsFetched(msg.data.(playlistsData))
	case MsgTracksFetched:
		return m, m.handleTracksFetched(msg.data.(tracksData))
	case MsgDevicesFetched:
		m.handleDevicesFetched(msg.data.(devicesData))
	case MsgDeviceSet:
		return m, m.handleDeviceSet(msg.data.(deviceSetData))
	case MsgDevicesDumped:
		m.handleDevicesDumped(msg.data.(devicesData))
	case MsgSettingsSaved:
		err, _ := msg.data.(error)
		m.handleSettingsSaved(err)
	case MsgLoggedOut:
		err, _ := msg.data.(error)
		m.saveErr = err
		m.view = LoggedOutView
	case MsgStatus:
		data := msg.data.(statusData)
		m.setStatus(data.text, data.isErr)
	case MsgTokenRefreshed:
		return m, m.handleTokenRefreshed(msg.data.(*oauth2.Token))
	case MsgTokenSaved:
		if err, _ := msg.data.(error); err != nil {
			m.logger.Warn("failed to persist refreshed token", "error", err)
		}
	}
	return m, nil
}

func (m *Model) handleMenuKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.up):
		m.mainMenu.move(-1)
	case key.Matches(msg, m.keys.down):
		m.mainMenu.move(1)
	case key.Matches(msg, m.keys.enter):
		e, ok := m.mainMenu.selected()
		if !ok {
			return m, nil
		}
		return m.activate(e.id)
	}
	return m, nil
}

// activate runs the action of a main menu entry.
func (m *Model) activate(id entryID) (tea.Model, tea.Cmd) {
	m.clearStatus()

	switch id {
	case entryUpdate:
		return m, m.openRelease()
	case entryDevices:
		return m, m.openDevices()
	case entryPlaylists:
		return m, m.openPlaylists()
	case entrySettings:
		m.settings = newSettingsForm(m.config)
		m.view = SettingsView
		return m, m.settings.focusCmd()
	case entryDeveloper:
		m.openDeveloper()
	case entryLogout:
		m.logout = newLogoutDialog()
		m.view = LogoutView
	case entryQuit:
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) backToMenu() {
	m.view = MenuView
}

func (m *Model) fetchUser() tea.Cmd {
	ctx, svc := m.ctx, m.spotify
	return func() tea.Msg {
		user, err := svc.CurrentUser(ctx)
		return userFetchedMsg(user, err)
	}
}

func (m *Model) checkUpdates() tea.Cmd {
	ctx, updates := m.ctx, m.updates
	return func() tea.Msg {
		result, err := updates.Check(ctx)
		return updateCheckedMsg(result, err)
	}
}

// handleUpdateChecked shows the notifier only when a different release was found.
func (m *Model) handleUpdateChecked(data updateData) {
	switch {
	case data.err != nil:
		m.logger.Debug("update check failed", "error", data.err)
		m.update = updateHidden
	case data.result == nil || !data.result.Available:
		m.update = updateHidden
	default:
		m.update = updateFound
		m.release = data.result.Release
	}
	m.buildMainMenu()
}

// waitForToken receives the next refreshed token. A closed channel or a done context ends the listener.
func (m *Model) waitForToken() tea.Cmd {
	ctx, tokens := m.ctx, m.tokens
	return func() tea.Msg {
		select {
		case token, ok := <-tokens:
			if !ok {
				return nil
			}
			return tokenRefreshedMsg(token)
		case <-ctx.Done():
			return nil
		}
	}
}

// handleTokenRefreshed stores and saves token, then keeps listening.
//
// After logout tokens are still drained but never written back.
func (m *Model) handleTokenRefreshed(token *oauth2.Token) tea.Cmd {
	next := m.waitForToken()
	if m.loggedOut {
		m.logger.Debug("dropping token refreshed after logout")
		return next
	}
	if err := m.config.Spotify.UpdateToken(token); err != nil {
		m.logger.Warn("ignoring refreshed token", "error", err)
		return next
	}
	m.logger.Debug("access token refreshed", "expiry", token.Expiry)
	return tea.Batch(m.saveConfig(tokenSavedMsg), next)
}

func (m *Model) openRelease() tea.Cmd {
	url, open := m.release.URL, m.openURL
	if url == "" {
		url = "https://github.com/desertthunder/spt/releases/latest"
	}
	return func() tea.Msg {
		if err := open(url); err != nil {
			return statusMsg(fmt.Sprintf("Failed to open %s: %v", url, err), true)
		}
		return statusMsg("Opened "+url, false)
	}
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.view == PlaylistListView && m.playlistsLoaded:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case m.view == TrackListView && m.pager != nil:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

// View draws the current view and the status line.
func (m *Model) View() string {
	var body string
	var keys []key.Binding

	switch m.view {
	case MenuView:
		body = m.renderMenu()
		keys = []key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.quit}
	case DeviceView:
		body = m.deviceMenu.render()
		keys = []key.Binding{m.keys.enter, m.keys.back}
	case PlaylistListView:
		body = m.renderPlaylists()
		keys = []key.Binding{m.keys.enter, m.keys.back}
	case TrackListView:
		body = m.renderTracks()
		keys = []key.Binding{m.keys.back}
	case SettingsView:
		body = m.settings.render()
		keys = []key.Binding{m.keys.next, m.keys.toggle, m.keys.save, m.keys.back}
	case LogoutView:
		body = m.logout.render()
		keys = []key.Binding{m.keys.left, m.keys.right, m.keys.enter, m.keys.back}
	case LoggedOutView:
		return m.renderLoggedOut()
	case DeveloperView:
		body = m.devMenu.render()
		keys = []key.Binding{m.keys.enter, m.keys.back}
	}

	var b strings.Builder
	b.WriteString(body)
	if m.status != "" {
		b.WriteString("\n")
		if m.errored {
			b.WriteString(styles.err.Render(m.status))
		} else {
			b.WriteString(styles.ok.Render(m.status))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(keys))
	return b.String()
}

func (m *Model) renderMenu() string {
	var b strings.Builder
	b.WriteString(m.mainMenu.render())
	if m.user != nil {
		name := m.user.DisplayName
		if name == "" {
			name = m.user.ID
		}
		b.WriteString("\n")
		b.WriteString(styles.help.Render("Logged in as " + name))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderLoggedOut() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Logged out"))
	b.WriteString("\n")
	b.WriteString("You are now logged out, the application will now close\n")
	if m.saveErr != nil {
		b.WriteString("\n")
		b.WriteString(styles.warn.Render(fmt.Sprintf("Settings could not be saved: %v", m.saveErr)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.help.Render("Press any key to exit"))
	return b.String()
}

// Run starts the interactive program on the alternate screen and blocks until it exits.
func Run(opts Options) error {
	m := NewModel(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}

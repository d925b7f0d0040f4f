// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"sync"
	"testing"

	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/services"
	"github.com/desertthunder/spt/internal/shared"
)

// MockService is a test double for [services.Service].
//
// Results are served from its fields; every call is recorded in Calls.
// Err* fields make the matching call fail.
type MockService struct {
	mu sync.Mutex

	PlaylistList []models.Playlist
	Tracks       map[string][]models.Track
	DeviceList   []models.Device
	User         *models.User

	ErrPlaylists error
	ErrTracks    error
	ErrDevices   error
	ErrSetDevice error
	ErrModify    error

	// DeviceHook, when set, runs before Devices returns and may block to simulate a slow request.
	DeviceHook func()

	Calls    []string
	Created  []models.PlaylistDetails
	Edited   map[string]models.PlaylistDetails
	Added    map[string][]string
	Removed  map[string][]models.TrackRef
	Selected []string
}

var _ services.Service = (*MockService)(nil)

func (m *MockService) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
}

// CallCount returns how many times call was made.
func (m *MockService) CallCount(call string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c == call {
			n++
		}
	}
	return n
}

func (m *MockService) Name() string { return "mock" }

func (m *MockService) CurrentUser(ctx context.Context) (*models.User, error) {
	m.record("CurrentUser")
	if m.User == nil {
		return &models.User{ID: "mock-user", DisplayName: "Mock User"}, nil
	}
	return m.User, nil
}

func (m *MockService) Playlists(ctx context.Context) ([]models.Playlist, error) {
	m.record("Playlists")
	if m.ErrPlaylists != nil {
		return nil, m.ErrPlaylists
	}
	return m.PlaylistList, nil
}

func (m *MockService) Playlist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	m.record("Playlist")
	if m.ErrPlaylists != nil {
		return nil, m.ErrPlaylists
	}
	for _, p := range m.PlaylistList {
		if p.ID == playlistID {
			return &p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *MockService) CreatePlaylist(ctx context.Context, name string, details models.PlaylistDetails) (*models.Playlist, error) {
	m.record("CreatePlaylist")
	if m.ErrModify != nil {
		return nil, m.ErrModify
	}
	details.Name = &name
	m.Created = append(m.Created, details)
	return &models.Playlist{ID: "created", Name: name}, nil
}

func (m *MockService) EditPlaylist(ctx context.Context, playlistID string, details models.PlaylistDetails) error {
	m.record("EditPlaylist")
	if m.ErrModify != nil {
		return m.ErrModify
	}
	if m.Edited == nil {
		m.Edited = map[string]models.PlaylistDetails{}
	}
	m.Edited[playlistID] = details
	return nil
}

func (m *MockService) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	m.record("PlaylistTracks")
	if m.ErrTracks != nil {
		return nil, m.ErrTracks
	}
	return m.Tracks[playlistID], nil
}

// PlaylistTracksPager serves the playlist's tracks in pages of two.
func (m *MockService) PlaylistTracksPager(playlistID string) *services.Paginator[models.Track] {
	m.record("PlaylistTracksPager")
	const size = 2
	return services.NewPaginator("0", func(ctx context.Context, url string) (*models.Page[models.Track], error) {
		if m.ErrTracks != nil {
			return nil, m.ErrTracks
		}
		offset, err := strconv.Atoi(url)
		if err != nil {
			return nil, err
		}

		tracks := m.Tracks[playlistID]
		end := min(offset+size, len(tracks))
		page := &models.Page[models.Track]{Items: tracks[offset:end], Total: len(tracks), Offset: offset, Limit: size}
		if end < len(tracks) {
			page.Next = strconv.Itoa(end)
		}
		return page, nil
	})
}

func (m *MockService) AddToPlaylist(ctx context.Context, playlistID string, uris []string) (string, error) {
	m.record("AddToPlaylist")
	if m.ErrModify != nil {
		return "", m.ErrModify
	}
	if m.Added == nil {
		m.Added = map[string][]string{}
	}
	m.Added[playlistID] = append(m.Added[playlistID], uris...)
	return "snapshot-add", nil
}

func (m *MockService) RemoveFromPlaylist(ctx context.Context, playlistID string, refs []models.TrackRef) (string, error) {
	m.record("RemoveFromPlaylist")
	if m.ErrModify != nil {
		return "", m.ErrModify
	}
	if m.Removed == nil {
		m.Removed = map[string][]models.TrackRef{}
	}
	m.Removed[playlistID] = append(m.Removed[playlistID], refs...)
	return "snapshot-remove", nil
}

func (m *MockService) Devices(ctx context.Context) ([]models.Device, error) {
	m.record("Devices")
	if m.DeviceHook != nil {
		m.DeviceHook()
	}
	if m.ErrDevices != nil {
		return nil, m.ErrDevices
	}
	return m.DeviceList, nil
}

func (m *MockService) SetDevice(ctx context.Context, deviceID string) error {
	m.record("SetDevice")
	if m.ErrSetDevice != nil {
		return m.ErrSetDevice
	}
	m.mu.Lock()
	m.Selected = append(m.Selected, deviceID)
	m.mu.Unlock()
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/chartx/internal/models"
	"golang.org/x/oauth2"
)

// SearchKey builds the lookup key used by [MockPlaylistService.Results].
func SearchKey(title, artist string) string {
	return title + "|" + artist
}

// ReplaceCall records a [MockPlaylistService.ReplaceTracks] invocation.
type ReplaceCall struct {
	PlaylistID string
	TrackIDs   []string
}

// UpdateCall records a [MockPlaylistService.UpdateDetails] invocation.
type UpdateCall struct {
	PlaylistID  string
	Name        string
	Description string
}

// MockPlaylistService is a test double for [services.PlaylistService]
//
// Searches are answered from Results; unknown keys are misses.
// Each *Err field makes the matching method fail.
type MockPlaylistService struct {
	Results map[string]*models.Track

	AuthErr    error
	SearchErrs map[string]error
	CreateErr  error
	AddErr     error
	ReplaceErr error
	UpdateErr  error

	mu            sync.Mutex
	Authenticated bool
	Searches      []string
	Created       []models.Playlist
	Added         map[string][]string
	AddCalls      int
	Replaced      []ReplaceCall
	Updated       []UpdateCall
}

// NewMockPlaylistService returns a mock answering searches from results.
func NewMockPlaylistService(results map[string]*models.Track) *MockPlaylistService {
	if results == nil {
		results = map[string]*models.Track{}
	}
	return &MockPlaylistService{Results: results, Added: map[string][]string{}}
}

func (m *MockPlaylistService) Authenticate(ctx context.Context) (*oauth2.Token, error) {
	if m.AuthErr != nil {
		return nil, m.AuthErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Authenticated = true
	return &oauth2.Token{AccessToken: "mock-token", TokenType: "Bearer"}, nil
}

func (m *MockPlaylistService) SearchTrack(ctx context.Context, title, artist string) (*models.Track, error) {
	key := SearchKey(title, artist)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Searches = append(m.Searches, key)
	if err, ok := m.SearchErrs[key]; ok {
		return nil, err
	}
	return m.Results[key], nil
}

func (m *MockPlaylistService) CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	pl := models.Playlist{ID: fmt.Sprintf("mock-playlist-%d", len(m.Created)+1), Name: name, Description: description}
	m.Created = append(m.Created, pl)
	return &pl, nil
}

func (m *MockPlaylistService) AddTracks(ctx context.Context, playlistID string, trackIDs ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddCalls++
	if m.AddErr != nil {
		return m.AddErr
	}
	if m.Added == nil {
		m.Added = map[string][]string{}
	}
	m.Added[playlistID] = append(m.Added[playlistID], trackIDs...)
	return nil
}

func (m *MockPlaylistService) ReplaceTracks(ctx context.Context, playlistID string, trackIDs ...string) error {
	if m.ReplaceErr != nil {
		return m.ReplaceErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Replaced = append(m.Replaced, ReplaceCall{PlaylistID: playlistID, TrackIDs: trackIDs})
	if m.Added == nil {
		m.Added = map[string][]string{}
	}
	m.Added[playlistID] = append([]string(nil), trackIDs...)
	return nil
}

func (m *MockPlaylistService) UpdateDetails(ctx context.Context, playlistID, name, description string) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Updated = append(m.Updated, UpdateCall{PlaylistID: playlistID, Name: name, Description: description})
	return nil
}

func (m *MockPlaylistService) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
	Requests []*http.Request
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.Requests = append(m.Requests, req)
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

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertNoFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File should not exist: %s", path)
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

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/shared"
)

// DefaultReleasesURL is the GitHub endpoint queried for the latest release.
const DefaultReleasesURL = "https://api.github.com/repos/desertthunder/spt/releases/latest"

// UpdateChecker compares the running version against the latest published release.
type UpdateChecker struct {
	client  *http.Client
	url     string
	version string
}

// UpdateResult is the outcome of a release lookup.
type UpdateResult struct {
	Release   models.Release
	Available bool
}

// NewUpdateChecker creates an [UpdateChecker] for version. An empty url uses [DefaultReleasesURL].
func NewUpdateChecker(client *http.Client, url, version string) *UpdateChecker {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if url == "" {
		url = DefaultReleasesURL
	}
	return &UpdateChecker{client: client, url: url, version: version}
}

// Latest fetches the latest release.
func (u *UpdateChecker) Latest(ctx context.Context) (*models.Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode}
	}

	var release models.Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to decode release: %w", err)
	}
	return &release, nil
}

// Check reports whether the latest release differs from the running version.
//
// An empty tag name never counts as an update.
func (u *UpdateChecker) Check(ctx context.Context) (*UpdateResult, error) {
	release, err := u.Latest(ctx)
	if err != nil {
		return nil, err
	}
	return &UpdateResult{
		Release:   *release,
		Available: IsNewer(release.TagName, u.version),
	}, nil
}

// IsNewer reports whether latest names a release other than current, ignoring a leading "v".
func IsNewer(latest, current string) bool {
	latest = strings.TrimPrefix(strings.TrimSpace(latest), "v")
	current = strings.TrimPrefix(strings.TrimSpace(current), "v")
	return latest != "" && latest != current
}

package update

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/codeGROOVE-dev/deskshell/pkg/filecache"
	"github.com/codeGROOVE-dev/retry"
	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

const (
	maxRetries    = 4
	maxRetryDelay = 30 * time.Second
	apiTimeout    = 30 * time.Second
	// cacheTTL bounds how long background checks reuse the last API answer.
	cacheTTL = time.Hour
)

// ErrNoUpdate is returned when the latest release is not newer than the running build.
var ErrNoUpdate = errors.New("no update available")

// Release describes a published release that can replace the running binary.
type Release struct {
	Version     *semver.Version
	Tag         string
	URL         string
	Notes       string
	AssetName   string
	AssetURL    string
	ChecksumURL string
}

// newGitHubClient returns a client for the releases API, authenticated when token is set.
func newGitHubClient(ctx context.Context, httpClient *http.Client, token, baseURL string) (*github.Client, error) {
	if token != "" {
		if httpClient != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		}
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(ctx, ts)
	}
	client := github.NewClient(httpClient)
	if baseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse API base URL: %w", err)
		}
		client.BaseURL = u
	}
	return client, nil
}

// cachedRelease returns the latest release, reusing a recent answer when allowed.
func (m *Manager) cachedRelease(ctx context.Context, allowCached bool) (*github.RepositoryRelease, error) {
	if m.cache == nil {
		return m.latestRelease(ctx)
	}
	key := filecache.Key(m.client.BaseURL.String(), m.owner, m.repo)
	if allowCached {
		e, hit, err := m.cache.Get(key, m.current.String(), cacheTTL)
		if err != nil {
			m.log.Warn("[UPDATE] Ignoring unreadable release cache", "error", err)
		}
		if hit {
			m.log.Debug("[UPDATE] Using cached release", "tag", e.Data.GetTagName(), "cached_at", e.CachedAt)
			return &e.Data, nil
		}
	}

	rel, err := m.latestRelease(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.cache.Put(key, m.current.String(), *rel); err != nil {
		m.log.Warn("[UPDATE] Failed to cache release", "error", err)
	}
	return rel, nil
}

// latestRelease fetches the latest published release with retry.
func (m *Manager) latestRelease(ctx context.Context) (*github.RepositoryRelease, error) {
	var release *github.RepositoryRelease

	err := retry.Do(func() error {
		apiCtx, cancel := context.WithTimeout(ctx, apiTimeout)
		defer cancel()

		var err error
		release, _, err = m.client.Repositories.GetLatestRelease(apiCtx, m.owner, m.repo)
		if err != nil {
			var ghErr *github.ErrorResponse
			if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
				return retry.Unrecoverable(err)
			}
			m.log.Debug("[UPDATE] GetLatestRelease failed (will retry)", "error", err)
			return err
		}
		return nil
	},
		retry.Attempts(maxRetries),
		retry.Delay(m.retryDelay),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.MaxDelay(maxRetryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			m.log.Warn("[UPDATE] GetLatestRelease retry", "attempt", n+1, "error", err)
		}),
		retry.Context(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("fetch latest release of %s/%s: %w", m.owner, m.repo, err)
	}
	return release, nil
}

// newer converts rel into a Release if it is a stable version above current.
func newer(rel *github.RepositoryRelease, current *semver.Version, goos, goarch string) (*Release, error) {
	if rel.GetDraft() || rel.GetPrerelease() {
		return nil, ErrNoUpdate
	}
	v, err := semver.NewVersion(rel.GetTagName())
	if err != nil {
		return nil, fmt.Errorf("parse release tag %q: %w", rel.GetTagName(), err)
	}
	if v.Prerelease() != "" || !v.GreaterThan(current) {
		return nil, ErrNoUpdate
	}

	out := &Release{
		Version: v,
		Tag:     rel.GetTagName(),
		URL:     rel.GetHTMLURL(),
		Notes:   rel.GetBody(),
	}
	asset := pickAsset(rel.Assets, goos, goarch)
	if asset != nil {
		out.AssetName = asset.GetName()
		out.AssetURL = asset.GetBrowserDownloadURL()
		for _, a := range rel.Assets {
			if a.GetName() == out.AssetName+".sha256" {
				out.ChecksumURL = a.GetBrowserDownloadURL()
			}
		}
	}
	return out, nil
}

// unusableSuffixes mark assets the updater cannot apply: checksums,
// signatures, installer packages and archives other than zip.
var unusableSuffixes = []string{
	".sha256", ".sig", ".asc", ".txt", ".json",
	".tar", ".tar.gz", ".tgz", ".tar.xz", ".txz", ".tar.bz2", ".gz", ".xz", ".bz2", ".zst", ".7z", ".rar",
	".dmg", ".pkg", ".deb", ".rpm", ".apk", ".msi", ".msix", ".appimage", ".snap", ".flatpak",
}

// applicable reports whether a lower-cased asset name is a raw executable or a zip.
func applicable(name string) bool {
	for _, suffix := range unusableSuffixes {
		if strings.HasSuffix(name, suffix) {
			return false
		}
	}
	return true
}

// pickAsset finds the binary or zip for goos/goarch, accepting "-" or "_" separators.
// macOS builds may also ship as a single universal binary.
func pickAsset(assets []*github.ReleaseAsset, goos, goarch string) *github.ReleaseAsset {
	targets := []string{goos + "-" + goarch, goos + "_" + goarch}
	if goos == "darwin" {
		targets = append(targets, "darwin-universal", "darwin_universal")
	}
	for _, target := range targets {
		for _, a := range assets {
			name := strings.ToLower(a.GetName())
			if !applicable(name) {
				continue
			}
			if strings.Contains(name, target) {
				return a
			}
		}
	}
	return nil
}

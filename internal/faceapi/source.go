// Package faceapi acquires face images from a remote generator with a local
// dummy-image fallback. A fetch never fails: callers always receive some
// displayable URL, either a data URL from the network or a bundled asset path.
package faceapi

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mkondo/facedrill/internal/model"
)

// Defaults for the remote endpoint and its CORS relay.
const (
	DefaultEndpoint = "https://thispersondoesnotexist.com"
	DefaultRelay    = "https://corsproxy.io/?"

	// DefaultFaceAsset is the universal fallback image.
	DefaultFaceAsset = "assets/default-face.jpg"

	fetchTimeout = 5 * time.Second
)

// Resolved source labels for diagnostics.
const (
	SourceCache   = "cache"
	SourceNetwork = "network"
	SourceLocal   = "local"
)

// dummyManifest lists the local image indices that actually exist per region.
// Regions with fewer bundled images list only what is there.
var dummyManifest = map[model.Region][]int{
	model.RegionJapan:  {1, 2, 3, 4, 5},
	model.RegionUSA:    {1, 2, 3, 4, 5},
	model.RegionEurope: {1, 2, 3},
	model.RegionAsia:   {1, 2, 3, 4},
}

// Options configures a Source.
type Options struct {
	// Endpoint is the remote face image URL. Defaults to DefaultEndpoint.
	Endpoint string
	// Relay, when non-empty, wraps the percent-encoded endpoint in a CORS
	// relay request. Empty means a direct request.
	Relay string
	// Client overrides the HTTP client (tests). A per-request timeout is
	// applied regardless.
	Client *http.Client
	// Rand seeds dummy-image selection (tests). Defaults to time-seeded.
	Rand *rand.Rand
	// Offline starts the source in offline mode.
	Offline bool
}

// Source fetches face images. Safe for use from a single goroutine per the
// process model; the mutex only guards the preload queue and sticky flags.
type Source struct {
	endpoint string
	relay    string
	client   *http.Client
	log      *zap.Logger

	mu         sync.Mutex
	rnd        *rand.Rand
	offline    bool
	lastSource string
	queue      map[model.Region][]string
}

// New builds a Source.
func New(opts Options, log *zap.Logger) *Source {
	if log == nil {
		log = zap.NewNop()
	}
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Source{
		endpoint: endpoint,
		relay:    opts.Relay,
		client:   client,
		log:      log,
		rnd:      rnd,
		offline:  opts.Offline,
		queue:    map[model.Region][]string{},
	}
}

// FetchFace resolves one face image URL for the region. It consumes the
// preload queue first, then the network, then the local dummy manifest.
// It never returns an error: any network failure flips the source into
// offline mode for the rest of the process and yields a local image.
func (s *Source) FetchFace(ctx context.Context, region model.Region) string {
	if img, ok := s.popQueued(region); ok {
		s.setLastSource(SourceCache)
		return img
	}
	return s.resolve(ctx, region)
}

// resolve acquires a fresh image, bypassing the preload queue.
func (s *Source) resolve(ctx context.Context, region model.Region) string {
	if s.Offline() {
		s.setLastSource(SourceLocal)
		return s.localDummy(region)
	}

	img, err := s.fetchRemote(ctx)
	if err != nil {
		s.log.Warn("face fetch failed, switching to local images",
			zap.String("region", string(region)), zap.Error(err))
		s.SetOffline(true)
		s.setLastSource(SourceLocal)
		return s.localDummy(region)
	}
	s.setLastSource(SourceNetwork)
	return img
}

// Preload fetches n images into the region's in-memory queue so later
// FetchFace calls resolve without touching the network. Every iteration
// performs a fresh acquisition; the queue is only consumed by FetchFace.
func (s *Source) Preload(ctx context.Context, region model.Region, n int) {
	for i := 0; i < n; i++ {
		img := s.resolve(ctx, region)
		s.mu.Lock()
		s.queue[region] = append(s.queue[region], img)
		s.mu.Unlock()
	}
}

// ClearCache drops all preloaded images.
func (s *Source) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = map[model.Region][]string{}
}

// SetOffline forces or clears offline mode.
func (s *Source) SetOffline(offline bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offline = offline
}

// Offline reports whether the source is in offline mode.
func (s *Source) Offline() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offline
}

// LastSource reports where the most recent image came from: cache, network
// or local.
func (s *Source) LastSource() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSource
}

func (s *Source) setLastSource(src string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSource = src
}

func (s *Source) popQueued(region model.Region) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.queue[region]
	if len(q) == 0 {
		return "", false
	}
	img := q[len(q)-1]
	s.queue[region] = q[:len(q)-1]
	return img, true
}

func (s *Source) fetchRemote(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.requestURL(), http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "image/jpeg, image/png, */*")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read image body: %w", err)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("empty image body")
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" || !strings.HasPrefix(mime, "image/") {
		mime = http.DetectContentType(body)
	}
	return DataURL(mime, body), nil
}

// requestURL builds the remote URL with a cache-busting timestamp, routed
// through the relay when one is configured.
func (s *Source) requestURL() string {
	busted := fmt.Sprintf("t=%d", time.Now().UnixMilli())
	if s.relay == "" {
		sep := "?"
		if strings.Contains(s.endpoint, "?") {
			sep = "&"
		}
		return s.endpoint + sep + busted
	}
	return s.relay + url.QueryEscape(s.endpoint) + "?" + busted
}

func (s *Source) localDummy(region model.Region) string {
	indices := dummyManifest[region]
	if len(indices) == 0 {
		return DefaultFaceAsset
	}
	s.mu.Lock()
	idx := indices[s.rnd.Intn(len(indices))]
	s.mu.Unlock()
	return LocalFacePath(region, idx)
}

// LocalFacePath returns the bundled asset path for a region's Nth dummy face.
func LocalFacePath(region model.Region, n int) string {
	return fmt.Sprintf("assets/face-data/%s/face%d.jpg", region, n)
}

// DataURL encodes an image payload as a self-contained data URL.
func DataURL(mime string, body []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(body)
}

// IsDataURL reports whether the URL is a self-contained data URL rather than
// a bundled asset path.
func IsDataURL(u string) bool {
	return strings.HasPrefix(u, "data:")
}

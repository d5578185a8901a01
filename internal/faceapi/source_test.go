package faceapi

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkondo/facedrill/internal/model"
)

// tiny but valid JPEG header, enough for content-type sniffing
var jpegStub = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

func newTestSource(t *testing.T, handler http.HandlerFunc) (*Source, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	src := New(Options{
		Endpoint: srv.URL,
		Client:   srv.Client(),
		Rand:     rand.New(rand.NewSource(1)),
	}, nil)
	return src, srv
}

func TestFetchFaceReturnsDataURL(t *testing.T) {
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(jpegStub)
	})

	img := src.FetchFace(context.Background(), model.RegionJapan)
	require.True(t, strings.HasPrefix(img, "data:image/jpeg;base64,"), "got %q", img)
	assert.Equal(t, SourceNetwork, src.LastSource())
	assert.False(t, src.Offline())
}

func TestFetchFaceAppendsCacheBuster(t *testing.T) {
	var gotQuery string
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(jpegStub)
	})

	src.FetchFace(context.Background(), model.RegionUSA)
	assert.True(t, strings.HasPrefix(gotQuery, "t="), "query %q should carry a timestamp", gotQuery)
}

func TestFetchFaceFailureSticksOffline(t *testing.T) {
	calls := 0
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "nope", http.StatusBadGateway)
	})

	img := src.FetchFace(context.Background(), model.RegionEurope)
	require.True(t, strings.HasPrefix(img, "assets/face-data/europe/face"), "got %q", img)
	assert.Equal(t, SourceLocal, src.LastSource())
	assert.True(t, src.Offline())

	// subsequent fetches must not touch the network again
	src.FetchFace(context.Background(), model.RegionEurope)
	assert.Equal(t, 1, calls)
}

func TestSetOfflineRestoresNetwork(t *testing.T) {
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'})
	})
	src.SetOffline(true)

	img := src.FetchFace(context.Background(), model.RegionAsia)
	assert.True(t, strings.HasPrefix(img, "assets/"))

	src.SetOffline(false)
	img = src.FetchFace(context.Background(), model.RegionAsia)
	assert.True(t, IsDataURL(img))
}

func TestPreloadServesFromCache(t *testing.T) {
	calls := 0
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(jpegStub)
	})

	src.Preload(context.Background(), model.RegionJapan, 3)
	require.Equal(t, 3, calls)

	for i := 0; i < 3; i++ {
		img := src.FetchFace(context.Background(), model.RegionJapan)
		assert.True(t, IsDataURL(img))
		assert.Equal(t, SourceCache, src.LastSource())
	}
	assert.Equal(t, 3, calls, "queued fetches must not hit the network")

	src.FetchFace(context.Background(), model.RegionJapan)
	assert.Equal(t, 4, calls)
}

func TestClearCacheDropsQueue(t *testing.T) {
	calls := 0
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(jpegStub)
	})

	src.Preload(context.Background(), model.RegionUSA, 2)
	src.ClearCache()
	src.FetchFace(context.Background(), model.RegionUSA)
	assert.Equal(t, 3, calls)
}

func TestLocalDummyUnknownRegionFallsBack(t *testing.T) {
	src := New(Options{Offline: true, Rand: rand.New(rand.NewSource(1))}, nil)
	img := src.FetchFace(context.Background(), model.Region("atlantis"))
	assert.Equal(t, DefaultFaceAsset, img)
}

func TestRelayWrapsEndpoint(t *testing.T) {
	src := New(Options{Endpoint: "https://faces.example.com", Relay: "https://relay.example.com/?"}, nil)
	u := src.requestURL()
	assert.True(t, strings.HasPrefix(u, "https://relay.example.com/?https%3A%2F%2Ffaces.example.com?t="), "got %q", u)
}

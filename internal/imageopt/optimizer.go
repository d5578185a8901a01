// Package imageopt downsizes face images before they are cached. Oversized
// images are scaled so the longer side fits the bound and re-encoded as JPEG;
// everything else passes through untouched.
package imageopt

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"

	_ "image/gif"
	_ "image/png"

	"github.com/mkondo/facedrill/internal/faceapi"
)

const (
	// MaxDimension bounds both sides of an optimized image.
	MaxDimension = 256

	jpegQuality     = 85
	optimizeTimeout = 5 * time.Second
)

// Optimizer shrinks images to the cache bound. The zero value is not usable;
// construct it with New.
type Optimizer struct {
	assetsDir string
	log       *zap.Logger
}

// New builds an Optimizer. assetsDir is the root used to resolve bundled
// asset paths such as the offline dummy faces.
func New(assetsDir string, log *zap.Logger) *Optimizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Optimizer{assetsDir: assetsDir, log: log}
}

// Optimize returns a URL no larger than MaxDimension on either side. The
// input is either a data URL or a bundled asset path. Optimization is
// best-effort: on decode failure or timeout the default face asset is
// returned, never an error.
func (o *Optimizer) Optimize(ctx context.Context, imageURL string) string {
	ctx, cancel := context.WithTimeout(ctx, optimizeTimeout)
	defer cancel()

	type result struct {
		url string
		err error
	}
	ch := make(chan result, 1)
	go func() {
		url, err := o.optimize(imageURL)
		ch <- result{url, err}
	}()

	select {
	case <-ctx.Done():
		o.log.Warn("image optimization timed out", zap.Error(ctx.Err()))
		return faceapi.DefaultFaceAsset
	case res := <-ch:
		if res.err != nil {
			o.log.Warn("image optimization failed", zap.Error(res.err))
			return faceapi.DefaultFaceAsset
		}
		return res.url
	}
}

func (o *Optimizer) optimize(imageURL string) (string, error) {
	raw, err := o.payload(imageURL)
	if err != nil {
		return "", err
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= MaxDimension && h <= MaxDimension {
		// already small enough, keep the original bytes
		return imageURL, nil
	}

	nw, nh := fitDimensions(w, h)
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return faceapi.DataURL("image/jpeg", buf.Bytes()), nil
}

// payload extracts raw image bytes from a data URL or reads a bundled asset.
func (o *Optimizer) payload(imageURL string) ([]byte, error) {
	if faceapi.IsDataURL(imageURL) {
		idx := strings.Index(imageURL, ",")
		if idx < 0 {
			return nil, fmt.Errorf("malformed data url")
		}
		raw, err := base64.StdEncoding.DecodeString(imageURL[idx+1:])
		if err != nil {
			return nil, fmt.Errorf("failed to decode data url payload: %w", err)
		}
		return raw, nil
	}

	path := imageURL
	if o.assetsDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(o.assetsDir, filepath.FromSlash(imageURL))
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset %s: %w", imageURL, err)
	}
	return raw, nil
}

// fitDimensions scales (w, h) so the longer side equals MaxDimension,
// preserving aspect ratio and flooring the shorter side.
func fitDimensions(w, h int) (int, int) {
	if w >= h {
		nh := h * MaxDimension / w
		if nh < 1 {
			nh = 1
		}
		return MaxDimension, nh
	}
	nw := w * MaxDimension / h
	if nw < 1 {
		nw = 1
	}
	return nw, MaxDimension
}

package imageopt

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkondo/facedrill/internal/faceapi"
)

func encodePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return faceapi.DataURL("image/png", buf.Bytes())
}

func decodeDataURL(t *testing.T, u string) image.Image {
	t.Helper()
	idx := strings.Index(u, ",")
	require.Positive(t, idx)
	raw, err := base64.StdEncoding.DecodeString(u[idx+1:])
	require.NoError(t, err)
	img, _, err := image.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestOptimizeShrinksOversizedImage(t *testing.T) {
	opt := New("", nil)
	out := opt.Optimize(context.Background(), encodePNG(t, 1000, 500))

	require.True(t, strings.HasPrefix(out, "data:image/jpeg;base64,"))
	img := decodeDataURL(t, out)
	assert.Equal(t, 256, img.Bounds().Dx())
	assert.Equal(t, 128, img.Bounds().Dy())
}

func TestOptimizePortraitBoundsHeight(t *testing.T) {
	opt := New("", nil)
	out := opt.Optimize(context.Background(), encodePNG(t, 300, 600))

	img := decodeDataURL(t, out)
	assert.Equal(t, 128, img.Bounds().Dx())
	assert.Equal(t, 256, img.Bounds().Dy())
}

func TestOptimizeKeepsSmallImageUntouched(t *testing.T) {
	opt := New("", nil)
	in := encodePNG(t, 200, 100)
	assert.Equal(t, in, opt.Optimize(context.Background(), in))
}

func TestOptimizeReadsAssetFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))

	img := image.NewRGBA(image.Rect(0, 0, 512, 512))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "face.jpg"), buf.Bytes(), 0o644))

	opt := New(dir, nil)
	out := opt.Optimize(context.Background(), "assets/face.jpg")
	require.True(t, strings.HasPrefix(out, "data:image/jpeg;base64,"))

	decoded := decodeDataURL(t, out)
	assert.Equal(t, 256, decoded.Bounds().Dx())
	assert.Equal(t, 256, decoded.Bounds().Dy())
}

func TestOptimizeGarbageFallsBackToDefault(t *testing.T) {
	opt := New("", nil)
	out := opt.Optimize(context.Background(), "data:image/jpeg;base64,bm90IGFuIGltYWdl")
	assert.Equal(t, faceapi.DefaultFaceAsset, out)
}

func TestOptimizeMissingAssetFallsBackToDefault(t *testing.T) {
	opt := New(t.TempDir(), nil)
	out := opt.Optimize(context.Background(), "assets/nope.jpg")
	assert.Equal(t, faceapi.DefaultFaceAsset, out)
}

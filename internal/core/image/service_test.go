package image

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSaveBase64AsPNG(t *testing.T) {
	svc := NewService(1 << 20)
	out := filepath.Join(t.TempDir(), "nested", "recipe_image_0.png")

	encoded := base64.StdEncoding.EncodeToString(samplePNG(t))
	require.NoError(t, svc.SaveBase64AsPNG(encoded, out))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	_, format, err := image.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
}

func TestSaveBase64AsPNGConvertsJPEG(t *testing.T) {
	svc := NewService(1 << 20)
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2)), nil))
	out := filepath.Join(t.TempDir(), "img.png")

	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	require.NoError(t, svc.SaveBase64AsPNG(dataURL, out))

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	_, format, err := image.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
}

func TestValidateRejectsGarbageAndOversize(t *testing.T) {
	svc := NewService(10)

	_, _, err := svc.Validate(samplePNG(t))
	assert.ErrorContains(t, err, "exceeds maximum")

	svc = NewService(0)
	_, _, err = svc.Validate([]byte("not an image"))
	assert.ErrorContains(t, err, "failed to decode image")
}

func TestDecodeBase64Errors(t *testing.T) {
	svc := NewService(0)

	_, err := svc.DecodeBase64("")
	assert.Error(t, err)
	_, err = svc.DecodeBase64("data:image/png;base64")
	assert.Error(t, err)
	_, err = svc.DecodeBase64("%%%")
	assert.Error(t, err)
}

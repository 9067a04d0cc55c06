package services

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height)), nil))
	return buf.Bytes()
}

func TestProcessLogoPNG(t *testing.T) {
	service := NewLogoService(testLogger())

	dataURL, width, height, err := service.ProcessLogo(encodePNG(t, 300, 150))
	require.NoError(t, err)

	assert.Equal(t, 300, width)
	assert.Equal(t, 150, height)
	assert.True(t, strings.HasPrefix(dataURL, "data:image/png;base64,"))
}

func TestProcessLogoJPEG(t *testing.T) {
	service := NewLogoService(testLogger())

	dataURL, _, _, err := service.ProcessLogo(encodeJPEG(t, 200, 200))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(dataURL, "data:image/jpeg;base64,"))
}

func TestProcessLogoAtDimensionLimit(t *testing.T) {
	service := NewLogoService(testLogger())

	_, width, height, err := service.ProcessLogo(encodePNG(t, MaxLogoDimension, MaxLogoDimension))
	require.NoError(t, err)
	assert.Equal(t, MaxLogoDimension, width)
	assert.Equal(t, MaxLogoDimension, height)
}

func TestProcessLogoRejectsOversized(t *testing.T) {
	service := NewLogoService(testLogger())

	_, _, _, err := service.ProcessLogo(encodePNG(t, MaxLogoDimension+1, 100))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum allowed")

	_, _, _, err = service.ProcessLogo(encodePNG(t, 100, MaxLogoDimension+1))
	require.Error(t, err)
}

func TestProcessLogoRejectsGarbage(t *testing.T) {
	service := NewLogoService(testLogger())

	_, _, _, err := service.ProcessLogo([]byte("this is not an image"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized image data")
}

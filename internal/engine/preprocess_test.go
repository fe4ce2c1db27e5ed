package engine

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func makePNG(t *testing.T, w, h int, fill color.Gray) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, fill)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPreprocessDecodeFailure(t *testing.T) {
	_, err := preprocess([]byte("this is not an image"))
	require.Error(t, err)
	require.Equal(t, KindDecodeFailed, AsKind(err))
}

func TestPreprocessSmallImageSkipsDenoise(t *testing.T) {
	data := makePNG(t, 10, 10, color.Gray{Y: 200})
	out, err := preprocess(data)
	require.NoError(t, err)
	require.NotEmpty(t, out)

	img, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, 10, img.Bounds().Dx())
	require.Equal(t, 10, img.Bounds().Dy())
}

func TestPreprocessLargeImageThresholds(t *testing.T) {
	data := makePNG(t, 120, 120, color.Gray{Y: 50})
	out, err := preprocess(data)
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	gray, ok := img.(*image.Gray)
	require.True(t, ok)
	// Below the threshold (128), every pixel should be driven to black.
	require.Equal(t, uint8(0), gray.GrayAt(60, 60).Y)
}

func TestThreshold(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 2, 1))
	src.SetGray(0, 0, color.Gray{Y: 100})
	src.SetGray(1, 0, color.Gray{Y: 200})

	out := threshold(src, 128)
	require.Equal(t, uint8(0), out.GrayAt(0, 0).Y)
	require.Equal(t, uint8(255), out.GrayAt(1, 0).Y)
}

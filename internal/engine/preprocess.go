// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"io"
	"sort"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// minDenoiseDimension is the threshold (in pixels, per side) above which
// median denoising is applied before thresholding.
const minDenoiseDimension = 100

// preprocess decodes data as an image and applies the deterministic
// pipeline: grayscale conversion, optional median denoise for images
// >=100x100, and binary threshold at mid-intensity. It returns the
// preprocessed image encoded as PNG, ready to hand to the recognizer.
func preprocess(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrDecodeFailed(err)
	}

	gray := toGrayscale(img)

	bounds := gray.Bounds()
	if bounds.Dx() >= minDenoiseDimension && bounds.Dy() >= minDenoiseDimension {
		gray = medianDenoise(gray)
	}

	binary := threshold(gray, 128)

	var buf bytes.Buffer
	if err := encodePNG(&buf, binary); err != nil {
		return nil, ErrEngineFailure(err)
	}
	return buf.Bytes(), nil
}

func toGrayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
	return gray
}

// medianDenoise applies a 3x3 median filter, a simple and deterministic
// denoising step suitable for scanned/screenshotted text.
func medianDenoise(src *image.Gray) *image.Gray {
	bounds := src.Bounds()
	dst := image.NewGray(bounds)
	window := make([]uint8, 0, 9)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			window = window[:0]
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					px := clamp(x+dx, bounds.Min.X, bounds.Max.X-1)
					py := clamp(y+dy, bounds.Min.Y, bounds.Max.Y-1)
					window = append(window, src.GrayAt(px, py).Y)
				}
			}
			sort.Slice(window, func(i, j int) bool { return window[i] < window[j] })
			dst.SetGray(x, y, color.Gray{Y: window[len(window)/2]})
		}
	}
	return dst
}

func threshold(src *image.Gray, level uint8) *image.Gray {
	bounds := src.Bounds()
	dst := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if src.GrayAt(x, y).Y >= level {
				dst.SetGray(x, y, color.Gray{Y: 255})
			} else {
				dst.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	return dst
}

func encodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Package frame adapts the accepted input encodings (uploaded bytes, base64
// payloads, data URLs) into decoded frames for the pipeline.
package frame

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"strings"

	perr "sortrash/internal/errors"
	"sortrash/internal/service/pipeline"
)

// JPEGQuality is used when frames are re-encoded as JPEG.
const JPEGQuality = 90

// Image is an in-memory RGBA frame with its origin at (0, 0).
type Image struct {
	rgba *image.RGBA
}

// FromImage copies img into a new frame.
func FromImage(img image.Image) *Image {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return &Image{rgba: rgba}
}

// Bounds returns the pixel extent of the frame.
func (f *Image) Bounds() image.Rectangle { return f.rgba.Bounds() }

// RGBA exposes the underlying raster.
func (f *Image) RGBA() *image.RGBA { return f.rgba }

// Crop copies r out of the frame.
func (f *Image) Crop(r image.Rectangle) (pipeline.Frame, error) {
	if !r.In(f.rgba.Bounds()) || r.Empty() {
		return nil, fmt.Errorf("crop %v outside frame %v", r, f.rgba.Bounds())
	}
	return FromImage(f.rgba.SubImage(r)), nil
}

// Encode renders the frame as JPEG or PNG.
func (f *Image) Encode(ext string) ([]byte, error) {
	var buf bytes.Buffer
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		if err := jpeg.Encode(&buf, f.rgba, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return nil, fmt.Errorf("failed to encode jpeg: %w", err)
		}
	case ".png":
		if err := png.Encode(&buf, f.rgba); err != nil {
			return nil, fmt.Errorf("failed to encode png: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported image format %q", ext)
	}
	return buf.Bytes(), nil
}

// Close releases nothing; pixels are garbage collected.
func (f *Image) Close() error { return nil }

// Decoder decodes JPEG, PNG and GIF bytes with the standard image codecs.
type Decoder struct{}

// Decode implements pipeline.Decoder.
func (Decoder) Decode(data []byte) (pipeline.Frame, error) {
	if len(data) == 0 {
		return nil, perr.New(perr.KindInputDecode, "empty image")
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, perr.Wrap(err, perr.KindInputDecode, "failed to decode image")
	}
	return FromImage(img), nil
}

// DecodeBase64 parses a plain base64 string or a data URL such as
// "data:image/jpeg;base64,...". Surrounding whitespace and embedded line
// breaks are ignored.
func DecodeBase64(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 || !strings.Contains(payload[:comma], ";base64") {
			return nil, perr.New(perr.KindInputDecode, "malformed data URL")
		}
		payload = payload[comma+1:]
	}
	payload = strings.NewReplacer("\n", "", "\r", "", " ", "").Replace(payload)
	if payload == "" {
		return nil, perr.New(perr.KindInvalidArgument, "empty image payload")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// some clients strip the padding
		if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); rawErr == nil {
			return raw, nil
		}
		return nil, perr.Wrap(err, perr.KindInputDecode, "invalid base64 image")
	}
	return data, nil
}

// EncodeBase64 is the inverse of DecodeBase64 for plain payloads.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

package ai

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	perr "sortrash/internal/errors"
	"sortrash/internal/service/pipeline"
)

// MatFrame is a BGR frame held in OpenCV memory.
type MatFrame struct {
	mat gocv.Mat
}

// Bounds returns the pixel extent of the frame.
func (f *MatFrame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.mat.Cols(), f.mat.Rows())
}

// Mat exposes the underlying matrix. It stays owned by the frame.
func (f *MatFrame) Mat() gocv.Mat { return f.mat }

// Crop clones region r into a new frame.
func (f *MatFrame) Crop(r image.Rectangle) (pipeline.Frame, error) {
	if r.Empty() || !r.In(f.Bounds()) {
		return nil, fmt.Errorf("crop %v outside frame %v", r, f.Bounds())
	}
	region := f.mat.Region(r)
	defer region.Close()

	return &MatFrame{mat: region.Clone()}, nil
}

// Encode renders the frame with OpenCV's codecs.
func (f *MatFrame) Encode(ext string) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.FileExt(ext), f.mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %v", err)
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}

// Close frees the matrix.
func (f *MatFrame) Close() error {
	return f.mat.Close()
}

// Decoder decodes images into BGR MatFrames.
type Decoder struct{}

// Decode implements pipeline.Decoder.
func (Decoder) Decode(data []byte) (pipeline.Frame, error) {
	if len(data) == 0 {
		return nil, perr.New(perr.KindInputDecode, "empty image")
	}
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, perr.Wrap(err, perr.KindInputDecode, "failed to decode image")
	}
	if mat.Empty() {
		mat.Close()
		return nil, perr.New(perr.KindInputDecode, "decoded image is empty")
	}
	return &MatFrame{mat: mat}, nil
}

// toMat returns a Mat view of any frame. release must be called when the
// Mat is no longer needed; it frees only what toMat allocated.
func toMat(frame pipeline.Frame) (mat gocv.Mat, release func(), err error) {
	if mf, ok := frame.(*MatFrame); ok {
		return mf.mat, func() {}, nil
	}

	data, err := frame.Encode(".png")
	if err != nil {
		return gocv.Mat{}, nil, err
	}
	mat, err = gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return gocv.Mat{}, nil, fmt.Errorf("failed to decode image: %v", err)
	}
	return mat, func() { mat.Close() }, nil
}

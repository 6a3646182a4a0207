package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	"github.com/disintegration/imaging"
)

// ImageProcessor handles image processing like resizing.
type ImageProcessor struct {
	quality int
}

// NewImageProcessor creates a new ImageProcessor.
func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{quality: 80}
}

// GenerateThumbnail creates a JPEG thumbnail fitting within maxWidth x maxHeight.
func (p *ImageProcessor) GenerateThumbnail(content io.Reader, maxWidth, maxHeight int) (io.Reader, error) {
	b, err := p.ResizeToJPEG(content, maxWidth, maxHeight)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

// ResizeToJPEG decodes any supported image, honours its EXIF orientation,
// shrinks it to fit the bounding box and re-encodes it as JPEG.
// Images already inside the box are re-encoded without scaling.
func (p *ImageProcessor) ResizeToJPEG(content io.Reader, maxWidth, maxHeight int) ([]byte, error) {
	img, err := imaging.Decode(content, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var out image.Image = img
	if b := img.Bounds(); b.Dx() > maxWidth || b.Dy() > maxHeight {
		out = imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, out, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

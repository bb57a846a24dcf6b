package transformation

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	// Registers the decoders image.DecodeConfig can recognise. imaging
	// itself pulls in bmp and tiff from golang.org/x/image.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

// ErrUnsupportedFormat is returned when the bytes are not an image in one of
// the registered formats.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Metadata is what Inspect learns from the image header.
type Metadata struct {
	Format string
	Width  int
	Height int
}

// Pixels is the decoded pixel count. Decoding allocates roughly four bytes
// per pixel up front, before any pixel data is read.
func (m Metadata) Pixels() int64 {
	return int64(m.Width) * int64(m.Height)
}

// ContentType is the MIME type stored alongside the artifact.
func (m Metadata) ContentType() string {
	return "image/" + m.Format
}

// Processor inspects and resizes images with imaging. The zero value is
// ready to use.
type Processor struct{}

func NewProcessor() *Processor {
	return &Processor{}
}

// getFormat maps the string format from image.Decode to the imaging.Format enum
func getFormat(format string) (imaging.Format, error) {
	switch format {
	case "jpeg":
		return imaging.JPEG, nil
	case "png":
		return imaging.PNG, nil
	case "gif":
		return imaging.GIF, nil
	case "bmp":
		return imaging.BMP, nil
	case "tiff":
		return imaging.TIFF, nil
	default:
		return -1, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// Inspect reads only the image header.
func (p *Processor) Inspect(buffer []byte) (Metadata, error) {
	if len(buffer) == 0 {
		return Metadata{}, ErrUnsupportedFormat
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(buffer))
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	if _, err := getFormat(format); err != nil {
		return Metadata{}, err
	}
	return Metadata{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// Fit scales the image down to fit inside maxWidth x maxHeight keeping the
// aspect ratio, and re-encodes it in the source format. Images already inside
// the box keep their dimensions.
func (p *Processor) Fit(buffer []byte, maxWidth int, maxHeight int) ([]byte, error) {
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, fmt.Errorf("invalid bounding box %dx%d", maxWidth, maxHeight)
	}

	img, formatStr, err := image.Decode(bytes.NewReader(buffer))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	format, err := getFormat(formatStr)
	if err != nil {
		return nil, err
	}

	// imaging.Fit returns a clone when the source is already inside the box.
	newImage := imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err = imaging.Encode(buf, newImage, format); err != nil {
		return nil, fmt.Errorf("error while resizing: %w", err)
	}
	return buf.Bytes(), nil
}

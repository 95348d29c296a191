package thumbnails

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"

	"github.com/dvolkovs/filevault/internal/common"
)

// decodeImage parses the original upload. A payload that is not a
// decodable image can never succeed on retry.
func decodeImage(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decoding image: %w: %s", common.ErrMalformedJob, err.Error())
	}
	return img, format, nil
}

// scaleToWidth resizes src to the given width keeping the aspect ratio.
// Images already narrower than width are returned unchanged; variants
// never upscale.
func scaleToWidth(src image.Image, width int) image.Image {
	b := src.Bounds()
	if b.Dx() <= width {
		return src
	}
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// encodeImage re-encodes a variant in the original's format. Formats
// without a matching encoder fall back to PNG.
func encodeImage(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, img, nil)
	default:
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return nil, fmt.Errorf("encoding %s variant: %w", format, err)
	}
	return buf.Bytes(), nil
}

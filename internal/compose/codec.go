package compose

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // registers the gif decoder
	_ "image/jpeg" // registers the jpeg decoder
	"image/png"
	"io"

	_ "golang.org/x/image/bmp"  // registers the bmp decoder
	_ "golang.org/x/image/webp" // registers the webp decoder
)

// DecodeImage decodes a png, jpeg, gif, bmp or webp image.
// It returns the image and the detected format name.
func DecodeImage(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("compose.DecodeImage: %w", err)
	}
	return img, format, nil
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("compose.EncodePNG: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodePNG decodes PNG bytes produced by EncodePNG.
func DecodePNG(b []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("compose.DecodePNG: %w", err)
	}
	return img, nil
}

// Package imagery loads the reference world image and samples tile colors
// from it.
package imagery

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
)

// ErrUnsupportedFormat is returned for image types Decode cannot read.
var ErrUnsupportedFormat = errors.New("imagery: unsupported image format")

// Decode reads an image, choosing the codec by file extension.
func Decode(r io.Reader, ext string) (image.Image, error) {
	switch strings.ToLower(ext) {
	case ".webp":
		return webp.Decode(r)
	case ".tga":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return decodeTGA(data)
	case ".jpg", ".jpeg", ".png":
		img, _, err := image.Decode(r)
		return img, err
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// DecodeFile opens and decodes the image at path.
func DecodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := Decode(f, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

package imagery

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image types handled by decodeTGA.
const (
	tgaTrueColor    = 2
	tgaTrueColorRLE = 10
)

var errTGATruncated = errors.New("tga: truncated data")

// decodeTGA reads uncompressed or RLE true-color TGA at 24 or 32 bpp.
func decodeTGA(data []byte) (*image.RGBA, error) {
	if len(data) < 18 {
		return nil, errTGATruncated
	}

	idLength := int(data[0])
	if data[1] != 0 {
		return nil, fmt.Errorf("%w: color-mapped tga", ErrUnsupportedFormat)
	}
	kind := data[2]
	if kind != tgaTrueColor && kind != tgaTrueColorRLE {
		return nil, fmt.Errorf("%w: tga type %d", ErrUnsupportedFormat, kind)
	}
	w := int(data[12]) | int(data[13])<<8
	h := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("%w: tga depth %d", ErrUnsupportedFormat, bpp)
	}
	topDown := data[17]&0x20 != 0

	body := data[min(18+idLength, len(data)):]
	stride := bpp / 8
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	// pixel reads one BGR(A) value from body at off.
	pixel := func(off int) (color.RGBA, bool) {
		if off+stride > len(body) {
			return color.RGBA{}, false
		}
		c := color.RGBA{R: body[off+2], G: body[off+1], B: body[off], A: 255}
		if stride == 4 {
			c.A = body[off+3]
		}
		return c, true
	}
	put := func(i int, c color.RGBA) {
		x, y := i%w, i/w
		if !topDown {
			y = h - 1 - y
		}
		img.SetRGBA(x, y, c)
	}

	total := w * h
	if kind == tgaTrueColor {
		if len(body) < total*stride {
			return nil, errTGATruncated
		}
		for i := 0; i < total; i++ {
			c, _ := pixel(i * stride)
			put(i, c)
		}
		return img, nil
	}

	off := 0
	for i := 0; i < total && off < len(body); {
		header := body[off]
		off++
		run := int(header&0x7f) + 1
		repeat := header&0x80 != 0

		c, ok := pixel(off)
		if !ok {
			return nil, errTGATruncated
		}
		for n := 0; n < run && i < total; n++ {
			if !repeat && n > 0 {
				if c, ok = pixel(off); !ok {
					return nil, errTGATruncated
				}
			}
			put(i, c)
			i++
			if !repeat {
				off += stride
			}
		}
		if repeat {
			off += stride
		}
	}
	return img, nil
}

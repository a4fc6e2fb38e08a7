package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Region selects part of a page, in source pixel coordinates.
//
// A named region ("top-left", "top-half", "center", ...) takes precedence over
// the corner coordinates (X1, Y1)-(X2, Y2), where X2 and Y2 are exclusive.
type Region struct {
	Name string `json:"name,omitempty"`
	X1   int    `json:"x1,omitempty"`
	Y1   int    `json:"y1,omitempty"`
	X2   int    `json:"x2,omitempty"`
	Y2   int    `json:"y2,omitempty"`
}

// Rect resolves the region against a width x height page.
func (r Region) Rect(width, height int) (image.Rectangle, error) {
	if r.Name != "" {
		return namedRect(r.Name, width, height)
	}

	if r.X1 < 0 || r.Y1 < 0 || r.X2 > width || r.Y2 > height {
		return image.Rectangle{}, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (0,0)-(%d,%d)",
			r.X1, r.Y1, r.X2, r.Y2, width, height)
	}
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return image.Rectangle{}, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2), nil
}

func namedRect(name string, w, h int) (image.Rectangle, error) {
	midX, midY := w/2, h/2

	var rect image.Rectangle
	switch name {
	case "top-left":
		rect = image.Rect(0, 0, midX, midY)
	case "top-right":
		rect = image.Rect(midX, 0, w, midY)
	case "bottom-left":
		rect = image.Rect(0, midY, midX, h)
	case "bottom-right":
		rect = image.Rect(midX, midY, w, h)
	case "top-half":
		rect = image.Rect(0, 0, w, midY)
	case "bottom-half":
		rect = image.Rect(0, midY, w, h)
	case "left-half":
		rect = image.Rect(0, 0, midX, h)
	case "right-half":
		rect = image.Rect(midX, 0, w, h)
	case "center":
		// Center 50% of the page
		rect = image.Rect(w/4, h/4, w-w/4, h-h/4)
	default:
		return image.Rectangle{}, fmt.Errorf("unknown region: %s", name)
	}

	if rect.Empty() {
		return image.Rectangle{}, fmt.Errorf("region %s of a %dx%d image is empty", name, w, h)
	}
	return rect, nil
}

// Crop copies the pixels inside rect into a new buffer anchored at (0, 0).
func (b *PixelBuffer) Crop(rect image.Rectangle) (*PixelBuffer, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if rect.Empty() || !rect.In(image.Rect(0, 0, b.Width, b.Height)) {
		return nil, fmt.Errorf("crop rectangle %v outside %dx%d buffer", rect, b.Width, b.Height)
	}
	return BufferFromImage(imaging.Crop(b.NRGBA(), rect))
}

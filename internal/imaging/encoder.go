package imaging

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// DefaultQuality is the JPEG quality used for preprocessed output.
const DefaultQuality = 92

// Encode serializes buf as a JPEG data URI ("data:image/jpeg;base64,...").
//
// Parameters:
//   - buf: The buffer to encode. It must satisfy the PixelBuffer invariants.
//   - quality: JPEG quality 1-100. Zero selects DefaultQuality; other values
//     outside the range are clamped.
//
// JPEG carries no alpha channel, so transparent pixels are flattened by the
// encoder.
func Encode(buf *PixelBuffer, quality int) (ImageRef, error) {
	if err := buf.Validate(); err != nil {
		return ImageRef{}, err
	}

	switch {
	case quality == 0:
		quality = DefaultQuality
	case quality < 1:
		quality = 1
	case quality > 100:
		quality = 100
	}

	var out bytes.Buffer
	if err := imaging.Encode(&out, buf.NRGBA(), imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return ImageRef{}, fmt.Errorf("failed to encode image: %w", err)
	}

	return InlineFromBytes(out.Bytes(), "image/jpeg"), nil
}

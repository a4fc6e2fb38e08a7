package imaging

import (
	"context"
	"image/color"
	"strings"
	"testing"
)

func TestEncode_RoundTrip(t *testing.T) {
	buf, err := BufferFromImage(createTestImage(64, 32, color.NRGBA{R: 120, G: 120, B: 120, A: 255}))
	if err != nil {
		t.Fatalf("BufferFromImage failed: %v", err)
	}

	ref, err := Encode(buf, 0)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.HasPrefix(ref.URI(), "data:image/jpeg;base64,") {
		t.Fatalf("unexpected URI prefix: %.40s", ref.URI())
	}
	if !ref.IsInlineImage() {
		t.Fatal("encoded reference should be an inline image")
	}

	decoded, format, err := Decode(context.Background(), ref)
	if err != nil {
		t.Fatalf("Decode of encoded image failed: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("format = %q, want jpeg", format)
	}
	if decoded.Width != 64 || decoded.Height != 32 {
		t.Errorf("size = %dx%d, want 64x32", decoded.Width, decoded.Height)
	}

	// JPEG is lossy, but a flat gray field survives within a few levels.
	v := int(decoded.Pix[decoded.Offset(10, 10)])
	if v < 115 || v > 125 {
		t.Errorf("gray level = %d, want about 120", v)
	}
}

func TestEncode_QualityAffectsSize(t *testing.T) {
	buf := newPatternBuffer(t, 96, 96)

	low, err := Encode(buf, 10)
	if err != nil {
		t.Fatalf("Encode(10) failed: %v", err)
	}
	high, err := Encode(buf, 100)
	if err != nil {
		t.Fatalf("Encode(100) failed: %v", err)
	}
	if len(low.URI()) >= len(high.URI()) {
		t.Errorf("quality 10 output (%d) should be smaller than quality 100 output (%d)",
			len(low.URI()), len(high.URI()))
	}
}

func TestEncode_InvalidBuffer(t *testing.T) {
	if _, err := Encode(&PixelBuffer{}, 0); err == nil {
		t.Error("Encode should reject an empty buffer")
	}
}

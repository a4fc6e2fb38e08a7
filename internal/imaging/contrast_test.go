package imaging

import (
	"math"
	"testing"
)

// newPatternBuffer fills a buffer with a deterministic spread of colors and
// alpha values.
func newPatternBuffer(t *testing.T, width, height int) *PixelBuffer {
	t.Helper()
	buf, err := NewPixelBuffer(width, height)
	if err != nil {
		t.Fatalf("NewPixelBuffer failed: %v", err)
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := buf.Offset(x, y)
			buf.Pix[i] = uint8((x * 37) % 256)
			buf.Pix[i+1] = uint8((y * 59) % 256)
			buf.Pix[i+2] = uint8((x*y + 11) % 256)
			buf.Pix[i+3] = uint8((x + y*7) % 256)
		}
	}
	return buf
}

func TestContrastFactor(t *testing.T) {
	if f := ContrastFactor(0); f != 1 {
		t.Errorf("ContrastFactor(0) = %v, want exactly 1", f)
	}
	if f := ContrastFactor(-255); f != 0 {
		t.Errorf("ContrastFactor(-255) = %v, want 0", f)
	}
	if f := ContrastFactor(255); !math.IsInf(f, 1) {
		t.Errorf("ContrastFactor(255) = %v, want +Inf", f)
	}
	if f := ContrastFactor(1000); !math.IsInf(f, 1) {
		t.Errorf("ContrastFactor(1000) = %v, want clamp to 255 (+Inf)", f)
	}
	if f := ContrastFactor(-1000); f != 0 {
		t.Errorf("ContrastFactor(-1000) = %v, want clamp to -255 (0)", f)
	}

	// Default contrast.
	want := 259.0 * 325.0 / (255.0 * 189.0)
	if f := ContrastFactor(DefaultContrast); math.Abs(f-want) > 1e-12 {
		t.Errorf("ContrastFactor(70) = %v, want %v", f, want)
	}

	prev := ContrastFactor(-255)
	for c := -254; c < 255; c++ {
		f := ContrastFactor(c)
		if !(f > prev) {
			t.Fatalf("ContrastFactor not increasing at %d: %v <= %v", c, f, prev)
		}
		prev = f
	}
}

func TestRemap(t *testing.T) {
	tests := []struct {
		name   string
		gray   float64
		factor float64
		want   uint8
	}{
		{"identity mid", 128, 1, 128},
		{"identity rounds half up", 100.5, 1, 101},
		{"identity rounds down", 100.49, 1, 100},
		{"flatten", 12, 0, 128},
		{"clamp high", 250, 3, 255},
		{"clamp low", 5, 3, 0},
		{"saturate dark", 127.9, math.Inf(1), 0},
		{"saturate light", 128.1, math.Inf(1), 255},
		{"saturate exact mid", 128, math.Inf(1), 128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Remap(tt.gray, tt.factor); got != tt.want {
				t.Errorf("Remap(%v, %v) = %d, want %d", tt.gray, tt.factor, got, tt.want)
			}
		})
	}
}

func TestRemap_HardThresholdAtMaxContrast(t *testing.T) {
	factor := ContrastFactor(255)
	for g := 0; g < 256; g++ {
		got := Remap(float64(g), factor)
		want := uint8(0)
		switch {
		case g == 128:
			want = 128
		case g > 128:
			want = 255
		}
		if got != want {
			t.Errorf("Remap(%d, +Inf) = %d, want %d", g, got, want)
		}
	}
}

func TestNormalize_GrayscaleAndRange(t *testing.T) {
	contrasts := []int{-255, -200, -70, -1, 0, 1, 70, 128, 200, 254, 255}

	for _, c := range contrasts {
		buf := newPatternBuffer(t, 31, 17)
		if err := Normalize(buf, c); err != nil {
			t.Fatalf("Normalize(%d) failed: %v", c, err)
		}
		for i := 0; i < len(buf.Pix); i += 4 {
			if buf.Pix[i] != buf.Pix[i+1] || buf.Pix[i+1] != buf.Pix[i+2] {
				t.Fatalf("contrast %d: pixel %d not gray: %v", c, i/4, buf.Pix[i:i+3])
			}
		}
		if c == -255 {
			for i := 0; i < len(buf.Pix); i += 4 {
				if buf.Pix[i] != 128 {
					t.Fatalf("contrast -255: pixel %d = %d, want 128", i/4, buf.Pix[i])
				}
			}
		}
		if c == 255 {
			for i := 0; i < len(buf.Pix); i += 4 {
				if v := buf.Pix[i]; v != 0 && v != 128 && v != 255 {
					t.Fatalf("contrast 255: pixel %d = %d, want 0, 128 or 255", i/4, v)
				}
			}
		}
	}
}

func TestNormalize_PreservesAlpha(t *testing.T) {
	for _, c := range []int{-255, 0, 70, 255} {
		buf := newPatternBuffer(t, 23, 29)
		before := make([]uint8, 0, buf.Width*buf.Height)
		for i := 3; i < len(buf.Pix); i += 4 {
			before = append(before, buf.Pix[i])
		}

		if err := Normalize(buf, c); err != nil {
			t.Fatalf("Normalize(%d) failed: %v", c, err)
		}

		for j, i := 0, 3; i < len(buf.Pix); j, i = j+1, i+4 {
			if buf.Pix[i] != before[j] {
				t.Fatalf("contrast %d: alpha of pixel %d changed %d -> %d", c, j, before[j], buf.Pix[i])
			}
		}
	}
}

func TestNormalize_ZeroContrastIsPlainGrayscale(t *testing.T) {
	buf := newPatternBuffer(t, 16, 16)
	want := make([]uint8, 0, 256)
	for i := 0; i < len(buf.Pix); i += 4 {
		l := Luminance(buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2])
		want = append(want, Remap(l, 1))
	}

	if err := Normalize(buf, 0); err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	for j, i := 0, 0; i < len(buf.Pix); j, i = j+1, i+4 {
		if buf.Pix[i] != want[j] {
			t.Fatalf("pixel %d = %d, want luminance %d", j, buf.Pix[i], want[j])
		}
	}
}

func TestNormalize_KnownPixels(t *testing.T) {
	buf, _ := NewPixelBuffer(3, 1)
	copy(buf.Pix, []uint8{
		255, 255, 255, 255, // white
		0, 0, 0, 10, // black, mostly transparent
		255, 0, 0, 255, // red: luminance 76.245
	})

	if err := Normalize(buf, DefaultContrast); err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	f := ContrastFactor(DefaultContrast)
	wantRed := uint8(math.Floor(f*(76.245-128) + 128 + 0.5))

	if buf.Pix[0] != 255 {
		t.Errorf("white -> %d, want 255", buf.Pix[0])
	}
	if buf.Pix[4] != 0 || buf.Pix[7] != 10 {
		t.Errorf("black -> %d alpha %d, want 0 alpha 10", buf.Pix[4], buf.Pix[7])
	}
	if buf.Pix[8] != wantRed {
		t.Errorf("red -> %d, want %d", buf.Pix[8], wantRed)
	}
}

func TestNormalize_InvalidBuffer(t *testing.T) {
	buf := &PixelBuffer{Width: 2, Height: 2, Pix: make([]uint8, 3)}
	if err := Normalize(buf, 0); err == nil {
		t.Error("Normalize should reject a buffer with wrong pixel length")
	}
}

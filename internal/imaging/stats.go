package imaging

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// chromaEpsilon is the HCL chroma below which a pixel counts as neutral gray.
const chromaEpsilon = 1e-6

// BufferStats summarizes the tonal content of a PixelBuffer.
type BufferStats struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// MeanLuma, MinLuma and MaxLuma use the same BT.601 weights as Normalize.
	MeanLuma float64 `json:"mean_luma"`
	MinLuma  float64 `json:"min_luma"`
	MaxLuma  float64 `json:"max_luma"`

	// MeanChroma is the average HCL chroma (0 for neutral grays).
	MeanChroma float64 `json:"mean_chroma"`

	// Grayscale is true when every pixel has R == G == B.
	Grayscale bool `json:"grayscale"`

	// AlphaMin is the smallest alpha value found (255 for fully opaque images).
	AlphaMin uint8 `json:"alpha_min"`
}

// Inspect computes BufferStats for buf.
func Inspect(buf *PixelBuffer) (*BufferStats, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	stats := &BufferStats{
		Width:     buf.Width,
		Height:    buf.Height,
		MinLuma:   math.MaxFloat64,
		Grayscale: true,
		AlphaMin:  255,
	}

	var lumaSum, chromaSum float64
	for i := 0; i < len(buf.Pix); i += 4 {
		r, g, b, a := buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2], buf.Pix[i+3]

		l := Luminance(r, g, b)
		lumaSum += l
		stats.MinLuma = math.Min(stats.MinLuma, l)
		stats.MaxLuma = math.Max(stats.MaxLuma, l)

		if r != g || g != b {
			stats.Grayscale = false
			c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
			_, chroma, _ := c.Hcl()
			if chroma > chromaEpsilon {
				chromaSum += chroma
			}
		}

		if a < stats.AlphaMin {
			stats.AlphaMin = a
		}
	}

	n := float64(buf.Width * buf.Height)
	stats.MeanLuma = math.Round(lumaSum/n*100) / 100
	stats.MeanChroma = math.Round(chromaSum/n*10000) / 10000
	stats.MinLuma = math.Round(stats.MinLuma*100) / 100
	stats.MaxLuma = math.Round(stats.MaxLuma*100) / 100

	return stats, nil
}

package imaging

import "math"

// DefaultMaxDimension is the longest side allowed after downscaling when the
// caller does not specify one.
const DefaultMaxDimension = 1600

// Plan computes the size an image should be rendered at so that its longest
// side does not exceed maxDimension, preserving aspect ratio.
//
// The scale ratio is min(1, maxDimension/max(width, height)), so images are
// never upscaled. Both results are at least 1, even for degenerate input.
// A maxDimension <= 0 means DefaultMaxDimension.
func Plan(width, height, maxDimension int) (int, int) {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}

	longest := width
	if height > longest {
		longest = height
	}

	ratio := 1.0
	if longest > 0 {
		ratio = math.Min(1, float64(maxDimension)/float64(longest))
	}

	targetWidth := int(math.Round(float64(width) * ratio))
	targetHeight := int(math.Round(float64(height) * ratio))
	if targetWidth < 1 {
		targetWidth = 1
	}
	if targetHeight < 1 {
		targetHeight = 1
	}
	return targetWidth, targetHeight
}

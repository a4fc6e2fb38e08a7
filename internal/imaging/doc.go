// Package imaging implements the pixel side of the scan preprocessing pipeline.
//
// The package turns a caller-supplied ImageRef into a normalized image that
// OCR engines read more reliably. The stages are small, independent functions
// so the pipeline package can sequence them and fall back between them:
//
//   - Decode: inline data URI -> PixelBuffer (EXIF orientation applied)
//   - PixelBuffer.Crop: optional Region of the page (named or by corners)
//   - Plan: aspect-preserving target size, never upscaling
//   - PixelBuffer.Resample: Lanczos render at the planned size
//   - Normalize: BT.601 grayscale plus contrast remap, in place
//   - Encode: PixelBuffer -> JPEG data URI
//
// Inspect reports luminance and chroma statistics for a buffer and is used by
// diagnostics and tests.
//
// # Image References
//
// An ImageRef is one of three kinds:
//   - Inline: "data:<mime>;base64,<payload>". Only inline references whose
//     media type starts with "image/" are eligible for preprocessing.
//   - Blob: raw bytes in memory.
//   - File: a path on disk, read lazily.
//
// # Pixel Buffers
//
// PixelBuffer stores non-premultiplied RGBA, 8 bits per channel, row-major,
// with the invariant len(Pix) == Width*Height*4 and both sides >= 1. The
// buffer can be viewed as an *image.NRGBA without copying.
//
// # Contrast
//
// Normalize maps every pixel to
//
//	gray   = 0.299*R + 0.587*G + 0.114*B
//	factor = 259*(c+255) / (255*(259-c))
//	v      = clamp(round(factor*(gray-128) + 128), 0, 255)
//
// and writes v to R, G and B, leaving alpha untouched. c = 0 is the identity
// remap (factor exactly 1), c = -255 flattens to mid-gray, and c = 255 is a
// hard threshold at 128.
//
// # Thread Safety
//
// All functions are stateless. A PixelBuffer must not be shared between
// goroutines while it is being normalized; Normalize itself splits rows across
// workers internally.
//
// # Error Handling
//
//   - ErrNotInlineImage: the reference is not an inline image (pass-through)
//   - ErrSurfaceUnavailable: no raster surface (pass-through)
//   - *DecodeError: bytes present but not a parseable image
package imaging

// Package pipeline runs document images through preprocessing and text
// recognition.
//
// A Pipeline exposes two entry points:
//
//   - Preprocess turns an inline-encoded image into a smaller, grayscale,
//     contrast-enhanced JPEG data URI. Anything that is not an inline image
//     is returned unchanged.
//   - Recognize optionally preprocesses its input, then hands it to a
//     Recognizer (normally an *ocr.Adapter) and returns the text.
//
// # States
//
// Each Recognize call walks a small state machine:
//
//	Idle -> Preprocessing -> Recognizing -> Done
//	  \________________________\-> Failed
//
// Preprocessing is entered only when preprocessing is enabled and the input is
// an inline image. It is best-effort: a decode or encode failure falls back to
// the original input. Recognition failures are returned to the caller as-is.
// A StateObserver sees every transition.
//
// # Platform capabilities
//
// PlatformCapabilities states what the host can do. With Raster false the
// raster stages are skipped and inputs pass through untouched.
//
// # Cancellation
//
// The context is honored by decoding and recognition. A decode that outlives
// the decode timeout counts as a preprocessing failure; a cancelled context
// fails the whole call.
package pipeline

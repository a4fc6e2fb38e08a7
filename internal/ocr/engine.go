package ocr

import (
	"context"
	"errors"
	"fmt"
)

// DefaultLanguage is used when the caller does not name a language.
const DefaultLanguage = "eng"

// ErrEngineUnavailable reports that no recognition engine could be bound.
// Errors returned by the Adapter wrap both this sentinel and the Loader's cause.
var ErrEngineUnavailable = errors.New("recognition engine unavailable")

// RecognitionError reports that a bound engine failed to recognize an image.
type RecognitionError struct {
	// Engine is the name of the engine that failed.
	Engine string
	Err    error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("%s recognition failed: %v", e.Engine, e.Err)
}

func (e *RecognitionError) Unwrap() error { return e.Err }

// Input is one recognition request as an engine sees it.
type Input struct {
	// Image holds the encoded image bytes (PNG, JPEG, ...) or any other blob
	// the caller passed through.
	Image []byte

	// MIME is the media type of Image, e.g. "image/jpeg".
	MIME string

	// Language is a Tesseract-style language code such as "eng".
	Language string
}

// Result is the outcome of a recognition call.
type Result struct {
	// Text is the recognized text, possibly empty.
	Text string `json:"text"`

	// Confidence is the engine's overall confidence in [0, 1], or nil when
	// the engine does not report one.
	Confidence *float64 `json:"confidence,omitempty"`
}

// Message is a progress notification in whatever shape the engine produces.
// The Adapter normalizes it before handing it to callers.
type Message struct {
	Status   any
	Progress any
}

// RecognitionEngine recognizes text in a single image.
//
// Implementations call emit synchronously, from the goroutine running
// Recognize, and never after Recognize returns.
type RecognitionEngine interface {
	Name() string
	Recognize(ctx context.Context, in Input, emit func(Message)) (Result, error)
}

// Loader binds an engine. It is called at most once per successful bind.
type Loader func(ctx context.Context) (RecognitionEngine, error)

// versioned is implemented by engines that can report a backend version.
type versioned interface {
	Version() string
}

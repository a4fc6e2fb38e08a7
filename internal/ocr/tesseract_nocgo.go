//go:build !cgo

package ocr

import (
	"context"
	"errors"
)

var errNoCgo = errors.New("tesseract support requires a cgo build")

// NewTesseractLoader returns a Loader that always fails: this binary was
// built without cgo, so the Tesseract library cannot be linked.
func NewTesseractLoader(tessdata string) Loader {
	return func(context.Context) (RecognitionEngine, error) {
		return nil, errNoCgo
	}
}

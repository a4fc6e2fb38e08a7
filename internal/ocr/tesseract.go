//go:build cgo

package ocr

import (
	"context"
	"fmt"
	"os"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract recognizes text locally with the Tesseract library.
//
// A fresh gosseract client is created for every call, so one Tesseract value
// may serve concurrent calls.
type Tesseract struct {
	tessdata string
	version  string
}

// NewTesseractLoader returns a Loader for the Tesseract engine.
//
// tessdata is the directory holding *.traineddata files; "" uses the
// library's built-in search path (TESSDATA_PREFIX or the install default).
func NewTesseractLoader(tessdata string) Loader {
	return func(ctx context.Context) (RecognitionEngine, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if tessdata != "" {
			info, err := os.Stat(tessdata)
			if err != nil {
				return nil, fmt.Errorf("tessdata directory: %w", err)
			}
			if !info.IsDir() {
				return nil, fmt.Errorf("tessdata path %s is not a directory", tessdata)
			}
		}

		client := gosseract.NewClient()
		defer client.Close()
		version := client.Version()
		if version == "" {
			return nil, fmt.Errorf("tesseract library did not report a version")
		}

		return &Tesseract{tessdata: tessdata, version: version}, nil
	}
}

// Name identifies the engine.
func (t *Tesseract) Name() string { return "tesseract" }

// Version returns the linked Tesseract version.
func (t *Tesseract) Version() string { return t.version }

type tessResult struct {
	res Result
	err error
}

// Recognize runs Tesseract on in.Image.
//
// The overall confidence is the mean of the word-level confidences, scaled to
// [0, 1]. It is nil when Tesseract finds no words.
//
// Tesseract itself cannot be interrupted; when ctx ends first, Recognize
// returns ctx.Err() and the native call finishes in the background.
func (t *Tesseract) Recognize(ctx context.Context, in Input, emit func(Message)) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	emit(Message{Status: "initializing api", Progress: 0})

	done := make(chan tessResult, 1)
	go func() {
		res, err := t.run(in)
		done <- tessResult{res: res, err: err}
	}()

	emit(Message{Status: "recognizing text", Progress: 0})

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return Result{}, r.err
		}
		emit(Message{Status: "recognizing text", Progress: 1})
		return r.res, nil
	}
}

func (t *Tesseract) run(in Input) (Result, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if t.tessdata != "" {
		if err := client.SetTessdataPrefix(t.tessdata); err != nil {
			return Result{}, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}

	if err := client.SetLanguage(in.Language); err != nil {
		return Result{}, fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetImageFromBytes(in.Image); err != nil {
		return Result{}, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return Result{}, fmt.Errorf("OCR failed: %w", err)
	}

	res := Result{Text: text}

	// Text is still useful when word boxes are unavailable.
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return res, nil
	}

	var sum float64
	var n int
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		sum += box.Confidence / 100.0
		n++
	}
	if n > 0 {
		c := clampUnit(sum / float64(n))
		res.Confidence = &c
	}

	return res, nil
}

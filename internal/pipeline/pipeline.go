package pipeline

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/scan-ocr-mcp/internal/imaging"
	"github.com/ironsheep/scan-ocr-mcp/internal/ocr"
)

// Recognizer extracts text from an image reference. *ocr.Adapter implements it.
type Recognizer interface {
	Recognize(ctx context.Context, ref imaging.ImageRef, language string, sink ocr.ProgressSink) (ocr.Result, error)
}

// Pipeline preprocesses images and recognizes text in them.
//
// A Pipeline holds no per-call state and is safe for concurrent use. Every
// call owns its own pixel buffer.
type Pipeline struct {
	recognizer    Recognizer
	caps          PlatformCapabilities
	log           *logrus.Entry
	decodeTimeout time.Duration
	maxPixels     int64
	defaults      PreprocessOptions
	observer      StateObserver
}

// New creates a Pipeline that recognizes text through r.
func New(r Recognizer, opts ...Option) *Pipeline {
	l := logrus.New()
	l.SetOutput(io.Discard)

	p := &Pipeline{
		recognizer:    r,
		caps:          DefaultCapabilities(),
		log:           logrus.NewEntry(l),
		decodeTimeout: DefaultDecodeTimeout,
		defaults:      DefaultPreprocessOptions(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Capabilities returns the platform capabilities the pipeline was built with.
func (p *Pipeline) Capabilities() PlatformCapabilities { return p.caps }

// Defaults returns the preprocessing options used by Recognize.
func (p *Pipeline) Defaults() PreprocessOptions { return p.defaults }

// Preprocess prepares an image for recognition.
//
// Inline images are decoded, cropped to opts.Region when set, resized so the
// longest side is at most opts.MaxDimension (never upscaled), converted to
// contrast-enhanced grayscale and re-encoded as a JPEG data URI.
//
// opts is applied as given. Only MaxDimension and Quality fall back to their
// defaults when zero; a zero Contrast means plain grayscale with no remap.
// Callers wanting the default contrast (70) start from
// DefaultPreprocessOptions() or Defaults() and override fields from there.
//
// Returns:
//   - ref itself, with a nil error, when ref is not an inline image or the
//     platform has no raster support.
//   - *imaging.DecodeError when ref is an inline image that cannot be
//     decoded (including a decode that exceeds the decode timeout and an
//     image larger than the pixel limit).
//   - a plain error when opts.Region does not fit the decoded image.
//   - ctx.Err() when ctx ends first.
func (p *Pipeline) Preprocess(ctx context.Context, ref imaging.ImageRef, opts PreprocessOptions) (imaging.ImageRef, error) {
	out, err := p.preprocess(ctx, ref, opts)
	if errors.Is(err, imaging.ErrNotInlineImage) || errors.Is(err, imaging.ErrSurfaceUnavailable) {
		return ref, nil
	}
	if err != nil {
		return ref, err
	}
	return out, nil
}

func (p *Pipeline) preprocess(ctx context.Context, ref imaging.ImageRef, opts PreprocessOptions) (imaging.ImageRef, error) {
	if !ref.IsInlineImage() {
		return ref, imaging.ErrNotInlineImage
	}
	if !p.caps.Raster {
		return ref, imaging.ErrSurfaceUnavailable
	}

	buf, format, err := p.Decode(ctx, ref)
	if err != nil {
		return ref, err
	}

	source := [2]int{buf.Width, buf.Height}
	if opts.Region != nil {
		rect, err := opts.Region.Rect(buf.Width, buf.Height)
		if err != nil {
			return ref, err
		}
		if buf, err = buf.Crop(rect); err != nil {
			return ref, err
		}
	}

	w, h := imaging.Plan(buf.Width, buf.Height, opts.MaxDimension)
	resized, err := buf.Resample(w, h)
	if err != nil {
		return ref, err
	}

	if err := imaging.Normalize(resized, opts.Contrast); err != nil {
		return ref, err
	}

	if err := ctx.Err(); err != nil {
		return ref, err
	}

	out, err := imaging.Encode(resized, opts.Quality)
	if err != nil {
		return ref, err
	}

	p.log.WithFields(logrus.Fields{
		"format":   format,
		"source":   source,
		"target":   [2]int{w, h},
		"contrast": imaging.ClampContrast(opts.Contrast),
		"output":   out.String(),
	}).Debug("Preprocessed image")

	return out, nil
}

// Decode decodes an inline image under the pipeline's decode timeout and
// pixel limit. A timeout that is not the caller's own deadline is reported as
// a *imaging.DecodeError.
func (p *Pipeline) Decode(ctx context.Context, ref imaging.ImageRef) (*imaging.PixelBuffer, string, error) {
	limit := imaging.WithMaxPixels(p.maxPixels)
	if p.decodeTimeout <= 0 {
		return imaging.Decode(ctx, ref, limit)
	}

	dctx, cancel := context.WithTimeout(ctx, p.decodeTimeout)
	defer cancel()

	buf, format, err := imaging.Decode(dctx, ref, limit)
	if err != nil && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return nil, "", &imaging.DecodeError{Ref: ref.String(), Err: err}
	}
	return buf, format, err
}

// Recognize extracts text from ref.
//
// With preprocessing enabled (the default) an inline image is first run
// through Preprocess; if that fails for any reason other than cancellation the
// original ref is recognized instead. Non-image input goes straight to the
// Recognizer.
//
// Errors from the Recognizer (ocr.ErrEngineUnavailable, *ocr.RecognitionError)
// are returned unchanged.
func (p *Pipeline) Recognize(ctx context.Context, ref imaging.ImageRef, opts ...RecognizeOption) (ocr.Result, error) {
	o := recognizeOptions{
		language:   ocr.DefaultLanguage,
		preprocess: true,
		prep:       p.defaults,
	}
	for _, opt := range opts {
		opt(&o)
	}

	r := &run{observers: []StateObserver{p.observer, o.observer}, state: StateIdle}
	log := p.log.WithFields(logrus.Fields{
		"image":    ref.String(),
		"language": o.language,
	})

	if err := ctx.Err(); err != nil {
		r.to(StateFailed)
		return ocr.Result{}, err
	}

	input := ref
	if o.preprocess && ref.IsInlineImage() && p.caps.Raster {
		r.to(StatePreprocessing)
		out, err := p.preprocess(ctx, ref, o.prep)
		switch {
		case err == nil:
			input = out
		case ctx.Err() != nil:
			r.to(StateFailed)
			return ocr.Result{}, ctx.Err()
		default:
			log.WithError(err).Debug("Preprocessing skipped, using original image")
		}
	}

	r.to(StateRecognizing)
	res, err := p.recognizer.Recognize(ctx, input, o.language, o.progress)
	if err != nil {
		r.to(StateFailed)
		log.WithError(err).Debug("Recognition failed")
		return ocr.Result{}, err
	}

	r.to(StateDone)
	return res, nil
}

// run tracks the state of one Recognize call.
type run struct {
	observers []StateObserver
	state     State
}

func (r *run) to(next State) {
	prev := r.state
	r.state = next
	for _, fn := range r.observers {
		if fn != nil {
			fn(prev, next)
		}
	}
}

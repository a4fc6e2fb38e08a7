package ocr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/scan-ocr-mcp/internal/imaging"
)

// Adapter binds a RecognitionEngine on first use and runs recognition calls
// against it. It is safe for concurrent use.
type Adapter struct {
	loader Loader
	log    *logrus.Entry

	mu     sync.Mutex
	engine RecognitionEngine
}

// NewAdapter creates an Adapter that binds its engine through loader.
// A nil log discards all output.
func NewAdapter(loader Loader, log *logrus.Entry) *Adapter {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = logrus.NewEntry(l)
	}
	return &Adapter{loader: loader, log: log}
}

// Engine returns the bound engine, calling the Loader if nothing is bound yet.
//
// Concurrent first calls bind once; callers wait for the bind in progress.
// A failed bind returns an error wrapping ErrEngineUnavailable and leaves the
// Adapter unbound.
func (a *Adapter) Engine(ctx context.Context) (RecognitionEngine, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.engine != nil {
		return a.engine, nil
	}
	if a.loader == nil {
		return nil, fmt.Errorf("%w: no engine configured", ErrEngineUnavailable)
	}

	engine, err := a.loader(ctx)
	if err == nil && engine == nil {
		err = errors.New("loader returned no engine")
	}
	if err != nil {
		a.log.WithError(err).Warn("Failed to bind recognition engine")
		return nil, fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
	}

	a.log.WithField("engine", engine.Name()).Info("Recognition engine bound")
	a.engine = engine
	return engine, nil
}

// Recognize extracts text from the image behind ref.
//
// Parameters:
//   - ref: Any image reference. Inline data URIs are decoded to bytes, blobs
//     are passed as-is and files are read from disk.
//   - language: Tesseract language code; "" selects DefaultLanguage.
//   - sink: Optional receiver of normalized progress, called in engine order.
//
// Returns:
//   - Result: The recognized text and optional confidence.
//   - error: ErrEngineUnavailable (wrapped) when no engine can be bound,
//     before any progress is reported, or *RecognitionError when the engine
//     or the image bytes fail.
func (a *Adapter) Recognize(ctx context.Context, ref imaging.ImageRef, language string, sink ProgressSink) (Result, error) {
	engine, err := a.Engine(ctx)
	if err != nil {
		return Result{}, err
	}
	if language == "" {
		language = DefaultLanguage
	}

	log := a.log.WithFields(logrus.Fields{
		"engine":   engine.Name(),
		"language": language,
		"image":    ref.String(),
	})

	data, mime, err := ref.Bytes()
	if err != nil {
		log.WithError(err).Debug("Failed to read image bytes")
		return Result{}, &RecognitionError{Engine: engine.Name(), Err: err}
	}

	emit := func(m Message) {
		if sink != nil {
			sink.Report(ctx, Normalize(m))
		}
	}

	log.Debug("Starting recognition")
	res, err := engine.Recognize(ctx, Input{Image: data, MIME: mime, Language: language}, emit)
	if err != nil {
		log.WithError(err).Debug("Recognition failed")
		return Result{}, &RecognitionError{Engine: engine.Name(), Err: err}
	}

	log.WithField("chars", len(res.Text)).Debug("Recognition finished")
	return res, nil
}

// EngineInfo describes the availability of the configured engine.
type EngineInfo struct {
	Available bool   `json:"available"`
	Engine    string `json:"engine,omitempty"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Info binds the engine if needed and reports whether it is usable.
func (a *Adapter) Info(ctx context.Context) EngineInfo {
	engine, err := a.Engine(ctx)
	if err != nil {
		return EngineInfo{Available: false, Error: err.Error()}
	}
	info := EngineInfo{Available: true, Engine: engine.Name()}
	if v, ok := engine.(versioned); ok {
		info.Version = v.Version()
	}
	return info
}

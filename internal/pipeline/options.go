package pipeline

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/scan-ocr-mcp/internal/imaging"
	"github.com/ironsheep/scan-ocr-mcp/internal/ocr"
)

// DefaultDecodeTimeout bounds how long a single image decode may take.
const DefaultDecodeTimeout = 30 * time.Second

// PreprocessOptions controls the preprocessing stages.
type PreprocessOptions struct {
	// Contrast is the remap amount, clamped to [-255, 255]. 0 means plain
	// grayscale with no contrast change; it is not replaced by the default
	// of 70, so build options from DefaultPreprocessOptions().
	Contrast int `json:"contrast"`

	// MaxDimension bounds the longest side of the output. Values <= 0 select
	// imaging.DefaultMaxDimension.
	MaxDimension int `json:"max_dimension"`

	// Quality is the JPEG quality 1-100. 0 selects imaging.DefaultQuality.
	Quality int `json:"quality"`

	// Region, when set, crops the decoded page before resizing.
	Region *imaging.Region `json:"region,omitempty"`
}

// DefaultPreprocessOptions returns contrast 70, max dimension 1600 and
// quality 92.
func DefaultPreprocessOptions() PreprocessOptions {
	return PreprocessOptions{
		Contrast:     imaging.DefaultContrast,
		MaxDimension: imaging.DefaultMaxDimension,
		Quality:      imaging.DefaultQuality,
	}
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCapabilities sets the platform capabilities. The default is
// DefaultCapabilities().
func WithCapabilities(caps PlatformCapabilities) Option {
	return func(p *Pipeline) { p.caps = caps }
}

// WithLogger sets the logger. The pipeline only logs at debug level.
func WithLogger(log *logrus.Entry) Option {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// WithDecodeTimeout bounds image decoding. d <= 0 disables the bound.
func WithDecodeTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.decodeTimeout = d }
}

// WithMaxPixels bounds width*height of images the pipeline decodes. n <= 0
// selects imaging.DefaultMaxPixels.
func WithMaxPixels(n int64) Option {
	return func(p *Pipeline) { p.maxPixels = n }
}

// WithDefaults sets the preprocessing options Recognize uses when the call
// does not pass its own.
func WithDefaults(opts PreprocessOptions) Option {
	return func(p *Pipeline) { p.defaults = opts }
}

// WithStateObserver installs a hook that sees every state transition.
func WithStateObserver(fn StateObserver) Option {
	return func(p *Pipeline) { p.observer = fn }
}

type recognizeOptions struct {
	language   string
	preprocess bool
	prep       PreprocessOptions
	progress   ocr.ProgressSink
	observer   StateObserver
}

// RecognizeOption configures a single Recognize call.
type RecognizeOption func(*recognizeOptions)

// WithLanguage sets the recognition language (default "eng").
func WithLanguage(lang string) RecognizeOption {
	return func(o *recognizeOptions) {
		if lang != "" {
			o.language = lang
		}
	}
}

// WithPreprocess enables or disables preprocessing (default enabled).
func WithPreprocess(enabled bool) RecognizeOption {
	return func(o *recognizeOptions) { o.preprocess = enabled }
}

// WithPreprocessOptions overrides the pipeline's default preprocessing
// options for this call.
func WithPreprocessOptions(opts PreprocessOptions) RecognizeOption {
	return func(o *recognizeOptions) { o.prep = opts }
}

// WithProgress sets the receiver of recognition progress.
func WithProgress(sink ocr.ProgressSink) RecognizeOption {
	return func(o *recognizeOptions) { o.progress = sink }
}

// WithCallObserver installs a state hook for this call only. It runs after
// the pipeline-wide observer.
func WithCallObserver(fn StateObserver) RecognizeOption {
	return func(o *recognizeOptions) { o.observer = fn }
}

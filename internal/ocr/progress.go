package ocr

import (
	"context"
	"encoding/json"
	"math"
	"reflect"
)

// DefaultStatus replaces native statuses that are not strings.
const DefaultStatus = "recognizing text"

// Progress is a normalized progress notification.
type Progress struct {
	// Status is a short phase label, e.g. "recognizing text".
	Status string `json:"status"`

	// Progress is the completion fraction in [0, 1].
	Progress float64 `json:"progress"`
}

// ProgressSink receives progress notifications for one recognition call.
type ProgressSink interface {
	Report(ctx context.Context, p Progress)
}

// ProgressFunc adapts a plain function to ProgressSink.
type ProgressFunc func(Progress)

// Report calls f(p).
func (f ProgressFunc) Report(_ context.Context, p Progress) { f(p) }

// ChannelSink delivers notifications over a bounded channel.
//
// Report blocks while the buffer is full, until the consumer reads or ctx
// ends. Notifications are never reordered or dropped while ctx is live.
type ChannelSink struct {
	ch chan Progress
}

// NewChannelSink creates a sink whose channel buffers up to size notifications.
func NewChannelSink(size int) *ChannelSink {
	if size < 0 {
		size = 0
	}
	return &ChannelSink{ch: make(chan Progress, size)}
}

// C returns the receive side of the channel.
func (s *ChannelSink) C() <-chan Progress { return s.ch }

// Report sends p, or gives up when ctx ends.
func (s *ChannelSink) Report(ctx context.Context, p Progress) {
	select {
	case s.ch <- p:
	case <-ctx.Done():
	}
}

// Close closes the channel. Call it once the recognition call has returned.
func (s *ChannelSink) Close() { close(s.ch) }

// Normalize converts a native engine message to a Progress value.
func Normalize(m Message) Progress {
	p := Progress{Status: DefaultStatus}
	if s, ok := m.Status.(string); ok {
		p.Status = s
	}
	if v, ok := toFloat(m.Progress); ok {
		p.Progress = clampUnit(v)
	}
	return p
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

func clampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

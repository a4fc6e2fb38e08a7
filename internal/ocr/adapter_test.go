package ocr

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ironsheep/scan-ocr-mcp/internal/imaging"
)

// fakeEngine replays scripted messages and returns a fixed result.
type fakeEngine struct {
	name     string
	messages []Message
	result   Result
	err      error

	mu    sync.Mutex
	calls []Input
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Recognize(ctx context.Context, in Input, emit func(Message)) (Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, in)
	f.mu.Unlock()

	for _, m := range f.messages {
		emit(m)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return f.result, f.err
}

func staticLoader(e RecognitionEngine) Loader {
	return func(context.Context) (RecognitionEngine, error) { return e, nil }
}

func collect(events *[]Progress) ProgressSink {
	return ProgressFunc(func(p Progress) { *events = append(*events, p) })
}

func TestAdapter_Recognize(t *testing.T) {
	conf := 0.87
	engine := &fakeEngine{
		name: "fake",
		messages: []Message{
			{Status: "loading", Progress: 0},
			{Status: "recognizing text", Progress: 0.5},
			{Status: "recognizing text", Progress: 1.0},
		},
		result: Result{Text: "Hello", Confidence: &conf},
	}
	adapter := NewAdapter(staticLoader(engine), nil)

	var events []Progress
	ref := imaging.Inline("data:image/png;base64,aGVsbG8=")
	res, err := adapter.Recognize(context.Background(), ref, "", collect(&events))
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}

	if res.Text != "Hello" || res.Confidence == nil || *res.Confidence != 0.87 {
		t.Errorf("result = %+v, want Hello/0.87", res)
	}

	want := []Progress{
		{Status: "loading", Progress: 0},
		{Status: "recognizing text", Progress: 0.5},
		{Status: "recognizing text", Progress: 1},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, events[i], want[i])
		}
	}

	if len(engine.calls) != 1 {
		t.Fatalf("engine called %d times, want 1", len(engine.calls))
	}
	in := engine.calls[0]
	if in.Language != DefaultLanguage {
		t.Errorf("language = %q, want %q", in.Language, DefaultLanguage)
	}
	if string(in.Image) != "hello" || in.MIME != "image/png" {
		t.Errorf("input = %q (%s), want decoded payload", in.Image, in.MIME)
	}
}

func TestAdapter_BlobPassedVerbatim(t *testing.T) {
	engine := &fakeEngine{name: "fake", result: Result{Text: "pdf text"}}
	adapter := NewAdapter(staticLoader(engine), nil)

	blob := []byte("%PDF-1.4 scanned page")
	res, err := adapter.Recognize(context.Background(), imaging.Blob(blob), "fra", nil)
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if res.Text != "pdf text" {
		t.Errorf("Text = %q, want pdf text", res.Text)
	}
	if got := engine.calls[0]; string(got.Image) != string(blob) || got.Language != "fra" {
		t.Errorf("engine input = %q/%s, want original blob/fra", got.Image, got.Language)
	}
}

func TestAdapter_EngineUnavailable(t *testing.T) {
	cause := errors.New("library missing")
	adapter := NewAdapter(func(context.Context) (RecognitionEngine, error) {
		return nil, cause
	}, nil)

	var events []Progress
	_, err := adapter.Recognize(context.Background(), imaging.Blob([]byte("x")), "eng", collect(&events))
	if !errors.Is(err, ErrEngineUnavailable) {
		t.Fatalf("error = %v, want ErrEngineUnavailable", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("error = %v, want to wrap the loader cause", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d progress events, want 0", len(events))
	}
}

func TestAdapter_NilLoaderAndNilEngine(t *testing.T) {
	if _, err := NewAdapter(nil, nil).Engine(context.Background()); !errors.Is(err, ErrEngineUnavailable) {
		t.Errorf("nil loader: error = %v, want ErrEngineUnavailable", err)
	}

	adapter := NewAdapter(func(context.Context) (RecognitionEngine, error) { return nil, nil }, nil)
	if _, err := adapter.Engine(context.Background()); !errors.Is(err, ErrEngineUnavailable) {
		t.Errorf("nil engine: error = %v, want ErrEngineUnavailable", err)
	}
}

func TestAdapter_FailureNotCached(t *testing.T) {
	var attempts int
	engine := &fakeEngine{name: "fake", result: Result{Text: "ok"}}
	adapter := NewAdapter(func(context.Context) (RecognitionEngine, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("not yet")
		}
		return engine, nil
	}, nil)

	if _, err := adapter.Recognize(context.Background(), imaging.Blob([]byte("x")), "", nil); !errors.Is(err, ErrEngineUnavailable) {
		t.Fatalf("first call error = %v, want ErrEngineUnavailable", err)
	}
	res, err := adapter.Recognize(context.Background(), imaging.Blob([]byte("x")), "", nil)
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if res.Text != "ok" {
		t.Errorf("Text = %q, want ok", res.Text)
	}

	// A successful bind is reused.
	if _, err := adapter.Recognize(context.Background(), imaging.Blob([]byte("x")), "", nil); err != nil {
		t.Fatalf("third call failed: %v", err)
	}
	if attempts != 2 {
		t.Errorf("loader called %d times, want 2", attempts)
	}
}

func TestAdapter_ConcurrentBindOnce(t *testing.T) {
	var loads int32
	engine := &fakeEngine{name: "fake", result: Result{Text: "ok"}}
	adapter := NewAdapter(func(context.Context) (RecognitionEngine, error) {
		atomic.AddInt32(&loads, 1)
		return engine, nil
	}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := adapter.Recognize(context.Background(), imaging.Blob([]byte("x")), "", nil); err != nil {
				t.Errorf("Recognize failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt32(&loads); n != 1 {
		t.Errorf("loader called %d times, want 1", n)
	}
}

func TestAdapter_EngineRejects(t *testing.T) {
	cause := errors.New("unsupported image")
	engine := &fakeEngine{
		name:     "fake",
		messages: []Message{{Status: "recognizing text", Progress: 0.1}},
		err:      cause,
	}
	adapter := NewAdapter(staticLoader(engine), nil)

	var events []Progress
	_, err := adapter.Recognize(context.Background(), imaging.Blob([]byte("x")), "", collect(&events))

	var recErr *RecognitionError
	if !errors.As(err, &recErr) {
		t.Fatalf("error = %v, want *RecognitionError", err)
	}
	if recErr.Engine != "fake" || !errors.Is(err, cause) {
		t.Errorf("RecognitionError = %+v, want engine fake wrapping cause", recErr)
	}
	if errors.Is(err, ErrEngineUnavailable) {
		t.Error("a rejection must not be reported as ErrEngineUnavailable")
	}
	if len(events) != 1 {
		t.Errorf("got %d events, want the one emitted before failure", len(events))
	}
}

func TestAdapter_UnreadableRef(t *testing.T) {
	engine := &fakeEngine{name: "fake"}
	adapter := NewAdapter(staticLoader(engine), nil)

	_, err := adapter.Recognize(context.Background(), imaging.File("/nonexistent/scan.png"), "", nil)
	var recErr *RecognitionError
	if !errors.As(err, &recErr) {
		t.Fatalf("error = %v, want *RecognitionError", err)
	}
	if len(engine.calls) != 0 {
		t.Error("engine should not be called for unreadable input")
	}
}

func TestAdapter_CancelledContext(t *testing.T) {
	engine := &fakeEngine{name: "fake", result: Result{Text: "late"}}
	adapter := NewAdapter(staticLoader(engine), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := adapter.Recognize(ctx, imaging.Blob([]byte("x")), "", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestAdapter_Info(t *testing.T) {
	info := NewAdapter(staticLoader(&fakeEngine{name: "fake"}), nil).Info(context.Background())
	if !info.Available || info.Engine != "fake" {
		t.Errorf("info = %+v, want available fake", info)
	}

	info = NewAdapter(nil, nil).Info(context.Background())
	if info.Available || info.Error == "" {
		t.Errorf("info = %+v, want unavailable with error", info)
	}
}

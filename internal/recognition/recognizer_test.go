package recognition

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"mcp-meal-score/internal/cache"
	"mcp-meal-score/internal/logging"
	recerr "mcp-meal-score/internal/errors"
	"mcp-meal-score/internal/models"
	"mcp-meal-score/internal/vision"
)

var morning = time.Date(2026, 3, 4, 8, 0, 0, 0, time.UTC)

func clock() time.Time { return morning }

type fakeIdentifier struct {
	label string
	err   error
	calls int32
}

func (f *fakeIdentifier) Identify(ctx context.Context, jpeg []byte) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	if err := ctx.Err(); err != nil {
		return "", recerr.NewNetworkError(err)
	}
	return f.label, f.err
}

type fakeDetector struct {
	detection vision.Detection
	err       error
	panics    bool
}

func (f fakeDetector) Detect(ctx context.Context, b *vision.PixelBuffer) (vision.Detection, error) {
	if f.panics {
		panic("detector crashed")
	}
	return f.detection, f.err
}

// blockingDetector waits for cancellation.
type blockingDetector struct {
	started chan struct{}
}

func (d blockingDetector) Detect(ctx context.Context, b *vision.PixelBuffer) (vision.Detection, error) {
	close(d.started)
	<-ctx.Done()
	return vision.Detection{}, ctx.Err()
}

func greenPlate() *vision.PixelBuffer {
	b := vision.NewPixelBuffer(100, 100)
	b.Fill(0, 200, 0)
	return b
}

func greyPlate() *vision.PixelBuffer {
	b := vision.NewPixelBuffer(100, 100)
	b.Fill(128, 128, 128)
	return b
}

func TestRecognizeRemote(t *testing.T) {
	id := &fakeIdentifier{label: "pizza"}
	r := New(nil, WithRemote(id, true), WithClock(clock))

	res := r.Recognize(context.Background(), greenPlate())
	if res == nil {
		t.Fatal("expected a result")
	}
	if res.FoodLabel != "pizza" || res.NutritionScore != -40 || res.Source != models.SourceRemote {
		t.Errorf("unexpected result %+v", res)
	}
	if res.Confidence != 0.85 {
		t.Errorf("Confidence = %v, want 0.85", res.Confidence)
	}
}

func TestRecognizeUnmatchedRemoteLabel(t *testing.T) {
	r := New(nil, WithRemote(&fakeIdentifier{label: "zzqx"}, true))

	res := r.Recognize(context.Background(), greenPlate())
	if res == nil {
		t.Fatal("expected a result")
	}
	if res.FoodLabel != "Zzqx" || res.NutritionScore != 0 || res.Details != "Food item recognized" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestRecognizeFallsBackOnRemoteFailure(t *testing.T) {
	failures := []error{
		recerr.NewNetworkError(errors.New("connection refused")),
		recerr.NewStatusError(401, "unauthorized"),
		recerr.NewStatusError(429, "slow down"),
		recerr.NewStatusError(503, "unavailable"),
		recerr.NewMalformedResponseError("no choices", nil),
	}
	for _, failure := range failures {
		id := &fakeIdentifier{err: failure}
		r := New(fakeDetector{}, WithRemote(id, true), WithClock(clock))

		res := r.Recognize(context.Background(), greenPlate())
		if res == nil {
			t.Fatalf("%v: expected fallback result", failure)
		}
		if res.FoodLabel != "broccoli" || res.Source != models.SourceLocal {
			t.Errorf("%v: unexpected result %+v", failure, res)
		}
		if id.calls != 1 {
			t.Errorf("%v: remote called %d times, want exactly 1", failure, id.calls)
		}
	}
}

func TestRecognizeSkipsRemote(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"disabled", WithRemote(&fakeIdentifier{label: "pizza"}, false)},
		{"no credential", WithRemote(nil, true)},
		{"not configured", WithStride(20)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(nil, tt.opt, WithClock(clock))
			res := r.Recognize(context.Background(), greyPlate())
			if res == nil {
				t.Fatal("expected fallback result")
			}
			if res.FoodLabel != "oatmeal" || res.Source != models.SourceLocal {
				t.Errorf("unexpected result %+v", res)
			}
		})
	}
}

func TestRecognizeEncodeFailureFallsBack(t *testing.T) {
	id := &fakeIdentifier{label: "pizza"}
	r := New(nil,
		WithRemote(id, true),
		WithClock(clock),
		WithEncoder(func(*vision.PixelBuffer) ([]byte, error) {
			return nil, errors.New("encoder unavailable")
		}),
	)

	res := r.Recognize(context.Background(), greenPlate())
	if res == nil || res.FoodLabel != "broccoli" || res.Source != models.SourceLocal {
		t.Fatalf("unexpected result %+v", res)
	}
	if id.calls != 0 {
		t.Errorf("remote called %d times after encode failure", id.calls)
	}
}

func TestRecognizeDetectorFailureDegrades(t *testing.T) {
	for _, d := range []vision.Detector{
		fakeDetector{err: errors.New("opencv unavailable")},
		fakeDetector{panics: true},
	} {
		r := New(d, WithClock(clock))
		res := r.Recognize(context.Background(), greyPlate())
		if res == nil || res.FoodLabel != "oatmeal" {
			t.Errorf("unexpected result %+v", res)
		}
	}
}

func TestRecognizeUsesStructuralSignal(t *testing.T) {
	// red and yellow halves: rule 2, split on rectangles
	b := vision.NewPixelBuffer(100, 100)
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			if x < 50 {
				b.Set(x, y, 220, 30, 30, 255)
			} else {
				b.Set(x, y, 230, 200, 40, 255)
			}
		}
	}

	withRects := New(fakeDetector{detection: vision.Detection{RectangleCount: 2, EdgeCount: 80}}, WithClock(clock))
	if res := withRects.Recognize(context.Background(), b); res == nil || res.FoodLabel != "pizza" {
		t.Errorf("with rectangles: %+v, want pizza", res)
	}

	without := New(fakeDetector{}, WithClock(clock))
	if res := without.Recognize(context.Background(), b); res == nil || res.FoodLabel != "pasta" {
		t.Errorf("without rectangles: %+v, want pasta", res)
	}
}

func TestRecognizeCache(t *testing.T) {
	jpeg := []byte("encoded")
	encoder := WithEncoder(func(*vision.PixelBuffer) ([]byte, error) { return jpeg, nil })
	ctx := context.Background()

	t.Run("hit skips remote", func(t *testing.T) {
		c := cache.NewMemory(0)
		c.Set(ctx, cache.Key(jpeg), "banana")
		id := &fakeIdentifier{label: "pizza"}

		res := New(nil, WithRemote(id, true), WithCache(c), encoder).Recognize(ctx, greenPlate())
		if res == nil || res.FoodLabel != "banana" || res.Source != models.SourceRemote {
			t.Errorf("unexpected result %+v", res)
		}
		if id.calls != 0 {
			t.Errorf("remote called %d times on cache hit", id.calls)
		}
	})

	t.Run("miss stores remote label", func(t *testing.T) {
		c := cache.NewMemory(0)
		id := &fakeIdentifier{label: "pizza"}

		New(nil, WithRemote(id, true), WithCache(c), encoder).Recognize(ctx, greenPlate())
		if label, found, _ := c.Get(ctx, cache.Key(jpeg)); !found || label != "pizza" {
			t.Errorf("cache holds %q, %v; want pizza", label, found)
		}
	})

	t.Run("fallback labels are not cached", func(t *testing.T) {
		c := cache.NewMemory(0)
		id := &fakeIdentifier{err: recerr.NewStatusError(500, "")}

		New(nil, WithRemote(id, true), WithCache(c), encoder, WithClock(clock)).Recognize(ctx, greenPlate())
		if _, found, _ := c.Get(ctx, cache.Key(jpeg)); found {
			t.Error("fallback label should not be cached")
		}
	})
}

func TestRecognizeInvalidInput(t *testing.T) {
	r := New(nil, WithClock(clock))
	ctx := context.Background()

	if res := r.Recognize(ctx, nil); res != nil {
		t.Errorf("nil buffer: %+v", res)
	}
	if res := r.Recognize(ctx, vision.NewPixelBuffer(0, 0)); res != nil {
		t.Errorf("empty buffer: %+v", res)
	}
	if res := r.RecognizeBytes(ctx, []byte("not an image")); res != nil {
		t.Errorf("garbage bytes: %+v", res)
	}
}

func TestRecognizeBytes(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 60, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 60; x++ {
			img.Set(x, y, color.NRGBA{0, 200, 0, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	res := New(nil, WithClock(clock)).RecognizeBytes(context.Background(), buf.Bytes())
	if res == nil || res.FoodLabel != "broccoli" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestRecognizeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	id := &fakeIdentifier{label: "pizza"}
	if res := New(nil, WithRemote(id, true)).Recognize(ctx, greenPlate()); res != nil {
		t.Errorf("cancelled context produced %+v", res)
	}
}

func TestRecognizeCancelledDuringLocalJoin(t *testing.T) {
	d := blockingDetector{started: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-d.started
		cancel()
	}()

	done := make(chan *models.RecognitionResult, 1)
	go func() { done <- New(d, WithClock(clock)).Recognize(ctx, greenPlate()) }()

	select {
	case res := <-done:
		if res != nil {
			t.Errorf("cancelled recognition produced %+v", res)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("recognition did not return after cancellation")
	}
}

func TestRecognizeLogsCodedFailure(t *testing.T) {
	var out bytes.Buffer
	logger := logging.NewLoggerTo(&out, "test", logging.LevelDebug)
	id := &fakeIdentifier{err: recerr.NewStatusError(429, "slow down")}
	r := New(fakeDetector{}, WithRemote(id, true), WithLogger(logger), WithClock(clock))

	if res := r.Recognize(context.Background(), greenPlate()); res == nil {
		t.Fatal("expected fallback result")
	}

	logged := out.String()
	for _, want := range []string{"[WARN] remote recognition failed", "error_code=RATE_LIMITED", "status_code=429"} {
		if !strings.Contains(logged, want) {
			t.Errorf("log output missing %q:\n%s", want, logged)
		}
	}
	if strings.Contains(logged, "timestamp=") {
		t.Errorf("log line repeats the timestamp:\n%s", logged)
	}
}

func TestRecognizeLogsSkippedRemoteAtDebug(t *testing.T) {
	var out bytes.Buffer
	logger := logging.NewLoggerTo(&out, "test", logging.LevelDebug)
	r := New(fakeDetector{}, WithRemote(nil, false), WithLogger(logger), WithClock(clock))

	r.Recognize(context.Background(), greenPlate())
	if !strings.Contains(out.String(), "[DEBUG] remote recognition skipped error_code=REMOTE_DISABLED") {
		t.Errorf("unexpected log output:\n%s", out.String())
	}
}

// Package recognition turns a meal photo into a scored food label. The
// remote vision endpoint is tried first; any failure there falls back to
// the local color and structure heuristics.
package recognition

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"mcp-meal-score/internal/cache"
	recerr "mcp-meal-score/internal/errors"
	"mcp-meal-score/internal/logging"
	"mcp-meal-score/internal/models"
	"mcp-meal-score/internal/nutrition"
	"mcp-meal-score/internal/vision"
)

// Confidence is reported for every label, whichever path produced it.
const Confidence = 0.85

// Recognizer runs one recognition per call and holds no per-call state,
// so a single instance serves concurrent callers.
type Recognizer struct {
	remote        Identifier
	remoteEnabled bool
	detector      vision.Detector
	matcher       *nutrition.Matcher
	cache         cache.LabelCache
	logger        *logging.Logger
	stride        int
	now           func() time.Time
	encode        func(*vision.PixelBuffer) ([]byte, error)
}

type Option func(*Recognizer)

// WithRemote enables the remote path. A nil identifier is treated as a
// missing credential.
func WithRemote(id Identifier, enabled bool) Option {
	return func(r *Recognizer) {
		r.remote = id
		r.remoteEnabled = enabled
	}
}

func WithCache(c cache.LabelCache) Option {
	return func(r *Recognizer) { r.cache = c }
}

func WithLogger(l *logging.Logger) Option {
	return func(r *Recognizer) { r.logger = l }
}

func WithStride(stride int) Option {
	return func(r *Recognizer) { r.stride = stride }
}

// WithClock sets the clock used for the time-of-day fallback.
func WithClock(now func() time.Time) Option {
	return func(r *Recognizer) { r.now = now }
}

// WithEncoder replaces the JPEG encoder used before upload.
func WithEncoder(encode func(*vision.PixelBuffer) ([]byte, error)) Option {
	return func(r *Recognizer) { r.encode = encode }
}

// New builds a Recognizer. A nil detector always yields the degraded
// structural signal.
func New(detector vision.Detector, opts ...Option) *Recognizer {
	r := &Recognizer{
		detector: detector,
		matcher:  nutrition.NewMatcher(),
		logger:   logging.Discard(),
		stride:   vision.DefaultSamplingStride,
		now:      time.Now,
		encode: func(b *vision.PixelBuffer) ([]byte, error) {
			return vision.EncodeJPEG(b, vision.MaxUploadDimension, vision.UploadJPEGQuality)
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RecognizeBytes decodes an uploaded image and recognizes it. Undecodable
// data yields nil.
func (r *Recognizer) RecognizeBytes(ctx context.Context, data []byte) *models.RecognitionResult {
	buf, err := vision.Decode(data)
	if err != nil {
		r.logFailure("image decode failed", recerr.NewImageDecodeError(err))
		return nil
	}
	return r.Recognize(ctx, buf)
}

// Recognize returns a scored label for buf, or nil when no path produced
// one or ctx was cancelled. It never returns an error.
func (r *Recognizer) Recognize(ctx context.Context, buf *vision.PixelBuffer) *models.RecognitionResult {
	if buf == nil || !buf.Valid() {
		r.logFailure("image decode failed", recerr.NewImageDecodeError(fmt.Errorf("empty or truncated pixel buffer")))
		return nil
	}
	if ctx.Err() != nil {
		r.logger.Info("recognition cancelled", "stage", "start")
		return nil
	}

	source := models.SourceRemote
	label, ok := r.remoteLabel(ctx, buf)
	if ctx.Err() != nil {
		r.logger.Info("recognition cancelled", "stage", "remote")
		return nil
	}
	if !ok {
		source = models.SourceLocal
		if label, ok = r.localLabel(ctx, buf); !ok {
			return nil
		}
	}

	match := r.matcher.Resolve(label)
	r.logger.Info("food recognized",
		"source", source,
		"label", label,
		"food", match.Name,
		"score", match.Entry.Score,
		"matched", match.Matched)

	return &models.RecognitionResult{
		FoodLabel:      match.Name,
		Confidence:     Confidence,
		NutritionScore: match.Entry.Score,
		Details:        match.Entry.Details,
		Category:       string(match.Entry.Category),
		Source:         source,
	}
}

func (r *Recognizer) remoteLabel(ctx context.Context, buf *vision.PixelBuffer) (string, bool) {
	if !r.remoteEnabled {
		r.logFailure("remote recognition skipped", recerr.NewRemoteDisabledError())
		return "", false
	}
	if r.remote == nil {
		r.logFailure("remote recognition skipped", recerr.NewCredentialMissingError())
		return "", false
	}

	jpeg, err := r.encode(buf)
	if err != nil {
		// the decoded buffer is still usable locally
		r.logFailure("remote recognition skipped", recerr.NewImageEncodeError(err))
		return "", false
	}

	key := cache.Key(jpeg)
	if r.cache != nil {
		label, found, err := r.cache.Get(ctx, key)
		if err != nil {
			r.logger.Warn("label cache lookup failed", "error", err)
		} else if found {
			r.logger.Debug("label cache hit", "key", key)
			return label, true
		}
	}

	label, err := r.remote.Identify(ctx, jpeg)
	if err != nil {
		r.logFailure("remote recognition failed, using local fallback", err)
		return "", false
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, label); err != nil {
			r.logger.Warn("label cache store failed", "error", err)
		}
	}
	return label, true
}

// localLabel runs the color and structure analyses in parallel and
// classifies once both are done.
func (r *Recognizer) localLabel(ctx context.Context, buf *vision.PixelBuffer) (string, bool) {
	var (
		wg      sync.WaitGroup
		profile vision.ColorProfile
		signal  vision.StructuralSignal
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		profile = vision.ProfileColors(vision.SamplePixels(buf, r.stride))
	}()
	go func() {
		defer wg.Done()
		signal = r.detect(ctx, buf)
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("recognition cancelled", "stage", "local")
		return "", false
	case <-done:
	}
	if ctx.Err() != nil {
		r.logger.Info("recognition cancelled", "stage", "local")
		return "", false
	}

	return vision.Classify(profile, &signal, r.now()), true
}

func (r *Recognizer) detect(ctx context.Context, buf *vision.PixelBuffer) (signal vision.StructuralSignal) {
	if r.detector == nil {
		return vision.DegradedSignal()
	}

	defer func() {
		if p := recover(); p != nil {
			r.logFailure("structural detection panicked", recerr.NewDetectorError(fmt.Errorf("%v", p)))
			signal = vision.DegradedSignal()
		}
	}()

	d, err := r.detector.Detect(ctx, buf)
	if err != nil {
		r.logFailure("structural detection failed", recerr.NewDetectorError(err))
	}
	return vision.NewStructuralSignal(d, err)
}

func (r *Recognizer) logFailure(msg string, err error) {
	var (
		fields []interface{}
		code   recerr.ErrorCode
		re     *recerr.RecognitionError
	)
	if errors.As(err, &re) {
		code = re.Code
		m := re.ToMap()
		keys := make([]string, 0, len(m))
		for k := range m {
			if k != "timestamp" {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			fields = append(fields, k, m[k])
		}
	} else {
		fields = append(fields, "error", err)
	}

	switch code {
	case recerr.ErrorRemoteDisabled, recerr.ErrorCredentialMissing:
		r.logger.Debug(msg, fields...)
	default:
		r.logger.Warn(msg, fields...)
	}
}

// Package verify judges whether videos are educational using a generative
// text API, pacing requests to respect the API's rate limit.
package verify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anatolykoptev/go_clip/internal/engine"
)

const (
	verifierService      = "verifier"
	failedReason         = "Verification failed"
	defaultBatchSize     = 3
	defaultVerifyTimeout = 30 * time.Second
)

// Completer sends one prompt to a generative text API and returns the raw text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Verifier judges videos one at a time. Its methods never return errors:
// failures degrade to FailedResult.
type Verifier struct {
	llm       Completer
	pacer     Pacer
	batchSize int
	timeout   time.Duration
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithPacer sets the wait applied after every verified record.
func WithPacer(p Pacer) Option {
	return func(v *Verifier) { v.pacer = p }
}

// WithBatchSize sets how many records form one group in BatchVerify.
func WithBatchSize(n int) Option {
	return func(v *Verifier) {
		if n > 0 {
			v.batchSize = n
		}
	}
}

// WithTimeout bounds each completion request.
func WithTimeout(d time.Duration) Option {
	return func(v *Verifier) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// New creates a Verifier. Without WithPacer, records are not paced.
func New(c Completer, opts ...Option) *Verifier {
	v := &Verifier{
		llm:       c,
		pacer:     noPacer{},
		batchSize: defaultBatchSize,
		timeout:   defaultVerifyTimeout,
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// FailedResult is the conservative judgment used whenever verification fails.
func FailedResult() engine.VerificationResult {
	return engine.VerificationResult{
		IsEducational: false,
		Confidence:    0,
		Subject:       nil,
		GradeLevel:    nil,
		Reason:        failedReason,
	}
}

// Verify judges a single record.
func (v *Verifier) Verify(ctx context.Context, rec engine.VideoRecord) engine.VerificationResult {
	engine.IncrVerifyCalls()

	callCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	prompt := fmt.Sprintf(verifyPrompt,
		rec.Title,
		engine.TruncateAtWord(rec.Description, maxDescriptionRunes),
		rec.ChannelTitle,
	)
	raw, err := v.llm.Complete(callCtx, prompt)
	if err != nil {
		engine.IncrVerifyErrors()
		slog.Warn("verify: completion failed", slog.String("video", rec.ID), slog.Any("error", err))
		return FailedResult()
	}

	res, err := ParseResult(raw)
	if err != nil {
		engine.IncrVerifyErrors()
		slog.Warn("verify: bad judgment", slog.String("video", rec.ID), slog.Any("error", err))
		return FailedResult()
	}
	return res
}

// BatchVerify verifies records in groups of the configured batch size,
// sequentially, waiting on the pacer after every record. Only records judged
// educational are returned, in input order. Cancelling ctx stops the batch
// and returns what was kept so far.
func (v *Verifier) BatchVerify(ctx context.Context, recs []engine.VideoRecord) []engine.VerifiedVideo {
	kept := make([]engine.VerifiedVideo, 0, len(recs))
	for gi, group := range Chunk(recs, v.batchSize) {
		slog.Debug("verify: batch", slog.Int("group", gi), slog.Int("size", len(group)))
		for _, rec := range group {
			if ctx.Err() != nil {
				return kept
			}
			res := v.Verify(ctx, rec)
			if res.IsEducational {
				kept = append(kept, engine.VerifiedVideo{Video: rec, Verification: res})
			} else {
				engine.IncrVerifyRejected()
			}
			if err := v.pacer.Wait(ctx); err != nil {
				return kept
			}
		}
	}
	return kept
}

// Chunk splits recs into consecutive groups of at most size records.
func Chunk[T any](recs []T, size int) [][]T {
	if size <= 0 {
		size = defaultBatchSize
	}
	groups := make([][]T, 0, (len(recs)+size-1)/size)
	for i := 0; i < len(recs); i += size {
		end := min(i+size, len(recs))
		groups = append(groups, recs[i:end])
	}
	return groups
}

// rawResult mirrors the judgment JSON; pointers detect missing fields.
type rawResult struct {
	IsEducational *bool    `json:"isEducational"`
	Confidence    *float64 `json:"confidence"`
	Subject       *string  `json:"subject"`
	GradeLevel    *string  `json:"gradeLevel"`
	Reason        string   `json:"reason"`
}

// ParseResult decodes a judgment. The text must be a single JSON object,
// optionally wrapped in a markdown code fence.
func ParseResult(raw string) (engine.VerificationResult, error) {
	var r rawResult
	if err := json.Unmarshal([]byte(engine.StripFences(raw)), &r); err != nil {
		return engine.VerificationResult{}, engine.NewParseError(verifierService, err)
	}
	if r.IsEducational == nil {
		return engine.VerificationResult{}, engine.NewParseError(verifierService, errors.New("missing isEducational"))
	}
	res := engine.VerificationResult{
		IsEducational: *r.IsEducational,
		Subject:       r.Subject,
		GradeLevel:    r.GradeLevel,
		Reason:        r.Reason,
	}
	if r.Confidence != nil {
		res.Confidence = min(max(*r.Confidence, 0), 1)
	}
	return res, nil
}

package transform

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// Extraction methods. Every result is tagged so downstream consumers can
// weight degraded results differently.
const (
	MethodAI       = "ai"
	MethodFallback = "fallback"
)

// AI tier failure classes. Timeout and rate-limit trigger the fallback
// tier; malformed output minimizes metadata but still counts as processed.
var (
	ErrTimeout     = errors.New("ai transform timed out")
	ErrRateLimited = errors.New("ai transform rate limited")
	ErrMalformed   = errors.New("ai transform returned malformed output")
)

// Metadata is the structured output of one transformation.
type Metadata struct {
	Category  string         `json:"category"`
	Title     string         `json:"title"`
	Summary   string         `json:"summary"`
	Keywords  []string       `json:"keywords"`
	Extra     map[string]any `json:"extra,omitempty"`
	Sensitive bool           `json:"sensitive,omitempty"`
}

// Result is a tagged transformation outcome.
type Result struct {
	Metadata   Metadata
	Confidence float32
	Method     string
	Degraded   bool
}

// AIClient is the primary extraction tier.
type AIClient interface {
	Extract(ctx context.Context, name string, content []byte) (Metadata, float32, error)
}

// Transformer runs the two-tier extraction strategy: a rate-limited AI call
// with a bounded timeout, falling back to the deterministic keyword
// extractor on timeout, rate-limit or malformed output. It never fails an
// item outright; indexing must not block on AI availability.
type Transformer struct {
	ai       AIClient
	fallback *KeywordExtractor
	limiter  *rate.Limiter
	timeout  time.Duration
	logger   *slog.Logger
}

type Options struct {
	Timeout    time.Duration
	RatePerSec float64
	RateBurst  int
}

// NewTransformer creates a Transformer. ai may be nil, in which case every
// item goes straight to the fallback tier.
func NewTransformer(ai AIClient, opts Options, logger *slog.Logger) *Transformer {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RatePerSec > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), burst)
	}
	return &Transformer{
		ai:       ai,
		fallback: NewKeywordExtractor(),
		limiter:  limiter,
		timeout:  timeout,
		logger:   logger,
	}
}

// Transform derives structured metadata for one item. The returned error is
// non-nil only when ctx itself is cancelled; every other failure degrades
// to the fallback tier.
func (t *Transformer) Transform(ctx context.Context, name string, content []byte) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if t.ai == nil {
		return t.runFallback(name, content), nil
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return Result{}, err
	}

	aiCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	meta, confidence, err := t.ai.Extract(aiCtx, name, content)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		switch {
		case errors.Is(err, ErrMalformed):
			// Item is still processed, with minimized metadata, so a
			// persistently malformed response is never re-attempted forever.
			t.logger.Warn("ai output malformed, indexing degraded",
				slog.String("item", name), slog.String("error", err.Error()))
			res := t.runFallback(name, content)
			res.Degraded = true
			return res, nil
		case errors.Is(err, ErrTimeout), errors.Is(err, ErrRateLimited),
			errors.Is(err, context.DeadlineExceeded):
			t.logger.Warn("ai tier unavailable, using fallback extractor",
				slog.String("item", name), slog.String("error", err.Error()))
			return t.runFallback(name, content), nil
		default:
			t.logger.Warn("ai transform failed, using fallback extractor",
				slog.String("item", name), slog.String("error", err.Error()))
			return t.runFallback(name, content), nil
		}
	}

	meta.Category = NormalizeCategory(meta.Category)
	res := Result{Metadata: meta, Confidence: confidence, Method: MethodAI}

	// Content flagged as sensitive keeps only the coarse classification.
	if meta.Sensitive {
		res.Metadata = Metadata{
			Category:  meta.Category,
			Title:     meta.Title,
			Sensitive: true,
		}
		res.Degraded = true
	}
	return res, nil
}

func (t *Transformer) runFallback(name string, content []byte) Result {
	meta, confidence := t.fallback.Extract(name, content)
	return Result{Metadata: meta, Confidence: confidence, Method: MethodFallback}
}

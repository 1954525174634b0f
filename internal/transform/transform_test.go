package transform

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

type stubAI struct {
	meta       Metadata
	confidence float32
	err        error
}

func (s stubAI) Extract(context.Context, string, []byte) (Metadata, float32, error) {
	return s.meta, s.confidence, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTransform_AITimeoutFallsBack(t *testing.T) {
	tr := NewTransformer(stubAI{err: ErrTimeout}, Options{}, testLogger())

	res, err := tr.Transform(context.Background(), "summer-campaign.eml", []byte("subject: summer launch"))
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if res.Method != MethodFallback {
		t.Errorf("method = %s, want %s", res.Method, MethodFallback)
	}
	if res.Metadata.Category == "" || res.Metadata.Title == "" {
		t.Errorf("fallback metadata must be non-empty, got %+v", res.Metadata)
	}
}

func TestTransform_RateLimitFallsBack(t *testing.T) {
	tr := NewTransformer(stubAI{err: ErrRateLimited}, Options{}, testLogger())

	res, err := tr.Transform(context.Background(), "logo.png", nil)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if res.Method != MethodFallback {
		t.Errorf("method = %s, want %s", res.Method, MethodFallback)
	}
	if res.Metadata.Category != CategoryImage {
		t.Errorf("category = %s, want %s", res.Metadata.Category, CategoryImage)
	}
}

func TestTransform_MalformedOutputDegrades(t *testing.T) {
	tr := NewTransformer(stubAI{err: ErrMalformed}, Options{}, testLogger())

	res, err := tr.Transform(context.Background(), "notes.txt", []byte("campaign notes"))
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if !res.Degraded {
		t.Error("malformed AI output must mark the result degraded")
	}
	if res.Method != MethodFallback {
		t.Errorf("method = %s, want %s", res.Method, MethodFallback)
	}
}

func TestTransform_AISuccess(t *testing.T) {
	tr := NewTransformer(stubAI{
		meta:       Metadata{Category: CategoryEmail, Title: "Welcome drip", Summary: "Onboarding email", Keywords: []string{"welcome"}},
		confidence: 0.92,
	}, Options{}, testLogger())

	res, err := tr.Transform(context.Background(), "welcome.eml", []byte("hi"))
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if res.Method != MethodAI {
		t.Errorf("method = %s, want %s", res.Method, MethodAI)
	}
	if res.Confidence != 0.92 {
		t.Errorf("confidence = %f, want 0.92", res.Confidence)
	}
	if res.Degraded {
		t.Error("successful AI result must not be degraded")
	}
}

func TestTransform_UnknownCategoryNormalized(t *testing.T) {
	tr := NewTransformer(stubAI{
		meta:       Metadata{Category: "blogpost", Title: "x"},
		confidence: 0.8,
	}, Options{}, testLogger())

	res, err := tr.Transform(context.Background(), "x.txt", nil)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if res.Metadata.Category != CategoryGeneral {
		t.Errorf("category = %s, want %s", res.Metadata.Category, CategoryGeneral)
	}
}

func TestTransform_SensitiveContentMinimized(t *testing.T) {
	tr := NewTransformer(stubAI{
		meta: Metadata{
			Category:  CategoryFeedback,
			Title:     "Customer escalation",
			Summary:   "contains a leaked api key",
			Keywords:  []string{"secret"},
			Sensitive: true,
		},
		confidence: 0.9,
	}, Options{}, testLogger())

	res, err := tr.Transform(context.Background(), "escalation.txt", []byte("AKIA..."))
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if !res.Degraded {
		t.Error("sensitive result must be degraded")
	}
	if res.Metadata.Summary != "" || len(res.Metadata.Keywords) != 0 {
		t.Errorf("sensitive metadata must be minimized, got %+v", res.Metadata)
	}
	if res.Metadata.Category != CategoryFeedback || !res.Metadata.Sensitive {
		t.Errorf("category and sensitive flag must survive, got %+v", res.Metadata)
	}
}

func TestTransform_NilAIUsesFallback(t *testing.T) {
	tr := NewTransformer(nil, Options{}, testLogger())

	res, err := tr.Transform(context.Background(), "deck.fig", nil)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if res.Method != MethodFallback {
		t.Errorf("method = %s, want %s", res.Method, MethodFallback)
	}
}

func TestTransform_CancelledContext(t *testing.T) {
	tr := NewTransformer(nil, Options{}, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := tr.Transform(ctx, "x.txt", nil); err == nil {
		t.Error("Transform() with cancelled context must return an error")
	}
}

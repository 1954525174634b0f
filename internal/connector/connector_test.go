package connector

import (
	"context"
	"io"
	"testing"
	"time"
)

type nopConnector struct{}

func (nopConnector) List(context.Context, string, *time.Time) ([]CandidateItem, error) {
	return nil, nil
}

func (nopConnector) Fetch(context.Context, string) (io.ReadCloser, error) {
	return nil, nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("s3", nopConnector{})
	r.Register("drive", nopConnector{})

	if _, err := r.Get("s3"); err != nil {
		t.Errorf("Get(s3) error = %v", err)
	}
	if _, err := r.Get("ftp"); err == nil {
		t.Error("Get(ftp) error = nil, want unknown kind")
	}

	kinds := r.Kinds()
	if len(kinds) != 2 || kinds[0] != "drive" || kinds[1] != "s3" {
		t.Errorf("Kinds() = %v, want sorted [drive s3]", kinds)
	}
}

func TestSplitLocator(t *testing.T) {
	bucket, prefix, err := splitLocator("assets-bucket/campaigns/q3")
	if err != nil {
		t.Fatalf("splitLocator error = %v", err)
	}
	if bucket != "assets-bucket" || prefix != "campaigns/q3" {
		t.Errorf("got (%q, %q)", bucket, prefix)
	}

	bucket, prefix, err = splitLocator("assets-bucket")
	if err != nil {
		t.Fatalf("splitLocator bare bucket error = %v", err)
	}
	if bucket != "assets-bucket" || prefix != "" {
		t.Errorf("bare bucket got (%q, %q), want whole-bucket prefix", bucket, prefix)
	}

	if _, _, err := splitLocator(""); err == nil {
		t.Error("empty locator must be rejected")
	}
	if _, _, err := splitLocator("/key-only"); err == nil {
		t.Error("locator with empty bucket must be rejected")
	}
}

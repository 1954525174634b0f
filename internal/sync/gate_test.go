package sync

import (
	"testing"
	"time"

	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/connector"
)

func TestShouldProcess(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	processed := map[string]time.Time{
		"assets/logo.png":  base,
		"assets/brief.pdf": base.Add(time.Hour),
	}

	tests := []struct {
		name      string
		forceFull bool
		item      connector.CandidateItem
		want      Decision
	}{
		{
			name: "unknown item is processed",
			item: connector.CandidateItem{SourceID: "assets/new.png", ModifiedAt: base},
			want: Process,
		},
		{
			name: "modified after record is processed",
			item: connector.CandidateItem{SourceID: "assets/logo.png", ModifiedAt: base.Add(time.Minute)},
			want: Process,
		},
		{
			name: "same timestamp is skipped",
			item: connector.CandidateItem{SourceID: "assets/logo.png", ModifiedAt: base},
			want: Skip,
		},
		{
			name: "older than record is skipped",
			item: connector.CandidateItem{SourceID: "assets/brief.pdf", ModifiedAt: base},
			want: Skip,
		},
		{
			name:      "force full reprocesses known items",
			forceFull: true,
			item:      connector.CandidateItem{SourceID: "assets/logo.png", ModifiedAt: base},
			want:      Reprocess,
		},
		{
			name:      "force full reprocesses unknown items",
			forceFull: true,
			item:      connector.CandidateItem{SourceID: "assets/new.png", ModifiedAt: base},
			want:      Reprocess,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShouldProcess(tt.forceFull, processed, tt.item)
			if got != tt.want {
				t.Errorf("ShouldProcess() = %v, want %v", got, tt.want)
			}
		})
	}
}

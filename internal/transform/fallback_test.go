package transform

import (
	"strings"
	"testing"
)

func TestKeywordExtractor_Classify(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"png extension", "assets/hero.png", "", CategoryImage},
		{"uppercase extension", "assets/HERO.PNG", "", CategoryImage},
		{"eml extension", "inbox/welcome.eml", "", CategoryEmail},
		{"figma file", "q3/landing.fig", "", CategoryDesign},
		{"transcript suffix", "standup-2026-03-01.vtt", "", CategoryMeeting},
		{"name token beats content", "brand-guidelines.pdf", "meeting notes", CategoryBrand},
		{"meeting in name", "weekly-meeting-notes.txt", "", CategoryMeeting},
		{"content sniff", "notes.txt", "summary of the feedback round", CategoryFeedback},
		{"no signal", "abc123.bin", "lorem ipsum dolor", CategoryGeneral},
	}

	e := NewKeywordExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, conf := e.Extract(tt.file, []byte(tt.content))
			if meta.Category != tt.want {
				t.Errorf("category = %s, want %s", meta.Category, tt.want)
			}
			if conf != fallbackConfidence {
				t.Errorf("confidence = %f, want %f", conf, fallbackConfidence)
			}
		})
	}
}

func TestKeywordExtractor_NeverEmpty(t *testing.T) {
	e := NewKeywordExtractor()

	// Binary content still yields a title and a category.
	meta, _ := e.Extract("photos/team_offsite-2026.jpg", []byte{0x00, 0xff, 0xd8})
	if meta.Category != CategoryImage {
		t.Errorf("category = %s, want %s", meta.Category, CategoryImage)
	}
	if meta.Title != "team offsite 2026" {
		t.Errorf("title = %q, want %q", meta.Title, "team offsite 2026")
	}
}

func TestExtractText_InvalidUTF8(t *testing.T) {
	// Truncated latin-1 bytes with no NUL: not binary, but not valid
	// UTF-8 either. The invalid bytes are replaced, the rest survives.
	raw := append([]byte("caf"), 0xe9, ' ', 'm', 'e', 'n', 'u')
	if got := extractText(raw); got != "caf  menu" {
		t.Errorf("extractText() = %q, want %q", got, "caf  menu")
	}

	if got := extractText([]byte{'a', 0x00, 'b'}); got != "" {
		t.Errorf("extractText(NUL content) = %q, want empty for binary", got)
	}
}

func TestKeywordExtractor_Keywords(t *testing.T) {
	e := NewKeywordExtractor()
	content := strings.Repeat("spring launch checklist ", 5) + "banner banner logo"
	meta, _ := e.Extract("spring-launch.txt", []byte(content))

	if len(meta.Keywords) == 0 || len(meta.Keywords) > maxKeywords {
		t.Fatalf("keywords = %v, want 1..%d entries", meta.Keywords, maxKeywords)
	}
	found := map[string]bool{}
	for _, k := range meta.Keywords {
		found[k] = true
	}
	for _, want := range []string{"spring", "launch", "banner"} {
		if !found[want] {
			t.Errorf("keywords %v missing %q", meta.Keywords, want)
		}
	}
}

func TestSummarize_Bounded(t *testing.T) {
	long := strings.Repeat("word ", 200)
	got := summarize(long)
	if len([]rune(got)) > summaryRunes+1 {
		t.Errorf("summary length = %d runes, want <= %d", len([]rune(got)), summaryRunes+1)
	}
}

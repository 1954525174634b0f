package transform

import (
	"bytes"
	"path"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	fallbackConfidence = 0.3
	maxKeywords        = 8
	summaryRunes       = 240
)

// KeywordExtractor is the deterministic fallback tier: category from the
// file extension and name, keywords by word frequency, summary from the
// leading text. Lower confidence than the AI tier but never empty.
type KeywordExtractor struct{}

func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{}
}

var extCategories = map[string]string{
	".png":  CategoryImage,
	".jpg":  CategoryImage,
	".jpeg": CategoryImage,
	".gif":  CategoryImage,
	".webp": CategoryImage,
	".svg":  CategoryImage,
	".eml":  CategoryEmail,
	".msg":  CategoryEmail,
	".mbox": CategoryEmail,
	".fig":  CategoryDesign,
	".psd":  CategoryDesign,
	".ai":   CategoryDesign,
	".vtt":  CategoryMeeting,
	".srt":  CategoryMeeting,
}

var nameCategories = []struct {
	token    string
	category string
}{
	{"transcript", CategoryMeeting},
	{"meeting", CategoryMeeting},
	{"standup", CategoryMeeting},
	{"review", CategoryFeedback},
	{"feedback", CategoryFeedback},
	{"brand", CategoryBrand},
	{"logo", CategoryBrand},
	{"newsletter", CategoryEmail},
	{"campaign", CategoryEmail},
	{"copy", CategoryCopy},
	{"draft", CategoryCopy},
	{"mockup", CategoryDesign},
	{"wireframe", CategoryDesign},
	{"decision", CategoryDecision},
}

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "that": true, "this": true,
	"with": true, "from": true, "have": true, "are": true, "was": true,
	"not": true, "you": true, "your": true, "our": true, "all": true,
	"will": true, "can": true, "has": true, "but": true, "its": true,
	"they": true, "their": true, "them": true, "were": true, "been": true,
	"would": true, "could": true, "should": true, "there": true, "what": true,
	"when": true, "which": true, "about": true, "into": true, "than": true,
}

// Extract derives metadata without any external call.
func (e *KeywordExtractor) Extract(name string, content []byte) (Metadata, float32) {
	text := extractText(content)

	meta := Metadata{
		Category: classify(name, text),
		Title:    titleFromName(name),
		Summary:  summarize(text),
		Keywords: topKeywords(text, name),
	}
	return meta, fallbackConfidence
}

func classify(name, text string) string {
	if c, ok := extCategories[strings.ToLower(path.Ext(name))]; ok {
		return c
	}
	lower := strings.ToLower(name)
	for _, nc := range nameCategories {
		if strings.Contains(lower, nc.token) {
			return nc.category
		}
	}
	// A short content sniff catches items whose names carry no signal.
	sniff := strings.ToLower(text)
	if len(sniff) > 2048 {
		sniff = sniff[:2048]
	}
	for _, nc := range nameCategories {
		if strings.Contains(sniff, nc.token) {
			return nc.category
		}
	}
	return CategoryGeneral
}

func titleFromName(name string) string {
	base := strings.TrimSuffix(path.Base(name), path.Ext(name))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return strings.TrimSpace(base)
}

func summarize(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= summaryRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:summaryRunes]) + "…"
}

func topKeywords(text, name string) []string {
	counts := make(map[string]int)
	add := func(s string) {
		for _, w := range splitWords(s) {
			if len(w) < 3 || stopwords[w] {
				continue
			}
			counts[w]++
		}
	}
	add(strings.ToLower(text))
	// Name tokens get a boost; they are usually the strongest signal.
	for _, w := range splitWords(strings.ToLower(titleFromName(name))) {
		if len(w) >= 3 && !stopwords[w] {
			counts[w] += 3
		}
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > maxKeywords {
		words = words[:maxKeywords]
	}
	return words
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// extractText returns the printable text of content, or "" for binary.
func extractText(content []byte) string {
	if len(content) > maxContentBytes {
		content = content[:maxContentBytes]
	}
	if bytes.IndexByte(content, 0) >= 0 {
		return ""
	}
	return string(bytes.ToValidUTF8(content, []byte(" ")))
}

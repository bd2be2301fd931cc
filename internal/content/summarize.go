package content

import (
	"sort"
	"strings"
)

// Summary is the compact digest of a transcript handed to later phases. It is
// deliberately small: downstream consumers never re-read the raw transcript.
type Summary struct {
	Hook      string   `json:"hook"`
	Topics    []string `json:"topics"`
	WordCount int      `json:"word_count"`
}

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "that": {}, "this": {}, "with": {}, "for": {},
	"was": {}, "are": {}, "but": {}, "not": {}, "you": {}, "your": {},
	"have": {}, "has": {}, "had": {}, "they": {}, "them": {}, "their": {},
	"what": {}, "when": {}, "where": {}, "how": {}, "why": {}, "who": {},
	"about": {}, "just": {}, "like": {}, "really": {}, "going": {},
	"because": {}, "there": {}, "here": {}, "then": {}, "than": {},
	"been": {}, "being": {}, "into": {}, "from": {}, "were": {}, "its": {},
	"out": {}, "all": {}, "can": {}, "will": {}, "would": {}, "could": {},
	"should": {}, "very": {}, "know": {}, "think": {}, "yeah": {}, "right": {},
	"host": {}, "guest": {}, "welcome": {}, "thanks": {}, "show": {},
}

// Summarize digests a transcript into a hook line and the most frequent
// substantive topics. Deterministic: the same transcript always yields the
// same summary.
func Summarize(transcript string, maxTopics int) Summary {
	if maxTopics <= 0 {
		maxTopics = 5
	}

	summary := Summary{Hook: firstSubstantiveLine(transcript)}

	counts := make(map[string]int)
	for _, raw := range strings.Fields(transcript) {
		word := strings.ToLower(strings.Trim(raw, ".,!?;:\"'()[]-"))
		if len(word) < 3 {
			continue
		}
		summary.WordCount++
		if _, skip := stopwords[word]; skip {
			continue
		}
		counts[word]++
	}

	type freq struct {
		word  string
		count int
	}
	ranked := make([]freq, 0, len(counts))
	for word, count := range counts {
		if count < 2 {
			continue
		}
		ranked = append(ranked, freq{word, count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].word < ranked[j].word
	})

	for i := 0; i < len(ranked) && i < maxTopics; i++ {
		summary.Topics = append(summary.Topics, ranked[i].word)
	}
	return summary
}

// firstSubstantiveLine returns the first line of spoken content, with any
// speaker label stripped.
func firstSubstantiveLine(transcript string) string {
	for _, line := range strings.Split(transcript, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if idx := strings.Index(line, ":"); idx >= 0 && idx < 20 {
			line = strings.TrimSpace(line[idx+1:])
		}
		if line != "" {
			return line
		}
	}
	return ""
}

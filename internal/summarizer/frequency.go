package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"docqa/internal/embedding/tfidf"
)

var sentenceRe = regexp.MustCompile(`(?m)(?U)([^.!?\n]+(?:[.!?]|$))`)

// FrequencySummarizer ranks sentences by word frequency (stopwords filtered).
// When a focus query is given, only sentences sharing a term with it are
// eligible and shared terms weigh more.
type FrequencySummarizer struct {
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewFrequencySummarizer creates a frequency-based sentence ranker summarizer.
func NewFrequencySummarizer() *FrequencySummarizer {
	return &FrequencySummarizer{
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`),
		stopwords:    tfidf.EnglishStopWords(),
	}
}

// Sentences splits text into trimmed, non-empty sentences.
func Sentences(text string) []string {
	raw := sentenceRe.FindAllString(text, -1)
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Summarize returns up to maxSentences sentences of text in their original
// order. With a non-empty focus, sentences without any focus term are
// skipped and the result may be empty.
func (s *FrequencySummarizer) Summarize(text, focus string, maxSentences int) []string {
	if maxSentences <= 0 {
		maxSentences = 3
	}
	sentences := Sentences(text)
	if len(sentences) == 0 {
		return nil
	}
	focusTerms := make(map[string]struct{})
	for _, tok := range s.tokens(focus) {
		focusTerms[tok] = struct{}{}
	}

	// Compute word frequencies
	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range s.tokens(sent) {
			freq[tok]++
		}
	}
	// Normalize frequencies
	maxF := 0.0
	for _, v := range freq {
		maxF = math.Max(maxF, v)
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}

	type pair struct {
		idx   int
		score float64
	}
	var scores []pair
	for i, sent := range sentences {
		toks := s.tokens(sent)
		sscore, hits := 0.0, 0
		for _, tok := range toks {
			sscore += freq[tok]
			if _, ok := focusTerms[tok]; ok {
				sscore += 1
				hits++
			}
		}
		if len(focusTerms) > 0 && hits == 0 {
			continue
		}
		// Normalize by sentence length to avoid bias
		if l := float64(len(toks)); l > 0 {
			sscore /= math.Sqrt(l)
		}
		scores = append(scores, pair{i, sscore})
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if maxSentences > len(scores) {
		maxSentences = len(scores)
	}
	// Keep original order among selected
	selected := make([]int, maxSentences)
	for i := 0; i < maxSentences; i++ {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)
	out := make([]string, 0, len(selected))
	for _, idx := range selected {
		out = append(out, sentences[idx])
	}
	return out
}

func (s *FrequencySummarizer) tokens(text string) []string {
	raw := s.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := s.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

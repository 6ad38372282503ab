package tfidf

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"

	"docqa/internal/domain"
)

// Defaults mirror the vector space the service is tuned for.
const (
	DefaultMaxFeatures = 50000
	DefaultNgramMax    = 2
)

// ErrEmptyVocabulary is returned by Fit when the corpus yields no terms,
// e.g. because it is empty or consists only of stop words.
var ErrEmptyVocabulary = errors.New("tfidf: empty vocabulary; corpus has no indexable terms")

// Options configures the vectorizer.
type Options struct {
	// MaxFeatures caps the vocabulary. Terms with the highest document
	// frequency are kept.
	MaxFeatures int
	// NgramMax is the largest n-gram size; 1 means unigrams only.
	NgramMax int
	// StopWords are removed before n-grams are formed. Nil selects English.
	StopWords map[string]struct{}
}

// Vectorizer is a fitted TF-IDF model over unigrams and bigrams.
// It is immutable after Fit and safe for concurrent Transform calls.
type Vectorizer struct {
	vocabulary   map[string]int
	terms        []string
	idf          []float64
	ngramMax     int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

var tokenRe = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Fit builds the vocabulary and IDF values from corpus and projects every
// document into the fitted space. Row i of the returned matrix corresponds
// to corpus[i].
func Fit(corpus []string, opts Options) (*Vectorizer, []domain.Vector, error) {
	if opts.MaxFeatures <= 0 {
		opts.MaxFeatures = DefaultMaxFeatures
	}
	if opts.NgramMax <= 0 {
		opts.NgramMax = DefaultNgramMax
	}
	if opts.StopWords == nil {
		opts.StopWords = EnglishStopWords()
	}
	v := &Vectorizer{
		ngramMax:     opts.NgramMax,
		tokenPattern: tokenRe,
		stopwords:    opts.StopWords,
	}
	if len(corpus) == 0 {
		return nil, nil, ErrEmptyVocabulary
	}

	// Document frequencies
	analyzed := make([][]string, len(corpus))
	df := make(map[string]int)
	for i, text := range corpus {
		terms := v.analyze(text)
		analyzed[i] = terms
		seen := make(map[string]struct{}, len(terms))
		for _, term := range terms {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}
	if len(df) == 0 {
		return nil, nil, ErrEmptyVocabulary
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	if len(terms) > opts.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if df[terms[i]] != df[terms[j]] {
				return df[terms[i]] > df[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:opts.MaxFeatures]
	}
	sort.Strings(terms)

	v.terms = terms
	v.vocabulary = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		v.vocabulary[term] = i
		// Smoothed IDF
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}

	rows := make([]domain.Vector, len(corpus))
	for i, doc := range analyzed {
		rows[i] = v.weigh(doc)
	}
	return v, rows, nil
}

// Name returns the identifier of this vector space.
func (v *Vectorizer) Name() string { return "tfidf" }

// Dimension returns the vocabulary size.
func (v *Vectorizer) Dimension() int { return len(v.terms) }

// Terms returns the vocabulary in index order.
func (v *Vectorizer) Terms() []string { return append([]string(nil), v.terms...) }

// Transform projects text into the fitted space. Terms outside the
// vocabulary are ignored, so the result may be the zero vector.
func (v *Vectorizer) Transform(text string) domain.Vector {
	return v.weigh(v.analyze(text))
}

func (v *Vectorizer) weigh(terms []string) domain.Vector {
	tf := make(map[int]int)
	for _, term := range terms {
		if idx, ok := v.vocabulary[term]; ok {
			tf[idx]++
		}
	}
	if len(tf) == 0 {
		return domain.Vector{}
	}
	indices := make([]int, 0, len(tf))
	for idx := range tf {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	values := make([]float64, len(indices))
	norm := 0.0
	for i, idx := range indices {
		values[i] = float64(tf[idx]) * v.idf[idx]
		norm += values[i] * values[i]
	}
	// L2 normalize
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range values {
			values[i] /= norm
		}
	}
	return domain.Vector{Indices: indices, Values: values}
}

// analyze lower-cases text, drops stop words and emits all n-grams from 1
// up to ngramMax over the remaining tokens.
func (v *Vectorizer) analyze(text string) []string {
	tokens := v.tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	out := make([]string, 0, len(tokens)*v.ngramMax)
	out = append(out, tokens...)
	for n := 2; n <= v.ngramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

func (v *Vectorizer) tokenize(text string) []string {
	lower := strings.ToLower(text)
	raw := v.tokenPattern.FindAllString(lower, -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := v.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"time"

	"docqa/internal/domain"
	"docqa/internal/index"
	"docqa/internal/llm"
)

// Fixed replies for the degrade paths.
const (
	AmbiguousAnswer     = `Your question is a bit ambiguous. Did you mean "locations" (hospital sites), or something else (e.g., local services, local contact, local clinics)? Please specify.`
	LowConfidenceAnswer = `I’m not sure which topic you mean from the provided materials. Can you rephrase or be more specific (e.g., "hospital locations", "mission", "MyChart", "contact number")?`
)

// SystemInstruction constrains the generator to the retrieved context.
const SystemInstruction = `You are a concise QA assistant.
Answer ONLY the user's question using ONLY the provided CONTEXT.
Do NOT add extra facts unless the user asked.
If the question is asking for ONE attribute (e.g., locations), answer ONLY that.
If the answer is not explicitly in the CONTEXT, say: "I don't know based on the provided materials."
Only include information that directly answers the question.
Format:
- Answer: <one short paragraph or up to 3 bullets>
- Sources: [numbers]`

var (
	// ErrEmptyMessage is returned when the question is blank.
	ErrEmptyMessage = errors.New("message is required")
	// ErrGeneration wraps failures of the answer-generation collaborator.
	ErrGeneration = errors.New("answer generation failed")
)

var tokenRe = regexp.MustCompile(`[a-z0-9]+`)

var hintStopWords = map[string]struct{}{
	"what": {}, "is": {}, "the": {}, "a": {}, "an": {}, "of": {}, "to": {}, "for": {},
	"in": {}, "on": {}, "and": {}, "or": {}, "about": {}, "tell": {}, "me": {}, "please": {},
}

// Retriever is the search surface the router drives.
type Retriever interface {
	Query(text string, opts index.QueryOptions) ([]domain.SearchResult, error)
}

// Config holds the router's tunables.
type Config struct {
	DefaultTopK         int
	ConfidenceThreshold float64
	MaxHints            int
	ExcerptChars        int
	Temperature         float64
	MaxTokens           int
}

// DefaultConfig returns the stock tunables.
func DefaultConfig() Config {
	return Config{
		DefaultTopK:         2,
		ConfidenceThreshold: 0.08,
		MaxHints:            3,
		ExcerptChars:        240,
		Temperature:         0.2,
		MaxTokens:           220,
	}
}

// AskRequest is a question plus optional parameters.
type AskRequest struct {
	Message string `json:"message"`
	TopK    int    `json:"top_k,omitempty"`
}

// AskResponse is the answer with the citations it was grounded on.
type AskResponse struct {
	Answer    string            `json:"answer"`
	Citations []domain.Citation `json:"citations"`
}

// Router orchestrates scoped-first retrieval, the confidence gate and the
// handoff to the generator.
type Router struct {
	retriever Retriever
	generator llm.Generator
	cfg       Config
	log       *slog.Logger
}

// NewRouter wires a router. Zero counts take their defaults; the
// threshold and temperature are used as given.
func NewRouter(retriever Retriever, generator llm.Generator, cfg Config, log *slog.Logger) *Router {
	def := DefaultConfig()
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = def.DefaultTopK
	}
	if cfg.MaxHints <= 0 {
		cfg.MaxHints = def.MaxHints
	}
	if cfg.ExcerptChars <= 0 {
		cfg.ExcerptChars = def.ExcerptChars
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if log == nil {
		log = slog.Default()
	}
	return &Router{retriever: retriever, generator: generator, cfg: cfg, log: log}
}

// Ask answers a question from the corpus.
func (r *Router) Ask(ctx context.Context, req AskRequest) (*AskResponse, error) {
	question := strings.TrimSpace(req.Message)
	if question == "" {
		return nil, ErrEmptyMessage
	}
	topK := req.TopK
	if topK <= 0 {
		topK = r.cfg.DefaultTopK
	}

	if len(Tokenize(question)) <= 1 {
		r.log.Debug("ambiguous question", "question", question)
		return &AskResponse{Answer: AmbiguousAnswer, Citations: []domain.Citation{}}, nil
	}

	hints := Hints(question, r.cfg.MaxHints)
	hits, hint, err := firstNonEmpty(hints, func(h string) ([]domain.SearchResult, error) {
		return r.retriever.Query(question, index.QueryOptions{TopK: topK, SourceContains: h})
	})
	if err != nil {
		return nil, fmt.Errorf("scoped retrieval: %w", err)
	}
	if len(hits) > 0 && !r.confident(hits[0].Score) {
		r.log.Info("low confidence", "hint", hint, "top_score", hits[0].Score)
		return &AskResponse{Answer: LowConfidenceAnswer, Citations: []domain.Citation{}}, nil
	}
	if len(hits) == 0 {
		hits, err = r.retriever.Query(question, index.QueryOptions{TopK: topK})
		if err != nil {
			return nil, fmt.Errorf("retrieval: %w", err)
		}
	}

	contextText, citations := r.assemble(hits)
	start := time.Now()
	answer, err := r.generator.Generate(ctx, llm.Prompt{
		System:      SystemInstruction,
		Context:     contextText,
		User:        question,
		Temperature: r.cfg.Temperature,
		MaxTokens:   r.cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	r.log.Info("answered",
		"hint", hint,
		"citations", len(citations),
		"generator", r.generator.Name(),
		"generate_ms", time.Since(start).Milliseconds(),
	)
	return &AskResponse{Answer: answer, Citations: citations}, nil
}

// confident applies the gate; a score equal to the threshold passes.
func (r *Router) confident(score float64) bool {
	return score >= r.cfg.ConfidenceThreshold
}

// firstNonEmpty tries each attempt in order and stops at the first one
// returning results. It reports the winning attempt.
func firstNonEmpty(attempts []string, run func(string) ([]domain.SearchResult, error)) ([]domain.SearchResult, string, error) {
	for _, a := range attempts {
		hits, err := run(a)
		if err != nil {
			return nil, a, err
		}
		if len(hits) > 0 {
			return hits, a, nil
		}
	}
	return nil, "", nil
}

func (r *Router) assemble(hits []domain.SearchResult) (string, []domain.Citation) {
	blocks := make([]string, 0, len(hits))
	citations := make([]domain.Citation, 0, len(hits))
	for i, hit := range hits {
		rank := i + 1
		blocks = append(blocks, fmt.Sprintf("[%d] SOURCE: %s (chunk %d)\n%s", rank, hit.Chunk.Source, hit.Chunk.ChunkID, hit.Chunk.Text))
		citations = append(citations, domain.Citation{
			Rank:    rank,
			Source:  hit.Chunk.Source,
			ChunkID: hit.Chunk.ChunkID,
			Score:   math.Round(hit.Score*1e4) / 1e4,
			Excerpt: Excerpt(hit.Chunk.Text, r.cfg.ExcerptChars),
		})
	}
	return strings.Join(blocks, "\n\n---\n\n"), citations
}

// Tokenize lower-cases text and returns its alphanumeric runs.
func Tokenize(text string) []string {
	return tokenRe.FindAllString(strings.ToLower(text), -1)
}

// Hints returns up to n candidate source-name hints: the question's tokens
// without common function words, in question order.
func Hints(question string, n int) []string {
	var hints []string
	for _, tok := range Tokenize(question) {
		if len(hints) == n {
			break
		}
		if _, stop := hintStopWords[tok]; stop {
			continue
		}
		hints = append(hints, tok)
	}
	return hints
}

// Excerpt returns the first n characters of text, marking truncation.
func Excerpt(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}

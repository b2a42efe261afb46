// Package search implements tiered full-text document retrieval.
//
// The engine tries an exact phrase match first, then a flexible match,
// and stops at the first tier that yields results. A failing tier is
// never surfaced to the caller: it degrades to an empty tier and the
// engine moves on. Ordering within a tier is newest first.
package search

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/knowdistrict/knowdistrict/internal/models"
	"go.uber.org/zap"
)

// ErrInvalidQuery is returned for empty or whitespace-only queries.
// It is distinct from an empty result, which is a valid outcome.
var ErrInvalidQuery = errors.New("invalid search query")

// Corpus is the document set the engine matches against. Both predicates
// return documents already ordered by last update, newest first, and each
// call reads a consistent snapshot; no lock is held across tiers.
type Corpus interface {
	// ExactPhrase matches documents containing all query terms adjacent.
	ExactPhrase(ctx context.Context, phrase string) ([]models.Document, error)
	// Flexible matches documents containing the raw query as a substring,
	// or prefix-matching every term.
	Flexible(ctx context.Context, raw string, terms []string) ([]models.Document, error)
}

// Engine runs the tiered matching strategy over a Corpus.
type Engine struct {
	corpus Corpus
	log    *zap.Logger
}

// NewEngine constructs an Engine over the given corpus.
func NewEngine(corpus Corpus, log *zap.Logger) *Engine {
	return &Engine{corpus: corpus, log: log}
}

// Search returns documents matching the query, most recently updated
// first. Tier 1 treats the query as an exact phrase; tier 2 falls back to
// substring or all-terms-prefix matching. An empty result from both tiers
// is returned as an empty, non-nil slice. Underlying search failures are
// logged and treated as empty tiers, never returned to the caller.
func (e *Engine) Search(ctx context.Context, query string) ([]models.Document, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, ErrInvalidQuery
	}

	// Quoted queries carry phrase intent; the quotes themselves are not
	// search terms.
	phrase := strings.TrimSpace(strings.Trim(trimmed, `"`))
	if phrase == "" {
		return nil, ErrInvalidQuery
	}

	docs, err := e.corpus.ExactPhrase(ctx, phrase)
	if err != nil {
		e.log.Warn("phrase tier degraded", zap.Error(err))
		docs = nil
	}
	if len(docs) > 0 {
		return docs, nil
	}

	docs, err = e.corpus.Flexible(ctx, phrase, Tokens(phrase))
	if err != nil {
		e.log.Warn("flexible tier degraded", zap.Error(err))
		return []models.Document{}, nil
	}
	if docs == nil {
		docs = []models.Document{}
	}
	return docs, nil
}

// Tokens lowercases s and splits it into alphanumeric terms. The output
// is safe to embed in a tsquery.
func Tokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Package search ranks indexed chunks against keyword queries using the
// store's inverted index.
package search

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/codescout/codescout/internal/chunk"
	scerrors "github.com/codescout/codescout/internal/errors"
	"github.com/codescout/codescout/internal/store"
	"github.com/codescout/codescout/internal/token"
)

// DefaultTopK is the result count used when callers pass no explicit limit.
const DefaultTopK = 5

// Result is one ranked chunk.
type Result struct {
	Chunk *chunk.Chunk `json:"chunk"`
	Score float64      `json:"score"`
}

// Engine answers keyword queries against a store.
type Engine struct {
	store  *store.Store
	logger *slog.Logger
}

// New creates an Engine over the given store.
func New(st *store.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: st, logger: logger}
}

// Search extracts keywords from query, gathers candidate chunks through the
// inverted index, and returns the topK highest-scoring chunks.
//
// A chunk's score is the count of its keywords present in the query's
// keyword set, divided by the square root of its total keyword count. The
// normalization favors small keyword-dense chunks over large ones that
// happen to contain one matching term. A chunk reachable through several
// query keywords keeps its maximum observed score; scores are never summed
// across keywords.
//
// Ordering is deterministic: score descending, then file path ascending,
// then start line ascending.
func (e *Engine) Search(query string, topK int) ([]Result, error) {
	if topK <= 0 {
		return nil, scerrors.ValidationError("topK must be a positive integer")
	}

	start := time.Now()

	queryKeywords := token.ExtractKeywordSet(query)
	if len(queryKeywords) == 0 {
		return nil, nil
	}

	best := make(map[string]Result)

	e.store.View(func(v *store.View) {
		for kw := range queryKeywords {
			for _, path := range v.FilesForKeyword(kw) {
				entry, ok := v.Entry(path)
				if !ok {
					continue
				}
				for _, c := range entry.Chunks {
					key := c.Key()
					if _, scored := best[key]; scored {
						continue // same score from every keyword path
					}
					score := scoreChunk(c, queryKeywords)
					if score > 0 {
						best[key] = Result{Chunk: c, Score: score}
					}
				}
			}
		}
	})

	results := make([]Result, 0, len(best))
	for _, r := range best {
		results = append(results, r)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Chunk.FilePath != results[j].Chunk.FilePath {
			return results[i].Chunk.FilePath < results[j].Chunk.FilePath
		}
		return results[i].Chunk.StartLine < results[j].Chunk.StartLine
	})

	if len(results) > topK {
		results = results[:topK]
	}

	e.logger.Debug("search_complete",
		slog.String("query", query),
		slog.Int("keywords", len(queryKeywords)),
		slog.Int("results", len(results)),
		slog.Duration("duration", time.Since(start)))
	return results, nil
}

// scoreChunk computes matches / sqrt(total keywords) for one chunk.
func scoreChunk(c *chunk.Chunk, queryKeywords map[string]struct{}) float64 {
	if len(c.Keywords) == 0 {
		return 0
	}
	matches := 0
	for _, kw := range c.Keywords {
		if _, ok := queryKeywords[kw]; ok {
			matches++
		}
	}
	if matches == 0 {
		return 0
	}
	return float64(matches) / math.Sqrt(float64(len(c.Keywords)))
}

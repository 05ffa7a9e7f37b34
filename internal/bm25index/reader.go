package bm25index

import (
	"context"
	"database/sql"
	"strings"

	"codegraph/internal/tokenize"

	cgerrors "codegraph/internal/errors"
)

// SearchResult is one ranked hit from the BM25 index (spec.md §4.6 step 4).
type SearchResult struct {
	EntityID     string
	Name         string
	Path         string
	Kind         string
	Score        float64
	MatchedTerms []string
}

// Reader queries a pinned snapshot of the BM25 index. Safe for concurrent
// use from many goroutines; queries never mutate shared state (spec.md §5).
type Reader struct {
	db    *sql.DB
	tx    *sql.Tx
	epoch string
}

// Reload drops the reader's current snapshot and re-pins to the latest
// committed state.
func (r *Reader) Reload() error {
	if err := r.tx.Rollback(); err != nil {
		return cgerrors.IOError("failed to release prior bm25 snapshot", err)
	}
	tx, err := r.db.BeginTx(context.Background(), &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return cgerrors.IOError("failed to reopen bm25 snapshot", err)
	}
	r.tx = tx
	return nil
}

// Close releases the reader's pinned snapshot.
func (r *Reader) Close() error {
	return r.tx.Rollback()
}

func oversampledLimit(limit int) int {
	floor := 25
	if v := 4 * limit; v > floor {
		return v
	}
	return floor
}

// Search tokenizes query with tok, runs an OR-query across content/name/path
// with per-field boosts, and returns up to limit results whose kind (if
// kindFilter is non-empty) is admitted (spec.md §4.6 "Query path").
func (r *Reader) Search(ctx context.Context, query string, limit int, kindFilter map[string]bool, tok *tokenize.Tokenizer) ([]SearchResult, error) {
	if limit <= 0 {
		return nil, nil
	}
	if tok == nil {
		tok = tokenize.WithDefaultStopWords()
	}
	queryTokens := tok.Tokenize(query)
	if len(queryTokens) == 0 {
		return nil, nil
	}

	matchQuery := strings.Join(queryTokens, " OR ")
	fetchLimit := oversampledLimit(limit)

	rows, err := r.tx.QueryContext(ctx, `
		SELECT entity_id, name, path, kind, content, bm25(bm25_docs, `+bm25WeightArgs+`) AS rank
		FROM bm25_docs
		WHERE bm25_docs MATCH ?
		ORDER BY rank
		LIMIT ?
	`, matchQuery, fetchLimit)
	if err != nil {
		return nil, cgerrors.QueryError("bm25 query failed", err)
	}
	defer rows.Close()

	querySet := make(map[string]bool, len(queryTokens))
	for _, t := range queryTokens {
		querySet[t] = true
	}

	var results []SearchResult
	for rows.Next() {
		var entityID, name, path, kind, content string
		var rank float64
		if err := rows.Scan(&entityID, &name, &path, &kind, &content, &rank); err != nil {
			return nil, cgerrors.QueryError("failed to scan bm25 row", err)
		}
		if len(kindFilter) > 0 && !kindFilter[kind] {
			continue
		}

		matched := intersectTokens(querySet, tok.Tokenize(content))
		results = append(results, SearchResult{
			EntityID:     entityID,
			Name:         name,
			Path:         path,
			Kind:         kind,
			Score:        -rank, // sqlite bm25() is more negative for better matches
			MatchedTerms: matched,
		})
		if len(results) >= limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, cgerrors.QueryError("bm25 row iteration failed", err)
	}
	return results, nil
}

func intersectTokens(querySet map[string]bool, contentTokens []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range contentTokens {
		if querySet[t] && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

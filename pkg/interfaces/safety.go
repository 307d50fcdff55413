package interfaces

import "context"

// ScoreProvider produces safety scores for graph nodes
// ARCHITECTURAL DISCOVERY: The adapter absorbs every failure mode of the
// remote provider; callers receive a complete mapping or nothing to merge,
// never an error
type ScoreProvider interface {
	// ResolveScores returns a score for every requested node name,
	// preferring live data and degrading to synthetic fallback scores.
	// The result is a delta; the caller merges it into its own cache.
	// An empty request must not trigger a network call.
	ResolveScores(ctx context.Context, nodeNames []string) map[string]float64
}

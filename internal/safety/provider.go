// Package safety wraps the external safety-score provider and hosts the
// disconnect-time safety heuristic.
package safety

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"net/http"
	"time"

	"saferoute/internal/metrics"
)

// RandFunc produces a synthetic fallback score in [1, 10]
// FUNCTIONAL DISCOVERY: Injectable randomness keeps route tests deterministic;
// production uses the package default
type RandFunc func() int

func defaultRand() int {
	return rand.Intn(10) + 1
}

// Provider resolves safety scores for graph nodes, preferring live data from
// a remote endpoint and degrading gracefully to synthetic fallback scores.
//
// ARCHITECTURAL DISCOVERY: Every failure mode of the remote provider is
// absorbed at this boundary - timeout, network error, malformed payload,
// partial response. Callers always receive a complete mapping.
type Provider struct {
	endpoint string
	client   *http.Client
	rng      RandFunc
}

// NewProvider creates a score provider adapter
// A nil rng selects the package default uniform [1,10] generator
func NewProvider(endpoint string, timeout time.Duration, rng RandFunc) *Provider {
	if rng == nil {
		rng = defaultRand
	}
	return &Provider{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		rng:      rng,
	}
}

// ResolveScores returns a score for every requested node name.
//
// One fetch attempt, no retries. Keys present in the response and matching a
// requested name are used as-is; every name still unresolved afterwards gets
// a synthetic score. The result is a delta for the caller to merge into its
// own cache; this method mutates no shared state.
func (p *Provider) ResolveScores(ctx context.Context, nodeNames []string) map[string]float64 {
	result := make(map[string]float64, len(nodeNames))
	if len(nodeNames) == 0 {
		// FUNCTIONAL DISCOVERY: An already-complete cache must not cost a
		// network round trip
		return result
	}

	fetched, err := p.fetch(ctx)
	if err != nil {
		log.Printf("Safety score fetch failed, using synthetic scores: %v", err)
		metrics.ScoreFetchFailures.Inc()
	} else {
		for _, name := range nodeNames {
			if s, ok := fetched[name]; ok && !math.IsNaN(s) && !math.IsInf(s, 0) {
				result[name] = s
			}
		}
	}

	// Fill remaining names with synthetic scores
	for _, name := range nodeNames {
		if _, ok := result[name]; !ok {
			result[name] = float64(p.rng())
			metrics.FallbackScores.Inc()
		}
	}

	return result
}

// fetch performs the single bounded GET against the provider endpoint
func (p *Provider) fetch(ctx context.Context) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build score request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("score request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("score provider returned status %d", resp.StatusCode)
	}

	// TECHNICAL DISCOVERY: Bounded read - a misbehaving provider must not be
	// able to exhaust session memory
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read score response: %w", err)
	}

	return decodeScores(body)
}

// decodeScores implements the tagged-variant decode for provider payloads:
// first {"safetyScores": {node: score}}, then a bare {node: score} mapping,
// anything else is treated as no data. Unvalidated shapes never cross this
// boundary.
func decodeScores(body []byte) (map[string]float64, error) {
	var wrapped struct {
		SafetyScores map[string]float64 `json:"safetyScores"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.SafetyScores != nil {
		return wrapped.SafetyScores, nil
	}

	var bare map[string]float64
	if err := json.Unmarshal(body, &bare); err == nil && bare != nil {
		return bare, nil
	}

	return nil, errors.New("unrecognized score payload shape")
}

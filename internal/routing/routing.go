// Package routing implements the safety-weighted shortest-path search.
//
// The search is a pure function of (graph, scores, start, destination):
// no I/O, no side effects, no mutation of its inputs.
package routing

import (
	"math"

	"saferoute/internal/graph"
)

// scoreToCost converts a node's safety score into the cost of stepping onto
// it. Higher score means safer, so the search favors safer nodes.
func scoreToCost(score float64) float64 {
	return 10 - score
}

// ShortestPath returns the minimum-cost sequence of node names from start to
// destination inclusive, where the cost of each step u->v is 10-score(v).
//
// Caller contract: start and destination are both graph keys; the session
// manager checks this before invoking the search. start == destination
// yields the single-node path. An unreachable destination yields nil.
//
// FUNCTIONAL DISCOVERY: Ties between equally distant candidates break by
// graph node order (sorted), so identical inputs always produce identical
// paths - a requirement for the search to be testable at all.
func ShortestPath(g *graph.Graph, scores map[string]float64, start, destination string) []string {
	nodes := g.Nodes()

	dist := make(map[string]float64, len(nodes))
	prev := make(map[string]string, len(nodes))
	visited := make(map[string]bool, len(nodes))

	for _, n := range nodes {
		dist[n] = math.Inf(1)
	}
	dist[start] = 0

	for {
		// Select the unvisited node with the smallest finite distance;
		// first match wins on ties
		u := ""
		best := math.Inf(1)
		for _, n := range nodes {
			if !visited[n] && dist[n] < best {
				u = n
				best = dist[n]
			}
		}
		if u == "" {
			break // no unvisited reachable node remains
		}

		visited[u] = true

		// Early exit once the destination is settled
		if u == destination {
			break
		}

		for _, v := range g.Neighbors(u) {
			if visited[v] {
				continue
			}
			// Dangling neighbor references have no dist entry; they are
			// tolerated, never relaxed into a path
			if _, ok := dist[v]; !ok {
				continue
			}
			alt := dist[u] + scoreToCost(scores[v])
			if alt < dist[v] {
				dist[v] = alt
				prev[v] = u
			}
		}
	}

	if math.IsInf(dist[destination], 1) {
		return nil
	}

	// Walk predecessors back from the destination
	var path []string
	for cur := destination; ; {
		path = append([]string{cur}, path...)
		if cur == start {
			break
		}
		cur = prev[cur]
	}
	return path
}

// PathCost returns the total cost of a path under the given scores, summing
// 10-score(v) for each step into v. Used by diagnostics and tests; an empty
// or single-node path costs zero.
func PathCost(path []string, scores map[string]float64) float64 {
	var total float64
	for i := 1; i < len(path); i++ {
		total += scoreToCost(scores[path[i]])
	}
	return total
}

package graph

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"saferoute/pkg/types"
)

// ARCHITECTURAL DISCOVERY: The road network is configuration data, not code.
// One canonical embedded asset replaces the duplicated literals the frontend
// and backend used to carry; it is parsed once and immutable afterwards.
//
//go:embed delhi.json
var delhiData []byte

// Graph is a static adjacency structure over named locations with a
// companion coordinate mapping used purely for response enrichment.
//
// Tolerated data defects, mirrored from the source dataset: adjacency lists
// may reference names that are not graph keys (such nodes are unreachable as
// endpoints but must never crash a search), and a few listings are one-way.
type Graph struct {
	adjacency   map[string][]string
	coordinates map[string]types.Coordinate
	nodes       []string // sorted keys; the deterministic iteration order
}

// asset is the on-disk JSON shape of the graph data
type asset struct {
	Adjacency   map[string][]string         `json:"adjacency"`
	Coordinates map[string]types.Coordinate `json:"coordinates"`
}

// Load parses a graph asset from r
func Load(r io.Reader) (*Graph, error) {
	var a asset
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("failed to parse graph asset: %w", err)
	}
	if len(a.Adjacency) == 0 {
		return nil, fmt.Errorf("graph asset has no adjacency data")
	}

	// FUNCTIONAL DISCOVERY: Sorted node list gives every consumer the same
	// iteration order, which makes path-search tie-breaking deterministic
	nodes := make([]string, 0, len(a.Adjacency))
	for name := range a.Adjacency {
		nodes = append(nodes, name)
	}
	sort.Strings(nodes)

	if a.Coordinates == nil {
		a.Coordinates = make(map[string]types.Coordinate)
	}

	return &Graph{
		adjacency:   a.Adjacency,
		coordinates: a.Coordinates,
		nodes:       nodes,
	}, nil
}

// LoadDelhi returns the embedded Delhi road graph
func LoadDelhi() (*Graph, error) {
	return Load(bytes.NewReader(delhiData))
}

// Contains reports whether name is a graph key
func (g *Graph) Contains(name string) bool {
	_, ok := g.adjacency[name]
	return ok
}

// Neighbors returns the adjacency list for name; nil for unknown names
// Callers must not mutate the returned slice
func (g *Graph) Neighbors(name string) []string {
	return g.adjacency[name]
}

// Nodes returns all graph keys in sorted order
// Callers must not mutate the returned slice
func (g *Graph) Nodes() []string {
	return g.nodes
}

// Len returns the number of graph keys
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Coordinate returns the geographic position of name, if known
// Some graph keys have no recorded coordinates; routing never needs them
func (g *Graph) Coordinate(name string) (types.Coordinate, bool) {
	c, ok := g.coordinates[name]
	return c, ok
}

package graph

import (
	"sort"
	"strings"
	"testing"
)

func TestLoadDelhi(t *testing.T) {
	g, err := LoadDelhi()
	if err != nil {
		t.Fatalf("LoadDelhi() error = %v", err)
	}

	if g.Len() == 0 {
		t.Fatal("LoadDelhi() produced an empty graph")
	}

	// Known locations from the dataset
	for _, name := range []string{"Saket", "Dwarka", "IGI Airport", "Connaught Place"} {
		if !g.Contains(name) {
			t.Errorf("Contains(%q) = false, want true", name)
		}
	}

	if g.Contains("Atlantis") {
		t.Error("Contains(\"Atlantis\") = true, want false")
	}
}

func TestLoad_MalformedAsset(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{not json`},
		{"no adjacency", `{"coordinates":{}}`},
		{"empty adjacency", `{"adjacency":{},"coordinates":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(strings.NewReader(tt.data)); err == nil {
				t.Error("Load() error = nil, want error")
			}
		})
	}
}

func TestLoad_MissingCoordinatesSection(t *testing.T) {
	g, err := Load(strings.NewReader(`{"adjacency":{"A":["B"],"B":["A"]}}`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := g.Coordinate("A"); ok {
		t.Error("Coordinate(\"A\") found, want missing")
	}
}

func TestGraph_NodesSorted(t *testing.T) {
	g, err := LoadDelhi()
	if err != nil {
		t.Fatalf("LoadDelhi() error = %v", err)
	}

	nodes := g.Nodes()
	if len(nodes) != g.Len() {
		t.Fatalf("len(Nodes()) = %d, want %d", len(nodes), g.Len())
	}
	if !sort.StringsAreSorted(nodes) {
		t.Error("Nodes() is not sorted")
	}
}

func TestGraph_DanglingNeighborsTolerated(t *testing.T) {
	g, err := LoadDelhi()
	if err != nil {
		t.Fatalf("LoadDelhi() error = %v", err)
	}

	// The source dataset lists Janpath as a neighbor of Connaught Place but
	// never defines it as a key. Lookups must degrade, not panic.
	neighbors := g.Neighbors("Connaught Place")
	found := false
	for _, n := range neighbors {
		if n == "Janpath" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected Janpath in Connaught Place adjacency")
	}

	if g.Contains("Janpath") {
		t.Error("Contains(\"Janpath\") = true, want false")
	}
	if g.Neighbors("Janpath") != nil {
		t.Error("Neighbors(\"Janpath\") != nil, want nil")
	}
}

func TestGraph_Coordinate(t *testing.T) {
	g, err := LoadDelhi()
	if err != nil {
		t.Fatalf("LoadDelhi() error = %v", err)
	}

	c, ok := g.Coordinate("Connaught Place")
	if !ok {
		t.Fatal("Coordinate(\"Connaught Place\") missing")
	}
	if c.Lat != 28.6315 || c.Lng != 77.2167 {
		t.Errorf("Coordinate(\"Connaught Place\") = %+v", c)
	}

	if _, ok := g.Coordinate("Atlantis"); ok {
		t.Error("Coordinate(\"Atlantis\") found, want missing")
	}
}

func TestGraph_DwarkaAirportEdge(t *testing.T) {
	g, err := LoadDelhi()
	if err != nil {
		t.Fatalf("LoadDelhi() error = %v", err)
	}

	hasEdge := func(from, to string) bool {
		for _, n := range g.Neighbors(from) {
			if n == to {
				return true
			}
		}
		return false
	}

	if !hasEdge("Dwarka", "IGI Airport") || !hasEdge("IGI Airport", "Dwarka") {
		t.Error("expected a bidirectional Dwarka <-> IGI Airport edge")
	}
}

package websocket

import (
	"testing"
	"time"
)

// testConnection builds a wrapper with no underlying socket; only lifecycle
// and registry behavior is exercised here
func testConnection(userID string) *Connection {
	return NewConnection(nil, userID)
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	conn := testConnection("user1")
	defer conn.Close()

	if err := r.RegisterConnection(conn); err != nil {
		t.Fatalf("RegisterConnection() error = %v", err)
	}

	got, ok := r.GetConnection("user1")
	if !ok {
		t.Fatal("GetConnection() not found")
	}
	if got != conn {
		t.Error("GetConnection() returned a different connection")
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
}

func TestRegistry_GetMissing(t *testing.T) {
	r := NewRegistry()

	if _, ok := r.GetConnection("ghost"); ok {
		t.Error("GetConnection() found a connection that was never registered")
	}
}

func TestRegistry_ReplacementClosesStale(t *testing.T) {
	r := NewRegistry()

	stale := testConnection("user1")
	if err := r.RegisterConnection(stale); err != nil {
		t.Fatalf("RegisterConnection() error = %v", err)
	}

	fresh := testConnection("user1")
	defer fresh.Close()
	if err := r.RegisterConnection(fresh); err != nil {
		t.Fatalf("RegisterConnection() replacement error = %v", err)
	}

	got, ok := r.GetConnection("user1")
	if !ok || got != fresh {
		t.Error("GetConnection() did not return the replacement connection")
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}

	// The stale connection is closed asynchronously
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		select {
		case <-stale.ctx.Done():
			return
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Error("stale connection never closed after replacement")
}

func TestRegistry_UnregisterOnlySameInstance(t *testing.T) {
	r := NewRegistry()

	first := testConnection("user1")
	defer first.Close()
	if err := r.RegisterConnection(first); err != nil {
		t.Fatalf("RegisterConnection() error = %v", err)
	}

	second := testConnection("user1")
	defer second.Close()
	if err := r.RegisterConnection(second); err != nil {
		t.Fatalf("RegisterConnection() error = %v", err)
	}

	// Unregistering the replaced instance must not evict the current one
	r.UnregisterConnection(first)
	if _, ok := r.GetConnection("user1"); !ok {
		t.Error("current connection evicted by a stale unregister")
	}

	r.UnregisterConnection(second)
	if _, ok := r.GetConnection("user1"); ok {
		t.Error("connection still registered after unregister")
	}
}

func TestRegistry_GetStats(t *testing.T) {
	r := NewRegistry()

	for _, id := range []string{"a", "b", "c"} {
		conn := testConnection(id)
		defer conn.Close()
		if err := r.RegisterConnection(conn); err != nil {
			t.Fatalf("RegisterConnection(%q) error = %v", id, err)
		}
	}

	stats := r.GetStats()
	if stats["total_connections"] != 3 {
		t.Errorf("total_connections = %d, want 3", stats["total_connections"])
	}
}

func TestRegistry_CloseAll(t *testing.T) {
	r := NewRegistry()

	conns := make([]*Connection, 0, 3)
	for _, id := range []string{"a", "b", "c"} {
		conn := testConnection(id)
		conns = append(conns, conn)
		if err := r.RegisterConnection(conn); err != nil {
			t.Fatalf("RegisterConnection(%q) error = %v", id, err)
		}
	}

	r.CloseAll()

	for _, conn := range conns {
		select {
		case <-conn.ctx.Done():
		default:
			t.Errorf("connection %s not closed by CloseAll", conn.GetUserID())
		}
	}
}

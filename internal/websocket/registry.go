package websocket

import (
	"log"
	"sync"
)

// Registry tracks live connections by user with thread-safe operations
// ARCHITECTURAL DISCOVERY: Pure connection management without business logic;
// the session layer never needs to enumerate other users' connections, so a
// single flat map is enough
type Registry struct {
	mu          sync.RWMutex // TECHNICAL DISCOVERY: RWMutex optimizes for read-heavy lookup patterns
	connections map[string]*Connection
}

// NewRegistry creates a new connection registry
func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[string]*Connection),
	}
}

// RegisterConnection records a connection, replacing any stale one
// FUNCTIONAL DISCOVERY: Close the replaced connection asynchronously to
// prevent deadlock during registration while ensuring immediate replacement
func (r *Registry) RegisterConnection(conn *Connection) error {
	if conn == nil {
		return ErrNilConnection
	}
	if conn.GetUserID() == "" {
		return ErrEmptyUserID
	}

	userID := conn.GetUserID()

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.connections[userID]; exists {
		go func() {
			if err := existing.Close(); err != nil {
				log.Printf("Failed to close replaced connection for %s: %v", userID, err)
			}
		}()
	}

	r.connections[userID] = conn
	return nil
}

// UnregisterConnection removes a connection; idempotent
// RACE CONDITION FIX: Only removes the connection if it is the one currently
// registered, so an old connection's cleanup cannot unregister its successor
func (r *Registry) UnregisterConnection(conn *Connection) {
	if conn == nil {
		return
	}

	userID := conn.GetUserID()

	r.mu.Lock()
	defer r.mu.Unlock()

	if registered, exists := r.connections[userID]; exists && registered == conn {
		delete(r.connections, userID)
	}
}

// GetConnection returns the live connection for a user, if any
func (r *Registry) GetConnection(userID string) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.connections[userID]
	return conn, ok
}

// Count returns the number of live connections
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}

// GetStats returns registry statistics for health reporting
func (r *Registry) GetStats() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return map[string]int{
		"total_connections": len(r.connections),
	}
}

// CloseAll closes every registered connection during shutdown.
// Closing the transport unblocks each session's read loop, which runs
// the disconnect safety check on its way out.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	conns := make([]*Connection, 0, len(r.connections))
	for _, conn := range r.connections {
		conns = append(conns, conn)
	}
	r.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}

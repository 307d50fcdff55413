package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	// ARCHITECTURAL DISCOVERY: Import SQLite driver but only reference in connection string
	_ "github.com/mattn/go-sqlite3"

	dbconfig "saferoute/pkg/database"
	"saferoute/pkg/interfaces"
	"saferoute/pkg/types"
)

// Manager implements the Store interface on SQLite
type Manager struct {
	db           *sql.DB
	config       *dbconfig.Config
	writeChannel chan writeOperation // TECHNICAL: Single-writer pattern for SQLite
	shutdown     chan struct{}
	wg           sync.WaitGroup
	closed       bool
	mu           sync.RWMutex // TECHNICAL: Protect closed status
}

// writeOperation represents a database write operation
type writeOperation struct {
	operation func(*sql.DB) error
	result    chan error
}

// NewManager creates a new store manager
func NewManager(config *dbconfig.Config) (*Manager, error) {
	// ARCHITECTURAL DISCOVERY: SQLite connection string carries the same
	// optimizations applied per-connection through pragmas below
	db, err := sql.Open("sqlite3", config.DatabasePath+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// FUNCTIONAL DISCOVERY: Connection pool configuration critical for concurrent reads
	db.SetMaxOpenConns(config.MaxConnections)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	if err := dbconfig.ApplySQLiteOptimizations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply SQLite optimizations: %w", err)
	}

	manager := &Manager{
		db:           db,
		config:       config,
		writeChannel: make(chan writeOperation, 100), // TECHNICAL: Buffer prevents blocking during ping bursts
		shutdown:     make(chan struct{}),
	}

	// ARCHITECTURAL DISCOVERY: Single-writer goroutine prevents SQLite write contention
	manager.wg.Add(1)
	go manager.writeLoop()

	return manager, nil
}

// writeLoop processes all write operations in a single goroutine
func (m *Manager) writeLoop() {
	defer m.wg.Done()

	for {
		select {
		case op := <-m.writeChannel:
			// FUNCTIONAL DISCOVERY: Retry logic exactly once after 5 seconds
			err := op.operation(m.db)
			if err != nil {
				log.Printf("Store write failed, retrying in 5 seconds: %v", err)
				time.Sleep(5 * time.Second)
				err = op.operation(m.db) // Retry once
				if err != nil {
					log.Printf("Store write failed after retry: %v", err)
				}
			}
			op.result <- err

		case <-m.shutdown:
			log.Println("Store write loop shutting down")
			return
		}
	}
}

// executeWrite queues a write operation and waits for completion
func (m *Manager) executeWrite(operation func(*sql.DB) error) error {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return fmt.Errorf("store manager is closed")
	}
	m.mu.RUnlock()

	result := make(chan error, 1)

	select {
	case m.writeChannel <- writeOperation{operation: operation, result: result}:
		return <-result
	case <-time.After(30 * time.Second):
		return fmt.Errorf("write operation timeout")
	case <-m.shutdown:
		return fmt.Errorf("store manager is shutting down")
	}
}

// CreateUser persists a new user profile
func (m *Manager) CreateUser(ctx context.Context, user *types.UserProfile) error {
	if err := user.Validate(); err != nil {
		return err
	}

	return m.executeWrite(func(db *sql.DB) error {
		query := `
			INSERT INTO users (id, name, destination, contactemail, relationship)
			VALUES (?, ?, ?, ?, ?)
		`
		_, err := db.ExecContext(ctx, query,
			user.ID,
			user.Name,
			user.Destination,
			user.ContactEmail,
			user.Relationship,
		)
		if err != nil {
			return fmt.Errorf("failed to insert user: %w", err)
		}
		return nil
	})
}

// GetUserProfile retrieves a user profile by ID
func (m *Manager) GetUserProfile(ctx context.Context, userID string) (*types.UserProfile, error) {
	// ARCHITECTURAL DISCOVERY: Read operations can be concurrent - no need for writeChannel
	query := `
		SELECT id, name, destination, contactemail, relationship
		FROM users
		WHERE id = ?
	`

	row := m.db.QueryRowContext(ctx, query, userID)

	var user types.UserProfile
	var name, destination, contactEmail, relationship sql.NullString

	err := row.Scan(&user.ID, &name, &destination, &contactEmail, &relationship)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, interfaces.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	// FUNCTIONAL DISCOVERY: Every profile field except the ID is optional;
	// NULL and empty string are equivalent to the session core
	user.Name = name.String
	user.Destination = destination.String
	user.ContactEmail = contactEmail.String
	user.Relationship = relationship.String

	return &user, nil
}

// UpdateUser updates the mutable profile fields
func (m *Manager) UpdateUser(ctx context.Context, user *types.UserProfile) error {
	if err := user.Validate(); err != nil {
		return err
	}

	return m.executeWrite(func(db *sql.DB) error {
		query := `
			UPDATE users
			SET name = ?, destination = ?, contactemail = ?, relationship = ?
			WHERE id = ?
		`
		res, err := db.ExecContext(ctx, query,
			user.Name,
			user.Destination,
			user.ContactEmail,
			user.Relationship,
			user.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return interfaces.ErrUserNotFound
		}
		return nil
	})
}

// GetLatestLocation retrieves the user's persisted last-known state
func (m *Manager) GetLatestLocation(ctx context.Context, userID string) (*types.LocationRecord, error) {
	query := `
		SELECT id, uid, location, time, safety_score
		FROM locations
		WHERE uid = ?
	`

	row := m.db.QueryRowContext(ctx, query, userID)

	var record types.LocationRecord
	var score sql.NullFloat64

	err := row.Scan(&record.ID, &record.UserID, &record.Location, &record.Time, &score)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, interfaces.ErrLocationNotFound
		}
		return nil, fmt.Errorf("failed to query location: %w", err)
	}

	// FUNCTIONAL DISCOVERY: Handle nullable captured score - a row created
	// before any score resolution carries NULL forever
	if score.Valid {
		record.SafetyScore = &score.Float64
	}

	return &record, nil
}

// UpsertLocation creates or updates the user's single location record.
//
// Update semantics: time always updates; location only when it differs from
// the stored value; the captured safety score is written only at row
// creation and never touched afterwards.
func (m *Manager) UpsertLocation(ctx context.Context, userID, location, timestamp string, scoreAtCapture *float64) error {
	// Read outside the write queue; the single-writer loop serializes the
	// write itself, and each user's pings are already serialized per session
	existing, err := m.GetLatestLocation(ctx, userID)
	if err != nil && err != interfaces.ErrLocationNotFound {
		return err
	}

	if existing == nil {
		return m.executeWrite(func(db *sql.DB) error {
			query := `
				INSERT INTO locations (id, uid, location, time, safety_score)
				VALUES (?, ?, ?, ?, ?)
			`
			var score sql.NullFloat64
			if scoreAtCapture != nil {
				score = sql.NullFloat64{Float64: *scoreAtCapture, Valid: true}
			}
			_, err := db.ExecContext(ctx, query, uuid.New().String(), userID, location, timestamp, score)
			if err != nil {
				return fmt.Errorf("failed to insert location: %w", err)
			}
			return nil
		})
	}

	return m.executeWrite(func(db *sql.DB) error {
		if existing.Location != location {
			query := `UPDATE locations SET time = ?, location = ? WHERE id = ?`
			if _, err := db.ExecContext(ctx, query, timestamp, location, existing.ID); err != nil {
				return fmt.Errorf("failed to update location: %w", err)
			}
			return nil
		}
		query := `UPDATE locations SET time = ? WHERE id = ?`
		if _, err := db.ExecContext(ctx, query, timestamp, existing.ID); err != nil {
			return fmt.Errorf("failed to update location time: %w", err)
		}
		return nil
	})
}

// HealthCheck validates database connectivity
func (m *Manager) HealthCheck(ctx context.Context) error {
	if err := m.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Test read operation to verify database is accessible
	rows, err := m.db.QueryContext(ctx, "SELECT COUNT(*) FROM users LIMIT 1")
	if err != nil {
		return fmt.Errorf("database read test failed: %w", err)
	}
	_ = rows.Close()

	return nil
}

// GetDB returns the underlying database connection for migrations
func (m *Manager) GetDB() *sql.DB {
	return m.db
}

// Close shuts down the store manager
func (m *Manager) Close() error {
	// TECHNICAL DISCOVERY: Prevent multiple close operations
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil // Already closed
	}
	m.closed = true
	m.mu.Unlock()

	// Signal shutdown to writeLoop and wait for it to finish
	close(m.shutdown)
	m.wg.Wait()

	if err := m.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

package database

import (
	"database/sql"
	"fmt"
)

// SchemaValidator provides database schema validation functionality
// ARCHITECTURAL DISCOVERY: Separate validation component enables deployment
// verification without coupling to the migration system
type SchemaValidator struct {
	db *sql.DB
}

// NewSchemaValidator creates a new schema validator
func NewSchemaValidator(db *sql.DB) *SchemaValidator {
	return &SchemaValidator{db: db}
}

// ValidateTablesExist verifies that all required tables exist
func (v *SchemaValidator) ValidateTablesExist() error {
	requiredTables := map[string]string{
		"users":             "User profile storage",
		"locations":         "Last-known location storage",
		"schema_migrations": "Migration tracking",
	}

	for table, description := range requiredTables {
		exists, err := v.tableExists(table)
		if err != nil {
			return fmt.Errorf("error checking table %s (%s): %w", table, description, err)
		}
		if !exists {
			return fmt.Errorf("required table %s (%s) does not exist", table, description)
		}
	}

	return nil
}

// ValidateTableStructure verifies table column structure matches expectations
// TECHNICAL DISCOVERY: Column validation ensures type compatibility between
// Go structs and database schema
func (v *SchemaValidator) ValidateTableStructure() error {
	userColumns := map[string]string{
		"id":           "TEXT",
		"name":         "TEXT",
		"destination":  "TEXT",
		"contactemail": "TEXT",
		"relationship": "TEXT",
	}

	if err := v.validateColumns("users", userColumns); err != nil {
		return fmt.Errorf("users table structure invalid: %w", err)
	}

	locationColumns := map[string]string{
		"id":           "TEXT",
		"uid":          "TEXT",
		"location":     "TEXT",
		"time":         "TEXT",
		"safety_score": "REAL",
	}

	if err := v.validateColumns("locations", locationColumns); err != nil {
		return fmt.Errorf("locations table structure invalid: %w", err)
	}

	return nil
}

// ValidateIndexes verifies that all performance indexes exist
func (v *SchemaValidator) ValidateIndexes() error {
	requiredIndexes := map[string]string{
		"idx_locations_uid": "One-row-per-user location upserts",
	}

	for index, purpose := range requiredIndexes {
		exists, err := v.indexExists(index)
		if err != nil {
			return fmt.Errorf("error checking index %s (%s): %w", index, purpose, err)
		}
		if !exists {
			return fmt.Errorf("required index %s (%s) does not exist", index, purpose)
		}
	}

	return nil
}

// ValidateConstraints verifies that database constraints are enforced
// ARCHITECTURAL DISCOVERY: Constraint validation ensures data integrity rules
// are enforced at the database level, not just in Go code
func (v *SchemaValidator) ValidateConstraints() error {
	// Test foreign key constraint (locations.uid -> users.id)
	_, err := v.db.Exec(`
		INSERT INTO locations (id, uid, location, time)
		VALUES ('test', 'nonexistent', 'Dwarka', '2024-01-01T00:00:00Z')
	`)
	if err == nil {
		if _, err := v.db.Exec("DELETE FROM locations WHERE id = 'test'"); err != nil {
			// Ignore cleanup errors - constraint validation is the primary concern
			_ = err
		}
		return fmt.Errorf("foreign key constraint not enforced: locations.uid")
	}

	// Test unique constraint on locations.uid (one active row per user)
	if _, err = v.db.Exec(`INSERT INTO users (id) VALUES ('test-user')`); err != nil {
		return fmt.Errorf("failed to create test user: %w", err)
	}

	_, err = v.db.Exec(`
		INSERT INTO locations (id, uid, location, time)
		VALUES ('test-a', 'test-user', 'Dwarka', '2024-01-01T00:00:00Z')
	`)
	if err == nil {
		_, err = v.db.Exec(`
			INSERT INTO locations (id, uid, location, time)
			VALUES ('test-b', 'test-user', 'Saket', '2024-01-01T00:01:00Z')
		`)
	}
	if err == nil {
		cleanup := []string{
			"DELETE FROM locations WHERE uid = 'test-user'",
			"DELETE FROM users WHERE id = 'test-user'",
		}
		for _, stmt := range cleanup {
			if _, err := v.db.Exec(stmt); err != nil {
				_ = err
			}
		}
		return fmt.Errorf("unique constraint not enforced: locations.uid")
	}

	// Clean up test records
	cleanup := []string{
		"DELETE FROM locations WHERE uid = 'test-user'",
		"DELETE FROM users WHERE id = 'test-user'",
	}
	for _, stmt := range cleanup {
		if _, err := v.db.Exec(stmt); err != nil {
			// Ignore cleanup errors - constraint validation is the primary concern
			_ = err
		}
	}

	return nil
}

// tableExists checks if a table exists in the database
func (v *SchemaValidator) tableExists(tableName string) (bool, error) {
	var count int
	err := v.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?",
		tableName,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// indexExists checks if an index exists in the database
func (v *SchemaValidator) indexExists(indexName string) (bool, error) {
	var count int
	err := v.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name=?",
		indexName,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// validateColumns checks that a table has the expected columns with correct types
func (v *SchemaValidator) validateColumns(tableName string, expectedColumns map[string]string) error {
	rows, err := v.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			// Ignore cleanup errors to avoid masking the primary error
			_ = err
		}
	}()

	foundColumns := make(map[string]string)
	for rows.Next() {
		var cid int
		var name, dataType string
		var notNull int
		var defaultValue interface{}
		var pk int

		if err = rows.Scan(&cid, &name, &dataType, &notNull, &defaultValue, &pk); err != nil {
			return err
		}

		foundColumns[name] = dataType
	}

	for expectedCol, expectedType := range expectedColumns {
		foundType, exists := foundColumns[expectedCol]
		if !exists {
			return fmt.Errorf("column %s not found", expectedCol)
		}
		if foundType != expectedType {
			return fmt.Errorf("column %s has type %s, expected %s", expectedCol, foundType, expectedType)
		}
	}

	return rows.Err()
}

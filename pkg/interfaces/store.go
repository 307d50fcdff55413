package interfaces

import (
	"context"

	"saferoute/pkg/types"
)

// Store handles all persistence operations
// ARCHITECTURAL DISCOVERY: Single interface for all persistence operations
// enables consistent write serialization and simple mock implementations
type Store interface {
	// User profile operations
	// FUNCTIONAL DISCOVERY: Profiles are read-only from the session core's
	// perspective; Create/Update exist for the admin API surface

	// CreateUser persists a new user profile
	CreateUser(ctx context.Context, user *types.UserProfile) error

	// GetUserProfile retrieves a user profile by ID
	// Returns ErrUserNotFound when no such user exists
	GetUserProfile(ctx context.Context, userID string) (*types.UserProfile, error)

	// UpdateUser updates mutable profile fields (destination, contact)
	UpdateUser(ctx context.Context, user *types.UserProfile) error

	// Location record operations
	// FUNCTIONAL DISCOVERY: Exactly one active location row per user.
	// UpsertLocation implements the creation-vs-update asymmetry: time always
	// updates, location only when changed, the captured safety score only at
	// row creation.

	// GetLatestLocation retrieves the user's persisted last-known state
	// Returns ErrLocationNotFound when the user has never pinged
	GetLatestLocation(ctx context.Context, userID string) (*types.LocationRecord, error)

	// UpsertLocation creates or updates the user's location record
	// scoreAtCapture is only consulted when the row does not exist yet
	UpsertLocation(ctx context.Context, userID, location, timestamp string, scoreAtCapture *float64) error

	// Health and lifecycle operations

	// HealthCheck verifies store connectivity and basic operations
	HealthCheck(ctx context.Context) error

	// Close closes the store and cleans up resources
	Close() error
}

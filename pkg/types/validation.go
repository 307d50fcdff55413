package types

import (
	"regexp"
)

// FUNCTIONAL DISCOVERY: Regex compiled once at package initialization
// for better performance in high-frequency validation scenarios
var userIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// IsValidUserID checks if a user ID meets format requirements
// FUNCTIONAL DISCOVERY: 1-50 character limit prevents database issues
// and keeps IDs usable as map keys throughout the system
func IsValidUserID(userID string) bool {
	if len(userID) < 1 || len(userID) > 50 {
		return false
	}
	return userIDRegex.MatchString(userID)
}

// Validate ensures a ping carries both required fields
// Invalid pings are dropped by the session manager, never answered
func (p *Ping) Validate() error {
	if p.Location == "" {
		return ErrMissingLocation
	}
	if p.Time == "" {
		return ErrMissingTime
	}
	return nil
}

// Validate ensures the profile meets storage requirements
// ARCHITECTURAL DISCOVERY: Validation at type level ensures consistency
// across the admin API and test fixtures without duplicating rules
func (u *UserProfile) Validate() error {
	if !IsValidUserID(u.ID) {
		return ErrInvalidUserID
	}
	if len(u.Name) > 200 {
		return ErrNameTooLong
	}
	return nil
}

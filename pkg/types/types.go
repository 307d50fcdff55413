package types

// Ping is the inbound message for an active session
// FUNCTIONAL DISCOVERY: Time travels as an opaque string so clients can send
// whatever their platform clock produces; it is only parsed at the safety check
type Ping struct {
	Location string `json:"location"`
	Time     string `json:"time"`
}

// Coordinate is a geographic point used purely for response enrichment
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RouteReply is the outbound message carrying a computed path
// ARCHITECTURAL DISCOVERY: Coords aligned by index with Path; entries are
// pointers so nodes without known coordinates serialize as null rather than
// a fabricated zero coordinate
type RouteReply struct {
	Path   []string      `json:"path"`
	Coords []*Coordinate `json:"coords"`
}

// ErrorReply is the distinct error-shaped message sent when a ping cannot
// produce a route for a reason the client should see
type ErrorReply struct {
	Error string `json:"error"`
}

// NoDestinationError is the exact client-visible text for a profile without
// a configured destination
const NoDestinationError = "No destination set for user"

// LocationRecord is the persisted last-known state for a user
// FUNCTIONAL DISCOVERY: One active row per user, upserted on every ping.
// SafetyScore is the score captured at row creation and never overwritten;
// nil means no score had been resolved when the row was created
type LocationRecord struct {
	ID          string   `json:"id" db:"id"`
	UserID      string   `json:"uid" db:"uid"`
	Location    string   `json:"location" db:"location"`
	Time        string   `json:"time" db:"time"`
	SafetyScore *float64 `json:"safety_score,omitempty" db:"safety_score"`
}

// UserProfile holds the per-user fields this system reads
// Destination, ContactEmail, Name and Relationship are all optional
type UserProfile struct {
	ID           string `json:"id" db:"id"`
	Name         string `json:"name,omitempty" db:"name"`
	Destination  string `json:"destination,omitempty" db:"destination"`
	ContactEmail string `json:"contactemail,omitempty" db:"contactemail"`
	Relationship string `json:"relationship,omitempty" db:"relationship"`
}

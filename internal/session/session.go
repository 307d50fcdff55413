// Package session implements the per-connection session manager: the owner
// of one user's live connection, its private safety-score cache, route
// computation on inbound pings, and the disconnect-time safety check that
// gates the alert side effect.
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"saferoute/internal/alert"
	"saferoute/internal/graph"
	"saferoute/internal/metrics"
	"saferoute/internal/routing"
	"saferoute/internal/safety"
	"saferoute/pkg/interfaces"
	"saferoute/pkg/types"
)

// State is the session lifecycle state
// Open -> Closing -> Closed, no transitions back
type State int32

const (
	StateOpen State = iota
	StateClosing
	StateClosed
)

// Config carries the dependencies for one session
type Config struct {
	UserID         string
	Connection     interfaces.Connection
	Store          interfaces.Store
	Scores         interfaces.ScoreProvider
	Mailer         interfaces.Mailer
	Graph          *graph.Graph
	AlertThreshold float64
	Now            func() time.Time // nil selects time.Now
}

// Session owns one user's live connection for its lifetime.
//
// The safety-score cache is private to the session; concurrent sessions may
// redundantly resolve the same node's score, which is tolerated. Shared state
// is limited to the read-only graph and the store/provider, which handle
// their own concurrent access.
type Session struct {
	userID    string
	conn      interfaces.Connection
	store     interfaces.Store
	scores    interfaces.ScoreProvider
	mailer    interfaces.Mailer
	graph     *graph.Graph
	threshold float64
	now       func() time.Time

	// TECHNICAL DISCOVERY: One mutex serializes ping handling against the
	// close-time safety check, so the check always observes the last
	// completed location write, never a write in progress
	mu    sync.Mutex
	cache map[string]float64
	state State
}

// New creates a session for an accepted connection
func New(cfg Config) *Session {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.AlertThreshold == 0 {
		cfg.AlertThreshold = safety.DefaultAlertThreshold
	}
	return &Session{
		userID:    cfg.UserID,
		conn:      cfg.Connection,
		store:     cfg.Store,
		scores:    cfg.Scores,
		mailer:    cfg.Mailer,
		graph:     cfg.Graph,
		threshold: cfg.AlertThreshold,
		now:       cfg.Now,
		cache:     make(map[string]float64),
		state:     StateOpen,
	}
}

// UserID returns the user this session is bound to
func (s *Session) UserID() string {
	return s.userID
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// HandlePing processes one inbound location ping to completion.
//
// Failure handling follows the session error taxonomy: malformed input is
// dropped silently (logged), unknown graph nodes abort without a reply, a
// missing destination is surfaced to the client, and store/provider failures
// are absorbed - nothing here tears the session down.
func (s *Session) HandlePing(ctx context.Context, ping types.Ping) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateOpen {
		return // Closing or Closed is terminal; no further processing
	}

	if err := ping.Validate(); err != nil {
		log.Printf("Dropping invalid ping from %s: %v", s.userID, err)
		metrics.PingsDropped.WithLabelValues("invalid").Inc()
		return
	}
	metrics.PingsTotal.Inc()

	// Persist last-known state before anything can fail downstream.
	// The captured score comes from the session's current cache and may be
	// absent on a first ping before any resolution pass has run.
	var captured *float64
	if score, ok := s.cache[ping.Location]; ok {
		captured = &score
	}
	if err := s.store.UpsertLocation(ctx, s.userID, ping.Location, ping.Time, captured); err != nil {
		log.Printf("Failed to persist location for %s: %v", s.userID, err)
		return
	}

	profile, err := s.store.GetUserProfile(ctx, s.userID)
	if err != nil {
		log.Printf("Failed to load profile for %s: %v", s.userID, err)
		return
	}

	if profile.Destination == "" {
		// FUNCTIONAL DISCOVERY: The only ping failure the client gets told
		// about; unknown graph nodes below stay silent. The asymmetry is
		// intentional and preserved.
		if err := s.conn.WriteJSON(types.ErrorReply{Error: types.NoDestinationError}); err != nil {
			log.Printf("Failed to send no-destination notice to %s: %v", s.userID, err)
		}
		return
	}

	if !s.graph.Contains(ping.Location) || !s.graph.Contains(profile.Destination) {
		log.Printf("Unknown graph node for %s: location=%q destination=%q", s.userID, ping.Location, profile.Destination)
		metrics.PingsDropped.WithLabelValues("unknown_node").Inc()
		return
	}

	// Resolve scores for the whole graph, not just the two endpoints; the
	// search needs a complete mapping and the cache keeps it for the rest of
	// the session's lifetime
	s.resolveMissingScores(ctx)

	path := routing.ShortestPath(s.graph, s.cache, ping.Location, profile.Destination)
	metrics.RoutesComputed.Inc()

	// An empty path (unreachable destination) is a valid result and is
	// still delivered
	reply := types.RouteReply{
		Path:   make([]string, 0, len(path)),
		Coords: make([]*types.Coordinate, 0, len(path)),
	}
	for _, node := range path {
		reply.Path = append(reply.Path, node)
		if c, ok := s.graph.Coordinate(node); ok {
			coord := c
			reply.Coords = append(reply.Coords, &coord)
		} else {
			reply.Coords = append(reply.Coords, nil)
		}
	}

	if err := s.conn.WriteJSON(reply); err != nil {
		log.Printf("Failed to send route to %s: %v", s.userID, err)
	}
}

// resolveMissingScores fills every cache gap across the graph via the
// provider adapter. No provider call happens when the cache is already
// complete.
func (s *Session) resolveMissingScores(ctx context.Context) {
	var missing []string
	for _, node := range s.graph.Nodes() {
		if _, ok := s.cache[node]; !ok {
			missing = append(missing, node)
		}
	}
	if len(missing) == 0 {
		return
	}

	for node, score := range s.scores.ResolveScores(ctx, missing) {
		s.cache[node] = score
	}
}

// Close runs the disconnect-time safety check exactly once and moves the
// session to its terminal state. It never returns an error: every internal
// failure is logged and treated as "assume safe, take no action".
func (s *Session) Close(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateOpen {
		return
	}
	s.state = StateClosing
	defer func() { s.state = StateClosed }()

	s.checkSafety(ctx)
}

// checkSafety evaluates the disconnect heuristic against the last persisted
// state and dispatches a single best-effort alert when the user is judged
// unsafe.
func (s *Session) checkSafety(ctx context.Context) {
	record, err := s.store.GetLatestLocation(ctx, s.userID)
	if err == interfaces.ErrLocationNotFound {
		return // never pinged: considered safe
	}
	if err != nil {
		log.Printf("Safety check for %s could not load location, assuming safe: %v", s.userID, err)
		return
	}

	lastSeen, err := time.Parse(time.RFC3339, record.Time)
	if err != nil {
		log.Printf("Safety check for %s could not parse time %q, assuming safe: %v", s.userID, record.Time, err)
		return
	}

	var score float64 // absent captured score defaults to 0
	if record.SafetyScore != nil {
		score = *record.SafetyScore
	}

	combined := safety.CombinedScore(score, lastSeen, s.now())
	if safety.IsSafe(combined, s.threshold) {
		return
	}

	log.Printf("User %s judged unsafe on disconnect (combined=%g threshold=%g), dispatching alert", s.userID, combined, s.threshold)

	profile, err := s.store.GetUserProfile(ctx, s.userID)
	if err != nil {
		log.Printf("Failed to load profile for alert to %s: %v", s.userID, err)
		return
	}
	if profile.ContactEmail == "" {
		log.Printf("No contact email on file for %s, skipping alert", s.userID)
		metrics.AlertsTotal.WithLabelValues("no_contact").Inc()
		return
	}

	body := alert.AlertBody(profile.Name, profile.Relationship)
	if err := s.mailer.Send(ctx, profile.ContactEmail, alert.AlertSubject, body); err != nil {
		log.Printf("Failed to send alert for %s: %v", s.userID, err)
		metrics.AlertsTotal.WithLabelValues("send_failed").Inc()
		return
	}

	metrics.AlertsTotal.WithLabelValues("sent").Inc()
	log.Printf("Alert sent for %s to %s", s.userID, profile.ContactEmail)
}

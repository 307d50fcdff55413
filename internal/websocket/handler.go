package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"saferoute/internal/graph"
	"saferoute/internal/metrics"
	"saferoute/internal/session"
	"saferoute/pkg/interfaces"
	"saferoute/pkg/types"
)

// WebSocket upgrader with production-ready settings
// ARCHITECTURAL DISCOVERY: Separate upgrader configuration enables reuse
// and consistent WebSocket settings across handler instances
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// FUNCTIONAL DISCOVERY: Allow all origins for development
		// Production deployments should implement stricter origin checking
		return true
	},
	HandshakeTimeout: 10 * time.Second,
}

// Handler manages WebSocket connections and session lifecycles
// ARCHITECTURAL DISCOVERY: Clean separation of WebSocket handling from the
// session manager; the handler owns transport concerns, the session owns
// routing and the safety check
type Handler struct {
	registry       *Registry
	store          interfaces.Store
	scores         interfaces.ScoreProvider
	mailer         interfaces.Mailer
	graph          *graph.Graph
	alertThreshold float64
	limiter        *RateLimiter
}

// NewHandler creates a new WebSocket handler with dependency injection
func NewHandler(registry *Registry, store interfaces.Store, scores interfaces.ScoreProvider, mailer interfaces.Mailer, g *graph.Graph, alertThreshold float64) *Handler {
	return &Handler{
		registry:       registry,
		store:          store,
		scores:         scores,
		mailer:         mailer,
		graph:          g,
		alertThreshold: alertThreshold,
		limiter:        NewRateLimiter(),
	}
}

// StartCleanup runs periodic rate-limiter state cleanup until ctx is
// cancelled, bounding memory held for users that never reconnect
func (h *Handler) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				h.limiter.Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// HandleWebSocket handles WebSocket connection requests
// ARCHITECTURAL DISCOVERY: Multi-stage validation (parameters -> user lookup
// -> WebSocket upgrade -> registration) gives real HTTP error responses and
// prevents invalid connections from consuming resources
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "Missing required query parameter: user_id", http.StatusBadRequest)
		return
	}

	if !types.IsValidUserID(userID) {
		http.Error(w, "Invalid user_id format", http.StatusBadRequest)
		return
	}

	// A session only makes sense for a known user; the profile lookup also
	// confirms the store is reachable before the upgrade
	if _, err := h.store.GetUserProfile(r.Context(), userID); err != nil {
		if err == interfaces.ErrUserNotFound {
			http.Error(w, "Unknown user", http.StatusNotFound)
		} else {
			http.Error(w, "User lookup failed", http.StatusInternalServerError)
		}
		return
	}

	// FUNCTIONAL DISCOVERY: WebSocket upgrade after validation prevents
	// resource waste on invalid requests
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	wsConn := NewConnection(conn, userID)

	if err := h.registry.RegisterConnection(wsConn); err != nil {
		log.Printf("Failed to register connection: %v", err)
		_ = wsConn.Close()
		return
	}

	sess := session.New(session.Config{
		UserID:         userID,
		Connection:     wsConn,
		Store:          h.store,
		Scores:         h.scores,
		Mailer:         h.mailer,
		Graph:          h.graph,
		AlertThreshold: h.alertThreshold,
	})

	log.Printf("Session opened for %s", userID)
	metrics.ActiveSessions.Inc()

	// TECHNICAL DISCOVERY: One goroutine per connection handles heartbeat
	// and message reading; its exit is the close event that triggers the
	// session's safety check
	go h.handleConnection(wsConn, sess)
}

// handleConnection drives the connection lifecycle: heartbeat monitoring,
// the ping read loop, and the close handoff to the session.
//
// FUNCTIONAL DISCOVERY: Because pings are dispatched inline from this single
// read loop and the close handoff runs after the loop exits, a session's
// event processing is naturally serialized - the safety check can never
// observe a location write in progress.
func (h *Handler) handleConnection(conn *Connection, sess *session.Session) {
	defer func() {
		h.registry.UnregisterConnection(conn)

		// The close event: run the safety check, then release the socket
		sess.Close(context.Background())
		_ = conn.Close()

		metrics.ActiveSessions.Dec()
		log.Printf("Session closed for %s", sess.UserID())
	}()

	// TECHNICAL DISCOVERY: 60-second read deadline with 30-second ping
	// interval provides reliable connection health monitoring for mobile
	// clients on flaky networks
	if err := conn.conn.SetReadDeadline(time.Now().Add(60 * time.Second)); err != nil {
		log.Printf("Failed to set read deadline: %v", err)
		return
	}
	conn.conn.SetPongHandler(func(string) error {
		if err := conn.conn.SetReadDeadline(time.Now().Add(60 * time.Second)); err != nil {
			log.Printf("Failed to set read deadline in pong handler: %v", err)
			return err
		}
		return nil
	})

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := conn.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			case <-conn.ctx.Done():
				return
			}
		}
	}()

	// Read pump - one ping handled to completion before the next is read
	for {
		messageType, data, err := conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for %s: %v", sess.UserID(), err)
			}
			break
		}

		if messageType != websocket.TextMessage {
			continue
		}

		if !h.limiter.Allow(sess.UserID()) {
			log.Printf("Rate limit exceeded for %s, dropping ping", sess.UserID())
			metrics.PingsDropped.WithLabelValues("rate_limited").Inc()
			continue
		}

		var ping types.Ping
		if err := json.Unmarshal(data, &ping); err != nil {
			// Malformed JSON is dropped and logged; the connection stays open
			log.Printf("Invalid JSON message from %s: %s", sess.UserID(), string(data))
			metrics.PingsDropped.WithLabelValues("malformed").Inc()
			continue
		}

		sess.HandlePing(context.Background(), ping)
	}
}

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"saferoute/pkg/interfaces"
	"saferoute/pkg/types"
)

// Registry interface to avoid tight coupling to the websocket implementation
type Registry interface {
	GetStats() map[string]int
}

// Server is the admin/diagnostic HTTP surface: user profile management and
// health reporting
// ARCHITECTURAL DISCOVERY: No business logic here, only HTTP handling and
// JSON serialization over the store interface
type Server struct {
	store    interfaces.Store
	registry Registry
	router   *http.ServeMux
}

// NewServer creates the API server with its routes configured
func NewServer(store interfaces.Store, registry Registry) *Server {
	s := &Server{
		store:    store,
		registry: registry,
		router:   http.NewServeMux(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes wires REST routes with CORS and JSON middleware
func (s *Server) setupRoutes() {
	s.router.Handle("/api/users", s.corsMiddleware(s.jsonMiddleware(http.HandlerFunc(s.handleUsers))))
	s.router.Handle("/api/users/", s.corsMiddleware(s.jsonMiddleware(http.HandlerFunc(s.handleUserByID))))
	s.router.Handle("/health", s.corsMiddleware(s.jsonMiddleware(http.HandlerFunc(s.healthCheck))))
}

// ServeHTTP implements http.Handler for integration with the standard server
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleUsers serves the users collection endpoint (POST /api/users)
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createUser(w, r)
	case http.MethodOptions:
		// CORS preflight handled by middleware
		w.WriteHeader(http.StatusOK)
	default:
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleUserByID serves individual user endpoints
// (GET/PUT /api/users/{id}, GET /api/users/{id}/location)
func (s *Server) handleUserByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/users/")
	if path == "" {
		s.sendError(w, "User ID required", http.StatusBadRequest)
		return
	}

	parts := strings.Split(path, "/")
	userID := parts[0]
	if userID == "" {
		s.sendError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if len(parts) > 1 && parts[1] == "location" {
		if r.Method == http.MethodGet {
			s.getLocation(w, r, userID)
		} else if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
		} else {
			s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getUser(w, r, userID)
	case http.MethodPut:
		s.updateUser(w, r, userID)
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	default:
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request/Response types for JSON serialization

type UserResponse struct {
	User *types.UserProfile `json:"user"`
}

type LocationResponse struct {
	Location *types.LocationRecord `json:"location"`
}

type HealthResponse struct {
	Status      string         `json:"status"`
	Timestamp   time.Time      `json:"timestamp"`
	Database    string         `json:"database"`
	Connections map[string]int `json:"connections"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// createUser handles POST /api/users
func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var user types.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		s.sendError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := user.Validate(); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.store.CreateUser(r.Context(), &user); err != nil {
		s.sendError(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(UserResponse{User: &user})
}

// getUser handles GET /api/users/{id}
func (s *Server) getUser(w http.ResponseWriter, r *http.Request, userID string) {
	user, err := s.store.GetUserProfile(r.Context(), userID)
	if err != nil {
		if err == interfaces.ErrUserNotFound {
			s.sendError(w, "User not found", http.StatusNotFound)
		} else {
			s.sendError(w, "Failed to get user", http.StatusInternalServerError)
		}
		return
	}

	_ = json.NewEncoder(w).Encode(UserResponse{User: user})
}

// updateUser handles PUT /api/users/{id} - destination and contact changes
func (s *Server) updateUser(w http.ResponseWriter, r *http.Request, userID string) {
	var user types.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		s.sendError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	// The path is authoritative for the ID; the body cannot move the update
	// to a different user
	user.ID = userID

	if err := user.Validate(); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.store.UpdateUser(r.Context(), &user); err != nil {
		if err == interfaces.ErrUserNotFound {
			s.sendError(w, "User not found", http.StatusNotFound)
		} else {
			s.sendError(w, "Failed to update user", http.StatusInternalServerError)
		}
		return
	}

	_ = json.NewEncoder(w).Encode(UserResponse{User: &user})
}

// getLocation handles GET /api/users/{id}/location
func (s *Server) getLocation(w http.ResponseWriter, r *http.Request, userID string) {
	record, err := s.store.GetLatestLocation(r.Context(), userID)
	if err != nil {
		if err == interfaces.ErrLocationNotFound {
			s.sendError(w, "No location on record", http.StatusNotFound)
		} else {
			s.sendError(w, "Failed to get location", http.StatusInternalServerError)
		}
		return
	}

	_ = json.NewEncoder(w).Encode(LocationResponse{Location: record})
}

// healthCheck handles GET /health with component validation
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "healthy"
	dbStatus := "healthy"

	if err := s.store.HealthCheck(ctx); err != nil {
		status = "unhealthy"
		dbStatus = fmt.Sprintf("error: %v", err)
	}

	response := HealthResponse{
		Status:      status,
		Timestamp:   time.Now(),
		Database:    dbStatus,
		Connections: s.registry.GetStats(),
	}

	// FUNCTIONAL DISCOVERY: Return 503 if any component is unhealthy
	if status == "unhealthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	_ = json.NewEncoder(w).Encode(response)
}

// sendError writes a consistent error response shape
func (s *Server) sendError(w http.ResponseWriter, message string, code int) {
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(code),
		Code:    code,
		Message: message,
	})
}

// corsMiddleware enables web client access
// Allows all origins in development - would be restricted in production
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// jsonMiddleware ensures proper content-type headers on all API responses
func (s *Server) jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		next.ServeHTTP(w, r)
	})
}

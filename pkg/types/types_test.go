package types

import (
	"encoding/json"
	"strings"
	"testing"
)

// Functional Validation Tests - Ping

func TestPing_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ping    Ping
		wantErr error
	}{
		{
			name:    "valid ping",
			ping:    Ping{Location: "Saket", Time: "2024-01-01T10:00:00Z"},
			wantErr: nil,
		},
		{
			name:    "missing location",
			ping:    Ping{Location: "", Time: "2024-01-01T10:00:00Z"},
			wantErr: ErrMissingLocation,
		},
		{
			name:    "missing time",
			ping:    Ping{Location: "Saket", Time: ""},
			wantErr: ErrMissingTime,
		},
		{
			name:    "both missing reports location first",
			ping:    Ping{},
			wantErr: ErrMissingLocation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ping.Validate()
			if err != tt.wantErr {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsValidUserID(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		want   bool
	}{
		{"valid alphanumeric", "user123", true},
		{"valid with underscore", "user_123", true},
		{"valid with hyphen", "user-123", true},
		{"empty", "", false},
		{"spaces", "user 123", false},
		{"special chars", "user!@#", false},
		{"too long", strings.Repeat("a", 51), false},
		{"exactly 50 chars", strings.Repeat("a", 50), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidUserID(tt.userID); got != tt.want {
				t.Errorf("IsValidUserID(%q) = %v, want %v", tt.userID, got, tt.want)
			}
		})
	}
}

func TestUserProfile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		profile UserProfile
		wantErr error
	}{
		{
			name: "valid profile",
			profile: UserProfile{
				ID:           "user1",
				Name:         "Asha",
				Destination:  "Saket",
				ContactEmail: "contact@example.com",
				Relationship: "mother",
			},
			wantErr: nil,
		},
		{
			name:    "invalid id",
			profile: UserProfile{ID: "bad id!", Name: "Asha"},
			wantErr: ErrInvalidUserID,
		},
		{
			name:    "name too long",
			profile: UserProfile{ID: "user1", Name: strings.Repeat("a", 201)},
			wantErr: ErrNameTooLong,
		},
		{
			name:    "empty optional fields allowed",
			profile: UserProfile{ID: "user1"},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if err != tt.wantErr {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// Wire Format Tests

func TestRouteReply_JSONShape(t *testing.T) {
	lat, lng := 28.5245, 77.2066
	reply := RouteReply{
		Path:   []string{"Saket", "Hauz Khas"},
		Coords: []*Coordinate{{Lat: lat, Lng: lng}, nil},
	}

	data, err := json.Marshal(reply)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	// Missing coordinates must appear as JSON null, index-aligned with path
	want := `{"path":["Saket","Hauz Khas"],"coords":[{"lat":28.5245,"lng":77.2066},null]}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestRouteReply_EmptyPathMarshalsAsArray(t *testing.T) {
	reply := RouteReply{
		Path:   make([]string, 0),
		Coords: make([]*Coordinate, 0),
	}

	data, err := json.Marshal(reply)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `{"path":[],"coords":[]}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestErrorReply_Text(t *testing.T) {
	data, err := json.Marshal(ErrorReply{Error: NoDestinationError})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `{"error":"No destination set for user"}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestPing_UnmarshalIgnoresExtraFields(t *testing.T) {
	var ping Ping
	raw := `{"location":"Saket","time":"2024-01-01T10:00:00Z","battery":42}`
	if err := json.Unmarshal([]byte(raw), &ping); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if ping.Location != "Saket" || ping.Time != "2024-01-01T10:00:00Z" {
		t.Errorf("Unmarshal() = %+v", ping)
	}
}

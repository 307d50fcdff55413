package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// dialTestConnection upgrades a real WebSocket pair for write-path tests
func dialTestConnection(t *testing.T, userID string) (*Connection, *websocket.Conn) {
	t.Helper()

	upgraded := make(chan *websocket.Conn, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade error: %v", err)
			return
		}
		upgraded <- conn
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	serverConn := <-upgraded
	wrapper := NewConnection(serverConn, userID)
	t.Cleanup(func() { _ = wrapper.Close() })

	return wrapper, client
}

func TestConnection_GetUserID(t *testing.T) {
	conn := NewConnection(nil, "user1")
	defer conn.Close()

	if got := conn.GetUserID(); got != "user1" {
		t.Errorf("GetUserID() = %q, want user1", got)
	}
}

func TestConnection_WriteJSONDelivers(t *testing.T) {
	wrapper, client := dialTestConnection(t, "user1")

	if err := wrapper.WriteJSON(map[string]string{"hello": "world"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	if string(data) != `{"hello":"world"}` {
		t.Errorf("received %s", data)
	}
}

func TestConnection_WriteJSONAfterClose(t *testing.T) {
	conn := NewConnection(nil, "user1")
	if err := conn.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if err := conn.WriteJSON(map[string]string{"x": "y"}); err != ErrConnectionClosed {
		t.Errorf("WriteJSON() error = %v, want ErrConnectionClosed", err)
	}
}

func TestConnection_WriteJSONUnmarshalable(t *testing.T) {
	conn := NewConnection(nil, "user1")
	defer conn.Close()

	if err := conn.WriteJSON(make(chan int)); err != ErrInvalidJSON {
		t.Errorf("WriteJSON() error = %v, want ErrInvalidJSON", err)
	}
}

func TestConnection_CloseIdempotent(t *testing.T) {
	conn := NewConnection(nil, "user1")

	if err := conn.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

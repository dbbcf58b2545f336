package realtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/morningistar/study-buddy/internal/model/chat"
)

type fakeConversations struct {
	owners map[string]string
}

func (f *fakeConversations) GetConversation(_ context.Context, id string) (chat.Conversation, error) {
	owner, ok := f.owners[id]
	if !ok {
		return chat.Conversation{}, errors.New("conversation not found")
	}
	return chat.Conversation{ID: id, UserID: owner}, nil
}

func dialTestSocket(t *testing.T, hub *Hub, conversations ConversationGetter, userID string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(hub, conversations, userID, w, r)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForSubscriber(t *testing.T, hub *Hub, conversationID string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		n := len(hub.topics[conversationID])
		hub.mu.RUnlock()
		if n > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("no subscriber appeared for %s", conversationID)
}

func TestSubscribeOnlyDeliversOwnedConversations(t *testing.T) {
	hub := startHub(t)
	conversations := &fakeConversations{owners: map[string]string{
		"c-alice": "alice",
		"c-bob":   "bob",
	}}
	conn := dialTestSocket(t, hub, conversations, "alice")

	// The foreign subscribe must be silently ignored, the owned one
	// accepted. Commands on one socket are handled in order.
	if err := conn.WriteJSON(command{Action: "subscribe", ConversationID: "c-bob"}); err != nil {
		t.Fatalf("write subscribe: %v", err)
	}
	if err := conn.WriteJSON(command{Action: "subscribe", ConversationID: "c-alice"}); err != nil {
		t.Fatalf("write subscribe: %v", err)
	}
	waitForSubscriber(t, hub, "c-alice")

	hub.Broadcast("c-bob", "message.created", map[string]string{"content": "secret"})
	hub.Broadcast("c-alice", "message.created", map[string]string{"content": "hello"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event Event
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if event.ConversationID != "c-alice" {
		t.Fatalf("received event for conversation %q", event.ConversationID)
	}

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	if len(hub.topics["c-bob"]) != 0 {
		t.Fatal("foreign conversation gained a subscriber")
	}
}

package realtime

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/morningistar/study-buddy/internal/model/chat"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// command is what clients send over the socket.
type command struct {
	Action         string `json:"action"` // "subscribe" or "unsubscribe"
	ConversationID string `json:"conversationId"`
}

// ConversationGetter checks conversation ownership before a subscription is
// accepted.
type ConversationGetter interface {
	GetConversation(ctx context.Context, id string) (chat.Conversation, error)
}

// Client is one connected WebSocket peer bound to an authenticated user.
type Client struct {
	hub           *Hub
	conn          *websocket.Conn
	send          chan []byte
	topics        map[string]bool
	userID        string
	conversations ConversationGetter
}

// ServeWS upgrades the request and starts the client's pumps. userID must
// already be authenticated by the caller.
func ServeWS(hub *Hub, conversations ConversationGetter, userID string, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:           hub,
		conn:          conn,
		send:          make(chan []byte, 256),
		topics:        make(map[string]bool),
		userID:        userID,
		conversations: conversations,
	}
	hub.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var cmd command
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}
		c.handleCommand(cmd)
	}
}

func (c *Client) handleCommand(cmd command) {
	if cmd.ConversationID == "" {
		return
	}

	switch cmd.Action {
	case "subscribe":
		// Only the owner may watch a conversation.
		conversation, err := c.conversations.GetConversation(context.Background(), cmd.ConversationID)
		if err != nil || conversation.UserID != c.userID {
			return
		}
		c.hub.subscribe <- subscription{client: c, conversationID: cmd.ConversationID}
	case "unsubscribe":
		c.hub.unsubscribe <- subscription{client: c, conversationID: cmd.ConversationID}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

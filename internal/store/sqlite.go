package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/morningistar/study-buddy/internal/model/chat"
	"github.com/morningistar/study-buddy/internal/model/user"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash BLOB NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS tokens (
    value TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id),
    created_at TIMESTAMP NOT NULL,
    expires_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS conversations (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id),
    title TEXT NOT NULL,
    last_message_at TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_conversations_user
    ON conversations(user_id, last_message_at);

CREATE TABLE IF NOT EXISTS messages (
    id TEXT PRIMARY KEY,
    conversation_id TEXT NOT NULL REFERENCES conversations(id),
    user_id TEXT NOT NULL,
    role TEXT NOT NULL,
    content TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation
    ON messages(conversation_id, created_at);`

// SQLite persists users, tokens, conversations and messages in a single
// SQLite database file.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at path and applies the
// schema. Pass ":memory:" for an ephemeral store in tests.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_fk=1", path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite serializes writers anyway; a single pooled connection makes
	// that explicit and keeps ":memory:" databases from splitting across
	// connections.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// CreateUser inserts a new user record. Returns ErrEmailTaken when the email
// is already registered.
func (s *SQLite) CreateUser(ctx context.Context, u user.User) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO users (id, email, password_hash, created_at)
        VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

// GetUserByEmail looks a user up by email address.
func (s *SQLite) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User
	err := s.db.QueryRowContext(ctx, `
        SELECT id, email, password_hash, created_at
        FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, ErrNotFound
	}
	return u, err
}

// CreateToken records a newly issued bearer token.
func (s *SQLite) CreateToken(ctx context.Context, t user.Token) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO tokens (value, user_id, created_at, expires_at)
        VALUES (?, ?, ?, ?)`,
		t.Value, t.UserID, t.CreatedAt, t.ExpiresAt)
	return err
}

// GetToken resolves a bearer token value.
func (s *SQLite) GetToken(ctx context.Context, value string) (user.Token, error) {
	var t user.Token
	err := s.db.QueryRowContext(ctx, `
        SELECT value, user_id, created_at, expires_at
        FROM tokens WHERE value = ?`, value).
		Scan(&t.Value, &t.UserID, &t.CreatedAt, &t.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return user.Token{}, ErrNotFound
	}
	return t, err
}

// DeleteToken revokes a bearer token. Deleting a missing token is not an
// error.
func (s *SQLite) DeleteToken(ctx context.Context, value string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tokens WHERE value = ?`, value)
	return err
}

// CreateConversation inserts a new conversation record.
func (s *SQLite) CreateConversation(ctx context.Context, c chat.Conversation) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO conversations (id, user_id, title, last_message_at, created_at)
        VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Title, c.LastMessageAt, c.CreatedAt)
	return err
}

// GetConversation fetches a conversation by identifier.
func (s *SQLite) GetConversation(ctx context.Context, id string) (chat.Conversation, error) {
	var c chat.Conversation
	err := s.db.QueryRowContext(ctx, `
        SELECT id, user_id, title, last_message_at, created_at
        FROM conversations WHERE id = ?`, id).
		Scan(&c.ID, &c.UserID, &c.Title, &c.LastMessageAt, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return chat.Conversation{}, ErrNotFound
	}
	return c, err
}

// ListConversationsByUser returns all conversations owned by userID, most
// recent activity first.
func (s *SQLite) ListConversationsByUser(ctx context.Context, userID string) ([]chat.Conversation, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, user_id, title, last_message_at, created_at
        FROM conversations
        WHERE user_id = ?
        ORDER BY last_message_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conversations := make([]chat.Conversation, 0)
	for rows.Next() {
		var c chat.Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.LastMessageAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}

// AppendMessage inserts a message and advances the parent conversation's
// last_message_at in a single transaction, so a caller never observes the
// message without the timestamp update or vice versa.
func (s *SQLite) AppendMessage(ctx context.Context, m chat.Message) error {
	if !m.Role.Valid() {
		return fmt.Errorf("append message: invalid role %q", m.Role)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO messages (id, conversation_id, user_id, role, content, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.ConversationID, m.UserID, m.Role, m.Content, m.CreatedAt); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
        UPDATE conversations SET last_message_at = ? WHERE id = ?`,
		m.CreatedAt, m.ConversationID); err != nil {
		return err
	}

	return tx.Commit()
}

// ListMessages returns every message in the conversation, oldest first.
// Ties on created_at fall back to insertion order via rowid.
func (s *SQLite) ListMessages(ctx context.Context, conversationID string) ([]chat.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, conversation_id, user_id, role, content, created_at
        FROM messages
        WHERE conversation_id = ?
        ORDER BY created_at ASC, rowid ASC`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]chat.Message, 0)
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.UserID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

package generate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/morningistar/study-buddy/internal/model/chat"
)

type fakeChats struct {
	mu      sync.Mutex
	history []chat.Message
	replies []string

	transcriptErr error
}

func (f *fakeChats) Transcript(_ context.Context, conversationID string) ([]chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.transcriptErr != nil {
		return nil, f.transcriptErr
	}
	return append([]chat.Message(nil), f.history...), nil
}

func (f *fakeChats) AppendAssistantReply(_ context.Context, conversationID, content string) (chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, content)
	return chat.Message{ConversationID: conversationID, Role: chat.RoleAssistant, Content: content}, nil
}

func (f *fakeChats) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.replies...)
}

type fakeCompleter struct {
	text string
	err  error
}

func (f *fakeCompleter) Complete(context.Context, []chat.Message) (string, error) {
	return f.text, f.err
}

func TestProcessSuccessPersistsReply(t *testing.T) {
	chats := &fakeChats{history: []chat.Message{{Role: chat.RoleUser, Content: "How do I write a thesis statement?"}}}
	pool := NewPool(chats, &fakeCompleter{text: "Start by..."}, 1, 4, zap.NewNop())

	pool.process(context.Background(), Job{ConversationID: "c1"})

	replies := chats.recorded()
	if len(replies) != 1 {
		t.Fatalf("expected exactly one assistant reply, got %d", len(replies))
	}
	if replies[0] != "Start by..." {
		t.Fatalf("unexpected reply text: %q", replies[0])
	}
}

func TestProcessProviderErrorPersistsApology(t *testing.T) {
	chats := &fakeChats{}
	pool := NewPool(chats, &fakeCompleter{err: errors.New("dial tcp: network is unreachable")}, 1, 4, zap.NewNop())

	pool.process(context.Background(), Job{ConversationID: "c1"})

	replies := chats.recorded()
	if len(replies) != 1 {
		t.Fatalf("expected exactly one assistant reply, got %d", len(replies))
	}
	reply := strings.ToLower(replies[0])
	if !strings.Contains(reply, "reach") {
		t.Fatalf("expected connectivity wording, got %q", replies[0])
	}
	if strings.Contains(reply, "breather") {
		t.Fatalf("got rate-limit wording for a connectivity failure: %q", replies[0])
	}
}

func TestProcessRateLimitWording(t *testing.T) {
	chats := &fakeChats{}
	pool := NewPool(chats, &fakeCompleter{err: errors.New("rate limit exceeded")}, 1, 4, zap.NewNop())

	pool.process(context.Background(), Job{ConversationID: "c1"})

	replies := chats.recorded()
	if len(replies) != 1 {
		t.Fatalf("expected exactly one assistant reply, got %d", len(replies))
	}
	if !strings.Contains(strings.ToLower(replies[0]), "breather") {
		t.Fatalf("expected rate-limit wording, got %q", replies[0])
	}
}

func TestProcessTranscriptErrorWritesNothing(t *testing.T) {
	chats := &fakeChats{transcriptErr: errors.New("boom")}
	pool := NewPool(chats, &fakeCompleter{text: "unused"}, 1, 4, zap.NewNop())

	pool.process(context.Background(), Job{ConversationID: "c1"})

	if replies := chats.recorded(); len(replies) != 0 {
		t.Fatalf("expected no reply when the transcript cannot be loaded, got %v", replies)
	}
}

func TestScheduleQueueFull(t *testing.T) {
	chats := &fakeChats{}
	pool := NewPool(chats, &fakeCompleter{text: "x"}, 1, 1, zap.NewNop())
	// Workers not started; the single buffer slot fills immediately.

	if err := pool.Schedule("c1"); err != nil {
		t.Fatalf("first Schedule err: %v", err)
	}
	if err := pool.Schedule("c2"); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestPoolEndToEnd(t *testing.T) {
	chats := &fakeChats{history: []chat.Message{{Role: chat.RoleUser, Content: "hello"}}}
	pool := NewPool(chats, &fakeCompleter{text: "hi there"}, 2, 8, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	if err := pool.Schedule("c1"); err != nil {
		t.Fatalf("Schedule err: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if len(chats.recorded()) == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for the worker to persist a reply")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	pool.Wait()
}

package ai

import (
	"testing"

	"github.com/tmc/langchaingo/llms"

	"github.com/morningistar/study-buddy/internal/model/chat"
)

func TestBuildPromptMapsRolesInOrder(t *testing.T) {
	history := []chat.Message{
		{Role: chat.RoleUser, Content: "How do I write a thesis statement?"},
		{Role: chat.RoleAssistant, Content: "Start by..."},
		{Role: chat.RoleUser, Content: "Can you give an example?"},
	}

	messages := BuildPrompt(history)

	if len(messages) != len(history)+1 {
		t.Fatalf("expected %d prompt messages, got %d", len(history)+1, len(messages))
	}
	if messages[0].Role != llms.ChatMessageTypeSystem {
		t.Fatalf("first message must be the system instruction, got %s", messages[0].Role)
	}

	wantRoles := []llms.ChatMessageType{
		llms.ChatMessageTypeHuman,
		llms.ChatMessageTypeAI,
		llms.ChatMessageTypeHuman,
	}
	for i, want := range wantRoles {
		if messages[i+1].Role != want {
			t.Fatalf("history position %d: got role %s want %s", i, messages[i+1].Role, want)
		}
	}
}

func TestBuildPromptEmptyHistory(t *testing.T) {
	messages := BuildPrompt(nil)
	if len(messages) != 1 {
		t.Fatalf("expected only the system instruction, got %d messages", len(messages))
	}
}

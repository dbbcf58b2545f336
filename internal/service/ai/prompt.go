package ai

import (
	"github.com/tmc/langchaingo/llms"

	"github.com/morningistar/study-buddy/internal/model/chat"
)

// systemPrompt fixes the tutor's persona and response style for every
// conversation.
const systemPrompt = `You are Study Buddy, a friendly tutoring assistant for undergraduate students in the humanities.

Guidelines:
- Explain concepts clearly and accessibly, assuming an intelligent reader who is new to the topic.
- Prefer guiding questions over giving answers away when the student is working on an assignment.
- Keep responses focused and reasonably short; use short paragraphs or bullet points rather than walls of text.
- When discussing sources or citations, encourage going back to primary texts.
- Be encouraging. Acknowledge effort before correcting mistakes.
- If you are unsure about a factual claim, say so rather than guessing.`

// BuildPrompt maps a conversation history onto the provider's message
// vocabulary, prefixed with the fixed system instruction. Roles carry over
// unchanged: "user" turns become human messages, "assistant" turns become
// AI messages.
func BuildPrompt(history []chat.Message) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(history)+1)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt))

	for _, m := range history {
		switch m.Role {
		case chat.RoleUser:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, m.Content))
		case chat.RoleAssistant:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeAI, m.Content))
		}
	}

	return messages
}

package ai

import "strings"

// Apology texts persisted as the assistant's reply when generation fails.
// The failure itself is never surfaced to the user.
const (
	fallbackRateLimited = "I'm getting a lot of questions right now and need a short breather. Please try sending your message again in a minute."

	fallbackConnectivity = "I'm having trouble reaching my knowledge source at the moment. Please check back shortly and resend your question."

	fallbackGeneric = "Sorry, something went wrong while I was thinking about your question. Please try sending it again."
)

// FallbackMessage selects user-facing apology wording by a coarse keyword
// classification of the failure's description.
func FallbackMessage(err error) string {
	if err == nil {
		return fallbackGeneric
	}

	desc := strings.ToLower(err.Error())
	switch {
	case strings.Contains(desc, "rate limit") || strings.Contains(desc, "429"):
		return fallbackRateLimited
	case strings.Contains(desc, "network") || strings.Contains(desc, "connection") || strings.Contains(desc, "timeout"):
		return fallbackConnectivity
	default:
		return fallbackGeneric
	}
}

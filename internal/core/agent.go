package core

import "context"

// ChatAgent abstracts the conversational agent joining a lobby.
// The hub serializes all calls for a given lobby on that lobby's worker,
// so implementations do not need to be safe for concurrent use.
type ChatAgent interface {
	// Initialize primes the agent with the member roster, discussion
	// topic, display name and assertiveness level. It must be called
	// exactly once, before any other method.
	Initialize(ctx context.Context, roster []string, topic, name string, assertiveness int) error

	// OpeningQuestion returns the message the agent opens the
	// discussion with.
	OpeningQuestion(ctx context.Context) (string, error)

	// OnUserMessage hands a user message to the agent. An empty reply
	// means the agent chose to stay silent.
	OnUserMessage(ctx context.Context, sender, text string) (string, error)

	// Name is the display name replies are attributed to.
	Name() string
}

// AgentFactory produces a fresh agent instance for a lobby.
type AgentFactory func() ChatAgent

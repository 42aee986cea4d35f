// Package agent provides the OpenAI-backed conversational agent that
// joins a lobby and drives a structured discussion.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultModel = "gpt-4o-mini"

// maxHistory bounds retained conversation turns; the system prompt is
// always kept.
const maxHistory = 60

// Config holds OpenAI connection settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAI is a ChatAgent implementation over the chat completions API.
// The hub serializes calls per lobby, so no internal locking is needed.
type OpenAI struct {
	client        openai.Client
	model         string
	name          string
	assertiveness int
	history       []openai.ChatCompletionMessageParamUnion
	sinceReply    int
}

// NewOpenAI builds an uninitialized agent from connection settings.
func NewOpenAI(cfg Config) *OpenAI {
	opts := []option.RequestOption{}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// Initialize primes the prompt with the roster, topic and behavior
// settings. No network call is made until OpeningQuestion.
func (a *OpenAI) Initialize(_ context.Context, roster []string, topic, name string, assertiveness int) error {
	if len(roster) == 0 {
		return fmt.Errorf("agent needs at least one participant")
	}
	if name == "" {
		name = "Bot"
	}
	if assertiveness < 1 {
		assertiveness = 1
	}
	if assertiveness > 5 {
		assertiveness = 5
	}

	a.name = name
	a.assertiveness = assertiveness
	a.history = []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt(roster, topic, name, assertiveness)),
	}
	return nil
}

// OpeningQuestion asks the model for the message that opens the
// discussion.
func (a *OpenAI) OpeningQuestion(ctx context.Context) (string, error) {
	return a.complete(ctx, openai.UserMessage(
		"Open the discussion now with a single engaging question for the group."))
}

// OnUserMessage records the message and replies when the gating rules
// say the agent should speak. An empty reply means it stays silent.
func (a *OpenAI) OnUserMessage(ctx context.Context, sender, text string) (string, error) {
	a.append(openai.UserMessage(fmt.Sprintf("%s: %s", sender, text)))
	if !a.shouldReply(text) {
		return "", nil
	}
	return a.complete(ctx)
}

// Name is the display name replies are attributed to.
func (a *OpenAI) Name() string {
	return a.name
}

// shouldReply gates how often the agent speaks: always when addressed
// by name, otherwise after every max(1, 6-assertiveness) messages.
func (a *OpenAI) shouldReply(text string) bool {
	if strings.Contains(strings.ToLower(text), strings.ToLower(a.name)) {
		return true
	}
	a.sinceReply++
	return a.sinceReply >= a.replyEvery()
}

func (a *OpenAI) replyEvery() int {
	every := 6 - a.assertiveness
	if every < 1 {
		every = 1
	}
	return every
}

func (a *OpenAI) complete(ctx context.Context, extra ...openai.ChatCompletionMessageParamUnion) (string, error) {
	messages := append(append([]openai.ChatCompletionMessageParamUnion{}, a.history...), extra...)

	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(a.model),
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	a.append(extra...)
	a.append(openai.AssistantMessage(reply))
	a.sinceReply = 0
	return reply, nil
}

func (a *OpenAI) append(messages ...openai.ChatCompletionMessageParamUnion) {
	a.history = append(a.history, messages...)
	if len(a.history) > maxHistory {
		// Keep the system prompt, trim the oldest turns.
		trimmed := len(a.history) - maxHistory
		a.history = append(a.history[:1], a.history[1+trimmed:]...)
	}
}

func systemPrompt(roster []string, topic, name string, assertiveness int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a discussion facilitator in a small group chat.\n", name)
	fmt.Fprintf(&b, "Participants: %s.\n", strings.Join(roster, ", "))
	if topic != "" {
		fmt.Fprintf(&b, "The discussion topic is: %s.\n", topic)
	}
	fmt.Fprintf(&b, "Assertiveness level: %d of 5. Higher means you interject more often and steer harder.\n", assertiveness)
	b.WriteString("Keep replies short and conversational. Ask follow-up questions, ")
	b.WriteString("draw quiet participants in by name, and keep the group on topic.")
	return b.String()
}

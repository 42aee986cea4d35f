package core

import (
	"context"
	"testing"
	"time"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// mustNoEvent asserts that no event of the given kind arrives within the
// window. Other kinds are discarded.
func mustNoEvent(t *testing.T, ch <-chan *Event, kind EventKind, window time.Duration) {
	t.Helper()

	deadline := time.Now().Add(window)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event of kind %v: %+v", kind, ev)
			}
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
}

// scriptedAgent is a deterministic in-memory ChatAgent for hub tests.
type scriptedAgent struct {
	name    string
	opening string
	replies map[string]string
	delays  map[string]time.Duration
	initErr error
	delay   time.Duration
}

func (a *scriptedAgent) Initialize(ctx context.Context, _ []string, _, name string, _ int) error {
	if a.initErr != nil {
		return a.initErr
	}
	a.name = name
	if err := a.wait(ctx); err != nil {
		return err
	}
	return nil
}

func (a *scriptedAgent) OpeningQuestion(ctx context.Context) (string, error) {
	if err := a.wait(ctx); err != nil {
		return "", err
	}
	if a.opening == "" {
		return "What does everyone think?", nil
	}
	return a.opening, nil
}

func (a *scriptedAgent) OnUserMessage(ctx context.Context, _, text string) (string, error) {
	delay := a.delay
	if d, ok := a.delays[text]; ok {
		delay = d
	}
	if err := a.waitFor(ctx, delay); err != nil {
		return "", err
	}
	return a.replies[text], nil
}

func (a *scriptedAgent) Name() string {
	return a.name
}

func (a *scriptedAgent) wait(ctx context.Context) error {
	return a.waitFor(ctx, a.delay)
}

func (a *scriptedAgent) waitFor(ctx context.Context, delay time.Duration) error {
	if delay == 0 {
		return nil
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// stuckAgent parks every reply until released, keeping the lobby worker
// occupied for as long as a test needs.
type stuckAgent struct {
	name    string
	entered chan struct{}
	release chan struct{}
}

func (a *stuckAgent) Initialize(_ context.Context, _ []string, _, name string, _ int) error {
	a.name = name
	return nil
}

func (a *stuckAgent) OpeningQuestion(context.Context) (string, error) {
	return "hi", nil
}

func (a *stuckAgent) OnUserMessage(ctx context.Context, _, _ string) (string, error) {
	select {
	case a.entered <- struct{}{}:
	default:
	}
	select {
	case <-a.release:
		return "", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (a *stuckAgent) Name() string {
	return a.name
}

func newTestHub(t *testing.T, factory AgentFactory) *Hub {
	t.Helper()

	if factory == nil {
		factory = func() ChatAgent { return &scriptedAgent{} }
	}
	hub := NewHub(NewRegistry(4), factory, time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	return hub
}

// createTestLobby drives the create flow and returns the lobby code.
func createTestLobby(t *testing.T, hub *Hub, host *Client) string {
	t.Helper()

	host.Commands <- &Command{Kind: CommandCreateLobby, Username: host.Name}
	ev := mustEvent(t, host.Events, EventLobbyCreated)
	if ev.Lobby == "" {
		t.Fatal("lobby created without a code")
	}
	return ev.Lobby
}

func newTestClient(t *testing.T, hub *Hub, name string) *Client {
	t.Helper()

	c := NewClient(name + "-conn")
	c.Name = name
	hub.RegisterClient(c)
	return c
}

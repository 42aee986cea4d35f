package core

// Client is a connected participant as seen by the core layer.
// Name is bound by the hub once the first command carrying a username
// arrives; the hub goroutine is its only writer.
type Client struct {
	ID       string
	Name     string
	Commands chan *Command
	Events   chan *Event
}

// NewClient constructs a client with initialized channels.
func NewClient(id string) *Client {
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 32),
	}
}

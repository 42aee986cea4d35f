package core

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

type clientCommand struct {
	client *Client
	cmd    *Command
}

// Hub owns all lobby state and processes every inbound command on a
// single goroutine. Joins, leaves and start requests therefore never
// race; only agent round-trips run elsewhere, serialized per lobby on
// that lobby's worker.
type Hub struct {
	registry     *Registry
	newAgent     AgentFactory
	agentTimeout time.Duration
	log          zerolog.Logger

	commands   chan clientCommand
	register   chan *Client
	unregister chan *Client
}

// NewHub builds a hub around an injectable registry and agent factory.
// A nil logger disables hub logging.
func NewHub(registry *Registry, newAgent AgentFactory, agentTimeout time.Duration, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if agentTimeout <= 0 {
		agentTimeout = 30 * time.Second
	}
	return &Hub{
		registry:     registry,
		newAgent:     newAgent,
		agentTimeout: agentTimeout,
		log:          *logger,
		commands:     make(chan clientCommand, 64),
		register:     make(chan *Client, 8),
		unregister:   make(chan *Client, 8),
	}
}

// Registry exposes the lobby registry for read-only queries.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// RegisterClient attaches a connection to the hub.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

// UnregisterClient detaches a connection and cleans up its memberships.
// This is the disconnect signal: the identity leaves every lobby it
// belonged to, and emptied lobbies are destroyed.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// Run processes commands until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			go h.pump(ctx, c)
		case c := <-h.unregister:
			h.disconnectCleanup(c)
		case cc := <-h.commands:
			h.dispatch(cc.client, cc.cmd)
		}
	}
}

// pump forwards one client's commands into the hub loop. It exits when
// the client's command channel is closed or the hub stops.
func (h *Hub) pump(ctx context.Context, c *Client) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-c.Commands:
			if !ok {
				return
			}
			select {
			case h.commands <- clientCommand{client: c, cmd: cmd}:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (h *Hub) dispatch(c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandCreateLobby:
		h.createLobby(c, cmd)
	case CommandJoinLobby:
		h.joinLobby(c, cmd)
	case CommandJoinRoom:
		h.joinRoom(c, cmd)
	case CommandLobbyMessage:
		h.lobbyMessage(c, cmd)
	case CommandGetHostName:
		h.getHostName(c, cmd)
	case CommandUpdateBotSettings:
		h.updateBotSettings(c, cmd)
	case CommandGetUserList:
		h.getUserList(c, cmd)
	case CommandLeaveLobby:
		h.leaveLobby(c, cmd)
	default:
		h.sendTo(c, &Event{Kind: EventError, Error: coreError(ErrCodeBadRequest, "unknown command")})
	}
}

func (h *Hub) createLobby(c *Client, cmd *Command) {
	if cmd.Username == "" {
		h.sendTo(c, &Event{Kind: EventLobbyError, Error: coreError(ErrCodeBadRequest, "username is required")})
		return
	}
	c.Name = cmd.Username

	lobby := h.registry.Create(cmd.Username, c)
	h.log.Info().Str("lobby", lobby.Code).Str("host", cmd.Username).Msg("lobby created")
	h.sendTo(c, &Event{Kind: EventLobbyCreated, Lobby: lobby.Code})
}

func (h *Hub) joinLobby(c *Client, cmd *Command) {
	lobby := h.registry.Get(cmd.Lobby)
	if lobby == nil {
		h.sendTo(c, &Event{Kind: EventLobbyError, Lobby: cmd.Lobby, Error: coreError(ErrCodeLobbyNotFound, "error joining lobby")})
		return
	}
	if !lobby.AddMember(cmd.Username, c) {
		h.sendTo(c, &Event{Kind: EventLobbyError, Lobby: cmd.Lobby, Error: coreError(ErrCodeAlreadyMember, "error joining lobby")})
		return
	}
	c.Name = cmd.Username

	h.log.Debug().Str("lobby", lobby.Code).Str("user", cmd.Username).Msg("user joined lobby")
	h.sendTo(c, &Event{Kind: EventJoinedLobby, Lobby: lobby.Code})
	lobby.Broadcast(&Event{Kind: EventUserJoinedLobby, Lobby: lobby.Code, User: cmd.Username})
}

// joinRoom admits a lobby member into the chatroom view. The member's
// status is checked but not changed, mirroring the two-step lobby-then-
// chatroom entry flow.
func (h *Hub) joinRoom(c *Client, cmd *Command) {
	lobby := h.registry.Get(cmd.Lobby)
	if lobby == nil {
		h.sendTo(c, &Event{Kind: EventChatroomError, Lobby: cmd.Lobby, Error: coreError(ErrCodeLobbyNotFound, "error joining room")})
		return
	}
	status, ok := lobby.MemberStatus(cmd.Username)
	if !ok || status != MemberPending {
		h.sendTo(c, &Event{Kind: EventChatroomError, Lobby: cmd.Lobby, Error: coreError(ErrCodeBadRequest, "error joining room")})
		return
	}
	h.sendTo(c, &Event{Kind: EventJoinedChatroom, Lobby: lobby.Code})
}

// lobbyMessage broadcasts a message and pipes it through the agent.
// Broadcast and agent round-trip run as one job on the lobby worker, so
// accepted messages reach members in acceptance order and the agent's
// reply to a message lands before the next message.
func (h *Hub) lobbyMessage(c *Client, cmd *Command) {
	lobby := h.registry.Get(cmd.Lobby)
	if lobby == nil {
		h.sendTo(c, &Event{Kind: EventLobbyError, Lobby: cmd.Lobby, Error: coreError(ErrCodeLobbyNotFound, "lobby not found")})
		return
	}

	msg := cmd.Message
	msg.Lobby = lobby.Code
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	queued := lobby.enqueue(func() {
		lobby.Broadcast(&Event{Kind: EventRoomMessage, Lobby: lobby.Code, Message: msg})

		agent, up := lobby.Agent()
		if !up {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), h.agentTimeout)
		defer cancel()

		reply, err := agent.OnUserMessage(ctx, msg.Sender, msg.Text)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				h.log.Warn().Str("lobby", lobby.Code).Msg("agent reply timed out")
				h.sendTo(c, &Event{Kind: EventError, Lobby: lobby.Code, Error: coreError(ErrCodeAgentTimeout, "agent reply timed out")})
				return
			}
			h.log.Warn().Err(err).Str("lobby", lobby.Code).Msg("agent reply failed")
			return
		}
		if reply == "" {
			return
		}
		lobby.Broadcast(&Event{Kind: EventRoomMessage, Lobby: lobby.Code, Message: Message{
			Lobby:     lobby.Code,
			Sender:    agent.Name(),
			Text:      reply,
			CreatedAt: time.Now(),
		}})
	})
	if !queued {
		h.sendTo(c, &Event{Kind: EventError, Lobby: lobby.Code, Error: coreError(ErrCodeRoomBusy, "too many pending messages")})
	}
}

func (h *Hub) getHostName(c *Client, cmd *Command) {
	lobby := h.registry.Get(cmd.Lobby)
	if lobby == nil {
		h.sendTo(c, &Event{Kind: EventHostName, Lobby: cmd.Lobby, Error: coreError(ErrCodeLobbyNotFound, "lobby not found")})
		return
	}
	h.sendTo(c, &Event{Kind: EventHostName, Lobby: lobby.Code, User: lobby.Host})
}

// updateBotSettings starts the conversation. The start claim is taken
// on the hub goroutine, so racing start requests construct exactly one
// agent; repeated calls once the agent is live are no-ops.
func (h *Hub) updateBotSettings(c *Client, cmd *Command) {
	lobby := h.registry.Get(cmd.Lobby)
	if lobby == nil {
		h.sendTo(c, &Event{Kind: EventLobbyError, Lobby: cmd.Lobby, Error: coreError(ErrCodeLobbyNotFound, "lobby not found")})
		return
	}
	if !lobby.beginStart() {
		return
	}

	roster := lobby.Roster()
	settings := cmd.Settings

	queued := lobby.enqueue(func() {
		agent := h.newAgent()

		ctx, cancel := context.WithTimeout(context.Background(), h.agentTimeout)
		defer cancel()

		err := agent.Initialize(ctx, roster, settings.Topic, settings.BotName, settings.Assertiveness)
		var opening string
		if err == nil {
			opening, err = agent.OpeningQuestion(ctx)
		}
		if err != nil {
			lobby.abortStart()
			code := ErrCodeAgentInitFailed
			if errors.Is(err, context.DeadlineExceeded) {
				code = ErrCodeAgentTimeout
			}
			h.log.Error().Err(err).Str("lobby", lobby.Code).Msg("agent initialization failed")
			h.sendTo(c, &Event{Kind: EventError, Lobby: lobby.Code, Error: coreError(code, "failed to start the conversation")})
			return
		}

		lobby.finishStart(agent)
		h.log.Info().Str("lobby", lobby.Code).Str("bot", agent.Name()).Msg("conversation started")

		lobby.Broadcast(&Event{Kind: EventChatStarted, Lobby: lobby.Code})
		lobby.Broadcast(&Event{Kind: EventRoomMessage, Lobby: lobby.Code, Message: Message{
			Lobby:     lobby.Code,
			Sender:    agent.Name(),
			Text:      opening,
			CreatedAt: time.Now(),
		}})
	})
	if !queued {
		lobby.abortStart()
		h.sendTo(c, &Event{Kind: EventError, Lobby: lobby.Code, Error: coreError(ErrCodeRoomBusy, "too many pending messages")})
	}
}

func (h *Hub) getUserList(c *Client, cmd *Command) {
	lobby := h.registry.Get(cmd.Lobby)
	if lobby == nil {
		h.sendTo(c, &Event{Kind: EventUserList, Lobby: cmd.Lobby, Error: coreError(ErrCodeLobbyNotFound, "lobby not found")})
		return
	}
	h.sendTo(c, &Event{Kind: EventUserList, Lobby: lobby.Code, Users: lobby.Roster()})
}

// leaveLobby removes a member; a missing lobby or member is a silent
// no-op. The lobby is destroyed the moment it empties.
func (h *Hub) leaveLobby(c *Client, cmd *Command) {
	lobby := h.registry.Get(cmd.Lobby)
	if lobby == nil {
		return
	}
	if !lobby.RemoveMember(cmd.Username) {
		return
	}

	h.sendTo(c, &Event{Kind: EventLeftLobby, Lobby: lobby.Code})
	lobby.Broadcast(&Event{Kind: EventUserLeftLobby, Lobby: lobby.Code, User: cmd.Username})

	if lobby.Empty() {
		h.removeLobby(lobby)
	}
}

// disconnectCleanup applies leave semantics for a severed connection in
// every lobby it participated in. The full-registry scan is deliberate:
// no reverse index is kept at this scale.
func (h *Hub) disconnectCleanup(c *Client) {
	for _, lobby := range h.registry.Snapshot() {
		username, ok := lobby.RemoveClient(c)
		if !ok {
			continue
		}
		h.log.Debug().Str("lobby", lobby.Code).Str("user", username).Msg("member disconnected")
		lobby.Broadcast(&Event{Kind: EventUserLeftLobby, Lobby: lobby.Code, User: username})
		if lobby.Empty() {
			h.removeLobby(lobby)
		}
	}
}

func (h *Hub) removeLobby(lobby *Lobby) {
	h.registry.Remove(lobby.Code)
	lobby.close()
	h.log.Info().Str("lobby", lobby.Code).Msg("lobby destroyed")
}

// sendTo delivers an event to a single connection, dropping it if the
// client's buffer is full.
func (h *Hub) sendTo(c *Client, event *Event) {
	select {
	case c.Events <- event:
	default:
	}
}

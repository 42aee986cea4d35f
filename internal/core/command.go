package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandCreateLobby creates a new lobby with the sender as host.
	CommandCreateLobby CommandKind = iota
	// CommandJoinLobby adds the sender to an existing lobby.
	CommandJoinLobby
	// CommandJoinRoom admits a lobby member into the chatroom view.
	CommandJoinRoom
	// CommandLobbyMessage delivers a chat message to lobby members.
	CommandLobbyMessage
	// CommandGetHostName asks for the lobby host's name.
	CommandGetHostName
	// CommandUpdateBotSettings starts the conversation and the bot.
	CommandUpdateBotSettings
	// CommandGetUserList asks for the lobby's member list.
	CommandGetUserList
	// CommandLeaveLobby removes the sender from a lobby.
	CommandLeaveLobby
)

// BotSettings configures the conversational agent for a lobby.
type BotSettings struct {
	Topic         string
	BotName       string
	Assertiveness int
}

// Command represents an action requested by a client.
type Command struct {
	Kind     CommandKind
	Lobby    string
	Username string
	Message  Message
	Settings BotSettings
}

package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventLobbyCreated confirms lobby creation to the host.
	EventLobbyCreated EventKind = iota
	// EventJoinedLobby confirms a join to the joining client.
	EventJoinedLobby
	// EventJoinedChatroom confirms chatroom admission to the client.
	EventJoinedChatroom
	// EventUserJoinedLobby notifies a lobby about a new member.
	EventUserJoinedLobby
	// EventRoomMessage notifies lobby members about a chat message.
	EventRoomMessage
	// EventChatStarted notifies lobby members the conversation started.
	EventChatStarted
	// EventHostName answers a host name query.
	EventHostName
	// EventUserList answers a member list query.
	EventUserList
	// EventUserLeftLobby notifies a lobby that a member left.
	EventUserLeftLobby
	// EventLeftLobby confirms a leave to the leaving client.
	EventLeftLobby
	// EventLobbyError reports a lobby-scoped error to one client.
	EventLobbyError
	// EventChatroomError reports a chatroom admission error to one client.
	EventChatroomError
	// EventError reports any other domain error to one client.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind    EventKind
	Lobby   string
	User    string
	Users   []string
	Message Message
	Error   *CoreError
}

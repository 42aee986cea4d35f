package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeCreateLobby       = "createLobby"
	InboundTypeJoinLobby         = "joinLobby"
	InboundTypeJoinRoom          = "joinRoom"
	InboundTypeLobbyMessage      = "lobbyMessage"
	InboundTypeGetHostName       = "getHostName"
	InboundTypeUpdateBotSettings = "updateBotSettings"
	InboundTypeGetUserList       = "getUserListOfLobby"
	InboundTypeLeaveLobby        = "leaveLobby"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventLobbyCreated     = "lobbyCreated"
	EventJoinedLobby      = "joinedLobby"
	EventLobbyError       = "lobbyError"
	EventJoinedChatroom   = "joinedChatroom"
	EventChatroomError    = "chatroomError"
	EventUserJoinedLobby  = "userJoinedLobby"
	EventMessage          = "message"
	EventHostNameResponse = "hostNameResponse"
	EventUserListResponse = "userListOfLobbyResponse"
	EventUserLeftLobby    = "userLeftLobby"
	EventLeftLobby        = "leftLobby"
	EventChatStarted      = "chatStarted"
)

// CreateLobbyData opens a new lobby hosted by the sender.
type CreateLobbyData struct {
	Username string `json:"username"`
}

// JoinData targets a lobby, used by join, joinRoom and leave requests.
type JoinData struct {
	Lobby    string `json:"lobbyId"`
	Username string `json:"username"`
}

// LobbyRefData targets a lobby for read-only queries.
type LobbyRefData struct {
	Lobby string `json:"lobbyId"`
}

// MessageData is a chat message from the client.
type MessageData struct {
	Lobby  string `json:"lobbyId"`
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// BotSettingsData starts the conversation with the given bot settings.
type BotSettingsData struct {
	Lobby         string `json:"lobbyId"`
	Topic         string `json:"topic"`
	BotName       string `json:"botname"`
	Assertiveness int    `json:"assertiveness"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// LobbyRef carries a lobby code in acknowledgment events.
type LobbyRef struct {
	Lobby string `json:"lobbyId"`
}

// UserEvent notifies that a user joined or left a lobby.
type UserEvent struct {
	Lobby string `json:"lobbyId"`
	User  string `json:"username"`
}

// EventMessagePayload is a broadcast chat message.
type EventMessagePayload struct {
	Lobby  string `json:"lobbyId"`
	Sender string `json:"sender"`
	Text   string `json:"text"`
	TS     int64  `json:"ts"`
}

// HostNameResponse answers a getHostName query.
type HostNameResponse struct {
	HostName string `json:"hostName,omitempty"`
	Error    string `json:"error,omitempty"`
}

// UserListResponse answers a getUserListOfLobby query.
type UserListResponse struct {
	UserList []string `json:"userList,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

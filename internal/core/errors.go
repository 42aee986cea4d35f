package core

// Error codes for domain errors.
const (
	ErrCodeLobbyNotFound   = "lobby_not_found"
	ErrCodeAlreadyMember   = "already_member"
	ErrCodeBadRequest      = "bad_request"
	ErrCodeAgentInitFailed = "agent_init_failed"
	ErrCodeAgentTimeout    = "agent_timeout"
	ErrCodeRoomBusy        = "room_busy"
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

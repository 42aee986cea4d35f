package core

import (
	"sync"

	"github.com/zhenyao-cai/EduChatbot/internal/utils"
)

// DefaultCodeLength matches the original 4-character room codes.
const DefaultCodeLength = 4

// Registry is the process-wide map from lobby code to live session.
// It is owned by the hub instance rather than being package state, so
// tests can run independent registries side by side.
type Registry struct {
	mu         sync.RWMutex
	lobbies    map[string]*Lobby
	codeLength int
}

// NewRegistry builds an empty registry generating codes of the given
// length; zero or negative falls back to DefaultCodeLength.
func NewRegistry(codeLength int) *Registry {
	if codeLength <= 0 {
		codeLength = DefaultCodeLength
	}
	return &Registry{
		lobbies:    make(map[string]*Lobby),
		codeLength: codeLength,
	}
}

// Create allocates a fresh code, seeds the lobby with its host and
// starts the lobby worker. Generation retries until an unused code is
// found; with ~1.6M four-character codes collisions are momentary.
func (r *Registry) Create(host string, hostClient *Client) *Lobby {
	r.mu.Lock()
	defer r.mu.Unlock()

	code := utils.RoomCode(r.codeLength)
	for {
		if _, taken := r.lobbies[code]; !taken {
			break
		}
		code = utils.RoomCode(r.codeLength)
	}

	lobby := newLobby(code, host, hostClient)
	r.lobbies[code] = lobby
	return lobby
}

// Get returns the lobby for a code, or nil when absent.
func (r *Registry) Get(code string) *Lobby {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lobbies[code]
}

// Remove deletes a lobby from the registry.
func (r *Registry) Remove(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lobbies, code)
}

// Snapshot returns all live lobbies, for the disconnect scan.
func (r *Registry) Snapshot() []*Lobby {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lobbies := make([]*Lobby, 0, len(r.lobbies))
	for _, l := range r.lobbies {
		lobbies = append(lobbies, l)
	}
	return lobbies
}

// Len reports the number of live lobbies.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.lobbies)
}

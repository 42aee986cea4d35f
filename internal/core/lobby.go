package core

import (
	"sort"
	"sync"

	"github.com/samber/lo"
)

// Phase is the lifecycle stage of a lobby.
type Phase int

const (
	// PhaseForming accepts joins; the agent has not started.
	PhaseForming Phase = iota
	// PhaseActive means the agent started and the conversation runs.
	PhaseActive
)

// MemberStatus tracks a participant's standing inside a lobby.
type MemberStatus int

const (
	// MemberPending is a lobby member not yet admitted to the chatroom.
	MemberPending MemberStatus = iota
	// MemberAdmitted is reserved for future chatroom-level state.
	MemberAdmitted
)

type member struct {
	status MemberStatus
	client *Client
	seq    int
}

// workQueueSize bounds per-lobby jobs awaiting the agent round-trip.
const workQueueSize = 64

// Lobby is one live room session: its members, phase and agent.
// The hub goroutine drives all mutations; the lobby's worker goroutine
// and read-only HTTP queries share the state, hence the mutex.
type Lobby struct {
	Code string
	Host string

	mu       sync.Mutex
	members  map[string]*member
	nextSeq  int
	phase    Phase
	agent    ChatAgent
	agentUp  bool
	starting bool

	work chan func()
}

func newLobby(code, host string, hostClient *Client) *Lobby {
	l := &Lobby{
		Code:    code,
		Host:    host,
		members: make(map[string]*member),
		work:    make(chan func(), workQueueSize),
	}
	l.members[host] = &member{status: MemberPending, client: hostClient}
	l.nextSeq = 1
	go l.runWorker()
	return l
}

// runWorker executes queued jobs in FIFO order, one at a time. A job is
// a message broadcast plus its agent round-trip, so for one lobby the
// reply to message A is delivered before message B is broadcast.
func (l *Lobby) runWorker() {
	for job := range l.work {
		job()
	}
}

// enqueue schedules a job on the lobby worker. Returns false when the
// queue is full; callers must not block the hub loop on a slow lobby.
func (l *Lobby) enqueue(job func()) bool {
	select {
	case l.work <- job:
		return true
	default:
		return false
	}
}

// close stops the worker once already-queued jobs drain. Called only
// after the lobby is removed from the registry.
func (l *Lobby) close() {
	close(l.work)
}

// AddMember inserts a participant. Returns false if already present.
func (l *Lobby) AddMember(username string, c *Client) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.members[username]; exists {
		return false
	}
	l.members[username] = &member{status: MemberPending, client: c, seq: l.nextSeq}
	l.nextSeq++
	return true
}

// RemoveMember deletes a participant by name. Returns false if absent.
func (l *Lobby) RemoveMember(username string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.members[username]; !exists {
		return false
	}
	delete(l.members, username)
	return true
}

// RemoveClient deletes whichever member entry belongs to the given
// connection. Returns the removed username, or false if none matched.
func (l *Lobby) RemoveClient(c *Client) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for username, m := range l.members {
		if m.client == c {
			delete(l.members, username)
			return username, true
		}
	}
	return "", false
}

// MemberStatus reports a participant's status.
func (l *Lobby) MemberStatus(username string) (MemberStatus, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.members[username]
	if !ok {
		return 0, false
	}
	return m.status, true
}

// Empty returns true if no members remain.
func (l *Lobby) Empty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.members) == 0
}

// Roster returns member names in join order.
func (l *Lobby) Roster() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := lo.Keys(l.members)
	sort.Slice(names, func(i, j int) bool {
		return l.members[names[i]].seq < l.members[names[j]].seq
	})
	return names
}

// Phase reports the lobby's lifecycle stage.
func (l *Lobby) Phase() Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.phase
}

// Agent returns the live agent, if one has been initialized.
func (l *Lobby) Agent() (ChatAgent, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.agent, l.agentUp
}

// beginStart claims the one-shot right to construct the agent. Returns
// false when the agent is already live or a start is in flight, making
// repeated start requests no-ops.
func (l *Lobby) beginStart() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.agentUp || l.starting {
		return false
	}
	l.starting = true
	return true
}

// finishStart stores the initialized agent and activates the lobby.
func (l *Lobby) finishStart(agent ChatAgent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.agent = agent
	l.agentUp = true
	l.starting = false
	l.phase = PhaseActive
}

// abortStart releases the start claim after a failed initialization,
// leaving the lobby in PhaseForming and eligible for retry.
func (l *Lobby) abortStart() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.starting = false
}

// Broadcast sends an event to every member's connection.
func (l *Lobby) Broadcast(event *Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.members {
		select {
		case m.client.Events <- event:
		default:
			// Drop if slow consumer.
		}
	}
}

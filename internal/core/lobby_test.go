package core

import "testing"

func newBareLobby(host string) *Lobby {
	return newLobby("g1", host, NewClient(host+"-conn"))
}

func TestLobbyMembershipAccounting(t *testing.T) {
	lobby := newBareLobby("alice")
	defer lobby.close()

	bob := NewClient("bob-conn")
	if !lobby.AddMember("bob", bob) {
		t.Fatal("adding a new member must succeed")
	}
	if lobby.AddMember("bob", bob) {
		t.Fatal("duplicate add must fail")
	}

	status, ok := lobby.MemberStatus("bob")
	if !ok || status != MemberPending {
		t.Fatalf("expected pending status, got %v/%v", status, ok)
	}

	if !lobby.RemoveMember("bob") {
		t.Fatal("removing an existing member must succeed")
	}
	if lobby.RemoveMember("bob") {
		t.Fatal("removing an absent member must fail")
	}
	if lobby.Empty() {
		t.Fatal("host still present")
	}
	if !lobby.RemoveMember("alice") || !lobby.Empty() {
		t.Fatal("lobby should be empty after the host leaves")
	}
}

func TestLobbyRosterPreservesJoinOrder(t *testing.T) {
	lobby := newBareLobby("alice")
	defer lobby.close()

	lobby.AddMember("carol", NewClient("c"))
	lobby.AddMember("bob", NewClient("b"))

	roster := lobby.Roster()
	want := []string{"alice", "carol", "bob"}
	if len(roster) != len(want) {
		t.Fatalf("unexpected roster: %v", roster)
	}
	for i := range want {
		if roster[i] != want[i] {
			t.Fatalf("roster out of join order: got %v, want %v", roster, want)
		}
	}
}

func TestLobbyRemoveClientByConnection(t *testing.T) {
	lobby := newBareLobby("alice")
	defer lobby.close()

	bob := NewClient("bob-conn")
	lobby.AddMember("bob", bob)

	username, ok := lobby.RemoveClient(bob)
	if !ok || username != "bob" {
		t.Fatalf("expected to remove bob, got %q/%v", username, ok)
	}
	if _, ok := lobby.RemoveClient(bob); ok {
		t.Fatal("second removal must find nothing")
	}
}

func TestLobbyStartGuard(t *testing.T) {
	lobby := newBareLobby("alice")
	defer lobby.close()

	if lobby.Phase() != PhaseForming {
		t.Fatal("new lobby must be forming")
	}
	if !lobby.beginStart() {
		t.Fatal("first start claim must succeed")
	}
	if lobby.beginStart() {
		t.Fatal("start claim while in flight must fail")
	}

	lobby.abortStart()
	if !lobby.beginStart() {
		t.Fatal("start claim after abort must succeed")
	}

	lobby.finishStart(&scriptedAgent{name: "Rex"})
	if lobby.beginStart() {
		t.Fatal("start claim with a live agent must fail")
	}
	if lobby.Phase() != PhaseActive {
		t.Fatal("finishStart must activate the lobby")
	}
	if agent, up := lobby.Agent(); !up || agent.Name() != "Rex" {
		t.Fatal("agent must be stored after finishStart")
	}
}

package http

import (
	"context"
	"encoding/json"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/zhenyao-cai/EduChatbot/internal/config"
	"github.com/zhenyao-cai/EduChatbot/internal/core"
	"github.com/zhenyao-cai/EduChatbot/internal/log"
	"github.com/zhenyao-cai/EduChatbot/internal/proto"
)

type stubAgent struct {
	name string
}

func (a *stubAgent) Initialize(_ context.Context, _ []string, _, name string, _ int) error {
	a.name = name
	return nil
}

func (a *stubAgent) OpeningQuestion(context.Context) (string, error) {
	return "Welcome! What does everyone think?", nil
}

func (a *stubAgent) OnUserMessage(context.Context, string, string) (string, error) {
	return "", nil
}

func (a *stubAgent) Name() string { return a.name }

func startTestServer(t *testing.T) (*httptest.Server, *core.Hub) {
	t.Helper()

	hub := core.NewHub(core.NewRegistry(4), func() core.ChatAgent { return &stubAgent{} }, time.Second, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := NewServer(hub, config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
	}, log.Nop())

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, hub
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestLobbyFlowOverWebSocket(t *testing.T) {
	ts, _ := startTestServer(t)

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"

	ctx, closeCtx := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCtx()

	connA, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial A: %v", err)
	}
	defer connA.Close(websocket.StatusNormalClosure, "done")

	connB, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial B: %v", err)
	}
	defer connB.Close(websocket.StatusNormalClosure, "done")

	send(t, ctx, connA, proto.InboundTypeCreateLobby, proto.CreateLobbyData{Username: "alice"})

	var created proto.LobbyRef
	readEvent(t, ctx, connA, proto.EventLobbyCreated, &created)
	if created.Lobby == "" {
		t.Fatal("lobbyCreated carried no code")
	}

	send(t, ctx, connB, proto.InboundTypeJoinLobby, proto.JoinData{Lobby: created.Lobby, Username: "bob"})

	var joined proto.LobbyRef
	readEvent(t, ctx, connB, proto.EventJoinedLobby, &joined)
	if joined.Lobby != created.Lobby {
		t.Fatalf("joined wrong lobby: %+v", joined)
	}

	var userJoined proto.UserEvent
	readEvent(t, ctx, connA, proto.EventUserJoinedLobby, &userJoined)
	if userJoined.User != "bob" {
		t.Fatalf("unexpected userJoinedLobby: %+v", userJoined)
	}

	send(t, ctx, connB, proto.InboundTypeGetUserList, proto.LobbyRefData{Lobby: created.Lobby})
	var list proto.UserListResponse
	readEvent(t, ctx, connB, proto.EventUserListResponse, &list)
	if len(list.UserList) != 2 || list.UserList[0] != "alice" || list.UserList[1] != "bob" {
		t.Fatalf("unexpected user list: %v", list.UserList)
	}

	send(t, ctx, connA, proto.InboundTypeLobbyMessage, proto.MessageData{
		Lobby:  created.Lobby,
		Sender: "alice",
		Text:   "hi there",
	})

	var msg proto.EventMessagePayload
	readEvent(t, ctx, connB, proto.EventMessage, &msg)
	if msg.Sender != "alice" || msg.Text != "hi there" || msg.Lobby != created.Lobby {
		t.Fatalf("unexpected message payload: %+v", msg)
	}

	send(t, ctx, connA, proto.InboundTypeUpdateBotSettings, proto.BotSettingsData{
		Lobby:         created.Lobby,
		Topic:         "pets",
		BotName:       "Rex",
		Assertiveness: 3,
	})

	readEvent(t, ctx, connB, proto.EventChatStarted, &struct{}{})
	var opening proto.EventMessagePayload
	readEvent(t, ctx, connB, proto.EventMessage, &opening)
	if opening.Sender != "Rex" || opening.Text == "" {
		t.Fatalf("unexpected opening message: %+v", opening)
	}
}

func TestLobbyQueryAPI(t *testing.T) {
	ts, hub := startTestServer(t)

	host := core.NewClient("conn-api")
	host.Name = "alice"
	lobby := hub.Registry().Create("alice", host)

	resp, err := ts.Client().Get(ts.URL + "/api/lobbies/" + lobby.Code + "/members")
	if err != nil {
		t.Fatalf("members request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var members struct {
		Lobby    string   `json:"lobbyId"`
		UserList []string `json:"userList"`
	}
	if err := json.Unmarshal(body, &members); err != nil {
		t.Fatalf("unmarshal members: %v", err)
	}
	if members.Lobby != lobby.Code || len(members.UserList) != 1 || members.UserList[0] != "alice" {
		t.Fatalf("unexpected members payload: %+v", members)
	}

	resp, err = ts.Client().Get(ts.URL + "/api/lobbies/zzzz/host")
	if err != nil {
		t.Fatalf("host request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != stdhttp.StatusNotFound {
		t.Fatalf("expected 404 for unknown lobby, got %d", resp.StatusCode)
	}
}

func send(t *testing.T, ctx context.Context, conn *websocket.Conn, inboundType string, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal %s: %v", inboundType, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: inboundType, Data: payload}); err != nil {
		t.Fatalf("write %s: %v", inboundType, err)
	}
}

// readEvent reads outbound frames until one matches the wanted event
// name, then unmarshals its data into out.
func readEvent(t *testing.T, ctx context.Context, conn *websocket.Conn, event string, out any) {
	t.Helper()

	for {
		var outbound struct {
			Type  string          `json:"type"`
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
			Error *proto.Error    `json:"error"`
		}
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			t.Fatalf("read while waiting for %s: %v", event, err)
		}
		if outbound.Event != event {
			continue
		}
		if outbound.Error != nil {
			t.Fatalf("event %s carried error: %+v", event, outbound.Error)
		}
		if len(outbound.Data) > 0 {
			if err := json.Unmarshal(outbound.Data, out); err != nil {
				t.Fatalf("unmarshal %s data: %v", event, err)
			}
		}
		return
	}
}

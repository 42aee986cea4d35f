// Command ws_chat is an interactive smoke client for the lobby server.
// It creates or joins a lobby, forwards typed lines as lobby messages
// and prints everything broadcast into the room.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/zhenyao-cai/EduChatbot/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:4000/ws", "WebSocket address")
	user := flag.String("user", "cli-user", "username")
	lobby := flag.String("lobby", "", "lobby code to join; empty creates a new lobby")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(inboundType string, data any) {
		payload, marshalErr := json.Marshal(data)
		if marshalErr != nil {
			log.Printf("marshal %s: %v", inboundType, marshalErr)
			return
		}
		if writeErr := wsjson.Write(ctx, conn, proto.Inbound{Type: inboundType, Data: payload}); writeErr != nil {
			cancel()
			log.Printf("send: %v", writeErr)
		}
	}

	currentLobby := *lobby
	if currentLobby == "" {
		send(proto.InboundTypeCreateLobby, proto.CreateLobbyData{Username: *user})
	} else {
		send(proto.InboundTypeJoinLobby, proto.JoinData{Lobby: currentLobby, Username: *user})
	}

	fmt.Printf("Connected to %s as %s\n", *addr, *user)
	fmt.Println("Type messages and press Enter to send. /start <topic> <botname> starts the bot. Ctrl+C to exit.")

	lobbyCh := make(chan string, 1)
	go func() {
		defer cancel()
		readLoop(ctx, conn, lobbyCh)
	}()

	if currentLobby == "" {
		select {
		case currentLobby = <-lobbyCh:
		case <-ctx.Done():
			return nil
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if topic, botname, ok := parseStart(line); ok {
			send(proto.InboundTypeUpdateBotSettings, proto.BotSettingsData{
				Lobby:         currentLobby,
				Topic:         topic,
				BotName:       botname,
				Assertiveness: 3,
			})
			continue
		}
		send(proto.InboundTypeLobbyMessage, proto.MessageData{
			Lobby:  currentLobby,
			Sender: *user,
			Text:   line,
		})
		if ctx.Err() != nil {
			break
		}
	}
	return scanner.Err()
}

func parseStart(line string) (topic, botname string, ok bool) {
	if !strings.HasPrefix(line, "/start") {
		return "", "", false
	}
	fields := strings.Fields(line)
	topic, botname = "general discussion", "Bot"
	if len(fields) > 1 {
		topic = fields[1]
	}
	if len(fields) > 2 {
		botname = fields[2]
	}
	return topic, botname, true
}

func readLoop(ctx context.Context, conn *websocket.Conn, lobbyCh chan<- string) {
	for {
		var outbound struct {
			Type  string          `json:"type"`
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
			Error *proto.Error    `json:"error"`
		}
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Printf("read: %v", err)
			}
			return
		}

		switch outbound.Event {
		case proto.EventLobbyCreated:
			var ref proto.LobbyRef
			if json.Unmarshal(outbound.Data, &ref) == nil {
				fmt.Printf("[lobby created: %s]\n", ref.Lobby)
				select {
				case lobbyCh <- ref.Lobby:
				default:
				}
			}
		case proto.EventMessage:
			var msg proto.EventMessagePayload
			if json.Unmarshal(outbound.Data, &msg) == nil {
				fmt.Printf("%s: %s\n", msg.Sender, msg.Text)
			}
		case proto.EventUserJoinedLobby:
			var ev proto.UserEvent
			if json.Unmarshal(outbound.Data, &ev) == nil {
				fmt.Printf("[%s joined]\n", ev.User)
			}
		case proto.EventUserLeftLobby:
			var ev proto.UserEvent
			if json.Unmarshal(outbound.Data, &ev) == nil {
				fmt.Printf("[%s left]\n", ev.User)
			}
		case proto.EventChatStarted:
			fmt.Println("[chat started]")
		default:
			if outbound.Error != nil {
				fmt.Printf("[error %s: %s]\n", outbound.Error.Code, outbound.Error.Msg)
			}
		}
	}
}

package http

import (
	"encoding/json"
	"time"

	"github.com/zhenyao-cai/EduChatbot/internal/core"
	"github.com/zhenyao-cai/EduChatbot/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeCreateLobby:
		var create proto.CreateLobbyData
		if err := json.Unmarshal(inbound.Data, &create); err != nil {
			return nil, nil, err
		}
		if create.Username == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "username is required"}, nil
		}
		return &core.Command{
			Kind:     core.CommandCreateLobby,
			Username: create.Username,
		}, nil, nil
	case proto.InboundTypeJoinLobby, proto.InboundTypeJoinRoom, proto.InboundTypeLeaveLobby:
		var join proto.JoinData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		if join.Lobby == "" || join.Username == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "lobbyId and username are required"}, nil
		}
		kind := core.CommandJoinLobby
		switch inbound.Type {
		case proto.InboundTypeJoinRoom:
			kind = core.CommandJoinRoom
		case proto.InboundTypeLeaveLobby:
			kind = core.CommandLeaveLobby
		}
		return &core.Command{
			Kind:     kind,
			Lobby:    join.Lobby,
			Username: join.Username,
		}, nil, nil
	case proto.InboundTypeLobbyMessage:
		var msg proto.MessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		if msg.Lobby == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "lobbyId is required"}, nil
		}
		return &core.Command{
			Kind:  core.CommandLobbyMessage,
			Lobby: msg.Lobby,
			Message: core.Message{
				Lobby:     msg.Lobby,
				Sender:    msg.Sender,
				Text:      msg.Text,
				CreatedAt: time.Now(),
			},
		}, nil, nil
	case proto.InboundTypeGetHostName, proto.InboundTypeGetUserList:
		var ref proto.LobbyRefData
		if err := json.Unmarshal(inbound.Data, &ref); err != nil {
			return nil, nil, err
		}
		if ref.Lobby == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "lobbyId is required"}, nil
		}
		kind := core.CommandGetHostName
		if inbound.Type == proto.InboundTypeGetUserList {
			kind = core.CommandGetUserList
		}
		return &core.Command{Kind: kind, Lobby: ref.Lobby}, nil, nil
	case proto.InboundTypeUpdateBotSettings:
		var settings proto.BotSettingsData
		if err := json.Unmarshal(inbound.Data, &settings); err != nil {
			return nil, nil, err
		}
		if settings.Lobby == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "lobbyId is required"}, nil
		}
		return &core.Command{
			Kind:  core.CommandUpdateBotSettings,
			Lobby: settings.Lobby,
			Settings: core.BotSettings{
				Topic:         settings.Topic,
				BotName:       settings.BotName,
				Assertiveness: settings.Assertiveness,
			},
		}, nil, nil
	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventLobbyCreated:
		return eventOutbound(proto.EventLobbyCreated, proto.LobbyRef{Lobby: event.Lobby})
	case core.EventJoinedLobby:
		return eventOutbound(proto.EventJoinedLobby, proto.LobbyRef{Lobby: event.Lobby})
	case core.EventJoinedChatroom:
		return eventOutbound(proto.EventJoinedChatroom, proto.LobbyRef{Lobby: event.Lobby})
	case core.EventUserJoinedLobby:
		return eventOutbound(proto.EventUserJoinedLobby, proto.UserEvent{Lobby: event.Lobby, User: event.User})
	case core.EventUserLeftLobby:
		return eventOutbound(proto.EventUserLeftLobby, proto.UserEvent{Lobby: event.Lobby, User: event.User})
	case core.EventLeftLobby:
		return eventOutbound(proto.EventLeftLobby, proto.LobbyRef{Lobby: event.Lobby})
	case core.EventChatStarted:
		return eventOutbound(proto.EventChatStarted, proto.LobbyRef{Lobby: event.Lobby})
	case core.EventRoomMessage:
		return eventOutbound(proto.EventMessage, proto.EventMessagePayload{
			Lobby:  event.Message.Lobby,
			Sender: event.Message.Sender,
			Text:   event.Message.Text,
			TS:     event.Message.CreatedAt.Unix(),
		})
	case core.EventHostName:
		if event.Error != nil {
			return eventOutbound(proto.EventHostNameResponse, proto.HostNameResponse{Error: event.Error.Message})
		}
		return eventOutbound(proto.EventHostNameResponse, proto.HostNameResponse{HostName: event.User})
	case core.EventUserList:
		if event.Error != nil {
			return eventOutbound(proto.EventUserListResponse, proto.UserListResponse{Error: event.Error.Message})
		}
		return eventOutbound(proto.EventUserListResponse, proto.UserListResponse{UserList: event.Users})
	case core.EventLobbyError:
		return errorOutbound(proto.EventLobbyError, event.Error)
	case core.EventChatroomError:
		return errorOutbound(proto.EventChatroomError, event.Error)
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func eventOutbound(name string, data any) proto.Outbound {
	return proto.Outbound{Type: proto.OutboundTypeEvent, Event: name, Data: data}
}

func errorOutbound(name string, coreErr *core.CoreError) proto.Outbound {
	outErr := &proto.Error{Code: "unknown", Msg: "unknown error"}
	if coreErr != nil {
		outErr = &proto.Error{Code: coreErr.Code, Msg: coreErr.Message}
	}
	return proto.Outbound{Type: proto.OutboundTypeEvent, Event: name, Error: outErr}
}

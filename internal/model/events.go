package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EventName identifies the type of event on the wire
type EventName string

const (
	// Inbound events
	EventCreateRoom   EventName = "create_room"
	EventJoinRoom     EventName = "join_room"
	EventMakeMove     EventName = "make_move"
	EventGameOver     EventName = "game_over"
	EventOfferDraw    EventName = "offer_draw"
	EventDrawResponse EventName = "draw_response"
	EventResignGame   EventName = "resign_game"

	// Outbound events
	EventConnectionEstablished EventName = "connection_established"
	EventRoomCreated           EventName = "room_created"
	EventRoomJoined            EventName = "room_joined"
	EventOpponentJoined        EventName = "opponent_joined"
	EventChessMove             EventName = "chess_move"
	EventGameEnded             EventName = "game_ended"
	EventDrawOffered           EventName = "draw_offered"
	EventOpponentResigned      EventName = "opponent_resigned"
	EventPlayerDisconnected    EventName = "player_disconnected"
	EventError                 EventName = "error"
)

// DefaultPromotion is substituted when a move omits its promotion piece
const DefaultPromotion = "q"

// Envelope is the wire frame for every event in both directions
type Envelope struct {
	Event EventName       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// InboundEvent is an event sent by a client. The set of implementations is closed.
type InboundEvent interface {
	EventName() EventName
	inbound()
}

// CreateRoom asks for a fresh room with the caller seated as white
type CreateRoom struct {
	PlayerName string `json:"player_name"`
}

// JoinRoom asks to take the black seat of an existing room
type JoinRoom struct {
	RoomID     string `json:"room_id"`
	PlayerName string `json:"player_name"`
}

// MoveInput is the client's move; promotion is optional
type MoveInput struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

// MakeMove relays a move to the room
type MakeMove struct {
	Move *MoveInput `json:"move"`
}

// GameOver reports a finished game. Nil fields take their defaults.
type GameOver struct {
	Result *string `json:"result"`
	Winner *string `json:"winner"`
	Reason *string `json:"reason"`
}

// OfferDraw offers a draw to the opponent
type OfferDraw struct{}

// DrawResponse answers a draw offer. Payload keeps every field the client sent.
type DrawResponse struct {
	Accepted bool
	Payload  map[string]json.RawMessage
}

// ResignGame concedes the game to the opponent
type ResignGame struct{}

func (CreateRoom) EventName() EventName   { return EventCreateRoom }
func (JoinRoom) EventName() EventName     { return EventJoinRoom }
func (MakeMove) EventName() EventName     { return EventMakeMove }
func (GameOver) EventName() EventName     { return EventGameOver }
func (OfferDraw) EventName() EventName    { return EventOfferDraw }
func (DrawResponse) EventName() EventName { return EventDrawResponse }
func (ResignGame) EventName() EventName   { return EventResignGame }

func (CreateRoom) inbound()   {}
func (JoinRoom) inbound()     {}
func (MakeMove) inbound()     {}
func (GameOver) inbound()     {}
func (OfferDraw) inbound()    {}
func (DrawResponse) inbound() {}
func (ResignGame) inbound()   {}

// DecodeInbound parses a wire frame into a typed inbound event.
// Unknown event names and payloads that do not fit the schema wrap ErrMalformedEvent.
func DecodeInbound(frame []byte) (InboundEvent, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	data := env.Data
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		data = json.RawMessage("{}")
	}

	switch env.Event {
	case EventCreateRoom:
		var ev CreateRoom
		return decodeInto(env.Event, data, &ev)
	case EventJoinRoom:
		var ev JoinRoom
		return decodeInto(env.Event, data, &ev)
	case EventMakeMove:
		var ev MakeMove
		if _, err := decodeInto(env.Event, data, &ev); err != nil {
			return nil, err
		}
		if ev.Move == nil || ev.Move.From == "" || ev.Move.To == "" {
			return nil, fmt.Errorf("%w: make_move requires move.from and move.to", ErrMalformedEvent)
		}
		return ev, nil
	case EventGameOver:
		var ev GameOver
		return decodeInto(env.Event, data, &ev)
	case EventOfferDraw:
		return OfferDraw{}, nil
	case EventDrawResponse:
		return decodeDrawResponse(data)
	case EventResignGame:
		return ResignGame{}, nil
	case "":
		return nil, fmt.Errorf("%w: missing event name", ErrMalformedEvent)
	default:
		return nil, fmt.Errorf("%w: unknown event %q", ErrMalformedEvent, env.Event)
	}
}

// decodeInto unmarshals data into ev and returns the dereferenced event
func decodeInto[T InboundEvent](name EventName, data json.RawMessage, ev *T) (InboundEvent, error) {
	if err := json.Unmarshal(data, ev); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedEvent, name, err)
	}
	return *ev, nil
}

func decodeDrawResponse(data json.RawMessage) (InboundEvent, error) {
	payload := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: draw_response: %v", ErrMalformedEvent, err)
	}

	// accepted is a JSON boolean on the wire; truthy numbers and strings are
	// rejected rather than guessed at. Absent or null means declined.
	ev := DrawResponse{Payload: payload}
	if raw, ok := payload["accepted"]; ok && !bytes.Equal(raw, []byte("null")) {
		if err := json.Unmarshal(raw, &ev.Accepted); err != nil {
			return nil, fmt.Errorf("%w: draw_response: accepted must be a boolean", ErrMalformedEvent)
		}
	}
	return ev, nil
}

// OutboundEvent is an event sent to a client
type OutboundEvent interface {
	EventName() EventName
}

// ConnectionEstablished acknowledges a new connection
type ConnectionEstablished struct {
	Status string `json:"status"`
}

// RoomCreated tells the creator their invite code
type RoomCreated struct {
	RoomCode    RoomCode  `json:"room_code"`
	PlayerColor Color     `json:"player_color"`
	Status      RoomState `json:"status"`
}

// RoomJoined tells the joiner who they are playing
type RoomJoined struct {
	RoomCode    RoomCode  `json:"room_code"`
	PlayerColor Color     `json:"player_color"`
	Opponent    string    `json:"opponent"`
	Status      RoomState `json:"status"`
}

// OpponentJoined tells the white player who joined
type OpponentJoined struct {
	Opponent string    `json:"opponent"`
	Status   RoomState `json:"status"`
}

// ChessMove is a relayed move
type ChessMove struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion"`
	Player    string `json:"player"`
	Color     Color  `json:"color"`
}

// GameEnded announces the result reported by a client
type GameEnded struct {
	Result string  `json:"result"`
	Winner *string `json:"winner"`
	Reason string  `json:"reason"`
}

// DrawOffered notifies the opponent of a draw offer
type DrawOffered struct{}

// DrawResponseRelayed forwards a draw response verbatim
type DrawResponseRelayed struct {
	Payload map[string]json.RawMessage
}

// MarshalJSON emits the original payload unchanged
func (e DrawResponseRelayed) MarshalJSON() ([]byte, error) {
	if e.Payload == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(e.Payload)
}

// Accepted reports the accepted flag carried in the payload
func (e DrawResponseRelayed) Accepted() bool {
	var accepted bool
	if raw, ok := e.Payload["accepted"]; ok {
		_ = json.Unmarshal(raw, &accepted)
	}
	return accepted
}

// OpponentResigned notifies the opponent of a resignation
type OpponentResigned struct{}

// PlayerDisconnected tells the remaining members who left
type PlayerDisconnected struct {
	Player    string    `json:"player"`
	Color     Color     `json:"color"`
	GameState RoomState `json:"game_state"`
}

// ErrorEvent is a caller-facing failure
type ErrorEvent struct {
	Message string `json:"message"`
}

func (ConnectionEstablished) EventName() EventName { return EventConnectionEstablished }
func (RoomCreated) EventName() EventName           { return EventRoomCreated }
func (RoomJoined) EventName() EventName            { return EventRoomJoined }
func (OpponentJoined) EventName() EventName        { return EventOpponentJoined }
func (ChessMove) EventName() EventName             { return EventChessMove }
func (GameEnded) EventName() EventName             { return EventGameEnded }
func (DrawOffered) EventName() EventName           { return EventDrawOffered }
func (DrawResponseRelayed) EventName() EventName   { return EventDrawResponse }
func (OpponentResigned) EventName() EventName      { return EventOpponentResigned }
func (PlayerDisconnected) EventName() EventName    { return EventPlayerDisconnected }
func (ErrorEvent) EventName() EventName            { return EventError }

// EncodeOutbound wraps an outbound event in its wire envelope
func EncodeOutbound(ev OutboundEvent) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", ev.EventName(), err)
	}
	return json.Marshal(Envelope{Event: ev.EventName(), Data: data})
}

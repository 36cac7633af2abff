package relay

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/OwaisSafa/ChessVerse/internal/dependencies/mocks"
	"github.com/OwaisSafa/ChessVerse/internal/model"
	"github.com/OwaisSafa/ChessVerse/internal/services/identity"
	"github.com/OwaisSafa/ChessVerse/internal/services/room"
	"github.com/OwaisSafa/ChessVerse/internal/storage/memory"
	"github.com/OwaisSafa/ChessVerse/internal/testutil"
)

type EngineSuite struct {
	suite.Suite
	storage  *memory.Storage
	emitter  *mocks.MockEmitter
	registry *identity.Registry
	rooms    *room.Store
	engine   *Engine
	logs     *testutil.LogBuffer
	ctx      context.Context
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	logger, logs := testutil.CaptureLogger()
	s.logs = logs
	s.storage = memory.New()
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.emitter = mocks.NewMockEmitter()
	s.registry = identity.New(s.storage, clk, logger)
	s.rooms = room.NewStore(s.storage, clk, logger)
	s.engine = NewEngine(s.registry, s.rooms, s.emitter, logger)
	s.ctx = context.Background()
}

// seat stores room 1234 with alice as white and, if withBlack, bob as black
func (s *EngineSuite) seat(withBlack bool) {
	r := &model.Room{
		Code:        "1234",
		WhitePlayer: "alice",
		Members:     []model.PlayerID{"alice"},
		State:       model.RoomStateWaiting,
	}
	_, err := s.registry.Register(s.ctx, "alice", "Alice", "1234", model.ColorWhite)
	s.Require().NoError(err)

	if withBlack {
		r.BlackPlayer = "bob"
		r.Members = append(r.Members, "bob")
		r.State = model.RoomStatePlaying
		_, err := s.registry.Register(s.ctx, "bob", "Bob", "1234", model.ColorBlack)
		s.Require().NoError(err)
	}
	s.Require().NoError(s.rooms.Put(s.ctx, r))
}

func (s *EngineSuite) roomState() model.RoomState {
	r, err := s.rooms.Get(s.ctx, "1234")
	s.Require().NoError(err)
	return r.State
}

func strPtr(v string) *string { return &v }

// MakeMove tests

func (s *EngineSuite) TestMakeMoveBroadcastsToBothPlayers() {
	s.seat(true)

	err := s.engine.MakeMove(s.ctx, "alice", model.MoveInput{From: "e2", To: "e4"})
	s.Require().NoError(err)

	expected := model.ChessMove{From: "e2", To: "e4", Promotion: "q", Player: "Alice", Color: model.ColorWhite}
	s.Equal([]model.OutboundEvent{expected}, s.emitter.EventsFor("alice"))
	s.Equal([]model.OutboundEvent{expected}, s.emitter.EventsFor("bob"))

	r, _ := s.rooms.Get(s.ctx, "1234")
	s.Require().NotNil(r.LastMove)
	s.Equal("e4", r.LastMove.To)
	s.Equal(model.PlayerID("alice"), r.LastMove.PlayerID)
	s.Len(r.Moves, 1)
}

func (s *EngineSuite) TestMakeMoveKeepsExplicitPromotion() {
	s.seat(true)

	err := s.engine.MakeMove(s.ctx, "bob", model.MoveInput{From: "a2", To: "a1", Promotion: "n"})
	s.Require().NoError(err)

	s.Equal(model.ChessMove{From: "a2", To: "a1", Promotion: "n", Player: "Bob", Color: model.ColorBlack},
		s.emitter.Last("alice"))
}

func (s *EngineSuite) TestMakeMoveEchoesToLoneCreator() {
	s.seat(false)

	err := s.engine.MakeMove(s.ctx, "alice", model.MoveInput{From: "e2", To: "e4"})
	s.Require().NoError(err)

	s.Len(s.emitter.Deliveries(), 1)
	s.IsType(model.ChessMove{}, s.emitter.Last("alice"))
}

func (s *EngineSuite) TestMakeMoveWithoutSession() {
	err := s.engine.MakeMove(s.ctx, "ghost", model.MoveInput{From: "e2", To: "e4"})
	s.ErrorIs(err, model.ErrNotInGame)
	s.Empty(s.emitter.Deliveries())
}

func (s *EngineSuite) TestMakeMoveRoomGone() {
	s.seat(true)
	s.Require().NoError(s.storage.DeleteRoom(s.ctx, "1234"))

	err := s.engine.MakeMove(s.ctx, "alice", model.MoveInput{From: "e2", To: "e4"})
	s.ErrorIs(err, model.ErrRoomGoneMissing)
	s.Empty(s.emitter.Deliveries())
}

func (s *EngineSuite) TestMakeMoveRequiresSquares() {
	s.seat(true)

	err := s.engine.MakeMove(s.ctx, "alice", model.MoveInput{From: "e2"})
	s.ErrorIs(err, model.ErrRelayFailure)
}

func (s *EngineSuite) TestMakeMoveDeliveryFailureStillReachesOthers() {
	s.seat(true)
	s.emitter.FailFor("bob", errors.New("buffer full"))

	err := s.engine.MakeMove(s.ctx, "alice", model.MoveInput{From: "e2", To: "e4"})
	s.ErrorIs(err, model.ErrRelayFailure)
	s.Len(s.emitter.EventsFor("alice"), 1)
}

// GameOver tests

func (s *EngineSuite) TestGameOverBroadcastsDefaults() {
	s.seat(true)

	err := s.engine.GameOver(s.ctx, "alice", model.GameOver{})
	s.Require().NoError(err)

	expected := model.GameEnded{Result: DefaultResult, Winner: nil, Reason: ""}
	s.Equal(expected, s.emitter.Last("alice"))
	s.Equal(expected, s.emitter.Last("bob"))
	s.Equal(model.RoomStateFinished, s.roomState())
}

func (s *EngineSuite) TestGameOverCarriesReport() {
	s.seat(true)

	err := s.engine.GameOver(s.ctx, "bob", model.GameOver{
		Result: strPtr("checkmate"),
		Winner: strPtr("white"),
		Reason: strPtr("Checkmate"),
	})
	s.Require().NoError(err)

	s.Equal(model.GameEnded{Result: "checkmate", Winner: strPtr("white"), Reason: "Checkmate"},
		s.emitter.Last("alice"))
}

func (s *EngineSuite) TestGameOverWithoutSessionIsIgnored() {
	s.NoError(s.engine.GameOver(s.ctx, "ghost", model.GameOver{}))
	s.Empty(s.emitter.Deliveries())
}

func (s *EngineSuite) TestGameOverRoomGoneIsIgnored() {
	s.seat(true)
	s.Require().NoError(s.storage.DeleteRoom(s.ctx, "1234"))

	s.NoError(s.engine.GameOver(s.ctx, "alice", model.GameOver{}))
	s.Empty(s.emitter.Deliveries())
}

// OfferDraw tests

func (s *EngineSuite) TestOfferDrawReachesOpponentOnly() {
	s.seat(true)

	s.Require().NoError(s.engine.OfferDraw(s.ctx, "alice"))

	s.Equal([]model.OutboundEvent{model.DrawOffered{}}, s.emitter.EventsFor("bob"))
	s.Empty(s.emitter.EventsFor("alice"))
	s.Equal(model.RoomStatePlaying, s.roomState())
}

func (s *EngineSuite) TestOfferDrawWithoutOpponent() {
	s.seat(false)

	err := s.engine.OfferDraw(s.ctx, "alice")
	s.ErrorIs(err, model.ErrOpponentMissing)
	s.Empty(s.emitter.Deliveries())
	s.Contains(s.logs.String(), "opponent not found")
}

func (s *EngineSuite) TestOfferDrawWithoutSession() {
	s.ErrorIs(s.engine.OfferDraw(s.ctx, "ghost"), model.ErrNotInGame)
}

// DrawResponse tests

func (s *EngineSuite) TestDrawAcceptedFinishesGame() {
	s.seat(true)
	payload := map[string]json.RawMessage{"accepted": json.RawMessage("true")}

	err := s.engine.DrawResponse(s.ctx, "bob", model.DrawResponse{Accepted: true, Payload: payload})
	s.Require().NoError(err)

	s.Equal([]model.OutboundEvent{model.DrawResponseRelayed{Payload: payload}}, s.emitter.EventsFor("alice"))
	s.Empty(s.emitter.EventsFor("bob"))
	s.Equal(model.RoomStateFinished, s.roomState())
}

func (s *EngineSuite) TestDrawDeclinedKeepsPlaying() {
	s.seat(true)
	payload := map[string]json.RawMessage{"accepted": json.RawMessage("false")}

	err := s.engine.DrawResponse(s.ctx, "bob", model.DrawResponse{Accepted: false, Payload: payload})
	s.Require().NoError(err)

	relayed, ok := s.emitter.Last("alice").(model.DrawResponseRelayed)
	s.Require().True(ok)
	s.False(relayed.Accepted())
	s.Equal(model.RoomStatePlaying, s.roomState())
}

func (s *EngineSuite) TestDrawResponseWithoutOpponent() {
	s.seat(false)

	err := s.engine.DrawResponse(s.ctx, "alice", model.DrawResponse{Accepted: true})
	s.ErrorIs(err, model.ErrOpponentMissing)
	s.Equal(model.RoomStateWaiting, s.roomState())
}

// Resign tests

func (s *EngineSuite) TestResignNotifiesOpponent() {
	s.seat(true)

	s.Require().NoError(s.engine.Resign(s.ctx, "bob"))

	s.Equal([]model.OutboundEvent{model.OpponentResigned{}}, s.emitter.EventsFor("alice"))
	s.Empty(s.emitter.EventsFor("bob"))
	s.Equal(model.RoomStateFinished, s.roomState())
}

func (s *EngineSuite) TestResignWithoutOpponent() {
	s.seat(false)

	err := s.engine.Resign(s.ctx, "alice")
	s.ErrorIs(err, model.ErrOpponentMissing)
	s.Empty(s.emitter.Deliveries())
	s.Equal(model.RoomStateWaiting, s.roomState())
}

func (s *EngineSuite) TestResignRoomGone() {
	s.seat(true)
	s.Require().NoError(s.storage.DeleteRoom(s.ctx, "1234"))

	s.ErrorIs(s.engine.Resign(s.ctx, "alice"), model.ErrRoomGoneMissing)
}

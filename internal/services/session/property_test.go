package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/OwaisSafa/ChessVerse/internal/dependencies/mocks"
	"github.com/OwaisSafa/ChessVerse/internal/model"
	"github.com/OwaisSafa/ChessVerse/internal/services/identity"
	"github.com/OwaisSafa/ChessVerse/internal/services/room"
	"github.com/OwaisSafa/ChessVerse/internal/storage/memory"
	"github.com/OwaisSafa/ChessVerse/internal/testutil"
)

// Random create / join / disconnect sequences never break seat or membership bookkeeping
func TestLifecycleInvariantsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		logger := testutil.NopLogger()
		storage := memory.New()
		clk := mocks.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		registry := identity.New(storage, clk, logger)
		rooms := room.NewStore(storage, clk, logger)
		allocator := room.NewAllocator(rooms, clk, mocks.NewMockRandom(), logger)
		coordinator := NewCoordinator(registry, rooms, allocator, mocks.NewMockEmitter(), clk, logger)

		conns := make([]model.PlayerID, 6)
		for i := range conns {
			conns[i] = model.PlayerID(fmt.Sprintf("conn-%d", i))
		}
		var created []model.RoomCode

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			id := rapid.SampledFrom(conns).Draw(t, "conn")
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				if r, err := coordinator.CreateRoom(ctx, id, ""); err == nil {
					created = append(created, r.Code)
				}
			case 1:
				if len(created) == 0 {
					continue
				}
				code := rapid.SampledFrom(created).Draw(t, "code")
				_, _ = coordinator.JoinRoom(ctx, id, code, "")
			case 2:
				if err := coordinator.Disconnect(ctx, id); err != nil {
					t.Fatalf("disconnect %s: %v", id, err)
				}
			}
			checkInvariants(t, ctx, rooms, registry)
		}
	})
}

func checkInvariants(t *rapid.T, ctx context.Context, rooms *room.Store, registry *identity.Registry) {
	listed, err := rooms.List(ctx)
	if err != nil {
		t.Fatalf("list rooms: %v", err)
	}

	seated := 0
	for _, r := range listed {
		if r.IsEmpty() {
			t.Fatalf("room %s is stored with no members", r.Code)
		}
		if len(r.Members) > model.MaxRoomMembers {
			t.Fatalf("room %s has %d members", r.Code, len(r.Members))
		}
		if r.WhitePlayer != "" && r.WhitePlayer == r.BlackPlayer {
			t.Fatalf("room %s seats %s on both colors", r.Code, r.WhitePlayer)
		}
		for _, seat := range []model.PlayerID{r.WhitePlayer, r.BlackPlayer} {
			if seat != "" && !r.HasMember(seat) {
				t.Fatalf("room %s seat holder %s is not a member", r.Code, seat)
			}
		}
		for _, member := range r.Members {
			player, err := registry.Lookup(ctx, member)
			if err != nil {
				t.Fatalf("member %s of room %s has no session: %v", member, r.Code, err)
			}
			if player.RoomCode != r.Code {
				t.Fatalf("member %s points at room %s, not %s", member, player.RoomCode, r.Code)
			}
			seated++
		}
	}

	count, err := registry.Count(ctx)
	if err != nil {
		t.Fatalf("count players: %v", err)
	}
	if count != seated {
		t.Fatalf("registry holds %d players but rooms seat %d", count, seated)
	}
}

package room

import (
	"context"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/OwaisSafa/ChessVerse/internal/dependencies/mocks"
	"github.com/OwaisSafa/ChessVerse/internal/model"
	"github.com/OwaisSafa/ChessVerse/internal/storage/memory"
	"github.com/OwaisSafa/ChessVerse/internal/testutil"
)

// drawnRandom lets rapid choose every random value, from a small pool of
// codes so collisions are common
type drawnRandom struct {
	t    *rapid.T
	pool []string
}

func (r *drawnRandom) Intn(n int) int {
	return rapid.IntRange(0, n-1).Draw(r.t, "start")
}

func (r *drawnRandom) String(int, string) string {
	return rapid.SampledFrom(r.pool).Draw(r.t, "code")
}

func TestAllocatedCodesAreUniqueProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		store := NewStore(memory.New(), mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)), testutil.NopLogger())
		rnd := &drawnRandom{t: t, pool: []string{"0000", "0001", "0002", "0003", "0004", "0005", "0006", "0007"}}
		allocator := NewAllocator(store, store.clock, rnd, testutil.NopLogger())

		live := map[model.RoomCode]bool{}
		steps := rapid.IntRange(1, 30).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			if len(live) > 0 && rapid.Bool().Draw(t, "delete") {
				codes := make([]model.RoomCode, 0, len(live))
				for code := range live {
					codes = append(codes, code)
				}
				victim := codes[rapid.IntRange(0, len(codes)-1).Draw(t, "victim")]
				if err := store.Delete(ctx, victim); err != nil {
					t.Fatalf("delete %s: %v", victim, err)
				}
				delete(live, victim)
				continue
			}

			room, err := allocator.Allocate(ctx, nil)
			if err != nil {
				t.Fatalf("allocate: %v", err)
			}
			if live[room.Code] {
				t.Fatalf("code %s handed out twice", room.Code)
			}
			if !codePattern.MatchString(string(room.Code)) {
				t.Fatalf("code %q is not four digits", room.Code)
			}
			live[room.Code] = true
		}

		stored, err := store.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(stored) != len(live) {
			t.Fatalf("stored %d rooms, expected %d", len(stored), len(live))
		}
	})
}

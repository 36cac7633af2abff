package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/OwaisSafa/ChessVerse/internal/dependencies/mocks"
	"github.com/OwaisSafa/ChessVerse/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock   *mocks.MockClock
	MockRandom  *mocks.MockRandom
	MockEmitter *mocks.MockEmitter
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Events are recorded by MockEmitter instead of going to websocket clients.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockEmitter := mocks.NewMockEmitter()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	app := newWithDependencies(store, mockClock, mockRandom, mockEmitter, Config{RoomIdleTimeout: 30 * time.Minute}, logger)

	return &TestApp{
		App:         app,
		MockClock:   mockClock,
		MockRandom:  mockRandom,
		MockEmitter: mockEmitter,
	}
}

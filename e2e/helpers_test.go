package e2e_test

import (
	"bytes"
	"sync"

	"github.com/OwaisSafa/ChessVerse/internal/model"
)

// safeBuffer is a bytes.Buffer usable from several goroutines
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func modelCode(code string) model.RoomCode {
	return model.RoomCode(code)
}

package mocks

import (
	"sync"

	"github.com/OwaisSafa/ChessVerse/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing.
// Once a queue runs dry it falls back to a real generator, so tests only
// need to queue the values they assert on.
type MockRandom struct {
	mu sync.Mutex

	intnResults   []int
	stringResults []string
	fallback      random.Random
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{fallback: random.New()}
}

// Intn returns the next queued result
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.intnResults) == 0 {
		return r.fallback.Intn(n)
	}
	result := r.intnResults[0]
	r.intnResults = r.intnResults[1:]
	return result
}

// String returns the next queued result
func (r *MockRandom) String(length int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.stringResults) == 0 {
		return r.fallback.String(length, alphabet)
	}
	result := r.stringResults[0]
	r.stringResults = r.stringResults[1:]
	return result
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intnResults = append(r.intnResults, values...)
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stringResults = append(r.stringResults, values...)
}

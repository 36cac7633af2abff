package session

import (
	"context"
	"time"

	"github.com/OwaisSafa/ChessVerse/internal/model"
	"github.com/OwaisSafa/ChessVerse/internal/testutil"
)

func (s *CoordinatorSuite) TestJanitorExpiresIdleRooms() {
	s.random.QueueString("1234")
	_, err := s.coordinator.CreateRoom(s.ctx, "alice", "Alice")
	s.Require().NoError(err)
	s.clock.Advance(time.Hour)

	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan struct{})
	janitor := NewJanitor(s.coordinator, 5*time.Millisecond, 30*time.Minute, testutil.NopLogger())
	go func() {
		janitor.Run(ctx)
		close(done)
	}()

	s.Eventually(func() bool {
		exists, _ := s.rooms.Exists(s.ctx, "1234")
		return !exists
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done

	s.Equal(model.ErrorEvent{Message: ExpiredMessage}, s.emitter.Last("alice"))
}

func (s *CoordinatorSuite) TestJanitorDisabledReturnsImmediately() {
	logger, logs := testutil.CaptureLogger()
	janitor := NewJanitor(s.coordinator, time.Millisecond, 0, logger)

	done := make(chan struct{})
	go func() {
		janitor.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		s.Fail("janitor with no idle timeout should not start")
	}
	s.Contains(logs.String(), "idle room sweep disabled")
}

package session

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/louisbranch/assassin/internal/game/domain"
)

// Evaluator watches a started game's alive counter and finishes the
// game for the assassin once it reaches zero.
type Evaluator struct {
	session *Session
	logger  *log.Logger
}

// NewEvaluator creates an Evaluator. A nil logger discards output.
func NewEvaluator(session *Session, logger *log.Logger) *Evaluator {
	return &Evaluator{session: session, logger: logger}
}

// Run blocks watching the game's alive counter until the game is won,
// the watch stream ends, or ctx is cancelled. It returns nil after
// finishing the game or when cancelled.
func (e *Evaluator) Run(ctx context.Context, name string) error {
	events, err := e.session.store.Watch(ctx, domain.GameAlivePath(name))
	if err != nil {
		return fmt.Errorf("watch alive counter: %w", err)
	}

	for event := range events {
		if event.Err != nil {
			return fmt.Errorf("watch alive counter: %w", event.Err)
		}
		count, err := strconv.Atoi(event.Value)
		if err != nil {
			e.logf("game %s: ignoring malformed alive counter %q", name, event.Value)
			continue
		}
		if count > 0 {
			continue
		}

		status, err := e.session.status(ctx, name)
		if err != nil {
			return err
		}
		if status != domain.StatusStarted {
			continue
		}

		if err := e.session.Finish(ctx, name, true, ""); err != nil {
			return fmt.Errorf("finish game: %w", err)
		}
		e.logf("game %s: assassin won, game finished", name)
		return nil
	}
	return nil
}

func (e *Evaluator) logf(format string, args ...any) {
	if e.logger == nil {
		return
	}
	e.logger.Printf(format, args...)
}

package agent

import (
	"context"
	"errors"
	"log/slog"
)

// ErrQueueFull is returned when a turn cannot be enqueued without blocking.
var ErrQueueFull = errors.New("agent: turn queue full")

type turnJob struct {
	sessionID   string
	userMessage string
}

// Runner serializes agent turns through a single worker so concurrent chat
// requests never interleave tool calls against the store. Completed turns
// trigger the notify callback so listeners can refresh the transcript.
type Runner struct {
	loop   *Loop
	jobs   chan turnJob
	notify func(sessionID string)
	logger *slog.Logger
}

func NewRunner(loop *Loop, queueSize int, notify func(sessionID string), logger *slog.Logger) *Runner {
	if queueSize <= 0 {
		queueSize = 64
	}
	if notify == nil {
		notify = func(string) {}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		loop:   loop,
		jobs:   make(chan turnJob, queueSize),
		notify: notify,
		logger: logger,
	}
}

// Enqueue schedules a turn. It never blocks; a full queue is an error the
// caller can surface as backpressure.
func (r *Runner) Enqueue(sessionID, userMessage string) error {
	select {
	case r.jobs <- turnJob{sessionID: sessionID, userMessage: userMessage}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run processes turns until ctx is canceled.
func (r *Runner) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job := <-r.jobs:
			if err := r.loop.Run(ctx, job.sessionID, job.userMessage); err != nil {
				r.logger.Error("turn failed",
					slog.String("session_id", job.sessionID),
					slog.String("error", err.Error()))
			}
			r.notify(job.sessionID)
		}
	}
}

package scheduler

import (
	"context"
	"io"
	"os"
	"time"

	"moonwatch/internal/logger"
)

// ClearScreen moves the cursor home and clears the terminal.
const ClearScreen = "\033[H\033[2J"

// Loop runs a task immediately and then once per Interval until its context
// is done. With Clear set the terminal is wiped before every frame.
type Loop struct {
	Interval time.Duration
	Clear    bool
	Out      io.Writer

	ctx    context.Context
	waitFn func(time.Duration) <-chan time.Time
}

func NewLoop(ctx context.Context, interval time.Duration) *Loop {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Loop{
		Interval: interval,
		Out:      os.Stdout,
		ctx:      ctx,
		waitFn:   time.After,
	}
}

// Start blocks until the context is cancelled. Task errors are logged and
// the loop keeps going; a frame is never started concurrently with another.
func (l *Loop) Start(task func(ctx context.Context) error) {
	if l == nil || task == nil {
		return
	}
	if l.Interval <= 0 {
		logger.Warnf("refresh loop: invalid interval=%s, exit", l.Interval)
		return
	}
	if l.ctx == nil {
		l.ctx = context.Background()
	}
	if l.waitFn == nil {
		l.waitFn = time.After
	}
	if l.Out == nil {
		l.Out = os.Stdout
	}
	logger.Debugf("refresh loop: started interval=%s", l.Interval)
	frames := 0
	for {
		if l.ctx.Err() != nil {
			logger.Debugf("refresh loop: ctx done after %d frames", frames)
			return
		}
		if l.Clear {
			_, _ = io.WriteString(l.Out, ClearScreen)
		}
		if err := task(l.ctx); err != nil && l.ctx.Err() == nil {
			logger.Warnf("refresh loop: frame %d failed: %v", frames+1, err)
		}
		frames++
		select {
		case <-l.ctx.Done():
			logger.Debugf("refresh loop: ctx done after %d frames", frames)
			return
		case <-l.waitFn(l.Interval):
		}
	}
}

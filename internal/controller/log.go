package controller

import (
	"context"
	"math"
	"time"

	"github.com/alexisbeaulieu97/cadence/internal/domain/style"
	"github.com/alexisbeaulieu97/cadence/internal/domain/target"
	"github.com/alexisbeaulieu97/cadence/internal/ports"
)

// Log is a headless controller that writes each final style to a logger and,
// when TimeScale is positive, waits for the transition's delay plus duration
// (seconds) scaled by TimeScale.
type Log struct {
	Name      string
	Logger    ports.Logger
	TimeScale float64
}

// NewLog creates a log controller for the named target.
func NewLog(name string, logger ports.Logger, timeScale float64) *Log {
	return &Log{Name: name, Logger: logger, TimeScale: timeScale}
}

// Start implements Controller.
func (l *Log) Start(ctx context.Context, final target.FinalStyle) error {
	tr, _, err := final.Record.Transition()
	if err != nil {
		return err
	}

	wait := l.wait(tr)
	if l.Logger != nil {
		l.Logger.Info(ctx, "drive to style",
			"target", l.Name,
			"state", final.ActiveState,
			"properties", final.Record.Keys(),
			"wait", wait,
		)
	}
	if wait <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (l *Log) wait(tr style.Transition) time.Duration {
	if l.TimeScale <= 0 || tr.Instant() {
		return 0
	}
	secs := tr.Delay
	if tr.Duration != nil {
		secs += *tr.Duration
	}
	if secs <= 0 {
		return 0
	}
	return time.Duration(math.Round(secs * l.TimeScale * float64(time.Second)))
}

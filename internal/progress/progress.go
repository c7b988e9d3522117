// Package progress defines the progress-reporting contract used during
// per-group evaluation. Reporters are purely observational; they never
// affect results.
package progress

import (
	"log/slog"
	"sync/atomic"
)

// Reporter receives incremental progress during a long-running operation.
type Reporter interface {
	// Start announces the estimated total step count.
	Start(total int)
	// Step records one completed step.
	Step()
	// Done announces completion.
	Done()
}

// Nop is a Reporter that discards all progress.
type Nop struct{}

func (Nop) Start(int) {}
func (Nop) Step()     {}
func (Nop) Done()     {}

// Slog reports progress through a structured logger at debug level, with a
// completion line at info level.
type Slog struct {
	Logger *slog.Logger
	// Every controls how many steps pass between log lines (default 1).
	Every int

	total int
	count atomic.Int64
}

func (s *Slog) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Slog) Start(total int) {
	s.total = total
	s.count.Store(0)
	s.logger().Debug("evaluation started", "total_steps", total)
}

func (s *Slog) Step() {
	n := s.count.Add(1)
	every := int64(s.Every)
	if every < 1 {
		every = 1
	}
	if n%every == 0 {
		s.logger().Debug("evaluation progress", "completed", n, "total", s.total)
	}
}

func (s *Slog) Done() {
	s.logger().Info("evaluation finished", "completed", s.count.Load(), "total", s.total)
}

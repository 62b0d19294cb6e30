package std

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/aretw0/axon/pkg/bus"
	"github.com/aretw0/axon/pkg/domain"
)

// RejectedBranch is the branch id produced by Filter.
const RejectedBranch = "rejected"

// Identity passes its input through.
type Identity[T, R, E any] struct{}

func (Identity[T, R, E]) Label() string { return "Identity" }

func (Identity[T, R, E]) Run(_ context.Context, in T, _ R, _ *bus.Bus) domain.Outcome[T, E] {
	return domain.Next[T, E](in)
}

// Delay waits before passing its input through. A cancelled context ends the
// wait early; the chain then stops before the next step.
type Delay[T, R, E any] struct {
	Duration time.Duration
}

func (d Delay[T, R, E]) Label() string { return "Delay " + d.Duration.String() }

func (d Delay[T, R, E]) Run(ctx context.Context, in T, _ R, _ *bus.Bus) domain.Outcome[T, E] {
	timer := time.NewTimer(d.Duration)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
	return domain.Next[T, E](in)
}

// Log writes its input at Level and passes it through.
// A nil Logger uses slog.Default.
type Log[T, R, E any] struct {
	Message string
	Level   string
	Logger  *slog.Logger
}

func (l Log[T, R, E]) Label() string { return "Log" }

func (l Log[T, R, E]) Run(ctx context.Context, in T, _ R, b *bus.Bus) domain.Outcome[T, E] {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var lvl slog.Level
	switch strings.ToLower(l.Level) {
	case "error":
		lvl = slog.LevelError
	case "warn":
		lvl = slog.LevelWarn
	case "debug":
		lvl = slog.LevelDebug
	default:
		lvl = slog.LevelInfo
	}
	logger.Log(ctx, lvl, l.Message, "value", fmt.Sprintf("%+v", in), "bus_id", b.ID())
	return domain.Next[T, E](in)
}

// Fail always faults with Err.
type Fail[T, R, E any] struct {
	Err E
}

func (Fail[T, R, E]) Label() string { return "Fail" }

func (f Fail[T, R, E]) Run(_ context.Context, _ T, _ R, _ *bus.Bus) domain.Outcome[T, E] {
	return domain.Fault[T](f.Err)
}

// Filter continues when Predicate holds and otherwise branches to "rejected"
// with the input as payload.
type Filter[T, R, E any] struct {
	Predicate func(T) bool
}

func (Filter[T, R, E]) Label() string { return "Filter" }

func (f Filter[T, R, E]) Run(_ context.Context, in T, _ R, _ *bus.Bus) domain.Outcome[T, E] {
	if f.Predicate(in) {
		return domain.Next[T, E](in)
	}
	return domain.Branch[T, E](RejectedBranch, in)
}

// Switch branches to the id chosen by Matcher, carrying the input as payload.
// An empty id continues with Next.
type Switch[T, R, E any] struct {
	Matcher func(T) string
}

func (Switch[T, R, E]) Label() string { return "Switch" }

func (s Switch[T, R, E]) Run(_ context.Context, in T, _ R, _ *bus.Bus) domain.Outcome[T, E] {
	id := s.Matcher(in)
	if id == "" {
		return domain.Next[T, E](in)
	}
	return domain.Branch[T, E](id, in)
}

// RandomBranch continues with probability Probability and otherwise branches to
// Target with the input as payload. Rand defaults to math/rand/v2.
type RandomBranch[T, R, E any] struct {
	Probability float64
	Target      string
	Rand        func() float64
}

func (r RandomBranch[T, R, E]) Label() string {
	return fmt.Sprintf("RandomBranch %.2f -> %s", r.Probability, r.Target)
}

func (r RandomBranch[T, R, E]) Run(_ context.Context, in T, _ R, _ *bus.Bus) domain.Outcome[T, E] {
	roll := rand.Float64
	if r.Rand != nil {
		roll = r.Rand
	}
	if roll() < r.Probability {
		return domain.Next[T, E](in)
	}
	return domain.Branch[T, E](r.Target, in)
}

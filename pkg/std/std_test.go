package std_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/axon"
	"github.com/aretw0/axon/pkg/bus"
	"github.com/aretw0/axon/pkg/domain"
	"github.com/aretw0/axon/pkg/std"
)

type deps struct{}

var errBoom = errors.New("boom")

func TestMath(t *testing.T) {
	tests := []struct {
		name string
		step std.Math[int, deps, error]
		in   int
		want int
	}{
		{"add", std.Add[int, deps](3), 4, 7},
		{"sub", std.Math[int, deps, error]{Op: std.OpSub, Operand: 3}, 4, 1},
		{"mul", std.Mul[int, deps](3), 4, 12},
		{"div", std.Div[int, deps](2), 9, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.step.Run(context.Background(), tt.in, deps{}, bus.New())
			v, ok := out.Value()
			require.True(t, ok)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestMath_DivisionByZeroFaults(t *testing.T) {
	out := std.Div[float64, deps](0).Run(context.Background(), 1, deps{}, bus.New())
	require.True(t, out.IsFault())
	err, _ := out.Err()
	assert.ErrorIs(t, err, std.ErrDivisionByZero)
}

func TestStrings(t *testing.T) {
	ctx := context.Background()
	cases := map[std.StringOp]string{
		std.OpAppend:  "Axon!",
		std.OpPrepend: "!Axon",
		std.OpUpper:   "AXON",
		std.OpLower:   "axon",
	}
	for op, want := range cases {
		out := std.Strings[deps, error]{Op: op, Arg: "!"}.Run(ctx, "Axon", deps{}, bus.New())
		v, _ := out.Value()
		assert.Equal(t, want, v, op)
	}
}

func TestFilter(t *testing.T) {
	f := std.Filter[int, deps, error]{Predicate: func(v int) bool { return v > 0 }}

	assert.True(t, f.Run(context.Background(), 1, deps{}, bus.New()).IsNext())

	out := f.Run(context.Background(), -1, deps{}, bus.New())
	require.True(t, out.IsBranch())
	assert.Equal(t, std.RejectedBranch, out.ID())
	assert.Equal(t, -1, out.Payload())
}

func TestSwitch(t *testing.T) {
	s := std.Switch[string, deps, error]{Matcher: func(v string) string {
		if v == "vip" {
			return "priority"
		}
		return ""
	}}

	out := s.Run(context.Background(), "vip", deps{}, bus.New())
	require.True(t, out.IsBranch())
	assert.Equal(t, "priority", out.ID())
	assert.Equal(t, "vip", out.Payload())

	assert.True(t, s.Run(context.Background(), "regular", deps{}, bus.New()).IsNext())
}

func TestRandomBranch(t *testing.T) {
	roll := 0.0
	r := std.RandomBranch[int, deps, error]{Probability: 0.5, Target: "canary", Rand: func() float64 { return roll }}

	roll = 0.2
	assert.True(t, r.Run(context.Background(), 1, deps{}, bus.New()).IsNext())

	roll = 0.7
	out := r.Run(context.Background(), 1, deps{}, bus.New())
	require.True(t, out.IsBranch())
	assert.Equal(t, "canary", out.ID())
}

func TestRandomBranch_Extremes(t *testing.T) {
	always := std.RandomBranch[int, deps, error]{Probability: 1, Target: "x"}
	never := std.RandomBranch[int, deps, error]{Probability: 0, Target: "x"}
	for range 50 {
		assert.True(t, always.Run(context.Background(), 1, deps{}, bus.New()).IsNext())
		assert.True(t, never.Run(context.Background(), 1, deps{}, bus.New()).IsBranch())
	}
}

func TestFail(t *testing.T) {
	out := std.Fail[int, deps, error]{Err: errBoom}.Run(context.Background(), 1, deps{}, bus.New())
	err, ok := out.Err()
	require.True(t, ok)
	assert.Equal(t, errBoom, err)
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	out := std.Log[int, deps, error]{Message: "checkpoint", Level: "warn", Logger: logger}.
		Run(context.Background(), 42, deps{}, bus.NewWithID("bus-1"))

	v, _ := out.Value()
	assert.Equal(t, 42, v)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "checkpoint")
	assert.Contains(t, buf.String(), "value=42")
	assert.Contains(t, buf.String(), "bus_id=bus-1")
}

func TestDelay_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	out := std.Delay[int, deps, error]{Duration: time.Minute}.Run(ctx, 1, deps{}, bus.New())
	assert.True(t, out.IsNext())
	assert.Less(t, time.Since(start), time.Second)
}

func TestInCircuit(t *testing.T) {
	circuit := axon.Start[int, deps, error]("pricing").
		Then(std.Identity[int, deps, error]{}).
		Then(std.Add[int, deps](10)).
		Then(std.Filter[int, deps, error]{Predicate: func(v int) bool { return v < 100 }}).
		Then(std.Mul[int, deps](2))

	out, err := circuit.Execute(context.Background(), 5, deps{}, nil)
	require.NoError(t, err)
	v, _ := out.Value()
	assert.Equal(t, 30, v)

	out, err = circuit.Execute(context.Background(), 95, deps{}, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.KindBranch, out.Kind())
	assert.Equal(t, std.RejectedBranch, out.ID())

	labels := []string{}
	for _, n := range circuit.Schematic().Nodes {
		labels = append(labels, n.Label)
	}
	assert.Equal(t, []string{"pricing", "Identity", "Math add 10", "Filter", "Math mul 2"}, labels)
}

package emboss

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensedot/sensedot/pkg/braille"
)

func TestSimulator_StepAndPunch(t *testing.T) {
	sim := NewSimulator(0)
	ctx := context.Background()

	require.NoError(t, sim.Step(ctx, braille.X, 15))
	require.NoError(t, sim.Step(ctx, braille.Y, -4))
	require.NoError(t, sim.Punch(ctx))
	require.NoError(t, sim.Step(ctx, braille.Y, 4))
	require.NoError(t, sim.Punch(ctx))

	assert.Equal(t, Position{X: 15}, sim.Position())
	assert.Equal(t, []Position{{X: 15, Y: -4}, {X: 15}}, sim.Dots())
	assert.Equal(t, 23, sim.Pulses())
}

func TestSimulator_ReplaysWord(t *testing.T) {
	sim := NewSimulator(0)
	ctx := context.Background()

	for cmd := range braille.Generate("Z") {
		switch cmd.Kind {
		case braille.Step:
			require.NoError(t, sim.Step(ctx, cmd.Axis, cmd.Steps))
		case braille.Punch:
			require.NoError(t, sim.Punch(ctx))
		}
	}

	// Z raises dots 2, 3, 5 and 6
	want := []Position{{0, 15}, {0, 30}, {15, 15}, {15, 30}}
	assert.Equal(t, want, sim.Dots())
	assert.Equal(t, Position{X: braille.DefaultLayout.Advance()}, sim.Position())
}

func TestSimulator_Cancel(t *testing.T) {
	sim := NewSimulator(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := sim.Step(ctx, braille.X, 3)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, sim.Pulses())

	assert.ErrorIs(t, sim.Punch(ctx), context.DeadlineExceeded)
	assert.Empty(t, sim.Dots())
}

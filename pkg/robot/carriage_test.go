package robot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensedot/sensedot/pkg/braille"
)

type fakeServo struct {
	pos     int
	enabled bool
	writes  []int
	failAt  int // fail the n-th write (1-based), 0 never
}

func (f *fakeServo) Enable(ctx context.Context) error  { f.enabled = true; return nil }
func (f *fakeServo) Disable(ctx context.Context) error { f.enabled = false; return nil }

func (f *fakeServo) Position(ctx context.Context) (int, error) {
	return f.pos, nil
}

func (f *fakeServo) SetPositionWithTime(ctx context.Context, position, timeMs int) error {
	if f.failAt > 0 && len(f.writes)+1 == f.failAt {
		return errors.New("bus timeout")
	}
	f.writes = append(f.writes, position)
	f.pos = position
	return nil
}

type fakeBus struct{ closed bool }

func (b *fakeBus) Close() error { b.closed = true; return nil }

func newTestCarriage(t *testing.T) (*Carriage, map[MotorName]*fakeServo, *fakeBus) {
	t.Helper()
	fakes := map[MotorName]*fakeServo{
		XAxis: {pos: 1100},
		YAxis: {pos: 2000},
		Punch: {pos: 2000},
	}
	servos := make(map[MotorName]servo, len(fakes))
	for name, f := range fakes {
		servos[name] = f
	}
	bus := &fakeBus{}
	c := newCarriage(bus, servos, testCalibration(), Timing{})
	require.NoError(t, c.init(context.Background()))
	return c, fakes, bus
}

func TestCarriage_Init(t *testing.T) {
	c, fakes, _ := newTestCarriage(t)

	for name, f := range fakes {
		assert.True(t, f.enabled, "%s torque", name)
	}
	assert.Equal(t, []int{1600}, fakes[Punch].writes, "punch retracted on open")
	assert.Equal(t, map[MotorName]int{XAxis: 1100, YAxis: 2000}, c.Positions())
}

func TestCarriage_InitOutsideRange(t *testing.T) {
	f := &fakeServo{pos: 500}
	servos := map[MotorName]servo{XAxis: f, YAxis: &fakeServo{pos: 2000}, Punch: &fakeServo{}}
	c := newCarriage(nil, servos, testCalibration(), Timing{})

	err := c.init(context.Background())
	assert.ErrorIs(t, err, ErrTravelLimit)
}

func TestCarriage_Step(t *testing.T) {
	c, fakes, _ := newTestCarriage(t)
	ctx := context.Background()

	require.NoError(t, c.Step(ctx, braille.X, 3))
	assert.Equal(t, []int{1104, 1108, 1112}, fakes[XAxis].writes, "one write per pulse")

	// Y is inverted with two ticks per step
	require.NoError(t, c.Step(ctx, braille.Y, -2))
	assert.Equal(t, []int{2002, 2004}, fakes[YAxis].writes)

	assert.Equal(t, map[MotorName]int{XAxis: 1112, YAxis: 2004}, c.Positions())
}

func TestCarriage_StepTravelLimit(t *testing.T) {
	c, fakes, _ := newTestCarriage(t)

	err := c.Step(context.Background(), braille.X, -30)
	assert.ErrorIs(t, err, ErrTravelLimit)
	assert.Empty(t, fakes[XAxis].writes, "no pulse sent for a refused move")
}

func TestCarriage_StepWriteError(t *testing.T) {
	c, fakes, _ := newTestCarriage(t)
	fakes[XAxis].failAt = 2

	err := c.Step(context.Background(), braille.X, 5)
	assert.Error(t, err)
	assert.Equal(t, 1104, c.Positions()[XAxis], "position tracks the pulses that were sent")
}

func TestCarriage_StepCancelled(t *testing.T) {
	c, fakes, _ := newTestCarriage(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Step(ctx, braille.X, 5)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, fakes[XAxis].writes, 1)
}

func TestCarriage_Punch(t *testing.T) {
	c, fakes, _ := newTestCarriage(t)

	require.NoError(t, c.Punch(context.Background()))
	assert.Equal(t, []int{1600, 2400, 1600}, fakes[Punch].writes)
}

func TestCarriage_PunchCancelledWhileEngaged(t *testing.T) {
	c, fakes, _ := newTestCarriage(t)
	c.timing.PunchDelay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Punch(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	writes := fakes[Punch].writes
	assert.Equal(t, []int{1600, 2400, 1600}, writes)
	assert.Equal(t, 1600, writes[len(writes)-1], "punch left engaged")
}

func TestCarriage_PunchCancelledRetractFails(t *testing.T) {
	c, fakes, _ := newTestCarriage(t)
	c.timing.PunchDelay = time.Hour
	fakes[Punch].failAt = 3 // init retract, engage, then the retract after cancel

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Punch(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorContains(t, err, "retract punch: bus timeout")
	assert.Equal(t, []int{1600, 2400}, fakes[Punch].writes)
}

func TestCarriage_Home(t *testing.T) {
	c, _, _ := newTestCarriage(t)
	ctx := context.Background()

	for cmd := range braille.Generate("HOLA") {
		switch cmd.Kind {
		case braille.Step:
			require.NoError(t, c.Step(ctx, cmd.Axis, cmd.Steps))
		case braille.Punch:
			require.NoError(t, c.Punch(ctx))
		}
	}
	assert.Equal(t, 1100+4*30*4, c.Positions()[XAxis])
	assert.Equal(t, 2000, c.Positions()[YAxis])

	require.NoError(t, c.Home(ctx))
	assert.Equal(t, map[MotorName]int{XAxis: 1100, YAxis: 2000}, c.Positions())
}

func TestCarriage_Close(t *testing.T) {
	c, fakes, bus := newTestCarriage(t)

	require.NoError(t, c.Close())
	assert.True(t, bus.closed)
	for name, f := range fakes {
		assert.False(t, f.enabled, "%s torque", name)
	}
}

package main

import (
	"testing"

	"github.com/hipsterbrown/feetech-servo/feetech"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensedot/sensedot/pkg/braille"
	"github.com/sensedot/sensedot/pkg/robot"
)

func setupCalibration() robot.Calibration {
	return robot.Calibration{
		robot.XAxis: {ID: 1, RangeMin: 1000, RangeMax: 3000, TicksPerStep: 4},
		robot.YAxis: {ID: 2, RangeMin: 1000, RangeMax: 3000, TicksPerStep: 4},
		robot.Punch: {ID: 3, RangeMin: 1500, RangeMax: 2500, Engage: 2400, Retract: 1600},
	}
}

func TestCanKeepCalibration(t *testing.T) {
	all := []feetech.FoundServo{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}

	tests := []struct {
		name  string
		cal   robot.Calibration
		found []feetech.FoundServo
		want  bool
	}{
		{"complete", setupCalibration(), all, true},
		{"missing servo", setupCalibration(), all[:2], false},
		{"empty", robot.Calibration{}, all, false},
		{"no servos", setupCalibration(), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, canKeepCalibration(tt.cal, tt.found))
		})
	}
}

func recordedModel(invert bool) calibrationModel {
	ids := map[robot.MotorName]int{robot.XAxis: 1, robot.YAxis: 2, robot.Punch: 3}
	m := newCalibrationModel(nil, ids, braille.DefaultLayout, 4, invert)
	for _, pos := range []int{2000, 1000, 1500} {
		m.observe(robot.XAxis, pos)
	}
	m.observe(robot.YAxis, 2000)
	m.observe(robot.YAxis, 2100)
	m.observe(robot.Punch, 1600)
	m.observe(robot.Punch, 2400)
	return m
}

func TestCalibrationModel_Calibration(t *testing.T) {
	cal := recordedModel(false).calibration()
	require.NoError(t, cal.Validate())

	assert.Equal(t, robot.MotorCalibration{ID: 1, RangeMin: 1000, RangeMax: 2000, TicksPerStep: 4}, cal[robot.XAxis])
	assert.Equal(t, robot.MotorCalibration{ID: 3, RangeMin: 1600, RangeMax: 2400, Engage: 2400, Retract: 1600}, cal[robot.Punch])

	inverted := recordedModel(true).calibration()[robot.Punch]
	assert.Equal(t, 1600, inverted.Engage)
	assert.Equal(t, 2400, inverted.Retract)
}

func TestCalibrationModel_Travel(t *testing.T) {
	m := recordedModel(true)

	// 1000 ticks / 4 = 250 steps, 8 letters of 30
	got, ok := m.travel(robot.XAxis)
	assert.Equal(t, "250 steps, 8 letters", got)
	assert.True(t, ok)

	// 100 ticks / 4 = 25 steps, short of the 30 needed for three rows
	got, ok = m.travel(robot.YAxis)
	assert.Equal(t, "25 steps (30 needed)", got)
	assert.False(t, ok)

	got, ok = m.travel(robot.Punch)
	assert.Equal(t, "retract 2400, engage 1600", got)
	assert.True(t, ok)
}

func TestCalibrationModel_NotMoved(t *testing.T) {
	m := newCalibrationModel(nil, nil, braille.DefaultLayout, 0, false)
	for _, name := range robot.AllMotors() {
		_, ok := m.travel(name)
		assert.False(t, ok, "%s", name)
	}
	assert.Contains(t, m.View(), "1 ticks per step")
}

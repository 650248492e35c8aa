package main

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensedot/sensedot/pkg/robot"
)

func TestCarriageOptions_LoadConfig(t *testing.T) {
	missing := filepath.Join(t.TempDir(), robot.DefaultConfigFile)

	opts := CarriageOptions{Config: missing}
	_, err := opts.loadConfig()
	assert.ErrorIs(t, err, fs.ErrNotExist)

	opts.DryRun = true
	cfg, err := opts.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, robot.DefaultConfig(), cfg)
}

func TestCarriageOptions_OpenDryRun(t *testing.T) {
	opts := CarriageOptions{DryRun: true}
	car, err := opts.open(context.Background(), robot.DefaultConfig())
	require.NoError(t, err)

	assert.NotNil(t, car.sim)
	assert.Equal(t, "simulator", car.where())
	assert.NoError(t, car.finish(true))
}

func TestCarriageOptions_OpenUncalibrated(t *testing.T) {
	opts := CarriageOptions{}
	_, err := opts.open(context.Background(), robot.DefaultConfig())
	assert.ErrorIs(t, err, robot.ErrNotCalibrated)
}

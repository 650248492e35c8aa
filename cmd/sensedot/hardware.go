package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/sensedot/sensedot/pkg/emboss"
	"github.com/sensedot/sensedot/pkg/robot"
)

// CarriageOptions are shared by the commands that drive the embosser.
type CarriageOptions struct {
	Config   string        `long:"config" default:"sensedot.json" description:"Configuration file written by setup"`
	DryRun   bool          `long:"dry-run" description:"Simulate the carriage instead of driving the servos"`
	SimPulse time.Duration `long:"sim-pulse" default:"5ms" description:"Delay per step pulse in dry-run mode"`
	Upper    bool          `long:"upper" description:"Convert input to uppercase before embossing"`
	Home     bool          `long:"home" description:"Return the carriage to its start position when done"`
}

func (o *CarriageOptions) loadConfig() (*robot.Config, error) {
	cfg, err := robot.LoadConfigFrom(o.Config)
	if err == nil {
		return cfg, nil
	}
	if o.DryRun && errors.Is(err, fs.ErrNotExist) {
		return robot.DefaultConfig(), nil
	}
	return nil, err
}

func (o *CarriageOptions) text(words []string) string {
	text := strings.Join(words, " ")
	if o.Upper {
		text = strings.ToUpper(text)
	}
	return text
}

// carriage is an opened actuator together with its cleanup.
type carriage struct {
	emboss.Actuator
	sim  *emboss.Simulator
	hw   *robot.Carriage
	name string
}

func (o *CarriageOptions) open(ctx context.Context, cfg *robot.Config) (*carriage, error) {
	if o.DryRun {
		sim := emboss.NewSimulator(o.SimPulse)
		return &carriage{Actuator: sim, sim: sim, name: "simulator"}, nil
	}

	if cfg.Port == "" || !cfg.IsCalibrated() {
		return nil, fmt.Errorf("carriage not configured, run 'sensedot setup' first: %w", robot.ErrNotCalibrated)
	}

	openCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	hw, err := robot.NewCarriage(openCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open carriage: %w", err)
	}
	return &carriage{Actuator: hw, hw: hw, name: cfg.Port}, nil
}

// where describes the raw axis positions of the hardware carriage.
func (c *carriage) where() string {
	if c.hw == nil {
		return c.name
	}
	pos := c.hw.Positions()
	return fmt.Sprintf("%s=%d %s=%d", robot.XAxis, pos[robot.XAxis], robot.YAxis, pos[robot.YAxis])
}

// finish homes the carriage if asked and releases the hardware.
func (c *carriage) finish(home bool) error {
	if c.hw == nil {
		return nil
	}
	var errs []error
	if home {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		if err := c.hw.Home(ctx); err != nil {
			errs = append(errs, err)
		}
		cancel()
	}
	if err := c.hw.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

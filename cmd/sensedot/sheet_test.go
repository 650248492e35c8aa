package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sensedot/sensedot/pkg/braille"
	"github.com/sensedot/sensedot/pkg/emboss"
)

func TestSheetGrid(t *testing.T) {
	layout := braille.Layout{DotPitch: 2, CharSpacing: 5}
	dots := []emboss.Position{
		{X: 0, Y: 2}, // A, middle row
		{X: 5, Y: 2}, // B starts at X=5
		{X: 7, Y: 0},
	}

	grid := sheetGrid(dots, layout)
	assert.Equal(t, [][]bool{
		{false, false, false, false, false, false, false, true},
		{true, false, false, false, false, true, false, false},
		{false, false, false, false, false, false, false, false},
	}, grid)
}

func TestSheetGrid_Empty(t *testing.T) {
	grid := sheetGrid(nil, braille.DefaultLayout)
	assert.Len(t, grid, braille.Rows)
	for _, row := range grid {
		assert.Empty(t, row)
	}
}

func TestGCD(t *testing.T) {
	assert.Equal(t, 15, gcd(15, 15))
	assert.Equal(t, 1, gcd(2, 3))
	assert.Equal(t, 5, gcd(15, 10))
}

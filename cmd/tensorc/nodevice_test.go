//go:build !occa

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/augustjohansson/ffcx/kernel"
	"github.com/augustjohansson/ffcx/tensorgen"
)

func TestEvalWithoutDevice(t *testing.T) {
	ev := evaluation{
		params: tensorgen.DefaultParameters(),
		in:     kernel.Inputs{Coordinates: [][]float64{unitTriangle}},
		device: true,
	}
	assert.ErrorIs(t, ev.run(&bytes.Buffer{}, loadPoisson(t)), errNoDevice)
}

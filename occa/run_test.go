//go:build occa

package occa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/augustjohansson/ffcx/tensor"
)

func TestDeviceMatchesHost(t *testing.T) {
	device, err := NewDevice("")
	require.NoError(t, err)
	defer device.Free()
	t.Logf("running on %s", device.Mode())

	t.Run("cell", func(t *testing.T) {
		ir, code := weightedMass(t, tensor.Cell)
		l := NewLayout(ir, []int{3, 1})
		src, err := Source(code.ClassName, code.Body, l)
		require.NoError(t, err)
		b, err := l.Pack(cells())
		require.NoError(t, err)

		got, err := device.Run(src, code.ClassName, l, b)
		require.NoError(t, err, src)
		want, err := RunHost(code.Body, l, cells())
		require.NoError(t, err)
		require.Len(t, got, len(want))
		for k := range want {
			assert.InDeltaSlice(t, want[k], got[k], 1e-12)
		}
	})

	t.Run("exterior facet", func(t *testing.T) {
		ir, code := weightedMass(t, tensor.ExteriorFacet)
		l := NewLayout(ir, []int{3, 1})
		in := cells()
		for k := range in {
			in[k].Facets = []int{k % 3}
		}
		src, err := Source(code.ClassName, code.Body, l)
		require.NoError(t, err)
		b, err := l.Pack(in)
		require.NoError(t, err)

		got, err := device.Run(src, code.ClassName, l, b)
		require.NoError(t, err, src)
		want, err := RunHost(code.Body, l, in)
		require.NoError(t, err)
		for k := range want {
			assert.InDeltaSlice(t, want[k], got[k], 1e-12)
		}
	})

	t.Run("empty batch", func(t *testing.T) {
		out, err := device.Run("", "none", Layout{Size: 1}, &Batch{})
		assert.NoError(t, err)
		assert.Empty(t, out)
	})
}

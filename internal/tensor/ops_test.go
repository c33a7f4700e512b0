package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 4x4 single-channel image with values 0..15.
func ramp4x4(t *testing.T) *Tensor {
	t.Helper()
	data := make([]float64, 16)
	for i := range data {
		data[i] = float64(i)
	}
	tn, err := FromSlice(data, Shape{1, 1, 4, 4})
	require.NoError(t, err)
	return tn
}

func TestConvolveIdentityKernel(t *testing.T) {
	in := ramp4x4(t)
	kernel, err := FromSlice([]float64{1}, Shape{1, 1, 1, 1})
	require.NoError(t, err)
	out := Convolve(in, kernel, 1, false)
	assert.True(t, out.Shape().Equal(in.Shape()))
	assert.Equal(t, in.Data(), out.Data())
}

func TestConvolveSumKernelNoPadding(t *testing.T) {
	in, err := FromSlice([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, Shape{1, 1, 3, 3})
	require.NoError(t, err)
	kernel := MustNew(Shape{1, 1, 3, 3})
	kernel.Fill(1)
	out := Convolve(in, kernel, 1, false)
	assert.True(t, out.Shape().Equal(Shape{1, 1, 1, 1}))
	assert.Equal(t, 45.0, out.Get(0, 0, 0, 0))
}

func TestConvolvePaddingKeepsSize(t *testing.T) {
	in := MustNew(Shape{1, 1, 3, 3})
	in.Fill(1)
	kernel := MustNew(Shape{1, 1, 3, 3})
	kernel.Fill(1)
	out := Convolve(in, kernel, 1, true)
	require.True(t, out.Shape().Equal(Shape{1, 1, 3, 3}))
	// Out-of-bounds taps contribute zero.
	assert.Equal(t, 9.0, out.Get(0, 0, 1, 1))
	assert.Equal(t, 4.0, out.Get(0, 0, 0, 0))
	assert.Equal(t, 6.0, out.Get(0, 0, 0, 1))
}

func TestConvolveStride(t *testing.T) {
	in := ramp4x4(t)
	kernel := MustNew(Shape{1, 1, 2, 2})
	kernel.Fill(1)
	out := Convolve(in, kernel, 2, false)
	require.True(t, out.Shape().Equal(Shape{1, 1, 2, 2}))
	assert.Equal(t, 0.0+1+4+5, out.Get(0, 0, 0, 0))
	assert.Equal(t, 2.0+3+6+7, out.Get(0, 0, 0, 1))
	assert.Equal(t, 8.0+9+12+13, out.Get(0, 0, 1, 0))
	assert.Equal(t, 10.0+11+14+15, out.Get(0, 0, 1, 1))
}

func TestConvolveMultiChannel(t *testing.T) {
	in := MustNew(Shape{1, 2, 2, 2})
	in.Fill(1)
	kernel := MustNew(Shape{3, 2, 2, 2})
	kernel.Fill(1)
	out := Convolve(in, kernel, 1, false)
	require.True(t, out.Shape().Equal(Shape{1, 3, 1, 1}))
	for oc := 0; oc < 3; oc++ {
		assert.Equal(t, 8.0, out.Get(0, oc, 0, 0))
	}
}

func TestConvolvePanics(t *testing.T) {
	in := ramp4x4(t)
	kernel := MustNew(Shape{1, 1, 2, 2})
	assert.Panics(t, func() { Convolve(MustNew(Shape{4, 4}), kernel, 1, false) })
	assert.Panics(t, func() { Convolve(in, MustNew(Shape{2, 2}), 1, false) })
	assert.Panics(t, func() { Convolve(in, kernel, 0, false) })
	assert.Panics(t, func() { Convolve(in, MustNew(Shape{1, 3, 2, 2}), 1, false) })
	assert.Panics(t, func() { Convolve(in, MustNew(Shape{1, 1, 5, 5}), 1, false) })
}

func TestMaxPool(t *testing.T) {
	out := MaxPool(ramp4x4(t), 2, 2)
	require.True(t, out.Shape().Equal(Shape{1, 1, 2, 2}))
	assert.Equal(t, []float64{5, 7, 13, 15}, out.Data())
}

func TestMaxPoolOverlapping(t *testing.T) {
	out := MaxPool(ramp4x4(t), 2, 1)
	require.True(t, out.Shape().Equal(Shape{1, 1, 3, 3}))
	assert.Equal(t, 5.0, out.Get(0, 0, 0, 0))
	assert.Equal(t, 15.0, out.Get(0, 0, 2, 2))
}

func TestAvgPool(t *testing.T) {
	out := AvgPool(ramp4x4(t), 2, 2)
	require.True(t, out.Shape().Equal(Shape{1, 1, 2, 2}))
	assert.Equal(t, []float64{2.5, 4.5, 10.5, 12.5}, out.Data())
}

func TestPoolPanics(t *testing.T) {
	in := ramp4x4(t)
	assert.Panics(t, func() { MaxPool(MustNew(Shape{4, 4}), 2, 2) })
	assert.Panics(t, func() { MaxPool(in, 0, 2) })
	assert.Panics(t, func() { AvgPool(in, 2, 0) })
	assert.Panics(t, func() { MaxPool(in, 5, 1) })
}

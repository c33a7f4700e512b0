package layer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensornet-go/tensornet/internal/tensor"
)

func rampImage(t *testing.T) *tensor.Tensor {
	t.Helper()
	data := make([]float64, 16)
	for i := range data {
		data[i] = float64(i)
	}
	tn, err := tensor.FromSlice(data, tensor.Shape{1, 1, 4, 4})
	require.NoError(t, err)
	return tn
}

func TestNewMaxPool2DValidation(t *testing.T) {
	_, err := NewMaxPool2D(tensor.Shape{1, 4, 4}, 2, 2)
	assert.Error(t, err)
	_, err = NewMaxPool2D(tensor.Shape{1, 1, 4, 4}, 0, 2)
	assert.Error(t, err)
	_, err = NewMaxPool2D(tensor.Shape{1, 1, 4, 4}, 2, 0)
	assert.Error(t, err)
	_, err = NewMaxPool2D(tensor.Shape{1, 1, 4, 4}, 5, 1)
	assert.Error(t, err)
	_, err = NewAvgPool2D(tensor.Shape{1, 4, 4}, 2, 2)
	assert.Error(t, err)
	_, err = NewAvgPool2D(tensor.Shape{1, 1, 4, 4}, 2, 0)
	assert.Error(t, err)
}

func TestMaxPool2DForward(t *testing.T) {
	m, err := NewMaxPool2D(tensor.Shape{1, 1, 4, 4}, 2, 2)
	require.NoError(t, err)
	assert.True(t, m.OutputShape().Equal(tensor.Shape{1, 1, 2, 2}))
	assert.Equal(t, 0, m.Params())

	out := m.Forward(rampImage(t))
	assert.Equal(t, []float64{5, 7, 13, 15}, out.Data())
}

func TestMaxPool2DBackwardRoutesToWinner(t *testing.T) {
	m, err := NewMaxPool2D(tensor.Shape{1, 1, 4, 4}, 2, 2)
	require.NoError(t, err)
	m.Forward(rampImage(t))

	grad, err := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2})
	require.NoError(t, err)
	gi := m.Backward(grad)

	want := make([]float64, 16)
	want[5], want[7], want[13], want[15] = 1, 2, 3, 4
	assert.Equal(t, want, gi.Data())
}

func TestMaxPool2DTieKeepsFirst(t *testing.T) {
	m, err := NewMaxPool2D(tensor.Shape{1, 1, 2, 2}, 2, 2)
	require.NoError(t, err)
	in := tensor.MustNew(tensor.Shape{1, 1, 2, 2})
	in.Fill(7)
	m.Forward(in)

	grad := tensor.MustNew(tensor.Shape{1, 1, 1, 1})
	grad.Fill(1)
	gi := m.Backward(grad)
	assert.Equal(t, []float64{1, 0, 0, 0}, gi.Data())
}

func TestAvgPool2DForward(t *testing.T) {
	a, err := NewAvgPool2D(tensor.Shape{1, 1, 4, 4}, 2, 2)
	require.NoError(t, err)
	out := a.Forward(rampImage(t))
	assert.Equal(t, []float64{2.5, 4.5, 10.5, 12.5}, out.Data())
}

func TestAvgPool2DBackwardSpreadsEvenly(t *testing.T) {
	a, err := NewAvgPool2D(tensor.Shape{1, 1, 4, 4}, 2, 2)
	require.NoError(t, err)
	a.Forward(rampImage(t))

	grad := tensor.MustNew(tensor.Shape{1, 1, 2, 2})
	grad.Fill(1)
	gi := a.Backward(grad)
	for _, v := range gi.Data() {
		assert.InDelta(t, 0.25, v, 1e-12)
	}
}

func TestAvgPool2DBackwardOverlap(t *testing.T) {
	// Stride 1 windows overlap; shares accumulate.
	a, err := NewAvgPool2D(tensor.Shape{1, 1, 3, 3}, 2, 1)
	require.NoError(t, err)
	in := tensor.MustNew(tensor.Shape{1, 1, 3, 3})
	a.Forward(in)

	grad := tensor.MustNew(tensor.Shape{1, 1, 2, 2})
	grad.Fill(1)
	gi := a.Backward(grad)
	// The center cell belongs to all four windows.
	assert.InDelta(t, 1.0, gi.Get(0, 0, 1, 1), 1e-12)
	// Corners belong to exactly one window.
	assert.InDelta(t, 0.25, gi.Get(0, 0, 0, 0), 1e-12)
}

func TestPoolMultiBatchChannels(t *testing.T) {
	m, err := NewMaxPool2D(tensor.Shape{2, 3, 4, 4}, 2, 2)
	require.NoError(t, err)
	in := tensor.MustNew(tensor.Shape{2, 3, 4, 4})
	for i := range in.Data() {
		in.Data()[i] = float64(i % 16)
	}
	out := m.Forward(in)
	require.True(t, out.Shape().Equal(tensor.Shape{2, 3, 2, 2}))
	for n := 0; n < 2; n++ {
		for c := 0; c < 3; c++ {
			assert.Equal(t, 5.0, out.Get(n, c, 0, 0))
			assert.Equal(t, 15.0, out.Get(n, c, 1, 1))
		}
	}
}

func TestFlatten(t *testing.T) {
	f, err := NewFlatten(tensor.Shape{2, 3, 4})
	require.NoError(t, err)
	assert.True(t, f.OutputShape().Equal(tensor.Shape{24}))
	assert.Equal(t, 0, f.Params())

	in := tensor.MustNew(tensor.Shape{2, 3, 4})
	for i := range in.Data() {
		in.Data()[i] = float64(i)
	}
	out := f.Forward(in)
	assert.Equal(t, in.Data(), out.Data())

	back := f.Backward(out)
	assert.True(t, back.Shape().Equal(in.Shape()))
	assert.Equal(t, in.Data(), back.Data())

	_, err = NewFlatten(tensor.Shape{})
	assert.Error(t, err)
}

func TestPoolConnectTo(t *testing.T) {
	m, err := NewMaxPool2D(tensor.Shape{1, 1, 4, 4}, 2, 2)
	require.NoError(t, err)
	f, err := NewFlatten(tensor.Shape{1, 1, 2, 2})
	require.NoError(t, err)
	assert.NoError(t, m.ConnectTo(f))
	assert.Error(t, f.ConnectTo(m))
}

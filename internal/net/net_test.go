package net

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensornet-go/tensornet/internal/activations"
	"github.com/tensornet-go/tensornet/internal/layer"
	"github.com/tensornet-go/tensornet/internal/loss"
	"github.com/tensornet-go/tensornet/internal/opt"
	"github.com/tensornet-go/tensornet/internal/tensor"
)

func vec(t *testing.T, data ...float64) *tensor.Tensor {
	t.Helper()
	tn, err := tensor.FromSlice(data, tensor.Shape{len(data)})
	require.NoError(t, err)
	return tn
}

func dense(t *testing.T, in, out int, act activations.Activation, seed int64) *layer.Dense {
	t.Helper()
	d, err := layer.NewDense(in, out, act, layer.NewInit(seed))
	require.NoError(t, err)
	return d
}

func xorData(t *testing.T) (inputs, targets []*tensor.Tensor) {
	t.Helper()
	rows := [][2][]float64{
		{{0, 0}, {0}},
		{{0, 1}, {1}},
		{{1, 0}, {1}},
		{{1, 1}, {0}},
	}
	for _, row := range rows {
		inputs = append(inputs, vec(t, row[0]...))
		targets = append(targets, vec(t, row[1]...))
	}
	return inputs, targets
}

type epochCounter struct {
	BaseCallback
	epochs int
}

func (e *epochCounter) OnEpochEnd(n *Network, epoch int, loss float64) {
	e.epochs = epoch + 1
}

func TestAddValidatesShapes(t *testing.T) {
	n := New()
	assert.Error(t, n.Add(nil))
	require.NoError(t, n.Add(dense(t, 2, 4, activations.ReLU{}, 1)))
	assert.Error(t, n.Add(dense(t, 3, 1, activations.Sigmoid{}, 1)))
	require.NoError(t, n.Add(dense(t, 4, 1, activations.Sigmoid{}, 1)))

	assert.True(t, n.InputShape().Equal(tensor.Shape{2}))
	assert.True(t, n.OutputShape().Equal(tensor.Shape{1}))
	assert.Len(t, n.Layers(), 2)
}

func TestCompileValidation(t *testing.T) {
	n := New()
	assert.Error(t, n.Compile(loss.MSE{}, opt.NewSGD(0.1)))
	require.NoError(t, n.Add(dense(t, 2, 1, activations.Linear{}, 1)))
	assert.Error(t, n.Compile(nil, opt.NewSGD(0.1)))
	assert.Error(t, n.Compile(loss.MSE{}, nil))
	assert.Error(t, n.Compile(loss.MSE{}, opt.NewSGD(0)))
	assert.Error(t, n.Compile(loss.MSE{}, opt.NewSGD(-0.1)))
	assert.NoError(t, n.Compile(loss.MSE{}, opt.NewSGD(0.1)))
}

func TestPredictValidatesInput(t *testing.T) {
	n := New()
	_, err := n.Predict(vec(t, 1))
	assert.Error(t, err)

	require.NoError(t, n.Add(dense(t, 2, 1, activations.Linear{}, 1)))
	_, err = n.Predict(vec(t, 1, 2, 3))
	assert.Error(t, err)

	out, err := n.Predict(vec(t, 1, 2))
	require.NoError(t, err)
	assert.True(t, out.Shape().Equal(tensor.Shape{1}))
}

func TestTrainRequiresCompile(t *testing.T) {
	n := New()
	require.NoError(t, n.Add(dense(t, 2, 1, activations.Linear{}, 1)))
	_, err := n.Train(vec(t, 1, 2), vec(t, 1))
	assert.Error(t, err)
}

func TestTrainValidatesShapes(t *testing.T) {
	n := New()
	require.NoError(t, n.Add(dense(t, 2, 1, activations.Linear{}, 1)))
	require.NoError(t, n.Compile(loss.MSE{}, opt.NewSGD(0.1)))

	_, err := n.Train(vec(t, 1), vec(t, 1))
	assert.Error(t, err)
	_, err = n.Train(vec(t, 1, 2), vec(t, 1, 2))
	assert.Error(t, err)
	_, err = n.Train(vec(t, 1, 2), vec(t, 1))
	assert.NoError(t, err)
}

func TestTrainReducesLoss(t *testing.T) {
	n := New()
	require.NoError(t, n.Add(dense(t, 1, 1, activations.Linear{}, 1)))
	require.NoError(t, n.Compile(loss.MSE{}, opt.NewSGD(0.1)))

	x, y := vec(t, 1), vec(t, 3)
	first, err := n.Train(x, y)
	require.NoError(t, err)
	var last float64
	for i := 0; i < 50; i++ {
		last, err = n.Train(x, y)
		require.NoError(t, err)
	}
	assert.Less(t, last, first)
}

func TestFitValidation(t *testing.T) {
	n := New()
	require.NoError(t, n.Add(dense(t, 2, 1, activations.Sigmoid{}, 1)))
	inputs, targets := xorData(t)

	_, err := n.Fit(inputs, targets, 1)
	assert.Error(t, err) // not compiled

	require.NoError(t, n.Compile(loss.MSE{}, opt.NewSGD(0.1)))
	_, err = n.Fit(nil, nil, 1)
	assert.Error(t, err)
	_, err = n.Fit(inputs, targets[:2], 1)
	assert.Error(t, err)
	_, err = n.Fit(inputs, targets, 0)
	assert.Error(t, err)
}

func TestFitLearnsXOR(t *testing.T) {
	init := layer.NewInit(42)
	n, err := BuildMLP([]int{2, 4, 1}, activations.Tanh{}, activations.Sigmoid{}, init)
	require.NoError(t, err)
	require.NoError(t, n.Compile(loss.MSE{}, opt.NewSGD(0.5)))

	inputs, targets := xorData(t)
	before, err := n.Evaluate(inputs, targets)
	require.NoError(t, err)
	final, err := n.Fit(inputs, targets, 2000)
	require.NoError(t, err)
	assert.Less(t, final, before)
	assert.Less(t, final, 0.05)

	for i, x := range inputs {
		pred, err := n.Predict(x)
		require.NoError(t, err)
		assert.InDelta(t, targets[i].Get(0), pred.Get(0), 0.3)
	}
}

func TestFitLearnsXORWithAdam(t *testing.T) {
	init := layer.NewInit(42)
	n, err := BuildMLP([]int{2, 4, 1}, activations.Tanh{}, activations.Sigmoid{}, init)
	require.NoError(t, err)
	require.NoError(t, n.Compile(loss.MSE{}, opt.NewAdam(0.05)))

	inputs, targets := xorData(t)
	before, err := n.Evaluate(inputs, targets)
	require.NoError(t, err)
	final, err := n.Fit(inputs, targets, 500)
	require.NoError(t, err)
	assert.Less(t, final, before)
	assert.Less(t, final, 0.05)
}

func TestEvaluateDoesNotTrain(t *testing.T) {
	n := New()
	require.NoError(t, n.Add(dense(t, 2, 1, activations.Sigmoid{}, 1)))
	require.NoError(t, n.Compile(loss.MSE{}, opt.NewSGD(0.1)))

	inputs, targets := xorData(t)
	a, err := n.Evaluate(inputs, targets)
	require.NoError(t, err)
	b, err := n.Evaluate(inputs, targets)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEarlyStoppingStopsFit(t *testing.T) {
	n := New()
	require.NoError(t, n.Add(dense(t, 1, 1, activations.Linear{}, 1)))
	require.NoError(t, n.Compile(loss.MSE{}, opt.NewSGD(1e-9)))

	// The tiny learning rate keeps improvements below MinDelta, so
	// patience runs out.
	c := &epochCounter{}
	_, err := n.Fit([]*tensor.Tensor{vec(t, 1)}, []*tensor.Tensor{vec(t, 2)}, 100,
		NewEarlyStopping(3, 1.0), c)
	require.NoError(t, err)
	assert.Less(t, c.epochs, 100)
	assert.GreaterOrEqual(t, c.epochs, 3)
}

func TestSummary(t *testing.T) {
	n := New()
	require.NoError(t, n.Add(dense(t, 2, 3, activations.ReLU{}, 1)))
	require.NoError(t, n.Add(dense(t, 3, 1, activations.Sigmoid{}, 1)))
	s := n.Summary()
	assert.Contains(t, s, "Dense")
	assert.Contains(t, s, "Total params: 13")
}

package tensornet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensornet-go/tensornet/tensornet"
)

func TestEndToEndXOR(t *testing.T) {
	init := tensornet.NewInit(42)
	n, err := tensornet.BuildMLP([]int{2, 4, 1}, tensornet.Tanh, tensornet.Sigmoid, init)
	require.NoError(t, err)
	require.NoError(t, n.Compile(tensornet.MSE, tensornet.SGD(0.5)))

	var inputs, targets []*tensornet.Tensor
	for _, row := range [][3]float64{{0, 0, 0}, {0, 1, 1}, {1, 0, 1}, {1, 1, 0}} {
		x, err := tensornet.TensorFromSlice(row[:2], tensornet.Shape{2})
		require.NoError(t, err)
		y, err := tensornet.TensorFromSlice(row[2:], tensornet.Shape{1})
		require.NoError(t, err)
		inputs = append(inputs, x)
		targets = append(targets, y)
	}

	final, err := n.Fit(inputs, targets, 2000)
	require.NoError(t, err)
	assert.Less(t, final, 0.05)
}

func TestKernelReExports(t *testing.T) {
	in, err := tensornet.TensorFromSlice([]float64{1, 2, 3, 4}, tensornet.Shape{1, 1, 2, 2})
	require.NoError(t, err)
	out := tensornet.MaxPool(in, 2, 2)
	assert.Equal(t, 4.0, out.Get(0, 0, 0, 0))

	r := tensornet.Reshape(in, tensornet.Shape{4})
	assert.Equal(t, []float64{1, 2, 3, 4}, tensornet.Flatten(r))
}

// Package tensornet is the public surface of the library: a strided
// float64 tensor type, stateless convolution and pooling kernels, and a
// layer-based feed-forward network trained with backpropagation.
package tensornet

import (
	"github.com/tensornet-go/tensornet/internal/activations"
	"github.com/tensornet-go/tensornet/internal/layer"
	"github.com/tensornet-go/tensornet/internal/loss"
	"github.com/tensornet-go/tensornet/internal/net"
	"github.com/tensornet-go/tensornet/internal/opt"
	"github.com/tensornet-go/tensornet/internal/tensor"
)

// Re-export common types and functions for easier access
type (
	Tensor     = tensor.Tensor
	Shape      = tensor.Shape
	Network    = net.Network
	Layer      = layer.Layer
	Init       = layer.Init
	Optimizer  = opt.Optimizer
	Loss       = loss.Loss
	Activation = activations.Activation
	Callback   = net.Callback
)

// Tensors
func NewTensor(shape Shape) (*Tensor, error) {
	return tensor.New(shape)
}

func TensorFromSlice(data []float64, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

func Reshape(t *Tensor, shape Shape) *Tensor {
	return tensor.Reshape(t, shape)
}

func Transpose(t *Tensor, perm []int) *Tensor {
	return tensor.Transpose(t, perm)
}

func ExpandDims(t *Tensor, axis int) *Tensor {
	return tensor.ExpandDims(t, axis)
}

func Add(a, b *Tensor) *Tensor {
	return tensor.Add(a, b)
}

func Flatten(t *Tensor) []float64 {
	return tensor.Flatten(t)
}

// Kernels
func Convolve(input, kernel *Tensor, stride int, usePadding bool) *Tensor {
	return tensor.Convolve(input, kernel, stride, usePadding)
}

func MaxPool(input *Tensor, poolSize, stride int) *Tensor {
	return tensor.MaxPool(input, poolSize, stride)
}

func AvgPool(input *Tensor, poolSize, stride int) *Tensor {
	return tensor.AvgPool(input, poolSize, stride)
}

// Activations
var (
	ReLU    = activations.ReLU{}
	Sigmoid = activations.Sigmoid{}
	Tanh    = activations.Tanh{}
	Softmax = activations.Softmax{}
	Linear  = activations.Linear{}
)

func LeakyReLU(alpha float64) Activation {
	return activations.NewLeakyReLU(alpha)
}

// Initialization
func NewInit(seed int64) *Init {
	return layer.NewInit(seed)
}

// Layers
func Dense(in, out int, act Activation, init *Init) (Layer, error) {
	return layer.NewDense(in, out, act, init)
}

func Conv2D(inputShape Shape, outChannels, kernelSize, stride int, usePadding bool, act Activation, init *Init) (Layer, error) {
	return layer.NewConv2D(inputShape, outChannels, kernelSize, stride, usePadding, act, init)
}

func MaxPool2D(inputShape Shape, poolSize, stride int) (Layer, error) {
	return layer.NewMaxPool2D(inputShape, poolSize, stride)
}

func AvgPool2D(inputShape Shape, poolSize, stride int) (Layer, error) {
	return layer.NewAvgPool2D(inputShape, poolSize, stride)
}

func FlattenLayer(inputShape Shape) (Layer, error) {
	return layer.NewFlatten(inputShape)
}

// Losses
var (
	MSE          = loss.MSE{}
	CrossEntropy = loss.CrossEntropy{}
)

// Optimizers
func SGD(lr float64) Optimizer {
	return opt.NewSGD(lr)
}

func Adam(lr float64) Optimizer {
	return opt.NewAdam(lr)
}

// Networks
func NewNetwork() *Network {
	return net.New()
}

func BuildMLP(sizes []int, hidden, output Activation, init *Init) (*Network, error) {
	return net.BuildMLP(sizes, hidden, output, init)
}

// Callbacks
func NewLogger(interval int) Callback {
	return net.NewLogger(interval)
}

func NewEarlyStopping(patience int, minDelta float64) Callback {
	return net.NewEarlyStopping(patience, minDelta)
}

func NewModelCheckpoint(path string) Callback {
	return net.NewModelCheckpoint(path)
}

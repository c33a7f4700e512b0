package layer

import (
	"fmt"

	"github.com/tensornet-go/tensornet/internal/activations"
	"github.com/tensornet-go/tensornet/internal/opt"
	"github.com/tensornet-go/tensornet/internal/tensor"
)

// Conv2D is a 2-D convolution layer over [N, C, H, W] inputs with a
// square kernel, per-output-channel bias and an elementwise activation.
// With padding enabled, symmetric zero padding of kernelSize/2 keeps
// the spatial size for stride 1 and odd kernels.
type Conv2D struct {
	shapes
	batch, inC, outC int
	kernelSize       int
	stride           int
	usePadding       bool
	pad              int

	inH, inW   int
	outH, outW int

	kernels *tensor.Tensor // [outC, inC, k, k]
	bias    []float64
	act     activations.Activation

	lastInput *tensor.Tensor
	preAct    *tensor.Tensor

	gradK []float64
	gradB []float64
}

// NewConv2D creates a convolution layer for inputs of shape
// inputShape = [N, C, H, W]. Kernels are drawn with He initialization.
func NewConv2D(inputShape tensor.Shape, outChannels, kernelSize, stride int, usePadding bool, act activations.Activation, init *Init) (*Conv2D, error) {
	if len(inputShape) != 4 {
		return nil, fmt.Errorf("conv2d input shape must be [N, C, H, W], got %v", inputShape)
	}
	if err := inputShape.Validate(); err != nil {
		return nil, fmt.Errorf("conv2d input shape: %w", err)
	}
	if outChannels <= 0 {
		return nil, fmt.Errorf("conv2d output channels must be positive, got %d", outChannels)
	}
	if kernelSize <= 0 {
		return nil, fmt.Errorf("conv2d kernel size must be positive, got %d", kernelSize)
	}
	if stride <= 0 {
		return nil, fmt.Errorf("conv2d stride must be positive, got %d", stride)
	}
	if act == nil {
		return nil, fmt.Errorf("conv2d requires an activation")
	}
	if _, ok := act.(activations.Softmax); ok {
		return nil, fmt.Errorf("conv2d does not support Softmax; use a Dense output layer")
	}

	batch, inC, inH, inW := inputShape[0], inputShape[1], inputShape[2], inputShape[3]
	pad := 0
	if usePadding {
		pad = kernelSize / 2
	}
	outH := (inH-kernelSize+2*pad)/stride + 1
	outW := (inW-kernelSize+2*pad)/stride + 1
	if outH <= 0 || outW <= 0 {
		return nil, fmt.Errorf("conv2d output %dx%d is empty for input %dx%d, kernel %d, stride %d",
			outH, outW, inH, inW, kernelSize, stride)
	}

	c := &Conv2D{
		shapes:     shapes{in: inputShape.Clone(), out: tensor.Shape{batch, outChannels, outH, outW}},
		batch:      batch,
		inC:        inC,
		outC:       outChannels,
		kernelSize: kernelSize,
		stride:     stride,
		usePadding: usePadding,
		pad:        pad,
		inH:        inH,
		inW:        inW,
		outH:       outH,
		outW:       outW,
		kernels:    tensor.MustNew(tensor.Shape{outChannels, inC, kernelSize, kernelSize}),
		bias:       make([]float64, outChannels),
		act:        act,
		gradK:      make([]float64, outChannels*inC*kernelSize*kernelSize),
		gradB:      make([]float64, outChannels),
	}
	init.He(inC*kernelSize*kernelSize, c.kernels.Data())
	return c, nil
}

// Forward convolves x with the kernels, adds the per-channel bias and
// applies the activation.
func (c *Conv2D) Forward(x *tensor.Tensor) *tensor.Tensor {
	checkInput(c.Name(), x, c.in)
	c.lastInput = x.Copy()

	z := tensor.Convolve(x, c.kernels, c.stride, c.usePadding)
	zData := z.Data()
	plane := c.outH * c.outW
	for n := 0; n < c.batch; n++ {
		for oc := 0; oc < c.outC; oc++ {
			b := c.bias[oc]
			base := (n*c.outC + oc) * plane
			for i := 0; i < plane; i++ {
				zData[base+i] += b
			}
		}
	}
	c.preAct = z
	return z.Map(c.act.Activate)
}

// Backward accumulates kernel and bias gradients from grad and returns
// the gradient with respect to the input.
func (c *Conv2D) Backward(grad *tensor.Tensor) *tensor.Tensor {
	checkInput(c.Name(), grad, c.out)
	if c.preAct == nil {
		panic("layer: Conv2D: Backward called before Forward")
	}

	g := grad.Data()
	z := c.preAct.Data()
	dz := make([]float64, len(g))
	for i := range dz {
		dz[i] = g[i] * c.act.Derivative(z[i])
	}

	x := c.lastInput.Data()
	k := c.kernels.Data()
	gradIn := tensor.MustNew(c.in)
	gi := gradIn.Data()

	ks := c.kernelSize
	for n := 0; n < c.batch; n++ {
		for oc := 0; oc < c.outC; oc++ {
			kernBase := oc * c.inC * ks * ks
			outBase := (n*c.outC + oc) * c.outH * c.outW
			for oh := 0; oh < c.outH; oh++ {
				for ow := 0; ow < c.outW; ow++ {
					d := dz[outBase+oh*c.outW+ow]
					if d == 0 {
						continue
					}
					c.gradB[oc] += d
					for ic := 0; ic < c.inC; ic++ {
						inBase := (n*c.inC + ic) * c.inH * c.inW
						kBase := kernBase + ic*ks*ks
						for kh := 0; kh < ks; kh++ {
							ih := oh*c.stride + kh - c.pad
							if ih < 0 || ih >= c.inH {
								continue
							}
							for kw := 0; kw < ks; kw++ {
								iw := ow*c.stride + kw - c.pad
								if iw < 0 || iw >= c.inW {
									continue
								}
								inIdx := inBase + ih*c.inW + iw
								kIdx := kBase + kh*ks + kw
								c.gradK[kIdx] += d * x[inIdx]
								gi[inIdx] += d * k[kIdx]
							}
						}
					}
				}
			}
		}
	}
	return gradIn
}

// Update applies accumulated gradients and zeroes the accumulators.
func (c *Conv2D) Update(rule opt.Optimizer) {
	rule.StepInPlace(c.kernels.Data(), c.gradK)
	rule.StepInPlace(c.bias, c.gradB)
	for i := range c.gradK {
		c.gradK[i] = 0
	}
	for i := range c.gradB {
		c.gradB[i] = 0
	}
}

// Kernels returns a copy of the kernel bank as a
// [outC, inC, k, k] tensor.
func (c *Conv2D) Kernels() *tensor.Tensor {
	return c.kernels.Copy()
}

// SetKernels replaces the kernel bank. The tensor shape must be exactly
// [outC, inC, k, k].
func (c *Conv2D) SetKernels(k *tensor.Tensor) error {
	if !k.Shape().Equal(c.kernels.Shape()) {
		return fmt.Errorf("kernels shape %v, want %v", k.Shape(), c.kernels.Shape())
	}
	copy(c.kernels.Data(), k.Data())
	return nil
}

// Bias returns a copy of the per-channel bias as a rank-1 tensor.
func (c *Conv2D) Bias() *tensor.Tensor {
	t, err := tensor.FromSlice(c.bias, tensor.Shape{c.outC})
	if err != nil {
		panic(err)
	}
	return t
}

// SetBias replaces the per-channel bias. The tensor shape must be
// exactly [outC].
func (c *Conv2D) SetBias(b *tensor.Tensor) error {
	want := tensor.Shape{c.outC}
	if !b.Shape().Equal(want) {
		return fmt.Errorf("bias shape %v, want %v", b.Shape(), want)
	}
	copy(c.bias, b.Data())
	return nil
}

// Name identifies the layer type.
func (c *Conv2D) Name() string { return "Conv2D" }

// Params returns the number of trainable parameters.
func (c *Conv2D) Params() int { return c.kernels.Size() + c.outC }

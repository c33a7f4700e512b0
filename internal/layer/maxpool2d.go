package layer

import (
	"fmt"
	"math"

	"github.com/tensornet-go/tensornet/internal/opt"
	"github.com/tensornet-go/tensornet/internal/tensor"
)

// MaxPool2D pools [N, C, H, W] inputs with a square window, keeping the
// per-window maximum. Forward records the flat index of each winner so
// Backward can route the gradient there; ties keep the first cell
// scanned in row-major order.
type MaxPool2D struct {
	shapes
	poolSize, stride int
	batch, channels  int
	inH, inW         int
	outH, outW       int

	argmax []int
}

// NewMaxPool2D creates a max pooling layer for inputs of shape
// inputShape = [N, C, H, W].
func NewMaxPool2D(inputShape tensor.Shape, poolSize, stride int) (*MaxPool2D, error) {
	if len(inputShape) != 4 {
		return nil, fmt.Errorf("maxpool2d input shape must be [N, C, H, W], got %v", inputShape)
	}
	if err := inputShape.Validate(); err != nil {
		return nil, fmt.Errorf("maxpool2d input shape: %w", err)
	}
	if poolSize <= 0 {
		return nil, fmt.Errorf("maxpool2d pool size must be positive, got %d", poolSize)
	}
	if stride <= 0 {
		return nil, fmt.Errorf("maxpool2d stride must be positive, got %d", stride)
	}
	batch, channels, inH, inW := inputShape[0], inputShape[1], inputShape[2], inputShape[3]
	outH := (inH-poolSize)/stride + 1
	outW := (inW-poolSize)/stride + 1
	if outH <= 0 || outW <= 0 {
		return nil, fmt.Errorf("maxpool2d output %dx%d is empty for input %dx%d, pool %d, stride %d",
			outH, outW, inH, inW, poolSize, stride)
	}
	return &MaxPool2D{
		shapes:   shapes{in: inputShape.Clone(), out: tensor.Shape{batch, channels, outH, outW}},
		poolSize: poolSize,
		stride:   stride,
		batch:    batch,
		channels: channels,
		inH:      inH,
		inW:      inW,
		outH:     outH,
		outW:     outW,
		argmax:   make([]int, batch*channels*outH*outW),
	}, nil
}

// Forward keeps the maximum over each window.
func (m *MaxPool2D) Forward(x *tensor.Tensor) *tensor.Tensor {
	checkInput(m.Name(), x, m.in)

	out := tensor.MustNew(m.out)
	inData := x.Data()
	outData := out.Data()

	for nc := 0; nc < m.batch*m.channels; nc++ {
		inBase := nc * m.inH * m.inW
		outBase := nc * m.outH * m.outW
		for oh := 0; oh < m.outH; oh++ {
			for ow := 0; ow < m.outW; ow++ {
				maxVal := math.Inf(-1)
				maxIdx := -1
				for kh := 0; kh < m.poolSize; kh++ {
					ih := oh*m.stride + kh
					if ih >= m.inH {
						continue
					}
					for kw := 0; kw < m.poolSize; kw++ {
						iw := ow*m.stride + kw
						if iw >= m.inW {
							continue
						}
						idx := inBase + ih*m.inW + iw
						if inData[idx] > maxVal {
							maxVal = inData[idx]
							maxIdx = idx
						}
					}
				}
				o := outBase + oh*m.outW + ow
				outData[o] = maxVal
				m.argmax[o] = maxIdx
			}
		}
	}
	return out
}

// Backward routes each output gradient to the input cell that won its
// window.
func (m *MaxPool2D) Backward(grad *tensor.Tensor) *tensor.Tensor {
	checkInput(m.Name(), grad, m.out)

	gradIn := tensor.MustNew(m.in)
	gi := gradIn.Data()
	for o, g := range grad.Data() {
		gi[m.argmax[o]] += g
	}
	return gradIn
}

// Update is a no-op; pooling has no parameters.
func (m *MaxPool2D) Update(rule opt.Optimizer) {}

// Name identifies the layer type.
func (m *MaxPool2D) Name() string { return "MaxPool2D" }

// Params returns 0.
func (m *MaxPool2D) Params() int { return 0 }

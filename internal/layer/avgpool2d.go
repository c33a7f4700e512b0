package layer

import (
	"fmt"

	"github.com/tensornet-go/tensornet/internal/opt"
	"github.com/tensornet-go/tensornet/internal/tensor"
)

// AvgPool2D pools [N, C, H, W] inputs with a square window, averaging
// over the in-bounds window cells. Backward spreads each output
// gradient evenly over the same cells.
type AvgPool2D struct {
	shapes
	poolSize, stride int
	batch, channels  int
	inH, inW         int
	outH, outW       int
}

// NewAvgPool2D creates an average pooling layer for inputs of shape
// inputShape = [N, C, H, W].
func NewAvgPool2D(inputShape tensor.Shape, poolSize, stride int) (*AvgPool2D, error) {
	if len(inputShape) != 4 {
		return nil, fmt.Errorf("avgpool2d input shape must be [N, C, H, W], got %v", inputShape)
	}
	if err := inputShape.Validate(); err != nil {
		return nil, fmt.Errorf("avgpool2d input shape: %w", err)
	}
	if poolSize <= 0 {
		return nil, fmt.Errorf("avgpool2d pool size must be positive, got %d", poolSize)
	}
	if stride <= 0 {
		return nil, fmt.Errorf("avgpool2d stride must be positive, got %d", stride)
	}
	batch, channels, inH, inW := inputShape[0], inputShape[1], inputShape[2], inputShape[3]
	outH := (inH-poolSize)/stride + 1
	outW := (inW-poolSize)/stride + 1
	if outH <= 0 || outW <= 0 {
		return nil, fmt.Errorf("avgpool2d output %dx%d is empty for input %dx%d, pool %d, stride %d",
			outH, outW, inH, inW, poolSize, stride)
	}
	return &AvgPool2D{
		shapes:   shapes{in: inputShape.Clone(), out: tensor.Shape{batch, channels, outH, outW}},
		poolSize: poolSize,
		stride:   stride,
		batch:    batch,
		channels: channels,
		inH:      inH,
		inW:      inW,
		outH:     outH,
		outW:     outW,
	}, nil
}

// windowCells returns the number of in-bounds cells for the window at
// (oh, ow).
func (a *AvgPool2D) windowCells(oh, ow int) int {
	h := a.poolSize
	if over := oh*a.stride + a.poolSize - a.inH; over > 0 {
		h -= over
	}
	w := a.poolSize
	if over := ow*a.stride + a.poolSize - a.inW; over > 0 {
		w -= over
	}
	return h * w
}

// Forward averages each window.
func (a *AvgPool2D) Forward(x *tensor.Tensor) *tensor.Tensor {
	checkInput(a.Name(), x, a.in)
	return tensor.AvgPool(x, a.poolSize, a.stride)
}

// Backward spreads each output gradient evenly over its window's
// in-bounds cells.
func (a *AvgPool2D) Backward(grad *tensor.Tensor) *tensor.Tensor {
	checkInput(a.Name(), grad, a.out)

	gradIn := tensor.MustNew(a.in)
	gi := gradIn.Data()
	g := grad.Data()

	for nc := 0; nc < a.batch*a.channels; nc++ {
		inBase := nc * a.inH * a.inW
		outBase := nc * a.outH * a.outW
		for oh := 0; oh < a.outH; oh++ {
			for ow := 0; ow < a.outW; ow++ {
				share := g[outBase+oh*a.outW+ow] / float64(a.windowCells(oh, ow))
				for kh := 0; kh < a.poolSize; kh++ {
					ih := oh*a.stride + kh
					if ih >= a.inH {
						continue
					}
					for kw := 0; kw < a.poolSize; kw++ {
						iw := ow*a.stride + kw
						if iw >= a.inW {
							continue
						}
						gi[inBase+ih*a.inW+iw] += share
					}
				}
			}
		}
	}
	return gradIn
}

// Update is a no-op; pooling has no parameters.
func (a *AvgPool2D) Update(rule opt.Optimizer) {}

// Name identifies the layer type.
func (a *AvgPool2D) Name() string { return "AvgPool2D" }

// Params returns 0.
func (a *AvgPool2D) Params() int { return 0 }

// Package loss implements loss functions with analytic gradients.
package loss

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/tensornet-go/tensornet/internal/tensor"
)

// Loss scores a prediction against a target and supplies the gradient
// of that score with respect to the prediction. Shapes must match
// exactly; a mismatch panics.
type Loss interface {
	// Forward returns the scalar loss value.
	Forward(pred, target *tensor.Tensor) float64

	// Backward returns dLoss/dPred with the prediction's shape.
	Backward(pred, target *tensor.Tensor) *tensor.Tensor
}

func checkShapes(name string, pred, target *tensor.Tensor) {
	if !pred.Shape().Equal(target.Shape()) {
		panic(fmt.Sprintf("loss: %s: prediction shape %v, target shape %v", name, pred.Shape(), target.Shape()))
	}
}

// batchSize is the leading dimension for rank >= 2 tensors, 1 for
// vectors. The MSE gradient is normalized by it rather than the element
// count.
func batchSize(t *tensor.Tensor) float64 {
	if t.Rank() > 1 {
		return float64(t.Shape()[0])
	}
	return 1
}

// MSE is mean squared error. The value averages over all elements; the
// gradient is 2*(pred-target)/batch.
type MSE struct{}

// Forward returns mean((pred - target)^2) over all elements.
func (MSE) Forward(pred, target *tensor.Tensor) float64 {
	checkShapes("MSE", pred, target)
	p, t := pred.Data(), target.Data()
	d := floats.Distance(p, t, 2)
	return d * d / float64(len(p))
}

// Backward returns 2*(pred - target)/batch.
func (MSE) Backward(pred, target *tensor.Tensor) *tensor.Tensor {
	checkShapes("MSE", pred, target)
	p, t := pred.Data(), target.Data()
	n := batchSize(pred)
	out := make([]float64, len(p))
	for i := range p {
		out[i] = 2 * (p[i] - t[i]) / n
	}
	g, err := tensor.FromSlice(out, pred.Shape())
	if err != nil {
		panic(err)
	}
	return g
}

// CrossEntropy is categorical cross-entropy over probabilities, meant
// to follow a Softmax output layer. Predictions are clamped away from
// zero before the log.
type CrossEntropy struct{}

const ceEpsilon = 1e-12

// Forward returns -sum(target * log(pred)) / batch.
func (CrossEntropy) Forward(pred, target *tensor.Tensor) float64 {
	checkShapes("CrossEntropy", pred, target)
	p, t := pred.Data(), target.Data()
	sum := 0.0
	for i := range p {
		if t[i] != 0 {
			sum -= t[i] * math.Log(math.Max(p[i], ceEpsilon))
		}
	}
	return sum / batchSize(pred)
}

// Backward returns -(target / pred) / batch.
func (CrossEntropy) Backward(pred, target *tensor.Tensor) *tensor.Tensor {
	checkShapes("CrossEntropy", pred, target)
	p, t := pred.Data(), target.Data()
	n := batchSize(pred)
	out := make([]float64, len(p))
	for i := range p {
		if t[i] != 0 {
			out[i] = -t[i] / math.Max(p[i], ceEpsilon) / n
		}
	}
	g, err := tensor.FromSlice(out, pred.Shape())
	if err != nil {
		panic(err)
	}
	return g
}

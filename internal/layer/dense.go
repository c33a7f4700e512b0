package layer

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/tensornet-go/tensornet/internal/activations"
	"github.com/tensornet-go/tensornet/internal/opt"
	"github.com/tensornet-go/tensornet/internal/tensor"
)

// Dense is a fully connected layer computing act(W*x + b) for rank-1
// inputs. Weights are an outSize x inSize matrix.
//
// When the activation is Softmax the whole output vector is normalized
// and Backward contracts the incoming gradient with the softmax
// Jacobian; otherwise the activation is applied elementwise and its
// derivative is taken at the cached pre-activation.
type Dense struct {
	shapes
	inSize, outSize int

	weights *mat.Dense
	bias    *mat.VecDense
	act     activations.Activation
	softmax bool

	lastInput *mat.VecDense
	preAct    *mat.VecDense
	output    []float64

	gradW *mat.Dense
	gradB *mat.VecDense
}

// NewDense creates a dense layer with weights drawn by init. Sizes must
// be positive and the activation non-nil.
func NewDense(inSize, outSize int, act activations.Activation, init *Init) (*Dense, error) {
	if inSize <= 0 || outSize <= 0 {
		return nil, fmt.Errorf("dense layer sizes must be positive, got %dx%d", inSize, outSize)
	}
	if act == nil {
		return nil, fmt.Errorf("dense layer requires an activation")
	}
	d := &Dense{
		shapes:    shapes{in: tensor.Shape{inSize}, out: tensor.Shape{outSize}},
		inSize:    inSize,
		outSize:   outSize,
		weights:   mat.NewDense(outSize, inSize, nil),
		bias:      mat.NewVecDense(outSize, nil),
		act:       act,
		lastInput: mat.NewVecDense(inSize, nil),
		preAct:    mat.NewVecDense(outSize, nil),
		output:    make([]float64, outSize),
		gradW:     mat.NewDense(outSize, inSize, nil),
		gradB:     mat.NewVecDense(outSize, nil),
	}
	if _, ok := act.(activations.Softmax); ok {
		d.softmax = true
	}
	init.Xavier(inSize, outSize, d.weights.RawMatrix().Data)
	return d, nil
}

// Forward computes act(W*x + b) for a rank-1 input of length inSize.
func (d *Dense) Forward(x *tensor.Tensor) *tensor.Tensor {
	checkInput(d.Name(), x, d.in)

	copy(d.lastInput.RawVector().Data, x.Data())
	d.preAct.MulVec(d.weights, d.lastInput)
	d.preAct.AddVec(d.preAct, d.bias)

	z := d.preAct.RawVector().Data
	if d.softmax {
		activations.Softmax{}.ActivateVector(d.output, z)
	} else {
		for i, v := range z {
			d.output[i] = d.act.Activate(v)
		}
	}
	out, err := tensor.FromSlice(d.output, d.out)
	if err != nil {
		panic(err)
	}
	return out
}

// Backward accumulates weight and bias gradients from grad and returns
// the gradient with respect to the input.
func (d *Dense) Backward(grad *tensor.Tensor) *tensor.Tensor {
	checkInput(d.Name(), grad, d.out)

	g := grad.Data()
	dz := mat.NewVecDense(d.outSize, nil)
	if d.softmax {
		// dz[i] = sum_j g[j] * out[i] * (delta_ij - out[j])
		dot := 0.0
		for j, oj := range d.output {
			dot += g[j] * oj
		}
		for i, oi := range d.output {
			dz.SetVec(i, oi*(g[i]-dot))
		}
	} else {
		z := d.preAct.RawVector().Data
		for i := 0; i < d.outSize; i++ {
			dz.SetVec(i, g[i]*d.act.Derivative(z[i]))
		}
	}

	d.gradW.RankOne(d.gradW, 1, dz, d.lastInput)
	d.gradB.AddVec(d.gradB, dz)

	gradIn := mat.NewVecDense(d.inSize, nil)
	gradIn.MulVec(d.weights.T(), dz)
	out, err := tensor.FromSlice(gradIn.RawVector().Data, d.in)
	if err != nil {
		panic(err)
	}
	return out
}

// Update applies accumulated gradients and zeroes the accumulators.
func (d *Dense) Update(rule opt.Optimizer) {
	rule.StepInPlace(d.weights.RawMatrix().Data, d.gradW.RawMatrix().Data)
	rule.StepInPlace(d.bias.RawVector().Data, d.gradB.RawVector().Data)
	d.gradW.Zero()
	d.gradB.Zero()
}

// Weights returns a copy of the weight matrix as a [outSize, inSize]
// tensor.
func (d *Dense) Weights() *tensor.Tensor {
	t, err := tensor.FromSlice(d.weights.RawMatrix().Data, tensor.Shape{d.outSize, d.inSize})
	if err != nil {
		panic(err)
	}
	return t
}

// SetWeights replaces the weight matrix. The tensor shape must be
// exactly [outSize, inSize].
func (d *Dense) SetWeights(w *tensor.Tensor) error {
	want := tensor.Shape{d.outSize, d.inSize}
	if !w.Shape().Equal(want) {
		return fmt.Errorf("weights shape %v, want %v", w.Shape(), want)
	}
	copy(d.weights.RawMatrix().Data, w.Data())
	return nil
}

// Bias returns a copy of the bias vector as a rank-1 tensor.
func (d *Dense) Bias() *tensor.Tensor {
	t, err := tensor.FromSlice(d.bias.RawVector().Data, tensor.Shape{d.outSize})
	if err != nil {
		panic(err)
	}
	return t
}

// SetBias replaces the bias vector. The tensor shape must be exactly
// [outSize].
func (d *Dense) SetBias(b *tensor.Tensor) error {
	want := tensor.Shape{d.outSize}
	if !b.Shape().Equal(want) {
		return fmt.Errorf("bias shape %v, want %v", b.Shape(), want)
	}
	copy(d.bias.RawVector().Data, b.Data())
	return nil
}

// Name identifies the layer type.
func (d *Dense) Name() string { return "Dense" }

// Params returns the number of trainable parameters.
func (d *Dense) Params() int { return d.outSize*d.inSize + d.outSize }

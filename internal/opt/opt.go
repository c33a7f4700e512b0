// Package opt provides parameter-update rules for training.
package opt

import "math"

// Optimizer updates a flat parameter buffer from a matching gradient
// buffer. Layers call StepInPlace once per backward pass with their own
// parameter and gradient slices.
type Optimizer interface {
	// Step computes updated parameters and returns them in a new slice.
	Step(params, gradients []float64) []float64

	// StepInPlace updates params in place.
	StepInPlace(params, gradients []float64)

	// LearningRate returns the current learning rate.
	LearningRate() float64

	// SetLearningRate updates the learning rate (used by schedulers).
	SetLearningRate(lr float64)
}

// SGD is plain gradient descent: params -= lr * gradients.
type SGD struct {
	LR float64
}

// NewSGD creates an SGD optimizer with the given learning rate.
func NewSGD(lr float64) *SGD {
	return &SGD{LR: lr}
}

// Step computes updated parameters: params - lr * gradients.
func (s *SGD) Step(params, gradients []float64) []float64 {
	result := make([]float64, len(params))
	copy(result, params)
	s.StepInPlace(result, gradients)
	return result
}

// StepInPlace updates params in place: params -= lr * gradients.
func (s *SGD) StepInPlace(params, gradients []float64) {
	for i := range params {
		params[i] -= s.LR * gradients[i]
	}
}

// LearningRate returns the current learning rate.
func (s *SGD) LearningRate() float64 { return s.LR }

// SetLearningRate updates the learning rate.
func (s *SGD) SetLearningRate(lr float64) { s.LR = lr }

// Adam implements the Adam update rule with bias-corrected first and
// second moment estimates. Moment buffers are kept per parameter slice,
// keyed by the slice's backing array, so each layer's weights and biases
// get independent state.
type Adam struct {
	LR      float64
	Beta1   float64 // Exponential decay rate for the first moment
	Beta2   float64 // Exponential decay rate for the second moment
	Epsilon float64 // Small constant for numerical stability

	state map[*float64]*adamState
}

type adamState struct {
	m, v []float64
	t    int
}

// NewAdam creates an Adam optimizer with the usual defaults
// (beta1=0.9, beta2=0.999, eps=1e-8).
func NewAdam(lr float64) *Adam {
	return &Adam{
		LR:      lr,
		Beta1:   0.9,
		Beta2:   0.999,
		Epsilon: 1e-8,
		state:   make(map[*float64]*adamState),
	}
}

func (a *Adam) stateFor(params []float64) *adamState {
	if a.state == nil {
		a.state = make(map[*float64]*adamState)
	}
	key := &params[0]
	st, ok := a.state[key]
	if !ok {
		st = &adamState{
			m: make([]float64, len(params)),
			v: make([]float64, len(params)),
		}
		a.state[key] = st
	}
	return st
}

// Step computes updated parameters and returns them in a new slice.
func (a *Adam) Step(params, gradients []float64) []float64 {
	result := make([]float64, len(params))
	copy(result, params)
	a.step(result, params, gradients)
	return result
}

// StepInPlace updates params in place.
func (a *Adam) StepInPlace(params, gradients []float64) {
	a.step(params, params, gradients)
}

// step applies the update to dst; moment state is keyed by stateKey so
// Step and StepInPlace share state for the same parameter buffer.
func (a *Adam) step(dst, stateKey, gradients []float64) {
	if len(dst) == 0 {
		return
	}
	st := a.stateFor(stateKey)
	st.t++
	c1 := 1 - math.Pow(a.Beta1, float64(st.t))
	c2 := 1 - math.Pow(a.Beta2, float64(st.t))
	for i := range dst {
		g := gradients[i]
		st.m[i] = a.Beta1*st.m[i] + (1-a.Beta1)*g
		st.v[i] = a.Beta2*st.v[i] + (1-a.Beta2)*g*g
		mHat := st.m[i] / c1
		vHat := st.v[i] / c2
		dst[i] -= a.LR * mHat / (math.Sqrt(vHat) + a.Epsilon)
	}
}

// LearningRate returns the current learning rate.
func (a *Adam) LearningRate() float64 { return a.LR }

// SetLearningRate updates the learning rate.
func (a *Adam) SetLearningRate(lr float64) { a.LR = lr }

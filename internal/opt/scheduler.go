package opt

// Scheduler adjusts an optimizer's learning rate over training.
type Scheduler interface {
	// Step advances the schedule by one epoch.
	Step()

	// LR returns the optimizer's current learning rate.
	LR() float64
}

// StepLR multiplies the learning rate by Gamma every StepSize epochs.
type StepLR struct {
	optimizer Optimizer
	stepSize  int
	gamma     float64
	lastEpoch int
}

// NewStepLR creates a StepLR schedule driving optimizer.
func NewStepLR(optimizer Optimizer, stepSize int, gamma float64) *StepLR {
	return &StepLR{
		optimizer: optimizer,
		stepSize:  stepSize,
		gamma:     gamma,
	}
}

// Step advances the schedule by one epoch, decaying the rate on every
// stepSize-th call.
func (s *StepLR) Step() {
	s.lastEpoch++
	if s.lastEpoch%s.stepSize == 0 {
		s.optimizer.SetLearningRate(s.optimizer.LearningRate() * s.gamma)
	}
}

// LR returns the optimizer's current learning rate.
func (s *StepLR) LR() float64 {
	return s.optimizer.LearningRate()
}

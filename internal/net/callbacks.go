package net

import (
	"log"
	"math"
	"os"
)

// Callback observes training progress during Fit. ShouldStop is polled
// after every epoch; returning true ends training early.
type Callback interface {
	OnTrainBegin(n *Network)
	OnEpochEnd(n *Network, epoch int, loss float64)
	OnTrainEnd(n *Network)
	ShouldStop() bool
}

// BaseCallback provides no-op implementations; embed it to implement
// only the hooks of interest.
type BaseCallback struct{}

func (BaseCallback) OnTrainBegin(n *Network)                     {}
func (BaseCallback) OnEpochEnd(n *Network, epoch int, l float64) {}
func (BaseCallback) OnTrainEnd(n *Network)                       {}
func (BaseCallback) ShouldStop() bool                            { return false }

// Logger logs the mean loss every Interval epochs (every epoch when
// Interval <= 1).
type Logger struct {
	BaseCallback
	Interval int
	Log      *log.Logger
}

// NewLogger creates a Logger writing to stderr.
func NewLogger(interval int) *Logger {
	return &Logger{
		Interval: interval,
		Log:      log.New(os.Stderr, "", log.LstdFlags),
	}
}

func (lg *Logger) OnEpochEnd(n *Network, epoch int, loss float64) {
	interval := lg.Interval
	if interval < 1 {
		interval = 1
	}
	if (epoch+1)%interval == 0 {
		lg.Log.Printf("epoch %d: loss %.6f", epoch+1, loss)
	}
}

// EarlyStopping stops training when the loss has not improved by at
// least MinDelta for Patience consecutive epochs.
type EarlyStopping struct {
	BaseCallback
	Patience int
	MinDelta float64

	best float64
	wait int
	stop bool
}

// NewEarlyStopping creates an EarlyStopping callback.
func NewEarlyStopping(patience int, minDelta float64) *EarlyStopping {
	return &EarlyStopping{Patience: patience, MinDelta: minDelta}
}

func (es *EarlyStopping) OnTrainBegin(n *Network) {
	es.best = math.Inf(1)
	es.wait = 0
	es.stop = false
}

func (es *EarlyStopping) OnEpochEnd(n *Network, epoch int, loss float64) {
	if loss < es.best-es.MinDelta {
		es.best = loss
		es.wait = 0
		return
	}
	es.wait++
	if es.wait >= es.Patience {
		es.stop = true
	}
}

func (es *EarlyStopping) ShouldStop() bool { return es.stop }

// ModelCheckpoint writes the network's weights to Path whenever the
// epoch loss improves on the best seen so far.
type ModelCheckpoint struct {
	BaseCallback
	Path string

	best float64
	Err  error // first save error, if any
}

// NewModelCheckpoint creates a ModelCheckpoint writing to path.
func NewModelCheckpoint(path string) *ModelCheckpoint {
	return &ModelCheckpoint{Path: path}
}

func (mc *ModelCheckpoint) OnTrainBegin(n *Network) {
	mc.best = math.Inf(1)
	mc.Err = nil
}

func (mc *ModelCheckpoint) OnEpochEnd(n *Network, epoch int, loss float64) {
	if loss >= mc.best {
		return
	}
	mc.best = loss
	if err := n.SaveWeightsFile(mc.Path); err != nil && mc.Err == nil {
		mc.Err = err
	}
}

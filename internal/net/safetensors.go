package net

import (
	"fmt"
	"io"
	"os"

	"github.com/nlpodyssey/safetensors"
	"github.com/nlpodyssey/safetensors/dtype"

	"github.com/tensornet-go/tensornet/internal/layer"
	"github.com/tensornet-go/tensornet/internal/tensor"
)

// Weights are persisted in safetensors format. Tensor names encode the
// layer index: layer{i}.weight / layer{i}.bias for dense layers and
// layer{i}.kernel / layer{i}.bias for convolutions. Parameterless
// layers contribute nothing. Loading requires the same architecture the
// weights were saved from.

const headerSizeLimit = 100 * 1024 * 1024

// SaveWeights writes all trainable parameters to w.
func (n *Network) SaveWeights(w io.Writer) error {
	var tensors []safetensors.Tensor
	add := func(name string, t *tensor.Tensor) error {
		st, err := safetensors.NewTensor(name, dtype.F64, t.Shape(), t.Data())
		if err != nil {
			return fmt.Errorf("net: tensor %s: %w", name, err)
		}
		tensors = append(tensors, st)
		return nil
	}

	for i, l := range n.layers {
		switch lt := l.(type) {
		case *layer.Dense:
			if err := add(fmt.Sprintf("layer%d.weight", i), lt.Weights()); err != nil {
				return err
			}
			if err := add(fmt.Sprintf("layer%d.bias", i), lt.Bias()); err != nil {
				return err
			}
		case *layer.Conv2D:
			if err := add(fmt.Sprintf("layer%d.kernel", i), lt.Kernels()); err != nil {
				return err
			}
			if err := add(fmt.Sprintf("layer%d.bias", i), lt.Bias()); err != nil {
				return err
			}
		}
	}
	return safetensors.Serialize(w, tensors, nil)
}

// LoadWeights reads parameters from r and applies them to the matching
// layers. Every parameterized layer must find its tensors, with the
// exact shapes the architecture defines.
func (n *Network) LoadWeights(r io.Reader) error {
	st, err := safetensors.ReadAll(r, headerSizeLimit)
	if err != nil {
		return fmt.Errorf("net: reading weights: %w", err)
	}
	byName := make(map[string]safetensors.Tensor, len(st.Tensors))
	for _, t := range st.Tensors {
		byName[t.Name()] = t
	}

	get := func(name string) (*tensor.Tensor, error) {
		t, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("net: missing tensor %s", name)
		}
		if t.DType() != dtype.F64 {
			return nil, fmt.Errorf("net: tensor %s has dtype %s, want F64", name, t.DType())
		}
		data, ok := t.Data().([]float64)
		if !ok {
			return nil, fmt.Errorf("net: tensor %s has unexpected data type", name)
		}
		out, err := tensor.FromSlice(data, tensor.Shape(t.Shape()))
		if err != nil {
			return nil, fmt.Errorf("net: tensor %s: %w", name, err)
		}
		return out, nil
	}

	for i, l := range n.layers {
		switch lt := l.(type) {
		case *layer.Dense:
			w, err := get(fmt.Sprintf("layer%d.weight", i))
			if err != nil {
				return err
			}
			if err := lt.SetWeights(w); err != nil {
				return fmt.Errorf("net: layer %d: %w", i, err)
			}
			b, err := get(fmt.Sprintf("layer%d.bias", i))
			if err != nil {
				return err
			}
			if err := lt.SetBias(b); err != nil {
				return fmt.Errorf("net: layer %d: %w", i, err)
			}
		case *layer.Conv2D:
			k, err := get(fmt.Sprintf("layer%d.kernel", i))
			if err != nil {
				return err
			}
			if err := lt.SetKernels(k); err != nil {
				return fmt.Errorf("net: layer %d: %w", i, err)
			}
			b, err := get(fmt.Sprintf("layer%d.bias", i))
			if err != nil {
				return err
			}
			if err := lt.SetBias(b); err != nil {
				return fmt.Errorf("net: layer %d: %w", i, err)
			}
		}
	}
	return nil
}

// SaveWeightsFile writes all trainable parameters to path.
func (n *Network) SaveWeightsFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("net: %w", err)
	}
	if err := n.SaveWeights(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadWeightsFile reads parameters from path.
func (n *Network) LoadWeightsFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("net: %w", err)
	}
	defer f.Close()
	return n.LoadWeights(f)
}

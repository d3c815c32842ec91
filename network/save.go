package network

import (
	"fmt"

	"github.com/oysteijo/gosimdnn/activation"
	"github.com/oysteijo/gosimdnn/internal/npyarray"
)

// Save writes the network's parameters and architecture to path as a
// zipped bundle of typed arrays: weight_i and bias_i per layer (forward
// order), followed by a single fixed-width "activations" byte-string array
// naming each layer's activation. Ported from neuralnet_save, minus its
// fixed 128-byte filename truncation check — Go strings carry no such
// buffer to overflow.
func (n *Network) Save(path string) error {
	b := &npyarray.Bundle{}
	names := make([]string, len(n.Layers))
	for i, l := range n.Layers {
		if err := b.AddFloat32(fmt.Sprintf("weight_%d", i), []int{l.NIn, l.NOut}, l.Weight); err != nil {
			return fmt.Errorf("network: Save: %w", err)
		}
		if err := b.AddFloat32(fmt.Sprintf("bias_%d", i), []int{l.NOut}, l.Bias); err != nil {
			return fmt.Errorf("network: Save: %w", err)
		}
		names[i] = l.Act.Name
	}
	if err := b.AddFixedStrings("activations", names); err != nil {
		return fmt.Errorf("network: Save: %w", err)
	}
	if err := b.Save(path); err != nil {
		return fmt.Errorf("network: Save: %w", err)
	}
	return nil
}

// Load reconstructs a Network from a file written by Save. The returned
// network has no loss set; call SetLoss before Backpropagation.
func Load(path string) (*Network, error) {
	b, err := npyarray.Load(path)
	if err != nil {
		return nil, fmt.Errorf("network: Load: %w", err)
	}
	names, err := b.FixedStrings("activations")
	if err != nil {
		return nil, fmt.Errorf("network: Load: %w", err)
	}

	layers := make([]*Layer, len(names))
	for i, name := range names {
		weight, shape, err := b.Float32(fmt.Sprintf("weight_%d", i))
		if err != nil {
			return nil, fmt.Errorf("network: Load: %w", err)
		}
		if len(shape) != 2 {
			return nil, fmt.Errorf("network: Load: weight_%d has shape %v, want 2 dimensions", i, shape)
		}
		bias, _, err := b.Float32(fmt.Sprintf("bias_%d", i))
		if err != nil {
			return nil, fmt.Errorf("network: Load: %w", err)
		}
		act, err := activation.ByName(name)
		if err != nil {
			return nil, fmt.Errorf("network: Load: layer %d: %w", i, err)
		}
		layers[i] = &Layer{
			NIn:    shape[0],
			NOut:   shape[1],
			Weight: weight,
			Bias:   bias,
			Act:    act,
		}
	}
	return &Network{Layers: layers}, nil
}

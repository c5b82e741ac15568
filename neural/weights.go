package neural

import "fmt"

// LayerWeights is the flattened form of one layer.
type LayerWeights struct {
	W []float32 `json:"w"` // [out * in], row-major
	B []float32 `json:"b"` // [out]
}

// BrainWeights holds a network's shape and flattened weights for serialization.
type BrainWeights struct {
	Shape  Shape          `json:"shape"`
	Layers []LayerWeights `json:"layers"`
}

// NumLayers returns the number of weight layers (hidden layers + output).
func (b *Brain) NumLayers() int {
	return len(b.layers)
}

// Weights returns a copy of layer i's row-major weight matrix.
func (b *Brain) Weights(i int) []float32 {
	return append([]float32(nil), b.layers[i].W.Data...)
}

// Biases returns a copy of layer i's bias vector.
func (b *Brain) Biases(i int) []float32 {
	return append([]float32(nil), b.layers[i].B...)
}

// SetWeights replaces layer i's weight matrix. Values are clamped to
// [-MaxWeight, MaxWeight].
func (b *Brain) SetWeights(i int, w []float32) error {
	if i < 0 || i >= len(b.layers) {
		return fmt.Errorf("%w: layer %d of %d", ErrShapeMismatch, i, len(b.layers))
	}
	dst := b.layers[i].W.Data
	if len(w) != len(dst) {
		return fmt.Errorf("%w: layer %d has %d weights, got %d", ErrShapeMismatch, i, len(dst), len(w))
	}
	for j, v := range w {
		dst[j] = clampWeight(v)
	}
	return nil
}

// SetBiases replaces layer i's bias vector.
func (b *Brain) SetBiases(i int, bias []float32) error {
	if i < 0 || i >= len(b.layers) {
		return fmt.Errorf("%w: layer %d of %d", ErrShapeMismatch, i, len(b.layers))
	}
	dst := b.layers[i].B
	if len(bias) != len(dst) {
		return fmt.Errorf("%w: layer %d has %d biases, got %d", ErrShapeMismatch, i, len(dst), len(bias))
	}
	for j, v := range bias {
		dst[j] = clampWeight(v)
	}
	return nil
}

// MarshalWeights flattens the network for serialization.
func (b *Brain) MarshalWeights() BrainWeights {
	bw := BrainWeights{Shape: b.Shape(), Layers: make([]LayerWeights, len(b.layers))}
	for i := range b.layers {
		bw.Layers[i] = LayerWeights{W: b.Weights(i), B: b.Biases(i)}
	}
	return bw
}

// UnmarshalWeights restores weights from flattened form. The stored shape
// must match the brain's shape.
func (b *Brain) UnmarshalWeights(bw BrainWeights) error {
	if !bw.Shape.Equal(b.shape) || len(bw.Layers) != len(b.layers) {
		return fmt.Errorf("%w: stored %v, brain %v", ErrShapeMismatch, bw.Shape, b.shape)
	}
	for i, l := range bw.Layers {
		if err := b.SetWeights(i, l.W); err != nil {
			return err
		}
		if err := b.SetBiases(i, l.B); err != nil {
			return err
		}
	}
	return nil
}

// NewBrainFromWeights rebuilds a network from its flattened form.
func NewBrainFromWeights(bw BrainWeights) (*Brain, error) {
	if err := bw.Shape.validate(); err != nil {
		return nil, err
	}
	b := newEmpty(bw.Shape)
	if err := b.UnmarshalWeights(bw); err != nil {
		return nil, err
	}
	return b, nil
}

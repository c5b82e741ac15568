// Package neural provides feedforward neural network brains for organisms.
package neural

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

// Weight bounds and mutation noise.
const (
	MaxWeight        = 2.0
	MutationStrength = 0.5 // Max absolute perturbation per mutated weight
)

// layer is one fully connected layer. W is row-major with one row per output.
type layer struct {
	W blas32.General
	B []float32
}

// Brain is a feedforward network with tanh activations on every layer. The
// activation is a rational approximation of tanh, within 0.025 of the exact
// value and saturating at ±1 for |x| >= 3.
// Forward reuses internal scratch buffers, so a Brain must not be evaluated
// from multiple goroutines at once.
type Brain struct {
	shape   Shape
	layers  []layer
	scratch [][]float32
}

// NewBrain creates a network of the given shape with Xavier-uniform weights
// and zero biases.
func NewBrain(rng *rand.Rand, shape Shape) (*Brain, error) {
	if err := shape.validate(); err != nil {
		return nil, err
	}
	b := newEmpty(shape)
	for _, l := range b.layers {
		limit := float32(math.Sqrt(6.0 / float64(l.W.Rows+l.W.Cols)))
		for i := range l.W.Data {
			l.W.Data[i] = (rng.Float32()*2 - 1) * limit
		}
	}
	return b, nil
}

// newEmpty allocates a zeroed network. shape must be valid.
func newEmpty(shape Shape) *Brain {
	sizes := shape.sizes()
	b := &Brain{
		shape:   Shape{Inputs: shape.Inputs, Hidden: append([]int(nil), shape.Hidden...), Outputs: shape.Outputs},
		layers:  make([]layer, len(sizes)-1),
		scratch: make([][]float32, len(sizes)-1),
	}
	for i := range b.layers {
		in, out := sizes[i], sizes[i+1]
		b.layers[i] = layer{
			W: blas32.General{Rows: out, Cols: in, Stride: in, Data: make([]float32, in*out)},
			B: make([]float32, out),
		}
		b.scratch[i] = make([]float32, out)
	}
	return b
}

// Shape returns a copy of the network's layer sizes.
func (b *Brain) Shape() Shape {
	return Shape{Inputs: b.shape.Inputs, Hidden: append([]int(nil), b.shape.Hidden...), Outputs: b.shape.Outputs}
}

// Forward runs the network and returns a freshly allocated output vector with
// values in [-1,1]. It fails with ErrShapeMismatch if len(inputs) differs from
// the configured input size.
func (b *Brain) Forward(inputs []float32) ([]float32, error) {
	if len(inputs) != b.shape.Inputs {
		return nil, fmt.Errorf("%w: got %d inputs, want %d", ErrShapeMismatch, len(inputs), b.shape.Inputs)
	}

	x := blas32.Vector{N: len(inputs), Inc: 1, Data: inputs}
	for i, l := range b.layers {
		out := b.scratch[i]
		copy(out, l.B)
		y := blas32.Vector{N: len(out), Inc: 1, Data: out}
		blas32.Gemv(blas.NoTrans, 1, l.W, x, 1, y)
		for j := range out {
			out[j] = tanh(out[j])
		}
		x = y
	}

	result := make([]float32, b.shape.Outputs)
	copy(result, x.Data)
	return result, nil
}

// Mutate perturbs each weight and bias with probability rate by uniform
// noise in [-MutationStrength, MutationStrength], clamped to [-MaxWeight, MaxWeight].
func (b *Brain) Mutate(rng *rand.Rand, rate float32) {
	perturb := func(vals []float32) {
		for i := range vals {
			if rng.Float32() < rate {
				vals[i] = clampWeight(vals[i] + (rng.Float32()*2-1)*MutationStrength)
			}
		}
	}
	for _, l := range b.layers {
		perturb(l.W.Data)
		perturb(l.B)
	}
}

// Crossover builds a child whose weight matrix and bias vector for each layer
// are taken whole from either parent with equal probability. Parents with
// different shapes yield ErrShapeMismatch and are left untouched.
func Crossover(rng *rand.Rand, a, b *Brain) (*Brain, error) {
	if !a.shape.Equal(b.shape) {
		return nil, fmt.Errorf("%w: %v vs %v", ErrShapeMismatch, a.shape, b.shape)
	}
	child := newEmpty(a.shape)
	for i := range child.layers {
		src := a.layers[i]
		if rng.Intn(2) == 1 {
			src = b.layers[i]
		}
		copy(child.layers[i].W.Data, src.W.Data)

		src = a.layers[i]
		if rng.Intn(2) == 1 {
			src = b.layers[i]
		}
		copy(child.layers[i].B, src.B)
	}
	return child, nil
}

// CrossoverWith is Crossover with b as the first parent.
func (b *Brain) CrossoverWith(rng *rand.Rand, other *Brain) (*Brain, error) {
	return Crossover(rng, b, other)
}

// Clone creates a deep copy of the network.
func (b *Brain) Clone() *Brain {
	c := newEmpty(b.shape)
	for i, l := range b.layers {
		copy(c.layers[i].W.Data, l.W.Data)
		copy(c.layers[i].B, l.B)
	}
	return c
}

func clampWeight(w float32) float32 {
	if w > MaxWeight {
		return MaxWeight
	}
	if w < -MaxWeight {
		return -MaxWeight
	}
	return w
}

// tanh uses a fast rational approximation avoiding float64 conversion.
// It reaches exactly ±1 at |x| = 3 and is clamped there beyond it.
func tanh(x float32) float32 {
	if x >= 3 {
		return 1
	}
	if x <= -3 {
		return -1
	}
	x2 := x * x
	return x * (27 + x2) / (27 + 9*x2)
}

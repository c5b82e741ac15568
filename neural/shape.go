package neural

import (
	"errors"
	"fmt"
	"strings"
)

// Network dimensions fixed by the sensing and acting surfaces.
const (
	NumInputs  = 8 // food sin/cos/proximity, organism sin/cos/proximity, energy, speed
	NumOutputs = 2 // thrust, turn
)

// ErrShapeMismatch is returned when two brains or a brain and an input vector
// disagree on layer sizes.
var ErrShapeMismatch = errors.New("neural: shape mismatch")

// Shape describes the layer sizes of a feedforward network.
type Shape struct {
	Inputs  int   `json:"inputs"`
	Hidden  []int `json:"hidden"`
	Outputs int   `json:"outputs"`
}

// NewShape returns the standard shape with the given hidden topology.
func NewShape(hiddenLayers, neuronsPerLayer int) Shape {
	hidden := make([]int, hiddenLayers)
	for i := range hidden {
		hidden[i] = neuronsPerLayer
	}
	return Shape{Inputs: NumInputs, Hidden: hidden, Outputs: NumOutputs}
}

// Equal reports whether two shapes have identical layer sizes.
func (s Shape) Equal(o Shape) bool {
	if s.Inputs != o.Inputs || s.Outputs != o.Outputs || len(s.Hidden) != len(o.Hidden) {
		return false
	}
	for i := range s.Hidden {
		if s.Hidden[i] != o.Hidden[i] {
			return false
		}
	}
	return true
}

// sizes returns every layer width from input to output.
func (s Shape) sizes() []int {
	out := make([]int, 0, len(s.Hidden)+2)
	out = append(out, s.Inputs)
	out = append(out, s.Hidden...)
	return append(out, s.Outputs)
}

func (s Shape) validate() error {
	if s.Inputs <= 0 || s.Outputs <= 0 || len(s.Hidden) == 0 {
		return fmt.Errorf("%w: %v", ErrShapeMismatch, s)
	}
	for _, n := range s.Hidden {
		if n <= 0 {
			return fmt.Errorf("%w: %v", ErrShapeMismatch, s)
		}
	}
	return nil
}

func (s Shape) String() string {
	parts := make([]string, 0, len(s.Hidden)+2)
	for _, n := range s.sizes() {
		parts = append(parts, fmt.Sprint(n))
	}
	return strings.Join(parts, "-")
}

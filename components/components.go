// Package components defines plain data shared between the simulation
// systems and the ECS food store.
package components

// Food is a one-shot energy pellet. Consumed food stays in the world until
// the next cleanup pass.
type Food struct {
	Energy   float32
	Radius   float32
	Consumed bool
}

// Consume marks the food eaten and returns its payload. It returns 0 if the
// food was already consumed.
func (f *Food) Consume() float32 {
	if f.Consumed {
		return 0
	}
	f.Consumed = true
	return f.Energy
}

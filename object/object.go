// Package object defines the capability set of the instances objref manages
// and the default instance type.
package object

// Object is a wrapped native instance. The registry is agnostic to what it computes.
type Object interface {
	// Compute applies the instance's operation to factor.
	Compute(factor float64) float64

	// Preset returns the value the instance was constructed with.
	Preset() float64
}

// Constructor builds a new instance from its preset.
type Constructor func(preset float64) (Object, error)

// Multiplier multiplies every factor by its preset.
type Multiplier struct {
	preset float64
}

// NewMultiplier is the default Constructor. It never fails.
func NewMultiplier(preset float64) (Object, error) {
	return &Multiplier{preset: preset}, nil
}

// Compute returns preset * factor.
func (m *Multiplier) Compute(factor float64) float64 {
	return m.preset * factor
}

// Preset returns the construction preset.
func (m *Multiplier) Preset() float64 {
	return m.preset
}

package h2h

import (
	"fmt"
	"math"
)

// weightTolerance is the allowed deviation of the weight sum from 1.0
const weightTolerance = 1e-9

// Blender combines a historical probability with a model probability using fixed weights
type Blender struct {
	historical float64
	model      float64
}

// NewBlender validates the weights and returns a Blender. Weights must each lie in
// [0,1] and sum to 1.
func NewBlender(wHistorical, wModel float64) (*Blender, error) {
	if err := ValidateWeights(wHistorical, wModel); err != nil {
		return nil, err
	}
	return &Blender{historical: wHistorical, model: wModel}, nil
}

// NewProfileBlender builds a Blender from a sport profile's weights
func NewProfileBlender(profile SportProfile) (*Blender, error) {
	return NewBlender(profile.HistoricalWeight, profile.ModelWeight)
}

// ValidateWeights reports ErrWeightConfiguration for weights that are not a convex pair
func ValidateWeights(wHistorical, wModel float64) error {
	if math.IsNaN(wHistorical) || math.IsNaN(wModel) {
		return fmt.Errorf("%w: NaN weight", ErrWeightConfiguration)
	}
	if wHistorical < 0 || wHistorical > 1 || wModel < 0 || wModel > 1 {
		return fmt.Errorf("%w: weights must be within [0,1], got %.4f/%.4f", ErrWeightConfiguration, wHistorical, wModel)
	}
	if math.Abs(wHistorical+wModel-1) > weightTolerance {
		return fmt.Errorf("%w: weights sum to %.4f", ErrWeightConfiguration, wHistorical+wModel)
	}
	return nil
}

// Weights returns the configured historical and model weights
func (b *Blender) Weights() (float64, float64) {
	return b.historical, b.model
}

// Blend returns the weighted probability. Inputs are clamped to [0,1] first so the
// result always lies between them.
func (b *Blender) Blend(pHistorical, pModel float64) float64 {
	return clamp01(clamp01(pHistorical)*b.historical + clamp01(pModel)*b.model)
}

// BlendValue applies the same convex combination to unbounded values such as totals
func (b *Blender) BlendValue(historical, model float64) float64 {
	return historical*b.historical + model*b.model
}

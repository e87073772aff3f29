package matching

import (
	"fmt"
	"math"
)

const weightSumTolerance = 0.001

// Weights defines how much each sub-score contributes to the combined score.
// All weights must be non-negative and sum to 1.0.
type Weights struct {
	Education float64 `mapstructure:"education" json:"education" yaml:"education" validate:"gte=0,lte=1"`
	Skills    float64 `mapstructure:"skills" json:"skills" yaml:"skills" validate:"gte=0,lte=1"`
	Sector    float64 `mapstructure:"sector" json:"sector" yaml:"sector" validate:"gte=0,lte=1"`
	Location  float64 `mapstructure:"location" json:"location" yaml:"location" validate:"gte=0,lte=1"`
}

// DefaultWeights returns the stock weight distribution.
func DefaultWeights() Weights {
	return Weights{
		Education: 0.3,
		Skills:    0.4,
		Sector:    0.2,
		Location:  0.1,
	}
}

func (w Weights) Sum() float64 {
	return w.Education + w.Skills + w.Sector + w.Location
}

// Validate checks that weights sum to 1.0 and none are negative.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"education": w.Education,
		"skills":    w.Skills,
		"sector":    w.Sector,
		"location":  w.Location,
	} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%s weight must be non-negative, got %v", name, v)
		}
	}
	if math.Abs(w.Sum()-1.0) > weightSumTolerance {
		return fmt.Errorf("weights sum to %.4f, must sum to 1.0", w.Sum())
	}
	return nil
}

// IsZero reports whether no weight was configured at all.
func (w Weights) IsZero() bool {
	return w == Weights{}
}

func (w Weights) combine(s SubScores) float64 {
	return w.Education*s.Education +
		w.Skills*s.Skills +
		w.Sector*s.Sector +
		w.Location*s.Location
}

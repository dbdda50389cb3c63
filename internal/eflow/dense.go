package eflow

import (
	"math"

	"github.com/banshee-data/eflowrec/internal/calo"
)

// DensePolicy flags tracks whose neighbourhood holds far more energy than
// their own expected deposit. The pull threshold falls linearly in
// log10(pT): threshold = Intercept - Slope·log10(pT/GeV). The coefficients
// are tuned values.
type DensePolicy struct {
	Cone      float64 // zero disables the check
	Intercept float64
	Slope     float64
}

// Enabled reports whether the check runs.
func (p DensePolicy) Enabled() bool { return p.Cone > 0 }

// Threshold returns the pull threshold for a track of the given pT.
func (p DensePolicy) Threshold(pt float64) float64 {
	if pt <= 0 {
		return math.Inf(1)
	}
	return p.Intercept - p.Slope*math.Log10(pt)
}

// Pull returns (coneEnergy - expected) / sigma, or 0 without a usable sigma.
func (p DensePolicy) Pull(coneEnergy, expected, sigma float64) float64 {
	if sigma <= 0 {
		return 0
	}
	return (coneEnergy - expected) / sigma
}

// IsDense reports whether pull exceeds the threshold at pt.
func (p DensePolicy) IsDense(pull, pt float64) bool {
	return p.Enabled() && pull > p.Threshold(pt)
}

// ConeEnergy sums the energy of clusters whose centre lies within cone of
// pos.
func ConeEnergy(pos calo.EtaPhi, clusters []*calo.Cluster, cone float64) float64 {
	var e float64
	cone2 := cone * cone
	for _, c := range clusters {
		if c.Empty() {
			continue
		}
		if calo.DeltaR2(pos, c.Center()) <= cone2 {
			e += c.Energy()
		}
	}
	return e
}

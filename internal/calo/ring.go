package calo

import "fmt"

// Ring is an annulus of cells in one layer, between Inner (inclusive) and
// Outer (exclusive) (eta, phi) distance from the track's extrapolated
// position in that layer. Rings are the unit of ordered cell removal.
type Ring struct {
	Layer Layer   `json:"layer" toml:"layer"`
	Inner float64 `json:"inner" toml:"inner"`
	Outer float64 `json:"outer" toml:"outer"`
}

func (r Ring) String() string {
	return fmt.Sprintf("%s[%.4f,%.4f)", r.Layer, r.Inner, r.Outer)
}

// Contains reports whether a cell at distance dr from the ring centre
// lies inside the band.
func (r Ring) Contains(dr float64) bool {
	return dr >= r.Inner && dr < r.Outer
}

// Validate checks the ring geometry.
func (r Ring) Validate() error {
	if !r.Layer.Valid() {
		return fmt.Errorf("ring layer %s is not a sampling layer", r.Layer)
	}
	if r.Inner < 0 || r.Outer <= r.Inner {
		return fmt.Errorf("ring %s has invalid radii", r)
	}
	return nil
}

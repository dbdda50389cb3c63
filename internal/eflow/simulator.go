package eflow

import (
	"math"

	"github.com/banshee-data/eflowrec/internal/calo"
	"github.com/banshee-data/eflowrec/internal/showerparams"
)

// Shower is the simulated calorimeter response to one track.
type Shower struct {
	ExpectedEnergy   float64
	ExpectedSigma    float64
	FirstInteraction calo.Layer
	Rings            []calo.Ring // cell removal order
}

// Simulator predicts the shower of a charged track from the parameter
// table. The table is read-only and may be shared between goroutines.
type Simulator struct {
	Table           *showerparams.Table
	IntegrationCone float64
}

// LayerEnergies integrates the current cell energy of clusters within cone
// of the track's extrapolated position, per layer. Cells shared between
// clusters are counted once.
func (s Simulator) LayerEnergies(track *calo.Track, clusters []*calo.Cluster, cone float64) [calo.NumLayers]float64 {
	var out [calo.NumLayers]float64
	cone2 := cone * cone
	seen := make(map[calo.CellID]bool)
	for _, c := range clusters {
		for i := 0; i < c.NumCells(); i++ {
			cell := c.Cell(i)
			if !cell.Layer.Valid() || cell.Energy <= 0 || seen[cell.ID] {
				continue
			}
			pos, ok := track.Extrapolation(cell.Layer)
			if !ok {
				continue
			}
			if calo.DeltaR2(pos, cell.Position()) > cone2 {
				continue
			}
			seen[cell.ID] = true
			out[cell.Layer] += cell.Energy
		}
	}
	return out
}

// Simulate looks up the expected response of track given the clusters it
// is linked to. It returns false when the table has no bin for the track.
func (s Simulator) Simulate(track *calo.Track, clusters []*calo.Cluster, cone float64) (Shower, bool) {
	energy := track.E()
	eta := math.Abs(track.ReferencePosition().Eta)

	// Step 1: resolve the (energy, eta) bin.
	lookup, ok := s.Table.Lookup(energy, eta)
	if !ok {
		return Shower{}, false
	}

	// Step 2: first interaction layer, the first layer walking outwards
	// where the integrated deposit reaches the configured fraction of the
	// track energy.
	first := calo.LayerUnknown
	threshold := lookup.FirstInteractionFraction() * energy
	perLayer := s.LayerEnergies(track, clusters, cone)
	var cumulative float64
	for _, l := range track.Layers() {
		cumulative += perLayer[l]
		if cumulative > 0 && cumulative >= threshold {
			first = l
			break
		}
	}

	// Step 3: response for that layer, falling back to the unknown-layer
	// entry inside the table lookup.
	resp, ok := lookup.Response(first)
	if !ok {
		return Shower{}, false
	}

	return Shower{
		ExpectedEnergy:   resp.MeanFactor * energy,
		ExpectedSigma:    resp.SigmaFactor * energy,
		FirstInteraction: first,
		Rings:            resp.Rings,
	}, true
}

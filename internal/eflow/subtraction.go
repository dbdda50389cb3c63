package eflow

import (
	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/eflowrec/internal/calo"
)

// SubtractionResult summarises one track's subtraction.
type SubtractionResult struct {
	Removed      float64 // energy taken from the clusters
	Remaining    float64 // summed cluster energy left afterwards
	RingsRemoved int     // rings removed in full
	Partial      bool    // the last ring was scaled rather than removed
	Annihilated  bool
}

// SubtractionEngine removes a track's expected deposit from its clusters
// ring by ring.
type SubtractionEngine struct {
	AnnihilationSigma float64
}

// cellRef addresses one cell of one cluster.
type cellRef struct {
	cluster *calo.Cluster
	index   int
}

// Subtract removes shower.ExpectedEnergy from clusters following the
// shower's ring order. When the summed cluster energy is within
// AnnihilationSigma × sigma of zero (before or after removal) every
// cluster is annihilated instead.
func (e SubtractionEngine) Subtract(track *calo.Track, shower Shower, clusters []*calo.Cluster) SubtractionResult {
	var res SubtractionResult
	bound := e.AnnihilationSigma * shower.ExpectedSigma

	// Step 1: nothing statistically distinguishable from the track would
	// be left behind, so skip the ring walk.
	total := clusterEnergy(clusters)
	if total-shower.ExpectedEnergy <= bound {
		res.Removed = e.annihilate(clusters)
		res.Annihilated = true
		return res
	}

	// Step 2: walk the rings until the expected energy is used up.
	remaining := shower.ExpectedEnergy
	for _, ring := range shower.Rings {
		if remaining <= 0 {
			break
		}
		cells := ringCells(track, ring, clusters)
		if len(cells) == 0 {
			continue
		}
		energies := make([]float64, len(cells))
		for i, ref := range cells {
			energies[i] = ref.cluster.Cell(ref.index).Energy
		}
		ringEnergy := floats.Sum(energies)
		if ringEnergy <= 0 {
			continue
		}

		if remaining >= ringEnergy {
			for _, ref := range cells {
				res.Removed += ref.cluster.ZeroCell(ref.index)
			}
			remaining -= ringEnergy
			res.RingsRemoved++
			continue
		}

		factor := 1 - remaining/ringEnergy
		for _, ref := range cells {
			res.Removed += ref.cluster.ScaleCell(ref.index, factor)
		}
		remaining = 0
		res.Partial = true
		break
	}

	// Step 3: annihilate a residual compatible with zero.
	res.Remaining = clusterEnergy(clusters)
	if res.Remaining <= bound {
		res.Removed += e.annihilate(clusters)
		res.Remaining = 0
		res.Annihilated = true
	}
	return res
}

func (e SubtractionEngine) annihilate(clusters []*calo.Cluster) float64 {
	var removed float64
	for _, c := range clusters {
		removed += c.Annihilate()
	}
	return removed
}

// ringCells collects the cells of ring across clusters, centred on the
// track's extrapolation in the ring's layer. Cells are deduplicated by ID
// so a cell shared between clusters is scaled once.
func ringCells(track *calo.Track, ring calo.Ring, clusters []*calo.Cluster) []cellRef {
	center, ok := track.Extrapolation(ring.Layer)
	if !ok {
		center = track.ReferencePosition()
	}
	var out []cellRef
	seen := make(map[calo.CellID]bool)
	for _, c := range clusters {
		if c.Annihilated() {
			continue
		}
		for i := 0; i < c.NumCells(); i++ {
			cell := c.Cell(i)
			if cell.Layer != ring.Layer || cell.Energy <= 0 || seen[cell.ID] {
				continue
			}
			if !ring.Contains(calo.DeltaR(center, cell.Position())) {
				continue
			}
			seen[cell.ID] = true
			out = append(out, cellRef{cluster: c, index: i})
		}
	}
	return out
}

package showerparams

import (
	"fmt"
	"math"
	"sort"

	"github.com/banshee-data/eflowrec/internal/calo"
)

// Response is the expected shower for one first-interaction layer.
type Response struct {
	MeanFactor  float64
	SigmaFactor float64
	Rings       []calo.Ring // removal order
}

// Bin is one (energy, eta) cell of the table.
type Bin struct {
	FirstInteractionFraction float64
	Responses                map[calo.Layer]Response
}

type binKey struct {
	energy int
	eta    int
}

// Table is the binned shower parameter lookup. Energy points are the
// sample energies (GeV) at which bins are defined; eta edges bound |eta|
// bins, starting at the lower edge of the first bin.
type Table struct {
	energyPoints []float64
	etaEdges     []float64
	bins         map[binKey]*Bin
}

// NewTable creates an empty table over the given binning.
func NewTable(energyPoints, etaEdges []float64) (*Table, error) {
	if len(energyPoints) == 0 {
		return nil, fmt.Errorf("shower table needs at least one energy point")
	}
	if len(etaEdges) < 2 {
		return nil, fmt.Errorf("shower table needs at least two eta edges, got %d", len(etaEdges))
	}
	if !sort.Float64sAreSorted(energyPoints) || hasDuplicates(energyPoints) {
		return nil, fmt.Errorf("energy points must be strictly increasing: %v", energyPoints)
	}
	if !sort.Float64sAreSorted(etaEdges) || hasDuplicates(etaEdges) {
		return nil, fmt.Errorf("eta edges must be strictly increasing: %v", etaEdges)
	}
	if energyPoints[0] <= 0 {
		return nil, fmt.Errorf("energy points must be positive: %v", energyPoints)
	}
	return &Table{
		energyPoints: append([]float64(nil), energyPoints...),
		etaEdges:     append([]float64(nil), etaEdges...),
		bins:         make(map[binKey]*Bin),
	}, nil
}

func hasDuplicates(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i] == xs[i-1] {
			return true
		}
	}
	return false
}

// Set installs the bin for energy point ie and eta bin ieta. It is only
// used while building the table.
func (t *Table) Set(ie, ieta int, bin Bin) error {
	if ie < 0 || ie >= len(t.energyPoints) {
		return fmt.Errorf("energy index %d out of range [0,%d)", ie, len(t.energyPoints))
	}
	if ieta < 0 || ieta >= len(t.etaEdges)-1 {
		return fmt.Errorf("eta index %d out of range [0,%d)", ieta, len(t.etaEdges)-1)
	}
	if bin.FirstInteractionFraction < 0 {
		return fmt.Errorf("bin (%d,%d): negative first interaction fraction", ie, ieta)
	}
	if len(bin.Responses) == 0 {
		return fmt.Errorf("bin (%d,%d): no responses", ie, ieta)
	}
	for layer, r := range bin.Responses {
		if r.MeanFactor < 0 || r.SigmaFactor <= 0 {
			return fmt.Errorf("bin (%d,%d) layer %s: mean factor must be >= 0 and sigma factor > 0", ie, ieta, layer)
		}
		for _, ring := range r.Rings {
			if err := ring.Validate(); err != nil {
				return fmt.Errorf("bin (%d,%d) layer %s: %w", ie, ieta, layer, err)
			}
		}
	}
	b := bin
	t.bins[binKey{ie, ieta}] = &b
	return nil
}

// EnergyPoints returns a copy of the energy sample points.
func (t *Table) EnergyPoints() []float64 { return append([]float64(nil), t.energyPoints...) }

// EtaEdges returns a copy of the eta bin edges.
func (t *Table) EtaEdges() []float64 { return append([]float64(nil), t.etaEdges...) }

// Bin returns the bin at (ie, ieta), if defined.
func (t *Table) Bin(ie, ieta int) (*Bin, bool) {
	b, ok := t.bins[binKey{ie, ieta}]
	return b, ok
}

// NumBins returns the number of defined bins.
func (t *Table) NumBins() int { return len(t.bins) }

// Lookup resolves the bin(s) for a track of the given energy and eta.
// Between two energy points the result interpolates linearly in energy
// when both neighbours are defined. It reports false when the track lies
// below the first energy point, outside the eta range, or on a missing bin.
func (t *Table) Lookup(energy, eta float64) (Lookup, bool) {
	absEta := math.Abs(eta)
	if absEta < t.etaEdges[0] || absEta > t.etaEdges[len(t.etaEdges)-1] {
		return Lookup{}, false
	}
	ieta := sort.Search(len(t.etaEdges), func(i int) bool { return t.etaEdges[i] > absEta }) - 1
	if ieta >= len(t.etaEdges)-1 {
		ieta = len(t.etaEdges) - 2
	}

	if energy < t.energyPoints[0] {
		return Lookup{}, false
	}
	last := len(t.energyPoints) - 1
	if energy >= t.energyPoints[last] {
		b, ok := t.Bin(last, ieta)
		if !ok {
			return Lookup{}, false
		}
		return Lookup{low: b, high: b}, true
	}

	// energyPoints[ie] <= energy < energyPoints[ie+1]
	ie := sort.Search(len(t.energyPoints), func(i int) bool { return t.energyPoints[i] > energy }) - 1
	low, lowOK := t.Bin(ie, ieta)
	high, highOK := t.Bin(ie+1, ieta)
	switch {
	case lowOK && highOK:
		w := (energy - t.energyPoints[ie]) / (t.energyPoints[ie+1] - t.energyPoints[ie])
		return Lookup{low: low, high: high, weight: w}, true
	case lowOK:
		return Lookup{low: low, high: low}, true
	default:
		return Lookup{}, false
	}
}

// Lookup is the resolved (and possibly interpolated) table entry for one
// track.
type Lookup struct {
	low, high *Bin
	weight    float64 // weight of high
}

// FirstInteractionFraction returns the interpolated fraction of track
// energy that marks the first interaction layer.
func (l Lookup) FirstInteractionFraction() float64 {
	return lerp(l.low.FirstInteractionFraction, l.high.FirstInteractionFraction, l.weight)
}

// Response returns the interpolated response for a first-interaction
// layer, falling back to the LayerUnknown entry. The ring order is taken
// from the nearer energy point.
func (l Lookup) Response(layer calo.Layer) (Response, bool) {
	lowR, lowOK := responseFor(l.low, layer)
	highR, highOK := responseFor(l.high, layer)
	switch {
	case lowOK && highOK:
		rings := lowR.Rings
		if l.weight > 0.5 {
			rings = highR.Rings
		}
		return Response{
			MeanFactor:  lerp(lowR.MeanFactor, highR.MeanFactor, l.weight),
			SigmaFactor: lerp(lowR.SigmaFactor, highR.SigmaFactor, l.weight),
			Rings:       rings,
		}, true
	case lowOK:
		return lowR, true
	case highOK:
		return highR, true
	}
	return Response{}, false
}

func responseFor(b *Bin, layer calo.Layer) (Response, bool) {
	if r, ok := b.Responses[layer]; ok {
		return r, true
	}
	r, ok := b.Responses[calo.LayerUnknown]
	return r, ok
}

func lerp(a, b, w float64) float64 { return a + (b-a)*w }

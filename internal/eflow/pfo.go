package eflow

import (
	"fmt"

	"go-hep.org/x/hep/fmom"

	"github.com/banshee-data/eflowrec/internal/calo"
)

// PFOType tags a particle-flow object as charged or neutral.
type PFOType uint8

const (
	Charged PFOType = iota
	Neutral
)

func (t PFOType) String() string {
	switch t {
	case Charged:
		return "charged"
	case Neutral:
		return "neutral"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (t PFOType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *PFOType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "charged":
		*t = Charged
	case "neutral":
		*t = Neutral
	default:
		return fmt.Errorf("unknown PFO type %q", string(b))
	}
	return nil
}

// PFO is a reconstructed particle-flow object.
type PFO struct {
	Type   PFOType
	P4     fmom.PxPyPzE
	Charge int

	Track      *calo.TrackRef // charged only
	ClusterIDs []int

	ExpectedEnergy   float64
	ExpectedVariance float64
	DenseEnvironment bool
	Pull             float64
	NoBin            bool
	Isolated         bool

	RawEnergy float64 // neutral: cluster energy before subtraction
}

// E returns the PFO energy.
func (p *PFO) E() float64 { return p.P4.E() }

// Pt returns the PFO transverse momentum.
func (p *PFO) Pt() float64 { return p.P4.Pt() }

// pfoBuilder converts finished CaloObjects into PFOs.
type pfoBuilder struct {
	linkClusters bool
	emitted      map[*RecCluster]bool
}

func newPFOBuilder(linkClusters bool) *pfoBuilder {
	return &pfoBuilder{linkClusters: linkClusters, emitted: make(map[*RecCluster]bool)}
}

// build emits one charged PFO per track followed by at most one neutral
// PFO per cluster with energy left over. A cluster is only released as
// neutral once every track linked to it has been subtracted. The objects'
// links are destroyed afterwards.
func (b *pfoBuilder) build(objects []*CaloObject) []PFO {
	var out []PFO
	for _, obj := range objects {
		for _, t := range obj.Tracks {
			out = append(out, b.charged(t))
		}
		for _, c := range obj.Clusters {
			if p, ok := b.neutral(c); ok {
				out = append(out, p)
			}
		}
	}
	for _, obj := range objects {
		obj.release()
	}
	return out
}

func (b *pfoBuilder) charged(t *RecTrack) PFO {
	ref := t.Ref
	p := PFO{
		Type:             Charged,
		P4:               t.P4(),
		Charge:           t.Charge,
		Track:            &ref,
		ExpectedEnergy:   t.ExpectedEnergy,
		ExpectedVariance: t.ExpectedVariance,
		DenseEnvironment: t.Dense,
		Pull:             t.Pull,
		NoBin:            t.NoBin,
		Isolated:         t.Isolated,
	}
	if b.linkClusters {
		for _, l := range t.links {
			p.ClusterIDs = append(p.ClusterIDs, l.Cluster.ID)
		}
	}
	return p
}

func (b *pfoBuilder) neutral(c *RecCluster) (PFO, bool) {
	if b.emitted[c] || c.Annihilated() || c.Energy() <= 0 || !c.tracksSubtracted() {
		return PFO{}, false
	}
	b.emitted[c] = true
	return PFO{
		Type:       Neutral,
		P4:         c.P4(),
		ClusterIDs: []int{c.ID},
		RawEnergy:  c.RawEnergy(),
	}, true
}

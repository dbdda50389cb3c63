package calo

import (
	"math"

	"go-hep.org/x/hep/fmom"
)

// ClusterState tracks how far subtraction has progressed on a cluster.
type ClusterState uint8

const (
	ClusterIntact      ClusterState = iota // no cell has been written
	ClusterSubtracted                      // at least one cell was reduced
	ClusterAnnihilated                     // forced to zero and consumed
)

func (s ClusterState) String() string {
	switch s {
	case ClusterIntact:
		return "intact"
	case ClusterSubtracted:
		return "subtracted"
	case ClusterAnnihilated:
		return "annihilated"
	}
	return "unknown"
}

// Cluster is a calorimeter energy deposit made of cells.
//
// The cells handed to NewCluster are shared with upstream storage and are
// never written. The first write promotes the cluster into its event's
// CellArena (copy-on-write); from then on the cluster holds arena indices
// and the arena records are the only mutable copies. Negative-energy noise
// cells carry zero energy in every read.
type Cluster struct {
	ID int

	shared []Cell
	arena  *CellArena
	index  []int // arena index per cell, nil until promoted

	state     ClusterState
	rawEnergy float64
	rawCenter EtaPhi
	rawP4     fmom.PxPyPzE
}

// NewCluster creates an intact cluster over upstream cells.
func NewCluster(id int, cells []Cell) *Cluster {
	c := &Cluster{ID: id, shared: cells}
	c.rawEnergy = c.Energy()
	c.rawCenter = c.computeCenter()
	c.rawP4 = c.P4()
	return c
}

// Attach binds the cluster to the event's arena. It must be called before
// the first write; clusters that are written without an arena get a private
// one.
func (c *Cluster) Attach(a *CellArena) {
	if c.index != nil {
		return
	}
	c.arena = a
}

// NumCells returns the number of cells in the cluster.
func (c *Cluster) NumCells() int { return len(c.shared) }

// energyAt returns the current energy of cell i.
func (c *Cluster) energyAt(i int) float64 {
	if c.index != nil {
		return c.arena.cells[c.index[i]].Energy
	}
	if c.arena != nil {
		if idx, ok := c.arena.lookup(c.shared[i].ID); ok {
			return c.arena.cells[idx].Energy
		}
	}
	return math.Max(c.shared[i].Energy, 0)
}

// Cell returns cell i with its current energy.
func (c *Cluster) Cell(i int) Cell {
	cell := c.shared[i]
	cell.Energy = c.energyAt(i)
	return cell
}

// Energy returns the sum of current cell energies.
func (c *Cluster) Energy() float64 {
	var e float64
	for i := range c.shared {
		e += c.energyAt(i)
	}
	return e
}

// RawEnergy returns the energy before any subtraction.
func (c *Cluster) RawEnergy() float64 { return c.rawEnergy }

// State returns the subtraction state.
func (c *Cluster) State() ClusterState { return c.state }

// Annihilated reports whether the cluster was forced to zero and consumed.
func (c *Cluster) Annihilated() bool { return c.state == ClusterAnnihilated }

// Private reports whether the cluster has been promoted into the arena.
func (c *Cluster) Private() bool { return c.index != nil }

// Empty reports whether the cluster has no energy left to match against.
func (c *Cluster) Empty() bool {
	return c.state == ClusterAnnihilated || c.Energy() <= 0
}

// Center returns the energy-weighted (eta, phi) of the current cells. A
// cluster with no energy left keeps its original centre.
func (c *Cluster) Center() EtaPhi {
	if c.Energy() <= 0 {
		return c.rawCenter
	}
	return c.computeCenter()
}

func (c *Cluster) computeCenter() EtaPhi {
	var sumE, sumEta, sumDPhi float64
	refPhi := math.NaN()
	for i, cell := range c.shared {
		e := c.energyAt(i)
		if e <= 0 {
			continue
		}
		if math.IsNaN(refPhi) {
			refPhi = cell.Phi
		}
		sumE += e
		sumEta += e * cell.Eta
		sumDPhi += e * DeltaPhi(cell.Phi, refPhi)
	}
	if sumE <= 0 {
		if len(c.shared) == 0 {
			return EtaPhi{}
		}
		// All cells empty: fall back to the first cell.
		return c.shared[0].Position()
	}
	return EtaPhi{
		Eta: sumEta / sumE,
		Phi: math.Remainder(refPhi+sumDPhi/sumE, 2*math.Pi),
	}
}

// Widths returns the energy-weighted RMS spread of the cells in eta and phi
// around the current centre.
func (c *Cluster) Widths() (etaWidth, phiWidth float64) {
	center := c.Center()
	var sumE, sumEta2, sumPhi2 float64
	for i, cell := range c.shared {
		e := c.energyAt(i)
		if e <= 0 {
			continue
		}
		dEta := cell.Eta - center.Eta
		dPhi := DeltaPhi(cell.Phi, center.Phi)
		sumE += e
		sumEta2 += e * dEta * dEta
		sumPhi2 += e * dPhi * dPhi
	}
	if sumE <= 0 {
		return 0, 0
	}
	return math.Sqrt(sumEta2 / sumE), math.Sqrt(sumPhi2 / sumE)
}

// P4 returns the cluster four-momentum as the sum of massless cell
// four-vectors.
func (c *Cluster) P4() fmom.PxPyPzE {
	var px, py, pz, e float64
	for i, cell := range c.shared {
		ce := c.energyAt(i)
		if ce <= 0 {
			continue
		}
		pt := ce / math.Cosh(cell.Eta)
		px += pt * math.Cos(cell.Phi)
		py += pt * math.Sin(cell.Phi)
		pz += pt * math.Sinh(cell.Eta)
		e += ce
	}
	return fmom.NewPxPyPzE(px, py, pz, e)
}

// RawP4 returns the four-momentum before any subtraction.
func (c *Cluster) RawP4() fmom.PxPyPzE { return c.rawP4 }

// Pt returns the transverse momentum before subtraction, the key used to
// order clusters.
func (c *Cluster) Pt() float64 { return c.rawP4.Pt() }

// promote copies the cluster's cells into the arena on first write.
func (c *Cluster) promote() {
	if c.index != nil {
		return
	}
	if c.arena == nil {
		c.arena = NewCellArena()
	}
	c.index = make([]int, len(c.shared))
	for i, cell := range c.shared {
		cell.Energy = math.Max(cell.Energy, 0)
		c.index[i] = c.arena.intern(cell)
	}
}

// ScaleCell multiplies the energy of cell i by factor and returns the
// energy removed. The factor is clamped to [0, 1] so cell energies never
// increase. Annihilated clusters are left untouched.
func (c *Cluster) ScaleCell(i int, factor float64) float64 {
	if c.state == ClusterAnnihilated {
		return 0
	}
	factor = math.Min(math.Max(factor, 0), 1)
	c.promote()
	cell := &c.arena.cells[c.index[i]]
	if cell.Energy <= 0 || factor == 1 {
		return 0
	}
	before := cell.Energy
	cell.Energy = before * factor
	c.state = ClusterSubtracted
	return before - cell.Energy
}

// ZeroCell removes all energy from cell i and returns the energy removed.
func (c *Cluster) ZeroCell(i int) float64 {
	return c.ScaleCell(i, 0)
}

// Annihilate forces every cell to exactly zero, marks the cluster consumed
// and returns the energy removed.
func (c *Cluster) Annihilate() float64 {
	if c.state == ClusterAnnihilated {
		return 0
	}
	c.promote()
	var removed float64
	for _, idx := range c.index {
		removed += c.arena.cells[idx].Energy
		c.arena.cells[idx].Energy = 0
	}
	c.state = ClusterAnnihilated
	return removed
}

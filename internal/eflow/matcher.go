package eflow

import (
	"math"

	"github.com/banshee-data/eflowrec/internal/calo"
	"github.com/banshee-data/eflowrec/internal/config"
)

// Match is a candidate cluster and its distance to the track.
type Match struct {
	Cluster  *RecCluster
	Distance float64
}

// Matcher selects the single closest cluster to a track.
type Matcher struct {
	Distance DistanceCalculator
	Cut      float64
}

// BestMatch returns the cluster with the smallest distance strictly below
// the cut. Clusters are expected in descending pT order: an exact tie keeps
// the first candidate, i.e. the higher-pT cluster. Empty and annihilated
// clusters are skipped.
func (m Matcher) BestMatch(t *RecTrack, clusters []*RecCluster) (Match, bool) {
	pos := t.ReferencePosition()
	best := Match{Distance: m.Cut}
	found := false
	for _, c := range clusters {
		if c.Empty() {
			continue
		}
		d := m.Distance.Distance(pos, c.Cluster)
		if d < best.Distance {
			best = Match{Cluster: c, Distance: d}
			found = true
		}
	}
	return best, found
}

// ConeMatcher collects every cluster inside an energy-dependent cone. The
// radius shrinks with cluster energy,
// R(E) = clamp(Intercept + Slope·ln(E), Min, Max), with the coefficients
// chosen by the cluster's |eta|.
type ConeMatcher struct {
	Bins []config.ConeBin
	Min  float64
	Max  float64
}

// Radius returns the cone radius for a cluster of the given energy and eta.
func (m ConeMatcher) Radius(energy, eta float64) float64 {
	if len(m.Bins) == 0 || energy <= 0 {
		return m.Max
	}
	absEta := math.Abs(eta)
	bin := m.Bins[len(m.Bins)-1]
	for _, b := range m.Bins {
		if absEta <= b.EtaMax {
			bin = b
			break
		}
	}
	r := bin.Intercept + bin.Slope*math.Log(energy)
	return math.Min(math.Max(r, m.Min), m.Max)
}

// AllMatches returns every non-empty cluster whose centre lies inside its
// cone around the track, in input order. Distances are dEta² + dPhi².
func (m ConeMatcher) AllMatches(t *RecTrack, clusters []*RecCluster) []Match {
	pos := t.ReferencePosition()
	var matches []Match
	for _, c := range clusters {
		if c.Empty() {
			continue
		}
		center := c.Center()
		r := m.Radius(c.Energy(), center.Eta)
		d := calo.DeltaR2(pos, center)
		if d <= r*r {
			matches = append(matches, Match{Cluster: c, Distance: d})
		}
	}
	return matches
}

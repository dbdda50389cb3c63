package eflow

import (
	"math"

	"github.com/banshee-data/eflowrec/internal/calo"
)

// RecTrack is a track plus the reconstruction state attached to it for one
// event.
type RecTrack struct {
	*calo.Track

	links  []*Link
	object *CaloObject

	// Shower expectation, valid when HasBin is true.
	ExpectedEnergy   float64
	ExpectedVariance float64
	FirstInteraction calo.Layer
	Rings            []calo.Ring
	HasBin           bool

	NoBin      bool    // the parameter table had no entry for this track
	Dense      bool    // flagged as in a dense environment
	Pull       float64 // (cone energy - expected) / sigma
	Isolated   bool    // no cluster matched
	ConeEnergy float64 // cluster energy in the dense cone before subtraction

	subtracted bool
}

func newRecTrack(t *calo.Track) *RecTrack {
	return &RecTrack{Track: t, FirstInteraction: calo.LayerUnknown}
}

// Subtracted reports whether the track has been subtracted (or marked
// complete without removing cells).
func (t *RecTrack) Subtracted() bool { return t.subtracted }

// markSubtracted sets the completion flag. It returns false if the flag
// was already set; callers must not subtract twice.
func (t *RecTrack) markSubtracted() bool {
	if t.subtracted {
		return false
	}
	t.subtracted = true
	return true
}

// Links returns the track's cluster links.
func (t *RecTrack) Links() []*Link { return t.links }

// ExpectedSigma returns the standard deviation of the expected deposit.
func (t *RecTrack) ExpectedSigma() float64 { return math.Sqrt(t.ExpectedVariance) }

func (t *RecTrack) setExpectation(s Shower) {
	t.ExpectedEnergy = s.ExpectedEnergy
	t.ExpectedVariance = s.ExpectedSigma * s.ExpectedSigma
	t.FirstInteraction = s.FirstInteraction
	t.Rings = s.Rings
	t.HasBin = true
	t.NoBin = false
}

// shower returns the stored expectation in the form the subtraction engine
// consumes.
func (t *RecTrack) shower() Shower {
	return Shower{
		ExpectedEnergy:   t.ExpectedEnergy,
		ExpectedSigma:    t.ExpectedSigma(),
		FirstInteraction: t.FirstInteraction,
		Rings:            t.Rings,
	}
}

func (t *RecTrack) clearLinks() { t.links = nil }

// unlink drops the track's links from both ends.
func (t *RecTrack) unlink() {
	for _, l := range t.links {
		l.Cluster.dropLink(l)
	}
	t.links = nil
}

// linkedClusters returns the clusters the track is linked to, in link order.
func (t *RecTrack) linkedClusters() []*calo.Cluster {
	out := make([]*calo.Cluster, 0, len(t.links))
	for _, l := range t.links {
		out = append(out, l.Cluster.Cluster)
	}
	return out
}

// RecCluster is a cluster plus its track links for one event.
type RecCluster struct {
	*calo.Cluster

	links []*Link
	order int // position in the event's descending-pT cluster list
}

// Links returns the cluster's track links.
func (c *RecCluster) Links() []*Link { return c.links }

func (c *RecCluster) clearLinks() { c.links = nil }

func (c *RecCluster) dropLink(l *Link) {
	for i, cl := range c.links {
		if cl == l {
			c.links = append(c.links[:i:i], c.links[i+1:]...)
			return
		}
	}
}

// tracksSubtracted reports whether every linked track has been subtracted.
func (c *RecCluster) tracksSubtracted() bool {
	for _, l := range c.links {
		if !l.Track.Subtracted() {
			return false
		}
	}
	return true
}

// Link is a weighted association between one track and one cluster. It is
// referenced from both ends.
type Link struct {
	Track    *RecTrack
	Cluster  *RecCluster
	Distance float64
}

func newLink(t *RecTrack, c *RecCluster, distance float64) *Link {
	l := &Link{Track: t, Cluster: c, Distance: distance}
	t.links = append(t.links, l)
	c.links = append(c.links, l)
	return l
}

func clusterEnergy(clusters []*calo.Cluster) float64 {
	var e float64
	for _, c := range clusters {
		e += c.Energy()
	}
	return e
}

package eflow

import (
	"fmt"
	"math"

	"github.com/banshee-data/eflowrec/internal/calo"
	"github.com/banshee-data/eflowrec/internal/config"
)

// DistanceCalculator measures how far a cluster is from a track position.
type DistanceCalculator interface {
	Distance(track calo.EtaPhi, cluster *calo.Cluster) float64
}

// EtaPhiSquareDistance is dEta² + dPhi² between the track position and the
// cluster centre.
type EtaPhiSquareDistance struct{}

func (EtaPhiSquareDistance) Distance(track calo.EtaPhi, cluster *calo.Cluster) float64 {
	return calo.DeltaR2(track, cluster.Center())
}

// EtaPhiSquareSignificance normalises each coordinate by the cluster's
// energy-weighted width, floored at MinWidth.
type EtaPhiSquareSignificance struct {
	MinWidth float64
}

func (d EtaPhiSquareSignificance) Distance(track calo.EtaPhi, cluster *calo.Cluster) float64 {
	center := cluster.Center()
	etaWidth, phiWidth := cluster.Widths()
	etaWidth = math.Max(etaWidth, d.MinWidth)
	phiWidth = math.Max(phiWidth, d.MinWidth)

	dEta := track.Eta - center.Eta
	dPhi := calo.DeltaPhi(track.Phi, center.Phi)
	return dEta*dEta/(etaWidth*etaWidth) + dPhi*dPhi/(phiWidth*phiWidth)
}

// NewDistanceCalculator returns the calculator configured by name.
func NewDistanceCalculator(name string, minWidth float64) (DistanceCalculator, error) {
	switch name {
	case config.DistanceEtaPhiSquare:
		return EtaPhiSquareDistance{}, nil
	case config.DistanceEtaPhiSquareSignificance:
		if minWidth <= 0 {
			return nil, fmt.Errorf("significance distance needs a positive minimum cluster width, got %f", minWidth)
		}
		return EtaPhiSquareSignificance{MinWidth: minWidth}, nil
	}
	return nil, fmt.Errorf("unknown match distance %q", name)
}

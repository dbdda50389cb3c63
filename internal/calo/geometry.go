package calo

import "math"

// EtaPhi is a position in (pseudorapidity, azimuth) space.
type EtaPhi struct {
	Eta float64 `json:"eta"`
	Phi float64 `json:"phi"`
}

// DeltaPhi returns phi1-phi2 wrapped into [-π, π].
func DeltaPhi(phi1, phi2 float64) float64 {
	return math.Remainder(phi1-phi2, 2*math.Pi)
}

// DeltaR2 returns the squared (eta, phi) distance between a and b.
func DeltaR2(a, b EtaPhi) float64 {
	dEta := a.Eta - b.Eta
	dPhi := DeltaPhi(a.Phi, b.Phi)
	return dEta*dEta + dPhi*dPhi
}

// DeltaR returns the (eta, phi) distance between a and b.
func DeltaR(a, b EtaPhi) float64 {
	return math.Sqrt(DeltaR2(a, b))
}

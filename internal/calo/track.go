package calo

import (
	"fmt"
	"math"

	"go-hep.org/x/hep/fmom"
)

// ChargedPionMass is the mass hypothesis (GeV) used for track energies.
const ChargedPionMass = 0.13957039

// TrackKind tags which upstream representation a track came from.
type TrackKind uint8

const (
	ModernTrack TrackKind = iota // Cartesian momentum (px, py, pz)
	LegacyTrack                  // (pt, eta, phi) parameterisation
)

func (k TrackKind) String() string {
	switch k {
	case ModernTrack:
		return "modern"
	case LegacyTrack:
		return "legacy"
	}
	return "unknown"
}

// TrackRef is the provenance link from a reconstructed object back to the
// upstream track: which representation it came from and its index in that
// collection. The kind is fixed when the Track is constructed.
type TrackRef struct {
	Kind  TrackKind `json:"kind"`
	Index int       `json:"index"`
}

func (r TrackRef) String() string {
	return fmt.Sprintf("%s#%d", r.Kind, r.Index)
}

// MarshalText implements encoding.TextMarshaler for TrackKind.
func (k TrackKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for TrackKind.
func (k *TrackKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "modern":
		*k = ModernTrack
	case "legacy":
		*k = LegacyTrack
	default:
		return fmt.Errorf("unknown track kind %q", string(b))
	}
	return nil
}

// Track is an immutable charged-particle measurement with its extrapolated
// positions at the calorimeter layers.
type Track struct {
	Ref    TrackRef
	Charge int

	p4             fmom.PxPyPzE
	extrapolations [NumLayers]EtaPhi
	hasLayer       [NumLayers]bool
}

// NewTrack builds a track from a Cartesian momentum.
func NewTrack(index int, px, py, pz float64, charge int) *Track {
	p2 := px*px + py*py + pz*pz
	e := math.Sqrt(p2 + ChargedPionMass*ChargedPionMass)
	return &Track{
		Ref:    TrackRef{Kind: ModernTrack, Index: index},
		Charge: charge,
		p4:     fmom.NewPxPyPzE(px, py, pz, e),
	}
}

// NewLegacyTrack builds a track from the (pt, eta, phi) parameterisation.
func NewLegacyTrack(index int, pt, eta, phi float64, charge int) *Track {
	t := NewTrack(index, pt*math.Cos(phi), pt*math.Sin(phi), pt*math.Sinh(eta), charge)
	t.Ref.Kind = LegacyTrack
	return t
}

// SetExtrapolation records the track position at layer l. Only used while
// the event is being assembled.
func (t *Track) SetExtrapolation(l Layer, pos EtaPhi) {
	if !l.Valid() {
		return
	}
	t.extrapolations[l] = pos
	t.hasLayer[l] = true
}

// Extrapolation returns the track position at layer l.
func (t *Track) Extrapolation(l Layer) (EtaPhi, bool) {
	if !l.Valid() || !t.hasLayer[l] {
		return EtaPhi{}, false
	}
	return t.extrapolations[l], true
}

// Layers returns the layers with an extrapolation, in canonical order.
func (t *Track) Layers() []Layer {
	var layers []Layer
	for l := 0; l < NumLayers; l++ {
		if t.hasLayer[l] {
			layers = append(layers, Layer(l))
		}
	}
	return layers
}

// ReferencePosition returns the position used for matching: the second EM
// sampling (barrel, then endcap), or the momentum direction when the track
// was not extrapolated there.
func (t *Track) ReferencePosition() EtaPhi {
	if pos, ok := t.Extrapolation(EMB2); ok {
		return pos
	}
	if pos, ok := t.Extrapolation(EME2); ok {
		return pos
	}
	return t.Direction()
}

// Direction returns the momentum direction.
func (t *Track) Direction() EtaPhi {
	return EtaPhi{Eta: t.p4.Eta(), Phi: t.p4.Phi()}
}

// P4 returns the track four-momentum.
func (t *Track) P4() fmom.PxPyPzE { return t.p4 }

// Pt returns the transverse momentum.
func (t *Track) Pt() float64 { return t.p4.Pt() }

// E returns the energy under the charged-pion hypothesis.
func (t *Track) E() float64 { return t.p4.E() }

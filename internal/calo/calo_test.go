package calo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCells(first CellID, layer Layer, eta, phi float64, energies ...float64) []Cell {
	cells := make([]Cell, len(energies))
	for i, e := range energies {
		cells[i] = Cell{
			ID:     first + CellID(i),
			Layer:  layer,
			Eta:    eta + 0.025*float64(i),
			Phi:    phi,
			Energy: e,
		}
	}
	return cells
}

func TestParseLayer(t *testing.T) {
	tests := []struct {
		in      string
		want    Layer
		wantErr bool
	}{
		{"EMB2", EMB2, false},
		{"tile3", Tile3, false},
		{"Unknown", LayerUnknown, false},
		{"PreSampler", LayerUnknown, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLayer(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLayer(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLayer(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLayerTextRoundTrip(t *testing.T) {
	var l Layer
	require.NoError(t, l.UnmarshalText([]byte("HEC3")))
	assert.Equal(t, HEC3, l)
	b, err := l.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "HEC3", string(b))
}

func TestDeltaPhiWraps(t *testing.T) {
	d := DeltaPhi(math.Pi-0.05, -math.Pi+0.05)
	if math.Abs(d+0.1) > 1e-12 {
		t.Errorf("DeltaPhi across the boundary = %v, want -0.1", d)
	}
	r2 := DeltaR2(EtaPhi{Eta: 0.3, Phi: 3.1}, EtaPhi{Eta: 0.0, Phi: -3.1})
	want := 0.09 + math.Pow(2*math.Pi-6.2, 2)
	if math.Abs(r2-want) > 1e-12 {
		t.Errorf("DeltaR2 = %v, want %v", r2, want)
	}
}

func TestRing(t *testing.T) {
	r := Ring{Layer: EMB2, Inner: 0.01, Outer: 0.02}
	assert.False(t, r.Contains(0.005))
	assert.True(t, r.Contains(0.01))
	assert.False(t, r.Contains(0.02))
	assert.NoError(t, r.Validate())
	assert.Error(t, Ring{Layer: EMB2, Inner: 0.02, Outer: 0.01}.Validate())
	assert.Error(t, Ring{Layer: LayerUnknown, Inner: 0, Outer: 0.01}.Validate())
}

func TestClusterCopyOnWrite(t *testing.T) {
	upstream := testCells(100, EMB2, 0.5, 1.0, 2.0, 3.0, 5.0)
	arena := NewCellArena()
	c := NewCluster(0, upstream)
	c.Attach(arena)

	assert.InDelta(t, 10.0, c.Energy(), 1e-12)
	assert.False(t, c.Private())
	assert.Equal(t, 0, arena.Len())

	removed := c.ScaleCell(2, 0.4)
	assert.InDelta(t, 3.0, removed, 1e-12)
	assert.True(t, c.Private())
	assert.Equal(t, 3, arena.Len())
	assert.Equal(t, ClusterSubtracted, c.State())
	assert.InDelta(t, 7.0, c.Energy(), 1e-12)

	// Upstream storage is never written.
	assert.Equal(t, 5.0, upstream[2].Energy)
	assert.InDelta(t, 10.0, c.RawEnergy(), 1e-12)
}

func TestClusterScaleNeverIncreases(t *testing.T) {
	c := NewCluster(0, testCells(1, EMB1, 0, 0, 4.0))
	assert.Equal(t, 0.0, c.ScaleCell(0, 1.5))
	assert.InDelta(t, 4.0, c.Energy(), 1e-12)
	assert.InDelta(t, 4.0, c.ScaleCell(0, -2), 1e-12)
	assert.Equal(t, 0.0, c.Energy())
}

func TestSharedCellSeenByBothClusters(t *testing.T) {
	shared := Cell{ID: 7, Layer: EMB2, Eta: 0.1, Phi: 0.2, Energy: 4.0}
	a := NewCluster(0, []Cell{shared, {ID: 8, Layer: EMB2, Eta: 0.125, Phi: 0.2, Energy: 1.0}})
	b := NewCluster(1, []Cell{shared, {ID: 9, Layer: EMB2, Eta: 0.075, Phi: 0.2, Energy: 2.0}})
	arena := NewCellArena()
	a.Attach(arena)
	b.Attach(arena)

	a.ZeroCell(0)

	assert.InDelta(t, 1.0, a.Energy(), 1e-12)
	// b was never promoted but reads the shared cell through the arena.
	assert.False(t, b.Private())
	assert.InDelta(t, 2.0, b.Energy(), 1e-12)
	e, ok := arena.Energy(7)
	require.True(t, ok)
	assert.Equal(t, 0.0, e)
}

func TestClusterAnnihilate(t *testing.T) {
	c := NewCluster(3, testCells(1, HEC1, 1.2, -0.4, 0.5, 0.25))
	removed := c.Annihilate()
	assert.InDelta(t, 0.75, removed, 1e-12)
	assert.True(t, c.Annihilated())
	assert.True(t, c.Empty())
	for i := 0; i < c.NumCells(); i++ {
		assert.Equal(t, 0.0, c.Cell(i).Energy)
	}
	// Further writes are ignored.
	assert.Equal(t, 0.0, c.ScaleCell(0, 0.5))
	assert.Equal(t, 0.0, c.Annihilate())
}

func TestClusterNegativeCellsReadAsZero(t *testing.T) {
	c := NewCluster(0, testCells(1, EMB3, 0, 0, 3.0, -1.0))
	assert.InDelta(t, 3.0, c.Energy(), 1e-12)
	c.Annihilate()
	assert.Equal(t, 0.0, c.Energy())
}

func TestClusterCenterAcrossPhiBoundary(t *testing.T) {
	c := NewCluster(0, []Cell{
		{ID: 1, Layer: EMB2, Eta: 0.0, Phi: math.Pi - 0.01, Energy: 1},
		{ID: 2, Layer: EMB2, Eta: 0.2, Phi: -math.Pi + 0.01, Energy: 1},
	})
	center := c.Center()
	assert.InDelta(t, 0.1, center.Eta, 1e-12)
	assert.InDelta(t, math.Pi, math.Abs(center.Phi), 1e-9)

	etaW, phiW := c.Widths()
	assert.InDelta(t, 0.1, etaW, 1e-12)
	assert.InDelta(t, 0.01, phiW, 1e-9)
}

func TestClusterP4(t *testing.T) {
	c := NewCluster(0, []Cell{{ID: 1, Layer: EMB2, Eta: 0, Phi: 0, Energy: 10}})
	p4 := c.P4()
	assert.InDelta(t, 10.0, p4.E(), 1e-12)
	assert.InDelta(t, 10.0, p4.Pt(), 1e-12)
	assert.InDelta(t, 10.0, c.Pt(), 1e-12)
}

func TestTrackRepresentations(t *testing.T) {
	modern := NewTrack(4, 3, 4, 0, 1)
	assert.Equal(t, TrackRef{Kind: ModernTrack, Index: 4}, modern.Ref)
	assert.InDelta(t, 5.0, modern.Pt(), 1e-12)
	assert.InDelta(t, math.Sqrt(25+ChargedPionMass*ChargedPionMass), modern.E(), 1e-12)

	legacy := NewLegacyTrack(2, 5, 0.8, -1.2, -1)
	assert.Equal(t, LegacyTrack, legacy.Ref.Kind)
	assert.InDelta(t, 5.0, legacy.Pt(), 1e-9)
	dir := legacy.Direction()
	assert.InDelta(t, 0.8, dir.Eta, 1e-9)
	assert.InDelta(t, -1.2, dir.Phi, 1e-9)
}

func TestTrackReferencePosition(t *testing.T) {
	tr := NewLegacyTrack(0, 10, 1.6, 0.3, 1)
	assert.InDelta(t, 1.6, tr.ReferencePosition().Eta, 1e-9)

	tr.SetExtrapolation(EME2, EtaPhi{Eta: 1.62, Phi: 0.31})
	assert.Equal(t, EtaPhi{Eta: 1.62, Phi: 0.31}, tr.ReferencePosition())

	tr.SetExtrapolation(EMB2, EtaPhi{Eta: 1.55, Phi: 0.32})
	assert.Equal(t, EtaPhi{Eta: 1.55, Phi: 0.32}, tr.ReferencePosition())

	assert.Equal(t, []Layer{EMB2, EME2}, tr.Layers())

	tr.SetExtrapolation(LayerUnknown, EtaPhi{})
	_, ok := tr.Extrapolation(LayerUnknown)
	assert.False(t, ok)
}

package eflow

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/eflowrec/internal/calo"
	"github.com/banshee-data/eflowrec/internal/config"
)

func recClusters(cs ...*calo.Cluster) []*RecCluster {
	out := make([]*RecCluster, len(cs))
	for i, c := range cs {
		out[i] = &RecCluster{Cluster: c, order: i}
	}
	return out
}

func TestNewDistanceCalculator(t *testing.T) {
	tests := []struct {
		name     string
		minWidth float64
		want     DistanceCalculator
		wantErr  bool
	}{
		{config.DistanceEtaPhiSquare, 0, EtaPhiSquareDistance{}, false},
		{config.DistanceEtaPhiSquareSignificance, 0.01, EtaPhiSquareSignificance{MinWidth: 0.01}, false},
		{config.DistanceEtaPhiSquareSignificance, 0, nil, true},
		{"manhattan", 0.01, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewDistanceCalculator(tt.name, tt.minWidth)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSignificanceFloorsWidths(t *testing.T) {
	// A single cell has zero width; the floor keeps the distance finite.
	c := emb2Cluster(1, 1, 0.1, 0, cellSpec{e: 5})
	d := EtaPhiSquareSignificance{MinWidth: 0.05}.Distance(calo.EtaPhi{}, c)
	assert.InDelta(t, 4.0, d, 1e-9)

	plain := EtaPhiSquareDistance{}.Distance(calo.EtaPhi{}, c)
	assert.InDelta(t, 0.01, plain, 1e-12)
}

func TestBestMatchTieKeepsFirst(t *testing.T) {
	track := newRecTrack(barrelTrack(0, 10, 0, 0))
	below := emb2Cluster(1, 1, -0.01, 0, cellSpec{e: 3})
	above := emb2Cluster(2, 10, 0.01, 0, cellSpec{e: 3})
	m := Matcher{Distance: EtaPhiSquareDistance{}, Cut: 1}

	got, ok := m.BestMatch(track, recClusters(below, above))
	require.True(t, ok)
	assert.Equal(t, 1, got.Cluster.ID)

	got, ok = m.BestMatch(track, recClusters(above, below))
	require.True(t, ok)
	assert.Equal(t, 2, got.Cluster.ID)
}

func TestBestMatchPrefersCloser(t *testing.T) {
	track := newRecTrack(barrelTrack(0, 10, 0, 0))
	far := emb2Cluster(1, 1, 0.05, 0, cellSpec{e: 30})
	near := emb2Cluster(2, 10, 0.01, 0, cellSpec{e: 3})
	m := Matcher{Distance: EtaPhiSquareDistance{}, Cut: 1}

	got, ok := m.BestMatch(track, recClusters(far, near))
	require.True(t, ok)
	assert.Equal(t, 2, got.Cluster.ID)
	assert.InDelta(t, 1e-4, got.Distance, 1e-12)
}

func TestBestMatchCutIsStrict(t *testing.T) {
	track := newRecTrack(barrelTrack(0, 10, 0, 0))
	c := emb2Cluster(1, 1, 0.01, 0, cellSpec{e: 3})
	d := EtaPhiSquareDistance{}.Distance(track.ReferencePosition(), c)

	_, ok := Matcher{Distance: EtaPhiSquareDistance{}, Cut: d}.BestMatch(track, recClusters(c))
	assert.False(t, ok, "distance equal to the cut must not match")

	_, ok = Matcher{Distance: EtaPhiSquareDistance{}, Cut: math.Nextafter(d, 1)}.BestMatch(track, recClusters(c))
	assert.True(t, ok)
}

func TestBestMatchSkipsEmptyClusters(t *testing.T) {
	track := newRecTrack(barrelTrack(0, 10, 0, 0))
	consumed := emb2Cluster(1, 1, 0, 0, cellSpec{e: 3})
	consumed.Annihilate()
	zero := emb2Cluster(2, 10, 0, 0, cellSpec{e: -1})

	_, ok := Matcher{Distance: EtaPhiSquareDistance{}, Cut: 1}.BestMatch(track, recClusters(consumed, zero))
	assert.False(t, ok)
}

func TestConeMatcherRadius(t *testing.T) {
	m := ConeMatcher{
		Bins: []config.ConeBin{
			{EtaMax: 1.0, Intercept: 0.20, Slope: -0.020},
			{EtaMax: 2.0, Intercept: 0.22, Slope: -0.025},
			{EtaMax: 2.5, Intercept: 0.24, Slope: -0.030},
		},
		Min: 0.05,
		Max: 0.25,
	}
	tests := []struct {
		name        string
		energy, eta float64
		want        float64
	}{
		{"barrel at 1 GeV", 1, 0.5, 0.20},
		{"barrel shrinks with energy", math.Exp(5), -0.5, 0.10},
		{"bin edge belongs to lower bin", 1, 1.0, 0.20},
		{"endcap", 1, 1.5, 0.22},
		{"beyond last bin", 1, 3.0, 0.24},
		{"clamped to minimum", 1e6, 0, 0.05},
		{"clamped to maximum", 0.01, 0, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, m.Radius(tt.energy, tt.eta), 1e-9)
		})
	}
}

func TestConeMatcherAllMatches(t *testing.T) {
	m := DefaultConfig().RecoveryCone
	track := newRecTrack(barrelTrack(0, 10, 0, 0))

	// At 1 GeV in the barrel the cone radius is 0.20.
	inside := emb2Cluster(1, 1, 0.19, 0, cellSpec{e: 1})
	outside := emb2Cluster(2, 10, 0, 0.21, cellSpec{e: 1})
	consumed := emb2Cluster(3, 20, 0, 0, cellSpec{e: 1})
	consumed.Annihilate()
	alsoInside := emb2Cluster(4, 30, 0, -0.1, cellSpec{e: 1})

	matches := m.AllMatches(track, recClusters(inside, outside, consumed, alsoInside))
	require.Len(t, matches, 2)
	assert.Equal(t, 1, matches[0].Cluster.ID)
	assert.Equal(t, 4, matches[1].Cluster.ID)
	assert.InDelta(t, 0.01, matches[1].Distance, 1e-12)
}

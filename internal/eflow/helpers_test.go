package eflow

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banshee-data/eflowrec/internal/calo"
	"github.com/banshee-data/eflowrec/internal/monitoring"
	"github.com/banshee-data/eflowrec/internal/showerparams"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

// barrelRings are EMB2 rings around the track, removed inside out.
var barrelRings = []calo.Ring{
	{Layer: calo.EMB2, Inner: 0, Outer: 0.02},
	{Layer: calo.EMB2, Inner: 0.02, Outer: 0.05},
	{Layer: calo.EMB2, Inner: 0.05, Outer: 0.1},
	{Layer: calo.EMB2, Inner: 0.1, Outer: 0.2},
}

// flatTable returns a single-bin table valid for every track of at least
// minEnergy GeV with |eta| < 2.5. It only defines the unknown-layer
// response.
func flatTable(t *testing.T, minEnergy, mean, sigma float64, rings []calo.Ring) *showerparams.Table {
	t.Helper()
	tbl, err := showerparams.NewTable([]float64{minEnergy}, []float64{0, 2.5})
	require.NoError(t, err)
	require.NoError(t, tbl.Set(0, 0, showerparams.Bin{
		FirstInteractionFraction: 0.1,
		Responses: map[calo.Layer]showerparams.Response{
			calo.LayerUnknown: {MeanFactor: mean, SigmaFactor: sigma, Rings: rings},
		},
	}))
	return tbl
}

// barrelTrack is a legacy track extrapolated to EMB2 at its own direction.
func barrelTrack(index int, pt, eta, phi float64) *calo.Track {
	tr := calo.NewLegacyTrack(index, pt, eta, phi, 1)
	tr.SetExtrapolation(calo.EMB2, calo.EtaPhi{Eta: eta, Phi: phi})
	return tr
}

type cellSpec struct {
	dEta, dPhi, e float64
}

// emb2Cluster builds a cluster of EMB2 cells placed relative to (eta, phi).
// Cell IDs start at firstID.
func emb2Cluster(id int, firstID calo.CellID, eta, phi float64, cells ...cellSpec) *calo.Cluster {
	out := make([]calo.Cell, len(cells))
	for i, c := range cells {
		out[i] = calo.Cell{
			ID:     firstID + calo.CellID(i),
			Layer:  calo.EMB2,
			Eta:    eta + c.dEta,
			Phi:    phi + c.dPhi,
			Energy: c.e,
		}
	}
	return calo.NewCluster(id, out)
}

func newTestProcessor(t *testing.T, cfg Config, tbl *showerparams.Table) *Processor {
	t.Helper()
	p, err := NewProcessor(cfg, tbl)
	require.NoError(t, err)
	return p
}

func pfosOfType(pfos []PFO, typ PFOType) []PFO {
	var out []PFO
	for _, p := range pfos {
		if p.Type == typ {
			out = append(out, p)
		}
	}
	return out
}

func clusterEnergies(clusters []*calo.Cluster) []float64 {
	out := make([]float64, len(clusters))
	for i, c := range clusters {
		out[i] = c.Energy()
	}
	return out
}
